package usecase

import (
	"sync"

	"github.com/samuelasefa34/Sheger-pay/internal/domain"
)

// MutationTracker guarda o estado da última mutação de cada conta neste processo.
type MutationTracker struct {
	mu     sync.RWMutex
	states map[string]domain.MutationState
}

func NewMutationTracker() *MutationTracker {
	return &MutationTracker{states: make(map[string]domain.MutationState)}
}

// State devolve idle para contas que nunca gravaram nada.
func (t *MutationTracker) State(accountID string) domain.MutationState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	state, ok := t.states[accountID]
	if !ok {
		return domain.MutationIdle
	}
	return state
}

func (t *MutationTracker) begin(accountID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states[accountID] = domain.MutationProcessing
}

func (t *MutationTracker) finish(accountID string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.states[accountID] = domain.MutationFailed
		return
	}
	t.states[accountID] = domain.MutationSucceeded
}
