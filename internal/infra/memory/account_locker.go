package memory

import (
	"context"
	"sync"

	"github.com/samuelasefa34/Sheger-pay/internal/domain"
	"github.com/samuelasefa34/Sheger-pay/internal/gateway"
)

// lockSlot é um semáforo de capacidade 1; refs conta quem está segurando
// ou esperando, e o slot sai do mapa quando chega a zero.
type lockSlot struct {
	ch   chan struct{}
	refs int
}

// AccountLocker serializa gravações por conta dentro de um único processo.
type AccountLocker struct {
	mu    sync.Mutex
	slots map[string]*lockSlot
}

func NewAccountLocker() *AccountLocker {
	return &AccountLocker{slots: make(map[string]*lockSlot)}
}

func (l *AccountLocker) Lock(ctx context.Context, accountID string) (func(), error) {
	slot := l.acquire(accountID)

	// Tenta sem bloquear primeiro: com ctx já expirado o select abaixo
	// escolheria um caso ao acaso.
	select {
	case slot.ch <- struct{}{}:
		return l.unlocker(accountID, slot), nil
	default:
	}

	select {
	case slot.ch <- struct{}{}:
		return l.unlocker(accountID, slot), nil
	case <-ctx.Done():
		l.release(accountID, slot)
		return nil, domain.ErrBusy
	}
}

func (l *AccountLocker) acquire(accountID string) *lockSlot {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot, ok := l.slots[accountID]
	if !ok {
		slot = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[accountID] = slot
	}
	slot.refs++
	return slot
}

func (l *AccountLocker) release(accountID string, slot *lockSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, accountID)
	}
}

func (l *AccountLocker) unlocker(accountID string, slot *lockSlot) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.ch
			l.release(accountID, slot)
		})
	}
}

// tracked devolve quantas contas têm slot vivo.
func (l *AccountLocker) tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

var _ gateway.AccountLocker = (*AccountLocker)(nil)
