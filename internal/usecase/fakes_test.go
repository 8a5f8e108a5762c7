package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/samuelasefa34/Sheger-pay/internal/domain"
	"github.com/samuelasefa34/Sheger-pay/internal/infra/memory"
)

// slowRepository segura cada Create por delay, respeitando o ctx.
type slowRepository struct {
	*memory.TransactionRepository
	delay time.Duration
}

func (r *slowRepository) Create(ctx context.Context, accountID string, draft domain.Draft) (*domain.Transaction, error) {
	select {
	case <-time.After(r.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return r.TransactionRepository.Create(ctx, accountID, draft)
}

// failingRepository simula o store fora do ar.
type failingRepository struct {
	createErr error
	listErr   error
	creates   int
}

func (r *failingRepository) Create(_ context.Context, _ string, _ domain.Draft) (*domain.Transaction, error) {
	r.creates++
	return nil, r.createErr
}

func (r *failingRepository) ListByAccount(_ context.Context, _ string) ([]domain.Record, error) {
	return nil, r.listErr
}

type publishedEvent struct {
	exchange   string
	routingKey string
	body       any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, exchange, routingKey string, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{exchange, routingKey, body})
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

var errConnectionRefused = errors.New("connection refused")

// lockCheckingPublisher tenta travar a conta durante o Publish e registra se conseguiu.
type lockCheckingPublisher struct {
	locker   *memory.AccountLocker
	acquired bool
	calls    int
}

func (p *lockCheckingPublisher) Publish(_ context.Context, _, _ string, body any) error {
	p.calls++
	event := body.(domain.TransactionEvent)
	expired, cancel := context.WithCancel(context.Background())
	cancel()
	unlock, err := p.locker.Lock(expired, event.AccountID)
	if err == nil {
		p.acquired = true
		unlock()
	}
	return nil
}
