package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/samuelasefa34/Sheger-pay/internal/domain"
	"github.com/samuelasefa34/Sheger-pay/internal/gateway"
)

// walEntry é o formato de uma transação no WAL.
type walEntry struct {
	AccountID string    `json:"account_id"`
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Amount    string    `json:"amount"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	Sequence  int64     `json:"sequence"`
}

// TransactionRepository é um Account Store em memória, protegido por RWMutex.
// Serve para desenvolvimento local e testes; com WAL sobrevive a restart.
type TransactionRepository struct {
	mu       sync.RWMutex
	records  map[string][]domain.Record
	sequence int64
	watchers map[string]map[chan struct{}]struct{}
	wal      *WAL
	now      func() time.Time
}

func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{
		records:  make(map[string][]domain.Record),
		watchers: make(map[string]map[chan struct{}]struct{}),
		now:      time.Now,
	}
}

// NewTransactionRepositoryWithWAL restaura o estado a partir do WAL e passa a gravar nele.
func NewTransactionRepositoryWithWAL(wal *WAL) (*TransactionRepository, error) {
	repo := NewTransactionRepository()
	err := wal.ReadAll(func(raw json.RawMessage) error {
		var entry walEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return fmt.Errorf("failed to decode wal entry: %w", err)
		}
		repo.apply(entry.AccountID, entry.toRecord())
		return nil
	})
	if err != nil {
		return nil, err
	}
	repo.wal = wal
	return repo, nil
}

// WithClock troca a fonte de tempo (útil em testes).
func (r *TransactionRepository) WithClock(now func() time.Time) *TransactionRepository {
	r.now = now
	return r
}

func (r *TransactionRepository) Create(ctx context.Context, accountID string, draft domain.Draft) (*domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	createdAt := r.now().UTC()
	amount := draft.Amount
	record := domain.Record{
		ID:        uuid.NewString(),
		Type:      string(draft.Type),
		Amount:    &amount,
		Title:     draft.Title,
		CreatedAt: &createdAt,
		Sequence:  r.sequence + 1,
	}

	// WAL primeiro (caminho crítico), depois memória
	if r.wal != nil {
		if err := r.wal.Write(newWALEntry(accountID, record)); err != nil {
			return nil, fmt.Errorf("failed to write wal: %w", err)
		}
	}
	r.apply(accountID, record)
	r.notify(accountID)

	tx, err := record.Parse()
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Record(nil), r.records[accountID]...), nil
}

// Seed insere registros crus sem validação, simulando dados legados do store.
func (r *TransactionRepository) Seed(accountID string, records ...domain.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range records {
		r.apply(accountID, record)
	}
	r.notify(accountID)
}

// Count devolve quantos registros a conta tem, válidos ou não.
func (r *TransactionRepository) Count(accountID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records[accountID])
}

// Watch implementa gateway.ChangeFeed com broadcast em processo.
func (r *TransactionRepository) Watch(ctx context.Context, accountID string) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)

	r.mu.Lock()
	if r.watchers[accountID] == nil {
		r.watchers[accountID] = make(map[chan struct{}]struct{})
	}
	r.watchers[accountID][ch] = struct{}{}
	r.mu.Unlock()

	go func() {
		<-ctx.Done()
		r.mu.Lock()
		delete(r.watchers[accountID], ch)
		close(ch)
		r.mu.Unlock()
	}()
	return ch, nil
}

// apply e notify assumem r.mu travado.
func (r *TransactionRepository) apply(accountID string, record domain.Record) {
	if record.Sequence > r.sequence {
		r.sequence = record.Sequence
	}
	r.records[accountID] = append(r.records[accountID], record)
}

func (r *TransactionRepository) notify(accountID string) {
	for ch := range r.watchers[accountID] {
		// Sinais se acumulam em um só: quem assina relê tudo de qualquer forma
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func newWALEntry(accountID string, record domain.Record) walEntry {
	entry := walEntry{
		AccountID: accountID,
		ID:        record.ID,
		Type:      record.Type,
		Title:     record.Title,
		Sequence:  record.Sequence,
	}
	if record.Amount != nil {
		entry.Amount = record.Amount.String()
	}
	if record.CreatedAt != nil {
		entry.CreatedAt = *record.CreatedAt
	}
	return entry
}

func (e walEntry) toRecord() domain.Record {
	record := domain.Record{
		ID:       e.ID,
		Type:     e.Type,
		Title:    e.Title,
		Sequence: e.Sequence,
	}
	if amount, err := decimal.NewFromString(e.Amount); err == nil {
		record.Amount = &amount
	}
	if !e.CreatedAt.IsZero() {
		createdAt := e.CreatedAt
		record.CreatedAt = &createdAt
	}
	return record
}

var (
	_ gateway.TransactionRepository = (*TransactionRepository)(nil)
	_ gateway.ChangeFeed            = (*TransactionRepository)(nil)
)
