package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/samuelasefa34/Sheger-pay/internal/domain"
	"github.com/samuelasefa34/Sheger-pay/internal/gateway"
	"github.com/samuelasefa34/Sheger-pay/internal/infra/memory"
)

var abebe = domain.Account{ID: "user-1", DisplayName: "Abebe"}

func amount(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

type fixture struct {
	store     *memory.TransactionRepository
	record    *RecordTransactionUseCase
	bootstrap *BootstrapAccountUseCase
	ledger    *GetLedgerUseCase
	publisher *recordingPublisher
}

func newFixture(repo gateway.TransactionRepository, store *memory.TransactionRepository, options Options) *fixture {
	publisher := &recordingPublisher{}
	record := NewRecordTransaction(repo, memory.NewAccountLocker(), publisher, NewMutationTracker(), options)
	return &fixture{
		store:     store,
		record:    record,
		bootstrap: NewBootstrapAccount(record),
		ledger:    NewGetLedger(repo, options),
		publisher: publisher,
	}
}

func newMemoryFixture() *fixture {
	store := memory.NewTransactionRepository()
	return newFixture(store, store, DefaultOptions())
}

func (f *fixture) balance(t *testing.T) decimal.Decimal {
	t.Helper()
	balance, err := f.ledger.Balance(context.Background(), abebe)
	if err != nil {
		t.Fatalf("Balance() error = %v", err)
	}
	return balance
}

func TestBootstrapSendAndOverdraw(t *testing.T) {
	f := newMemoryFixture()
	ctx := context.Background()

	if _, err := f.bootstrap.Execute(ctx, abebe); err != nil {
		t.Fatalf("bootstrap error = %v", err)
	}
	if got := f.balance(t); !got.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("balance after bootstrap = %s, want 1000", got)
	}

	sent, err := f.record.SendMoney(ctx, abebe, amount(300), "Abebe")
	if err != nil {
		t.Fatalf("SendMoney(300) error = %v", err)
	}
	if sent.Title != "Sent to Abebe" || sent.Type != domain.TransactionTypeWithdrawal {
		t.Errorf("sent = %+v", sent)
	}
	if got := f.balance(t); !got.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("balance after send = %s, want 700", got)
	}
	if n := f.store.Count(abebe.ID); n != 2 {
		t.Fatalf("count = %d, want 2", n)
	}

	_, err = f.record.Execute(ctx, RecordTransactionInput{
		Account: abebe,
		Type:    domain.TransactionTypeWithdrawal,
		Amount:  amount(800),
		Title:   "Sent to X",
	})
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("overdraw error = %v, want ErrInsufficientFunds", err)
	}
	if got := f.balance(t); !got.Equal(decimal.NewFromInt(700)) {
		t.Errorf("balance after rejected send = %s, want 700", got)
	}
	if n := f.store.Count(abebe.ID); n != 2 {
		t.Errorf("count after rejected send = %d, want 2", n)
	}
	if state := f.record.State(abebe.ID); state != domain.MutationFailed {
		t.Errorf("state = %s, want %s", state, domain.MutationFailed)
	}
	if f.publisher.count() != 2 {
		t.Errorf("published %d events, want 2", f.publisher.count())
	}
}

func TestDepositIncreasesBalanceByAmount(t *testing.T) {
	f := newMemoryFixture()
	ctx := context.Background()

	for _, v := range []string{"1", "0.5", "250.25"} {
		before := f.balance(t)
		value := decimal.RequireFromString(v)
		if _, err := f.record.TopUp(ctx, abebe, decimal.NewNullDecimal(value)); err != nil {
			t.Fatalf("TopUp(%s) error = %v", v, err)
		}
		if got := f.balance(t); !got.Equal(before.Add(value)) {
			t.Errorf("balance = %s, want %s", got, before.Add(value))
		}
	}
	if state := f.record.State(abebe.ID); state != domain.MutationSucceeded {
		t.Errorf("state = %s, want success", state)
	}
}

func TestInvalidInputNeverTouchesStore(t *testing.T) {
	repo := &failingRepository{}
	f := newFixture(repo, nil, DefaultOptions())
	ctx := context.Background()

	tests := []struct {
		name    string
		input   RecordTransactionInput
		wantErr error
	}{
		{"zero deposit", RecordTransactionInput{Account: abebe, Type: domain.TransactionTypeDeposit, Amount: amount(0), Title: "x"}, domain.ErrInvalidAmount},
		{"negative withdrawal", RecordTransactionInput{Account: abebe, Type: domain.TransactionTypeWithdrawal, Amount: amount(-5), Title: "x"}, domain.ErrInvalidAmount},
		{"absent amount", RecordTransactionInput{Account: abebe, Type: domain.TransactionTypeDeposit, Title: "x"}, domain.ErrInvalidAmount},
		{"empty title", RecordTransactionInput{Account: abebe, Type: domain.TransactionTypeDeposit, Amount: amount(1)}, domain.ErrInvalidTitle},
		{"unknown type", RecordTransactionInput{Account: abebe, Type: "refund", Amount: amount(1), Title: "x"}, domain.ErrInvalidTransactionType},
		{"no account", RecordTransactionInput{Type: domain.TransactionTypeDeposit, Amount: amount(1), Title: "x"}, domain.ErrAccountRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.record.Execute(ctx, tt.input); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Execute() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if repo.creates != 0 {
		t.Errorf("store written %d times", repo.creates)
	}

	if _, err := f.record.SendMoney(ctx, abebe, amount(1), "  "); !errors.Is(err, domain.ErrInvalidTitle) {
		t.Errorf("SendMoney without recipient error = %v, want ErrInvalidTitle", err)
	}
}

func TestStoreFailuresAreSurfaced(t *testing.T) {
	ctx := context.Background()

	t.Run("create fails", func(t *testing.T) {
		f := newFixture(&failingRepository{createErr: errConnectionRefused}, nil, DefaultOptions())
		_, err := f.record.TopUp(ctx, abebe, amount(10))
		if !errors.Is(err, domain.ErrStoreUnavailable) || !errors.Is(err, errConnectionRefused) {
			t.Fatalf("error = %v, want ErrStoreUnavailable wrapping cause", err)
		}
		if f.publisher.count() != 0 {
			t.Error("event published for a failed write")
		}
		if state := f.record.State(abebe.ID); state != domain.MutationFailed {
			t.Errorf("state = %s, want idle-with-error", state)
		}
	})

	t.Run("balance read fails", func(t *testing.T) {
		repo := &failingRepository{listErr: errConnectionRefused}
		f := newFixture(repo, nil, DefaultOptions())
		_, err := f.record.SendMoney(ctx, abebe, amount(10), "X")
		if !errors.Is(err, domain.ErrStoreUnavailable) {
			t.Fatalf("error = %v, want ErrStoreUnavailable", err)
		}
		if repo.creates != 0 {
			t.Error("write attempted after failed balance read")
		}
	})

	t.Run("timeout", func(t *testing.T) {
		store := memory.NewTransactionRepository()
		repo := &slowRepository{TransactionRepository: store, delay: time.Second}
		f := newFixture(repo, store, Options{StoreTimeout: 10 * time.Millisecond, LockWait: time.Second})
		_, err := f.record.TopUp(ctx, abebe, amount(10))
		if !errors.Is(err, domain.ErrStoreUnavailable) || !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("error = %v, want ErrStoreUnavailable from deadline", err)
		}
		if store.Count(abebe.ID) != 0 {
			t.Error("timed out write reached the store")
		}
	})
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	f := newMemoryFixture()
	f.publisher.err = errConnectionRefused

	created, err := f.record.TopUp(context.Background(), abebe, amount(10))
	if err != nil {
		t.Fatalf("TopUp() error = %v", err)
	}
	event, ok := f.publisher.events[0].body.(domain.TransactionEvent)
	if !ok {
		t.Fatalf("event body type %T", f.publisher.events[0].body)
	}
	if event.TransactionID != created.ID || event.Amount != "10" || event.AccountID != abebe.ID {
		t.Errorf("event = %+v", event)
	}
	if f.publisher.events[0].routingKey != "transaction.created.user-1" {
		t.Errorf("routing key = %q", f.publisher.events[0].routingKey)
	}
}

func TestBusyWhenLockHeld(t *testing.T) {
	store := memory.NewTransactionRepository()
	locker := memory.NewAccountLocker()
	record := NewRecordTransaction(store, locker, nil, nil, Options{LockWait: 0})

	unlock, err := locker.Lock(context.Background(), abebe.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer unlock()

	if _, err := record.TopUp(context.Background(), abebe, amount(5)); !errors.Is(err, domain.ErrBusy) {
		t.Fatalf("error = %v, want ErrBusy", err)
	}
	if store.Count(abebe.ID) != 0 {
		t.Error("busy call wrote to the store")
	}
}

func TestConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	for _, lockWait := range []time.Duration{0, 2 * time.Second} {
		t.Run(lockWait.String(), func(t *testing.T) {
			store := memory.NewTransactionRepository()
			repo := &slowRepository{TransactionRepository: store, delay: 20 * time.Millisecond}
			f := newFixture(repo, store, Options{StoreTimeout: time.Second, LockWait: lockWait})
			ctx := context.Background()

			if _, err := f.record.TopUp(ctx, abebe, amount(100)); err != nil {
				t.Fatal(err)
			}

			const callers = 2
			errs := make([]error, callers)
			var wg sync.WaitGroup
			start := make(chan struct{})
			for i := 0; i < callers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					<-start
					_, errs[i] = f.record.SendMoney(ctx, abebe, amount(100), "X")
				}(i)
			}
			close(start)
			wg.Wait()

			successes := 0
			for _, err := range errs {
				switch {
				case err == nil:
					successes++
				case errors.Is(err, domain.ErrInsufficientFunds), errors.Is(err, domain.ErrBusy):
				default:
					t.Errorf("unexpected error %v", err)
				}
			}
			if successes != 1 {
				t.Fatalf("successes = %d, want 1 (errors %v)", successes, errs)
			}
			if got := f.balance(t); !got.IsZero() {
				t.Errorf("balance = %s, want 0", got)
			}
		})
	}
}

func TestPublishRunsAfterLockRelease(t *testing.T) {
	store := memory.NewTransactionRepository()
	locker := memory.NewAccountLocker()
	publisher := &lockCheckingPublisher{locker: locker}
	record := NewRecordTransaction(store, locker, publisher, nil, DefaultOptions())

	if _, err := record.TopUp(context.Background(), abebe, amount(5)); err != nil {
		t.Fatalf("TopUp() error = %v", err)
	}
	if publisher.calls != 1 {
		t.Fatalf("publish calls = %d, want 1", publisher.calls)
	}
	if !publisher.acquired {
		t.Error("account lock still held while publishing")
	}
}
