package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/samuelasefa34/Sheger-pay/internal/domain"
	"github.com/samuelasefa34/Sheger-pay/internal/infra/memory"
)

func TestGetLedgerOrdersAndSkipsMalformed(t *testing.T) {
	store := memory.NewTransactionRepository()
	uc := NewGetLedger(store, DefaultOptions())

	at := func(sec int64) *time.Time {
		ts := time.Unix(sec, 0)
		return &ts
	}
	hundred := decimal.NewFromInt(100)
	ten := decimal.NewFromInt(10)
	store.Seed(abebe.ID,
		domain.Record{ID: "id3", Type: "deposit", Amount: &hundred, Title: "a", CreatedAt: at(3)},
		domain.Record{ID: "id1", Type: "deposit", Amount: &hundred, Title: "b", CreatedAt: at(1)},
		domain.Record{ID: "broken", Type: "bonus", Amount: &hundred, Title: "c", CreatedAt: at(4)},
		domain.Record{ID: "id2", Type: "withdrawal", Amount: &ten, Title: "d", CreatedAt: at(2)},
	)

	ledger, err := uc.Execute(context.Background(), abebe)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, tx := range ledger.Transactions {
		ids = append(ids, tx.ID)
	}
	if len(ids) != 3 || ids[0] != "id3" || ids[1] != "id2" || ids[2] != "id1" {
		t.Errorf("order = %v, want [id3 id2 id1]", ids)
	}
	if !ledger.Balance.Equal(decimal.NewFromInt(190)) {
		t.Errorf("Balance = %s, want 190", ledger.Balance)
	}
	if len(ledger.Skipped) != 1 || ledger.Skipped[0].RecordID != "broken" {
		t.Errorf("Skipped = %+v", ledger.Skipped)
	}
}

func TestGetLedgerRequiresAccount(t *testing.T) {
	uc := NewGetLedger(memory.NewTransactionRepository(), DefaultOptions())
	if _, err := uc.Execute(context.Background(), domain.Account{}); !errors.Is(err, domain.ErrAccountRequired) {
		t.Fatalf("error = %v, want ErrAccountRequired", err)
	}
}
