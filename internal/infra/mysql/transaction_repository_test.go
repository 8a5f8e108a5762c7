package mysql

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/samuelasefa34/Sheger-pay/internal/domain"
)

func TestSQLTransactionToRecord(t *testing.T) {
	created := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	row := sqlTransaction{ID: 42, AccountID: "acc", Type: "deposit", Amount: "1000.0000", Title: "Welcome Bonus", CreatedAt: created}

	tx, err := row.toRecord().Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if tx.ID != "42" || tx.Sequence != 42 || tx.Amount.String() != "1000" {
		t.Errorf("tx = %+v", tx)
	}
	if !tx.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v", tx.CreatedAt)
	}

	broken := sqlTransaction{ID: 43, Type: "deposit", Amount: "not-a-number", Title: "x"}
	if _, err := broken.toRecord().Parse(); !errors.Is(err, domain.ErrMalformedRecord) {
		t.Errorf("Parse() error = %v, want ErrMalformedRecord", err)
	}
}

func TestConfigDSN(t *testing.T) {
	cfg := Config{Host: "db", User: "ledger", Password: "secret", DBName: "sheger"}.WithDefaults()
	want := "ledger:secret@tcp(db:3306)/sheger?charset=utf8mb4&parseTime=True&loc=UTC"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
	if cfg.MaxOpenConns != 100 || cfg.ConnMaxLifetime != 30*time.Minute {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestAmountColumnMatchesDomainLimits(t *testing.T) {
	field, ok := reflect.TypeOf(sqlTransaction{}).FieldByName("Amount")
	if !ok {
		t.Fatal("sqlTransaction has no Amount field")
	}
	want := fmt.Sprintf("type:decimal(%d,%d)", domain.AmountPrecision, domain.AmountScale)
	if tag := field.Tag.Get("gorm"); !strings.Contains(tag, want) {
		t.Fatalf("amount column tag = %q, want %q", tag, want)
	}
}
