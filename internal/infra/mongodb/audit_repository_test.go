package mongodb

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/samuelasefa34/Sheger-pay/internal/domain"
)

func TestNewAuditLogIsKeyedByTransaction(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	event := domain.TransactionEvent{
		TransactionID: "tx-1",
		AccountID:     "user-1",
		Type:          "deposit",
		Amount:        "10",
		Title:         "Telebirr Top-Up",
		CreatedAt:     &created,
		Status:        "completed",
	}

	first := NewAuditLog(event)
	redelivered := NewAuditLog(event)
	if first.ID != "tx-1" || redelivered.ID != first.ID {
		t.Fatalf("IDs = %q / %q, want both tx-1", first.ID, redelivered.ID)
	}

	raw, err := bson.Marshal(first)
	if err != nil {
		t.Fatal(err)
	}
	if id, ok := bson.Raw(raw).Lookup("_id").StringValueOK(); !ok || id != "tx-1" {
		t.Errorf("_id = %q (ok=%v), want tx-1", id, ok)
	}
}
