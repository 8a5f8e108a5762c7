package mongodb

import (
	"errors"
	"math"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/samuelasefa34/Sheger-pay/internal/domain"
)

func mustRaw(t *testing.T, doc bson.D) bson.Raw {
	t.Helper()
	b, err := bson.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	return bson.Raw(b)
}

func TestRecordFromRaw(t *testing.T) {
	oid := bson.NewObjectID()
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	dec, err := bson.ParseDecimal128("300.25")
	if err != nil {
		t.Fatal(err)
	}

	tx, err := recordFromRaw(mustRaw(t, bson.D{
		{Key: "_id", Value: oid},
		{Key: "account_id", Value: "acc"},
		{Key: "type", Value: "withdrawal"},
		{Key: "amount", Value: dec},
		{Key: "title", Value: "Sent to Abebe"},
		{Key: "created_at", Value: created},
	})).Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if tx.ID != oid.Hex() || tx.Type != domain.TransactionTypeWithdrawal || tx.Amount.String() != "300.25" {
		t.Errorf("tx = %+v", tx)
	}
	if tx.CreatedAt == nil || !tx.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", tx.CreatedAt, created)
	}
}

func TestRecordFromRawLegacyAndBrokenDocuments(t *testing.T) {
	tests := []struct {
		name       string
		doc        bson.D
		wantAmount string
		malformed  bool
	}{
		{"double amount, pending date", bson.D{
			{Key: "_id", Value: "doc1"}, {Key: "type", Value: "deposit"},
			{Key: "amount", Value: 1000.0}, {Key: "title", Value: "Welcome Bonus"},
			{Key: "date", Value: nil},
		}, "1000", false},
		{"int amount", bson.D{
			{Key: "_id", Value: "doc2"}, {Key: "type", Value: "deposit"},
			{Key: "amount", Value: int32(15)}, {Key: "title", Value: "x"},
		}, "15", false},
		{"string amount", bson.D{
			{Key: "_id", Value: "doc3"}, {Key: "type", Value: "deposit"},
			{Key: "amount", Value: "12.5"}, {Key: "title", Value: "x"},
		}, "12.5", false},
		{"NaN amount", bson.D{
			{Key: "_id", Value: "doc4"}, {Key: "type", Value: "deposit"},
			{Key: "amount", Value: math.NaN()}, {Key: "title", Value: "x"},
		}, "", true},
		{"type has wrong bson type", bson.D{
			{Key: "_id", Value: "doc5"}, {Key: "type", Value: int32(1)},
			{Key: "amount", Value: 1.0}, {Key: "title", Value: "x"},
		}, "", true},
		{"missing title", bson.D{
			{Key: "_id", Value: "doc6"}, {Key: "type", Value: "deposit"},
			{Key: "amount", Value: 1.0},
		}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := recordFromRaw(mustRaw(t, tt.doc))
			tx, err := record.Parse()
			if tt.malformed {
				if !errors.Is(err, domain.ErrMalformedRecord) {
					t.Fatalf("Parse() error = %v, want ErrMalformedRecord", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if tx.Amount.String() != tt.wantAmount {
				t.Errorf("Amount = %s, want %s", tx.Amount, tt.wantAmount)
			}
			if tx.CreatedAt != nil {
				t.Errorf("CreatedAt = %v, want nil", tx.CreatedAt)
			}
		})
	}
}
