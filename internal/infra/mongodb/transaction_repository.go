package mongodb

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/samuelasefa34/Sheger-pay/internal/domain"
	"github.com/samuelasefa34/Sheger-pay/internal/gateway"
)

const transactionsCollection = "transactions"

// TransactionRepository é o Account Store principal: um documento por transação.
//
//	{ _id: ObjectID, account_id, type, amount: Decimal128, title, created_at: Date }
type TransactionRepository struct {
	collection *mongo.Collection
}

func NewTransactionRepository(client *mongo.Client, dbName string) *TransactionRepository {
	collection := client.Database(dbName).Collection(transactionsCollection)
	return &TransactionRepository{collection: collection}
}

// EnsureIndexes cria o índice por conta usado pelo ListByAccount.
func (r *TransactionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "account_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create transactions index: %w", err)
	}
	return nil
}

// Create usa upsert com $currentDate para que o created_at seja o relógio do servidor,
// e devolve o documento já gravado.
func (r *TransactionRepository) Create(ctx context.Context, accountID string, draft domain.Draft) (*domain.Transaction, error) {
	amount, err := bson.ParseDecimal128(draft.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("failed to encode amount: %w", err)
	}

	filter := bson.D{{Key: "_id", Value: bson.NewObjectID()}}
	update := bson.D{
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "account_id", Value: accountID},
			{Key: "type", Value: string(draft.Type)},
			{Key: "amount", Value: amount},
			{Key: "title", Value: draft.Title},
		}},
		{Key: "$currentDate", Value: bson.D{{Key: "created_at", Value: true}}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	raw, err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Raw()
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	tx, err := recordFromRaw(raw).Parse()
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// ListByAccount lê documento a documento como bson.Raw: um campo com tipo
// errado não derruba a consulta inteira, vira um registro malformado.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string) ([]domain.Record, error) {
	cursor, err := r.collection.Find(ctx, bson.D{{Key: "account_id", Value: accountID}})
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var records []domain.Record
	for cursor.Next(ctx) {
		records = append(records, recordFromRaw(cursor.Current))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return records, nil
}

func recordFromRaw(raw bson.Raw) domain.Record {
	var record domain.Record

	id := raw.Lookup("_id")
	if oid, ok := id.ObjectIDOK(); ok {
		record.ID = oid.Hex()
	} else if s, ok := id.StringValueOK(); ok {
		record.ID = s
	}

	record.Type, _ = raw.Lookup("type").StringValueOK()
	record.Title, _ = raw.Lookup("title").StringValueOK()
	record.Amount = amountFromRaw(raw.Lookup("amount"))
	record.CreatedAt = timeFromRaw(raw.Lookup("created_at"))
	return record
}

// amountFromRaw aceita os formatos que já existem no banco: Decimal128,
// números (documentos antigos gravados como double) e strings.
func amountFromRaw(v bson.RawValue) *decimal.Decimal {
	var (
		amount decimal.Decimal
		err    error
	)
	switch v.Type {
	case bson.TypeDecimal128:
		amount, err = decimal.NewFromString(v.Decimal128().String())
	case bson.TypeDouble:
		f := v.Double()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		amount = decimal.NewFromFloat(f)
	case bson.TypeInt32:
		amount = decimal.NewFromInt32(v.Int32())
	case bson.TypeInt64:
		amount = decimal.NewFromInt(v.Int64())
	case bson.TypeString:
		amount, err = decimal.NewFromString(v.StringValue())
	default:
		return nil
	}
	if err != nil {
		return nil
	}
	return &amount
}

// timeFromRaw devolve nil quando o timestamp ainda não existe.
func timeFromRaw(v bson.RawValue) *time.Time {
	var t time.Time
	switch v.Type {
	case bson.TypeDateTime:
		t = time.UnixMilli(v.DateTime()).UTC()
	case bson.TypeTimestamp:
		sec, _ := v.Timestamp()
		t = time.Unix(int64(sec), 0).UTC()
	default:
		return nil
	}
	return &t
}

var _ gateway.TransactionRepository = (*TransactionRepository)(nil)
