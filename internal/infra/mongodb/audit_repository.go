package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/samuelasefa34/Sheger-pay/internal/domain"
)

// AuditLog representa o documento que será salvo no Mongo.
// Usamos tags 'bson' em vez de 'json'.
type AuditLog struct {
	ID            string     `bson:"_id,omitempty"`
	TransactionID string     `bson:"transaction_id"`
	AccountID     string     `bson:"account_id"`
	Type          string     `bson:"type"`
	Amount        string     `bson:"amount"`
	Title         string     `bson:"title"`
	Status        string     `bson:"status"`
	CreatedAt     *time.Time `bson:"created_at,omitempty"`
	ProcessedAt   time.Time  `bson:"processed_at"`
}

// NewAuditLog converte o evento do RabbitMQ no documento de auditoria.
// O _id é o ID da transação: uma reentrega gera o mesmo documento.
func NewAuditLog(event domain.TransactionEvent) AuditLog {
	return AuditLog{
		ID:            event.TransactionID,
		TransactionID: event.TransactionID,
		AccountID:     event.AccountID,
		Type:          event.Type,
		Amount:        event.Amount,
		Title:         event.Title,
		Status:        event.Status,
		CreatedAt:     event.CreatedAt,
	}
}

type AuditRepository struct {
	collection *mongo.Collection
}

func NewAuditRepository(client *mongo.Client, dbName string) *AuditRepository {
	// Cria/Obtém a collection "audit_logs"
	collection := client.Database(dbName).Collection("audit_logs")
	return &AuditRepository{collection: collection}
}

func (r *AuditRepository) Save(ctx context.Context, log AuditLog) error {
	// Adiciona timestamp de processamento
	log.ProcessedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, log)
	if mongo.IsDuplicateKeyError(err) {
		// Reentrega de uma mensagem já gravada (ack perdido)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}
