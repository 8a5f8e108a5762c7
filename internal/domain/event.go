package domain

import (
	"strings"
	"time"
)

const (
	LedgerExchange            = "ledger_events"
	TransactionCreatedRouting = "transaction.created"
)

// TransactionEvent é o JSON publicado depois de uma gravação bem-sucedida.
type TransactionEvent struct {
	TransactionID string     `json:"transaction_id"`
	AccountID     string     `json:"account_id"`
	Type          string     `json:"type"`
	Amount        string     `json:"amount"`
	Title         string     `json:"title"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	Status        string     `json:"status"`
}

func NewTransactionEvent(accountID string, tx *Transaction) TransactionEvent {
	return TransactionEvent{
		TransactionID: tx.ID,
		AccountID:     accountID,
		Type:          string(tx.Type),
		Amount:        tx.Amount.String(),
		Title:         tx.Title,
		CreatedAt:     tx.CreatedAt,
		Status:        "completed",
	}
}

// TransactionCreatedKey monta a routing key por conta. Pontos e curingas no ID
// quebrariam o casamento de tópicos, então são trocados por '_'.
func TransactionCreatedKey(accountID string) string {
	r := strings.NewReplacer(".", "_", "*", "_", "#", "_")
	return TransactionCreatedRouting + "." + r.Replace(accountID)
}
