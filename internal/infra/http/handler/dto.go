package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/samuelasefa34/Sheger-pay/internal/domain"
)

// DTOs (Data Transfer Objects) para Request/Response.
// Valores monetários trafegam como string decimal ("12.50"); números JSON também são aceitos.

type CreateTransactionRequest struct {
	Type   string              `json:"type"`
	Amount decimal.NullDecimal `json:"amount"`
	Title  string              `json:"title"`
}

type SendMoneyRequest struct {
	Amount    decimal.NullDecimal `json:"amount"`
	Recipient string              `json:"recipient"`
}

type TopUpRequest struct {
	Amount decimal.NullDecimal `json:"amount"`
}

type TransactionResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Title     string          `json:"title"`
	CreatedAt *time.Time      `json:"created_at"`
}

type LedgerResponse struct {
	AccountID    string                `json:"account_id"`
	Greeting     string                `json:"greeting"`
	Balance      decimal.Decimal       `json:"balance"`
	Transactions []TransactionResponse `json:"transactions"`
	Skipped      int                   `json:"skipped"`
}

type BalanceResponse struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

type MutationResponse struct {
	State domain.MutationState `json:"state"`
}

func newTransactionResponse(tx *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:        tx.ID,
		Type:      string(tx.Type),
		Amount:    tx.Amount,
		Title:     tx.Title,
		CreatedAt: tx.CreatedAt,
	}
}

func newLedgerResponse(account domain.Account, ledger *domain.Ledger) LedgerResponse {
	transactions := make([]TransactionResponse, 0, ledger.Len())
	for i := range ledger.Transactions {
		transactions = append(transactions, newTransactionResponse(&ledger.Transactions[i]))
	}
	return LedgerResponse{
		AccountID:    account.ID,
		Greeting:     "Hello, " + account.Name(),
		Balance:      ledger.Balance,
		Transactions: transactions,
		Skipped:      len(ledger.Skipped),
	}
}
