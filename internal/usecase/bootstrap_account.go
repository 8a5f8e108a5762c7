package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/samuelasefa34/Sheger-pay/internal/domain"
)

// BootstrapAccountUseCase concede o crédito de boas-vindas a uma conta nova.
// Não é idempotente: o fluxo de criação de conta deve chamar uma única vez.
type BootstrapAccountUseCase struct {
	recordTransaction *RecordTransactionUseCase
}

func NewBootstrapAccount(recordTransaction *RecordTransactionUseCase) *BootstrapAccountUseCase {
	return &BootstrapAccountUseCase{recordTransaction: recordTransaction}
}

func (uc *BootstrapAccountUseCase) Execute(ctx context.Context, account domain.Account) (*domain.Transaction, error) {
	return uc.recordTransaction.Execute(ctx, RecordTransactionInput{
		Account: account,
		Type:    domain.TransactionTypeDeposit,
		Amount:  decimal.NewNullDecimal(decimal.NewFromInt(domain.BootstrapAmount)),
		Title:   domain.BootstrapTitle,
	})
}
