package usecase

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/samuelasefa34/Sheger-pay/internal/domain"
	"github.com/samuelasefa34/Sheger-pay/internal/gateway"
)

type GetLedgerUseCase struct {
	transactionRepository gateway.TransactionRepository
	options               Options
}

func NewGetLedger(transactionRepo gateway.TransactionRepository, options Options) *GetLedgerUseCase {
	return &GetLedgerUseCase{
		transactionRepository: transactionRepo,
		options:               options,
	}
}

// Execute lê o conjunto completo da conta e recalcula saldo e ordenação.
// Não usa lock: é uma derivação pura sobre o snapshot atual do store.
func (u *GetLedgerUseCase) Execute(ctx context.Context, account domain.Account) (*domain.Ledger, error) {
	if account.ID == "" {
		return nil, domain.ErrAccountRequired
	}
	return readLedger(ctx, u.transactionRepository, u.options, account.ID)
}

// Balance é um atalho para quem só precisa do número.
func (u *GetLedgerUseCase) Balance(ctx context.Context, account domain.Account) (decimal.Decimal, error) {
	ledger, err := u.Execute(ctx, account)
	if err != nil {
		return decimal.Zero, err
	}
	return ledger.Balance, nil
}

func readLedger(ctx context.Context, repo gateway.TransactionRepository, options Options, accountID string) (*domain.Ledger, error) {
	storeCtx, cancel := context.WithTimeout(ctx, options.storeTimeout())
	defer cancel()

	records, err := repo.ListByAccount(storeCtx, accountID)
	if err != nil {
		return nil, domain.StoreError("list transactions", err)
	}

	ledger := domain.NewLedger(accountID, records)
	for _, skipped := range ledger.Skipped {
		log.Warn().
			Str("account_id", accountID).
			Str("record_id", skipped.RecordID).
			Str("reason", skipped.Reason).
			Msg("Registro malformado excluído do saldo")
	}
	return ledger, nil
}
