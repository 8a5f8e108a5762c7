package gateway

import (
	"context"

	"github.com/samuelasefa34/Sheger-pay/internal/domain"
)

// TransactionRepository é o contrato com o Account Store.
// O Usecase não sabe se é MongoDB, Postgres, MySQL ou memória.
type TransactionRepository interface {
	// Create grava exatamente um registro. O store atribui ID e CreatedAt.
	Create(ctx context.Context, accountID string, draft domain.Draft) (*domain.Transaction, error)

	// ListByAccount devolve todos os registros da conta, em qualquer ordem.
	// Registros malformados também voltam; quem filtra é o domínio.
	ListByAccount(ctx context.Context, accountID string) ([]domain.Record, error)
}
