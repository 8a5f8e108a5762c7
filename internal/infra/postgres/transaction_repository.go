package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/samuelasefa34/Sheger-pay/internal/domain"
	"github.com/samuelasefa34/Sheger-pay/internal/gateway"
)

//go:embed schema.sql
var schema string

const (
	insertTransaction = `
INSERT INTO transactions (account_id, type, amount, title)
VALUES ($1, $2, $3::numeric, $4)
RETURNING id::text, type, amount::text, title, created_at, seq`

	listTransactions = `
SELECT id::text, type, amount::text, title, created_at, seq
FROM transactions
WHERE account_id = $1`
)

// TransactionRepository implementa gateway.TransactionRepository usando pgx/v5.
// id, seq e created_at são atribuídos pelo banco.
type TransactionRepository struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{db: pool}
}

// Migrate cria a tabela e o índice se ainda não existirem.
func (r *TransactionRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (r *TransactionRepository) Create(ctx context.Context, accountID string, draft domain.Draft) (*domain.Transaction, error) {
	row := r.db.QueryRow(ctx, insertTransaction, accountID, string(draft.Type), draft.Amount.String(), draft.Title)
	record, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	tx, err := record.Parse()
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string) ([]domain.Record, error) {
	rows, err := r.db.Query(ctx, listTransactions, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Record, error) {
		return scanRecord(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan transactions: %w", err)
	}
	return records, nil
}

// Mapper: pgtype -> domain.Record
func scanRecord(row pgx.Row) (domain.Record, error) {
	var (
		id, kind, title pgtype.Text
		amount          pgtype.Text
		createdAt       pgtype.Timestamptz
		seq             pgtype.Int8
	)
	if err := row.Scan(&id, &kind, &amount, &title, &createdAt, &seq); err != nil {
		return domain.Record{}, err
	}

	record := domain.Record{
		ID:       id.String,
		Type:     kind.String,
		Title:    title.String,
		Sequence: seq.Int64,
	}
	if amount.Valid {
		if d, err := decimal.NewFromString(amount.String); err == nil {
			record.Amount = &d
		}
	}
	if createdAt.Valid {
		t := createdAt.Time
		record.CreatedAt = &t
	}
	return record, nil
}

var _ gateway.TransactionRepository = (*TransactionRepository)(nil)
