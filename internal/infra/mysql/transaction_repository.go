package mysql

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/samuelasefa34/Sheger-pay/internal/domain"
	"github.com/samuelasefa34/Sheger-pay/internal/gateway"
)

// sqlTransaction mapeia a tabela transactions.
// O ID auto-increment serve também como ordem de inserção.
type sqlTransaction struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	AccountID string    `gorm:"size:128;index;not null"`
	Type      string    `gorm:"size:16;not null"`
	Amount    string    `gorm:"type:decimal(20,4);not null"`
	Title     string    `gorm:"size:255;not null"`
	CreatedAt time.Time `gorm:"type:datetime(3);autoCreateTime"`
}

func (*sqlTransaction) TableName() string {
	return "transactions"
}

// TransactionRepository implementa gateway.TransactionRepository com GORM.
type TransactionRepository struct {
	client *Client
}

func NewTransactionRepository(client *Client) *TransactionRepository {
	return &TransactionRepository{client: client}
}

func (r *TransactionRepository) Migrate(ctx context.Context) error {
	if err := r.client.DB().WithContext(ctx).AutoMigrate(&sqlTransaction{}); err != nil {
		return fmt.Errorf("failed to migrate transactions: %w", err)
	}
	return nil
}

func (r *TransactionRepository) Create(ctx context.Context, accountID string, draft domain.Draft) (*domain.Transaction, error) {
	row := sqlTransaction{
		AccountID: accountID,
		Type:      string(draft.Type),
		Amount:    draft.Amount.String(),
		Title:     draft.Title,
	}
	if err := r.client.DB().WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	tx, err := row.toRecord().Parse()
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string) ([]domain.Record, error) {
	var rows []sqlTransaction
	err := r.client.DB().WithContext(ctx).
		Where("account_id = ?", accountID).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	records := make([]domain.Record, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].toRecord())
	}
	return records, nil
}

func (t *sqlTransaction) toRecord() domain.Record {
	record := domain.Record{
		ID:       strconv.FormatInt(t.ID, 10),
		Type:     t.Type,
		Title:    t.Title,
		Sequence: t.ID,
	}
	if amount, err := decimal.NewFromString(t.Amount); err == nil {
		record.Amount = &amount
	}
	if !t.CreatedAt.IsZero() {
		createdAt := t.CreatedAt.UTC()
		record.CreatedAt = &createdAt
	}
	return record
}

var _ gateway.TransactionRepository = (*TransactionRepository)(nil)
