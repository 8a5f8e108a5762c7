package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType é fechado: só existem depósitos e saques neste domínio.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
)

// Valid reports whether t belongs to the closed set of transaction kinds.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeDeposit || t == TransactionTypeWithdrawal
}

// ParseTransactionType converte o texto vindo do store ou da API.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrInvalidTransactionType
	}
	return t, nil
}

// Transaction é imutável depois de criada. ID, CreatedAt e Sequence vêm do store.
type Transaction struct {
	ID     string
	Type   TransactionType
	Amount decimal.Decimal
	Title  string
	// CreatedAt nil means the store has not resolved its server timestamp yet.
	CreatedAt *time.Time
	// Sequence is the store's insertion order when it has one, zero otherwise.
	Sequence int64
}

// Signed returns the amount with the direction carried by the type.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == TransactionTypeWithdrawal {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Draft é o que o chamador pede para gravar. Só NewDraft cria um Draft válido.
type Draft struct {
	Type   TransactionType
	Amount decimal.Decimal
	Title  string
}

// NewDraft validates the caller's input before any store interaction.
func NewDraft(kind TransactionType, amount decimal.NullDecimal, title string) (Draft, error) {
	if !kind.Valid() {
		return Draft{}, ErrInvalidTransactionType
	}
	if err := ValidateAmount(amount); err != nil {
		return Draft{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return Draft{}, ErrInvalidTitle
	}
	return Draft{Type: kind, Amount: amount.Decimal, Title: title}, nil
}

// AmountPrecision e AmountScale são os limites de NUMERIC(20, 4): os stores SQL
// usam exatamente esta coluna, então nenhum valor aceito aqui é arredondado lá.
const (
	AmountPrecision = 20
	AmountScale     = 4
)

var maxAmount = decimal.New(1, AmountPrecision-AmountScale)

// ValidateAmount rejects absent, zero and negative amounts, amounts with more
// than AmountScale decimal places and amounts that overflow the integer digits.
func ValidateAmount(amount decimal.NullDecimal) error {
	if !amount.Valid || !amount.Decimal.IsPositive() {
		return ErrInvalidAmount
	}
	if !amount.Decimal.Equal(amount.Decimal.Truncate(AmountScale)) {
		return ErrInvalidAmount
	}
	if amount.Decimal.GreaterThanOrEqual(maxAmount) {
		return ErrInvalidAmount
	}
	return nil
}
