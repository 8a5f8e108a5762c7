package domain

import (
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Record é o formato "solto" devolvido pelo Account Store.
// Qualquer campo pode estar ausente; Parse decide se o registro é utilizável.
type Record struct {
	ID        string
	Type      string
	Amount    *decimal.Decimal
	Title     string
	CreatedAt *time.Time
	Sequence  int64
}

// Parse converte o registro em Transaction ou devolve um *MalformedRecordError.
func (r Record) Parse() (Transaction, error) {
	if r.ID == "" {
		return Transaction{}, &MalformedRecordError{Reason: "missing id"}
	}
	kind, err := ParseTransactionType(r.Type)
	if err != nil {
		return Transaction{}, &MalformedRecordError{RecordID: r.ID, Reason: "type " + strconv.Quote(r.Type) + " is out of domain"}
	}
	if r.Amount == nil {
		return Transaction{}, &MalformedRecordError{RecordID: r.ID, Reason: "missing amount"}
	}
	if !r.Amount.IsPositive() {
		return Transaction{}, &MalformedRecordError{RecordID: r.ID, Reason: "amount " + r.Amount.String() + " is not positive"}
	}
	if r.Title == "" {
		return Transaction{}, &MalformedRecordError{RecordID: r.ID, Reason: "missing title"}
	}
	return Transaction{
		ID:        r.ID,
		Type:      kind,
		Amount:    *r.Amount,
		Title:     r.Title,
		CreatedAt: r.CreatedAt,
		Sequence:  r.Sequence,
	}, nil
}

// ComputeBalance = Σ depósitos − Σ saques. Pura e independente da ordem.
func ComputeBalance(transactions []Transaction) decimal.Decimal {
	balance := decimal.Zero
	for _, t := range transactions {
		balance = balance.Add(t.Signed())
	}
	return balance
}

// SortForDisplay ordena do mais recente para o mais antigo.
// CreatedAt nil (timestamp pendente) conta como o mais recente; empates caem
// para Sequence e depois ID, ambos decrescentes, então a ordem é estável
// para o mesmo snapshot.
func SortForDisplay(transactions []Transaction) {
	sort.SliceStable(transactions, func(i, j int) bool {
		return newerThan(transactions[i], transactions[j])
	})
}

func newerThan(a, b Transaction) bool {
	switch {
	case a.CreatedAt == nil && b.CreatedAt != nil:
		return true
	case a.CreatedAt != nil && b.CreatedAt == nil:
		return false
	case a.CreatedAt != nil && b.CreatedAt != nil && !a.CreatedAt.Equal(*b.CreatedAt):
		return a.CreatedAt.After(*b.CreatedAt)
	}
	if a.Sequence != b.Sequence {
		return a.Sequence > b.Sequence
	}
	return a.ID > b.ID
}

// Ledger é a visão derivada de uma conta: sempre recalculada do conjunto completo.
type Ledger struct {
	AccountID    string
	Balance      decimal.Decimal
	Transactions []Transaction
	Skipped      []*MalformedRecordError
}

// NewLedger descarta registros malformados, ordena e calcula o saldo.
func NewLedger(accountID string, records []Record) *Ledger {
	ledger := &Ledger{
		AccountID:    accountID,
		Transactions: make([]Transaction, 0, len(records)),
	}
	for _, record := range records {
		tx, err := record.Parse()
		if err != nil {
			ledger.Skipped = append(ledger.Skipped, err.(*MalformedRecordError))
			continue
		}
		ledger.Transactions = append(ledger.Transactions, tx)
	}
	SortForDisplay(ledger.Transactions)
	ledger.Balance = ComputeBalance(ledger.Transactions)
	return ledger
}

// Len is the number of admitted transactions.
func (l *Ledger) Len() int {
	return len(l.Transactions)
}
