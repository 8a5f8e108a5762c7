package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount          = errors.New("transaction amount must be greater than zero with at most 4 decimal places")
	ErrInvalidTitle           = errors.New("transaction title must not be empty")
	ErrInvalidTransactionType = errors.New("transaction type must be deposit or withdrawal")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrBusy                   = errors.New("another transaction is in flight for this account")
	ErrStoreUnavailable       = errors.New("account store unavailable")
	ErrMalformedRecord        = errors.New("malformed transaction record")
	ErrAccountRequired        = errors.New("account identity is required")
)

// MalformedRecordError descreve um registro excluído do saldo e da listagem.
type MalformedRecordError struct {
	RecordID string
	Reason   string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrMalformedRecord, e.RecordID, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error {
	return ErrMalformedRecord
}

// StoreError wraps a failure of the Account Store so callers can match
// ErrStoreUnavailable while keeping the original cause reachable.
func StoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}

// Message returns the human-readable text shown to the user for each failure kind.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return "Enter an amount greater than zero with at most 4 decimal places"
	case errors.Is(err, ErrInvalidTitle):
		return "A description or recipient is required"
	case errors.Is(err, ErrInvalidTransactionType):
		return "Unknown transaction type"
	case errors.Is(err, ErrInsufficientFunds):
		return "Insufficient Balance"
	case errors.Is(err, ErrBusy):
		return "Another transaction is still processing, please wait"
	case errors.Is(err, ErrStoreUnavailable):
		return "Wallet service is unavailable, please try again"
	case errors.Is(err, ErrMalformedRecord):
		return "A transaction record could not be read"
	case errors.Is(err, ErrAccountRequired):
		return "Please sign in"
	default:
		return "Something went wrong"
	}
}
