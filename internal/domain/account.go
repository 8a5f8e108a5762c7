package domain

import "strings"

// BootstrapAmount e BootstrapTitle definem o crédito de boas-vindas de contas novas.
const (
	BootstrapAmount = 1000
	BootstrapTitle  = "Welcome Bonus"
	TopUpTitle      = "Telebirr Top-Up"
)

// Account identifica o dono de uma lista de transações.
// O ID vem do provedor de identidade externo.
type Account struct {
	ID          string
	DisplayName string
}

func NewAccount(id, displayName string) (Account, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Account{}, ErrAccountRequired
	}
	return Account{ID: id, DisplayName: strings.TrimSpace(displayName)}, nil
}

// Name falls back to a generic label like the dashboard greeting does.
func (a Account) Name() string {
	if a.DisplayName == "" {
		return "User"
	}
	return a.DisplayName
}

// SendTitle builds the conventional label of a withdrawal to a recipient.
func SendTitle(recipient string) string {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return ""
	}
	return "Sent to " + recipient
}
