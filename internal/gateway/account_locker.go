package gateway

import "context"

// AccountLocker garante no máximo uma gravação em voo por conta.
// Lock espera até ctx expirar; se não conseguir, devolve domain.ErrBusy.
// A função unlock devolvida é segura para chamar mais de uma vez.
type AccountLocker interface {
	Lock(ctx context.Context, accountID string) (unlock func(), err error)
}
