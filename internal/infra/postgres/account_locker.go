package postgres

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/samuelasefa34/Sheger-pay/internal/domain"
	"github.com/samuelasefa34/Sheger-pay/internal/gateway"
)

// AccountLocker usa advisory locks de sessão do Postgres.
// O lock pertence à conexão, então ela fica reservada até o unlock.
type AccountLocker struct {
	pool         *pgxpool.Pool
	pollInterval time.Duration
}

func NewAccountLocker(pool *pgxpool.Pool) *AccountLocker {
	return &AccountLocker{pool: pool, pollInterval: 25 * time.Millisecond}
}

func (l *AccountLocker) Lock(ctx context.Context, accountID string) (func(), error) {
	// A primeira tentativa roda mesmo com ctx expirado (LockWait = 0).
	attemptCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()

	conn, err := l.pool.Acquire(attemptCtx)
	if err != nil {
		return nil, domain.StoreError("acquire lock connection", err)
	}

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	queryCtx := attemptCtx
	for {
		var acquired bool
		err := conn.QueryRow(queryCtx, "SELECT pg_try_advisory_lock(hashtextextended($1, 0))", accountID).Scan(&acquired)
		if err != nil {
			conn.Release()
			if ctx.Err() != nil {
				return nil, domain.ErrBusy
			}
			return nil, domain.StoreError("acquire account lock", err)
		}
		if acquired {
			break
		}
		select {
		case <-ctx.Done():
			conn.Release()
			return nil, domain.ErrBusy
		case <-ticker.C:
		}
		queryCtx = ctx
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			unlockCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if _, err := conn.Exec(unlockCtx, "SELECT pg_advisory_unlock(hashtextextended($1, 0))", accountID); err != nil {
				// Sem unlock a conexão não pode voltar ao pool com o lock preso
				log.Error().Err(err).Str("account_id", accountID).Msg("Falha ao liberar advisory lock")
				_ = conn.Conn().Close(unlockCtx)
			}
			conn.Release()
		})
	}, nil
}

var _ gateway.AccountLocker = (*AccountLocker)(nil)
