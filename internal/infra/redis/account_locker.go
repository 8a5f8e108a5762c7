package redis

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/samuelasefa34/Sheger-pay/internal/domain"
	"github.com/samuelasefa34/Sheger-pay/internal/gateway"
)

// releaseScript só apaga a chave se o token ainda for o nosso:
// um lock expirado e readquirido por outro processo não é liberado por engano.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// AccountLocker é um lock distribuído por conta (SET NX PX + token),
// para quando várias instâncias da API gravam na mesma conta.
type AccountLocker struct {
	client       *redis.Client
	ttl          time.Duration
	pollInterval time.Duration
}

// NewAccountLocker: ttl precisa ser maior que o tempo máximo de uma gravação.
func NewAccountLocker(client *redis.Client, ttl time.Duration) *AccountLocker {
	return &AccountLocker{
		client:       client,
		ttl:          ttl,
		pollInterval: 25 * time.Millisecond,
	}
}

func (l *AccountLocker) Lock(ctx context.Context, accountID string) (func(), error) {
	key := "ledger:lock:" + accountID
	token := uuid.NewString()

	// A primeira tentativa roda mesmo com ctx expirado (LockWait = 0).
	attemptCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	acquired, err := l.client.SetNX(attemptCtx, key, token, l.ttl).Result()
	cancel()
	if err != nil {
		return nil, domain.StoreError("acquire account lock", err)
	}

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()
	for !acquired {
		select {
		case <-ctx.Done():
			return nil, domain.ErrBusy
		case <-ticker.C:
		}
		acquired, err = l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, domain.ErrBusy
			}
			return nil, domain.StoreError("acquire account lock", err)
		}
	}

	return l.unlocker(key, token), nil
}

func (l *AccountLocker) unlocker(key, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
				// O TTL libera a chave de qualquer forma
				log.Error().Err(err).Str("key", key).Dur("ttl", l.ttl).Msg("Falha ao liberar lock da conta")
			}
		})
	}
}

var _ gateway.AccountLocker = (*AccountLocker)(nil)
