package gateway

import (
	"context"
	"time"
)

// Representa o que salvamos no Redis
type CachedResponse struct {
	StatusCode int
	Body       []byte
	Headers    map[string][]string
}

type IdempotencyRepository interface {
	// Get retorna a resposta cacheada se existir; (nil, nil) em cache miss.
	Get(ctx context.Context, key string) (*CachedResponse, error)

	// Reserve marca a chave como em processamento; false se já estiver reservada.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release desfaz a reserva sem gravar nada (respostas 5xx podem ser repetidas).
	Release(ctx context.Context, key string) error

	// Save armazena a resposta com um TTL (Time To Live) e solta a reserva.
	Save(ctx context.Context, key string, response CachedResponse, ttl time.Duration) error
}
