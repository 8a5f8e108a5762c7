package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/samuelasefa34/Sheger-pay/internal/gateway"
)

const (
	responsePrefix = "idempotency:"
	inFlightPrefix = "idempotency:inflight:"
)

type IdempotencyRepository struct {
	client *redis.Client
}

func NewIdempotencyRepository(client *redis.Client) *IdempotencyRepository {
	return &IdempotencyRepository{client: client}
}

func (r *IdempotencyRepository) Get(ctx context.Context, key string) (*gateway.CachedResponse, error) {
	val, err := r.client.Get(ctx, responsePrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // Não encontrado (cache miss)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get idempotency key: %w", err)
	}

	var resp gateway.CachedResponse
	if err := json.Unmarshal(val, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached response: %w", err)
	}

	return &resp, nil
}

// Reserve marca a chave como em processamento. false significa que outra
// requisição com a mesma chave ainda não terminou (toque duplo).
func (r *IdempotencyRepository) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, inFlightPrefix+key, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	return ok, nil
}

// Release remove a reserva sem gravar resposta, permitindo retry.
func (r *IdempotencyRepository) Release(ctx context.Context, key string) error {
	return r.client.Del(ctx, inFlightPrefix+key).Err()
}

// Save armazena a resposta e solta a reserva na mesma ida ao Redis.
func (r *IdempotencyRepository) Save(ctx context.Context, key string, response gateway.CachedResponse, ttl time.Duration) error {
	bytes, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, responsePrefix+key, bytes, ttl)
	pipe.Del(ctx, inFlightPrefix+key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save idempotency key: %w", err)
	}
	return nil
}

var _ gateway.IdempotencyRepository = (*IdempotencyRepository)(nil)
