package middleware

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/samuelasefa34/Sheger-pay/internal/gateway"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	idempotencyTTL       = 24 * time.Hour
	inflightTTL          = time.Minute
)

// responseRecorder grava o que o handler escreve sem deixar de responder ao cliente.
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// replayableHeaders copia os headers da resposta original, menos os que
// valem só para a resposta em que foram gerados.
func replayableHeaders(h http.Header) map[string][]string {
	headers := make(map[string][]string, len(h))
	for name, values := range h.Clone() {
		switch name {
		case "Content-Length", "Date", "X-Idempotency-Hit":
			continue
		}
		headers[name] = values
	}
	return headers
}

// Idempotency repete a resposta gravada para o mesmo Idempotency-Key da mesma conta.
// Uma segunda requisição com a chave ainda em processamento recebe 409.
// Deve rodar depois do middleware Account.
func Idempotency(store gateway.IdempotencyRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyKeyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			if account, ok := AccountFrom(ctx); ok {
				key = account.ID + ":" + key
			}

			cached, err := store.Get(ctx, key)
			if err != nil {
				log.Error().Err(err).Msg("Falha ao buscar chave de idempotência")
				// Fail open: Redis fora do ar não derruba a API
				next.ServeHTTP(w, r)
				return
			}

			if cached != nil {
				log.Info().Str("key", key).Msg("Idempotency cache hit")
				for name, values := range cached.Headers {
					w.Header()[name] = append([]string(nil), values...)
				}
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Idempotency-Hit", "true")
				w.WriteHeader(cached.StatusCode)
				if _, err := w.Write(cached.Body); err != nil {
					log.Error().Err(err).Msg("Falha ao escrever resposta cacheada")
				}
				return
			}

			reserved, err := store.Reserve(ctx, key, inflightTTL)
			if err != nil {
				log.Error().Err(err).Msg("Falha ao reservar chave de idempotência")
				next.ServeHTTP(w, r)
				return
			}
			if !reserved {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusConflict)
				_, _ = w.Write([]byte(`{"error":"A request with this Idempotency-Key is still processing"}` + "\n"))
				return
			}

			recorder := &responseRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
				body:           &bytes.Buffer{},
			}
			next.ServeHTTP(recorder, r)

			// A resposta já foi decidida: timeout ou desistência do cliente
			// não podem impedir o registro da chave.
			storeCtx := context.WithoutCancel(ctx)

			// 5xx não é cacheado para permitir retry
			if recorder.statusCode >= http.StatusInternalServerError {
				if err := store.Release(storeCtx, key); err != nil {
					log.Error().Err(err).Msg("Falha ao liberar chave de idempotência")
				}
				return
			}

			err = store.Save(storeCtx, key, gateway.CachedResponse{
				StatusCode: recorder.statusCode,
				Body:       recorder.body.Bytes(),
				Headers:    replayableHeaders(recorder.Header()),
			}, idempotencyTTL)
			if err != nil {
				log.Error().Err(err).Msg("Falha ao salvar chave de idempotência")
			}
		})
	}
}
