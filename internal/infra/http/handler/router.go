package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/samuelasefa34/Sheger-pay/internal/gateway"
	"github.com/samuelasefa34/Sheger-pay/internal/infra/http/middleware"
)

// NewRouter monta as rotas da API. idempotency pode ser nil (Redis desabilitado).
func NewRouter(accounts *AccountHandler, transactions *TransactionHandler, idempotency gateway.IdempotencyRepository, requestTimeout time.Duration) chi.Router {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer) // Evita crash se der panic

	// Health check (para o Docker saber se estamos vivos)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("Falha ao escrever resposta de health check")
		}
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.Account)

		// SSE fica fora do timeout: a conexão vive enquanto o cliente quiser
		r.Get("/accounts/me/stream", accounts.Stream)

		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.Timeout(requestTimeout))

			r.Get("/accounts/me/ledger", accounts.Ledger)
			r.Get("/accounts/me/balance", accounts.Balance)
			r.Get("/accounts/me/mutation", accounts.Mutation)

			r.Group(func(r chi.Router) {
				if idempotency != nil {
					r.Use(middleware.Idempotency(idempotency))
				}
				r.Post("/accounts", accounts.Bootstrap)
				r.Post("/accounts/me/transactions", transactions.Create)
				r.Post("/accounts/me/send", transactions.Send)
				r.Post("/accounts/me/topup", transactions.TopUp)
			})
		})
	})

	return router
}
