package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/samuelasefa34/Sheger-pay/internal/domain"
	"github.com/samuelasefa34/Sheger-pay/internal/infra/http/middleware"
	"github.com/samuelasefa34/Sheger-pay/internal/usecase"
)

type AccountHandler struct {
	bootstrapUC *usecase.BootstrapAccountUseCase
	getLedgerUC *usecase.GetLedgerUseCase
	watchUC     *usecase.WatchLedgerUseCase
	recordUC    *usecase.RecordTransactionUseCase
}

func NewAccountHandler(
	bootstrapUC *usecase.BootstrapAccountUseCase,
	getLedgerUC *usecase.GetLedgerUseCase,
	watchUC *usecase.WatchLedgerUseCase,
	recordUC *usecase.RecordTransactionUseCase,
) *AccountHandler {
	return &AccountHandler{
		bootstrapUC: bootstrapUC,
		getLedgerUC: getLedgerUC,
		watchUC:     watchUC,
		recordUC:    recordUC,
	}
}

// Bootstrap credita o bônus de boas-vindas (POST /accounts).
// Chamar duas vezes credita duas vezes; use Idempotency-Key.
func (h *AccountHandler) Bootstrap(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountFrom(r.Context())
	if !ok {
		respondDomainError(w, domain.ErrAccountRequired)
		return
	}

	created, err := h.bootstrapUC.Execute(r.Context(), account)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	log.Info().Str("account_id", account.ID).Msg("Conta inicializada")
	respondJSON(w, http.StatusCreated, newTransactionResponse(created))
}

func (h *AccountHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountFrom(r.Context())
	if !ok {
		respondDomainError(w, domain.ErrAccountRequired)
		return
	}

	ledger, err := h.getLedgerUC.Execute(r.Context(), account)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newLedgerResponse(account, ledger))
}

func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountFrom(r.Context())
	if !ok {
		respondDomainError(w, domain.ErrAccountRequired)
		return
	}

	balance, err := h.getLedgerUC.Balance(r.Context(), account)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, BalanceResponse{AccountID: account.ID, Balance: balance})
}

func (h *AccountHandler) Mutation(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountFrom(r.Context())
	if !ok {
		respondDomainError(w, domain.ErrAccountRequired)
		return
	}
	respondJSON(w, http.StatusOK, MutationResponse{State: h.recordUC.State(account.ID)})
}

// Stream envia a visão completa da conta como Server-Sent Events a cada mudança.
func (h *AccountHandler) Stream(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountFrom(r.Context())
	if !ok {
		respondDomainError(w, domain.ErrAccountRequired)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	// Só a visão mais recente importa: um leitor lento perde as intermediárias.
	updates := make(chan *domain.Ledger, 1)
	onUpdate := func(ledger *domain.Ledger) {
		for {
			select {
			case updates <- ledger:
				return
			default:
				select {
				case <-updates:
				default:
				}
			}
		}
	}

	cancel, err := h.watchUC.Subscribe(r.Context(), account, onUpdate)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ledger := <-updates:
			payload, err := json.Marshal(newLedgerResponse(account, ledger))
			if err != nil {
				log.Error().Err(err).Msg("Falha ao codificar evento SSE")
				return
			}
			if _, err := fmt.Fprintf(w, "event: ledger\ndata: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
