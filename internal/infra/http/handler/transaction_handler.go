package handler

import (
	"encoding/json"
	"net/http"

	"github.com/samuelasefa34/Sheger-pay/internal/domain"
	"github.com/samuelasefa34/Sheger-pay/internal/infra/http/middleware"
	"github.com/samuelasefa34/Sheger-pay/internal/usecase"
)

// TransactionHandler expõe a admissão de transações via HTTP
type TransactionHandler struct {
	recordUseCase *usecase.RecordTransactionUseCase
}

func NewTransactionHandler(uc *usecase.RecordTransactionUseCase) *TransactionHandler {
	return &TransactionHandler{
		recordUseCase: uc,
	}
}

// Create processa POST /accounts/me/transactions
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountFrom(r.Context())
	if !ok {
		respondDomainError(w, domain.ErrAccountRequired)
		return
	}

	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	kind, err := domain.ParseTransactionType(req.Type)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	created, err := h.recordUseCase.Execute(r.Context(), usecase.RecordTransactionInput{
		Account: account,
		Type:    kind,
		Amount:  req.Amount,
		Title:   req.Title,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, newTransactionResponse(created))
}

// Send processa POST /accounts/me/send
func (h *TransactionHandler) Send(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountFrom(r.Context())
	if !ok {
		respondDomainError(w, domain.ErrAccountRequired)
		return
	}

	var req SendMoneyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	created, err := h.recordUseCase.SendMoney(r.Context(), account, req.Amount, req.Recipient)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, newTransactionResponse(created))
}

// TopUp processa POST /accounts/me/topup
func (h *TransactionHandler) TopUp(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountFrom(r.Context())
	if !ok {
		respondDomainError(w, domain.ErrAccountRequired)
		return
	}

	var req TopUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	created, err := h.recordUseCase.TopUp(r.Context(), account, req.Amount)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, newTransactionResponse(created))
}
