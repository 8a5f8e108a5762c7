package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/samuelasefa34/Sheger-pay/internal/domain"
)

const (
	AccountIDHeader   = "X-Account-ID"
	AccountNameHeader = "X-Account-Name"
)

type accountKey struct{}

// Account lê a identidade já verificada pelo provedor externo (gateway/proxy)
// e a coloca no contexto. Sem X-Account-ID a requisição é rejeitada com 401.
func Account(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, err := domain.NewAccount(r.Header.Get(AccountIDHeader), r.Header.Get(AccountNameHeader))
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": domain.Message(err)})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), account)))
	})
}

func WithAccount(ctx context.Context, account domain.Account) context.Context {
	return context.WithValue(ctx, accountKey{}, account)
}

// AccountFrom devolve a conta do contexto; ok=false fora do middleware Account.
func AccountFrom(ctx context.Context) (domain.Account, bool) {
	account, ok := ctx.Value(accountKey{}).(domain.Account)
	return account, ok
}
