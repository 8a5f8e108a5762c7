package gateway

import "context"

// ChangeFeed avisa quando a coleção de transações de uma conta mudou.
// O sinal não carrega dados: quem assina relê o conjunto completo.
// O canal é fechado quando ctx termina ou o feed cai.
type ChangeFeed interface {
	Watch(ctx context.Context, accountID string) (<-chan struct{}, error)
}
