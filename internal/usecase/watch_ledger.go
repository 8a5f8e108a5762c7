package usecase

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/samuelasefa34/Sheger-pay/internal/domain"
	"github.com/samuelasefa34/Sheger-pay/internal/gateway"
)

// WatchLedgerUseCase entrega a visão recalculada da conta a cada mudança no store.
type WatchLedgerUseCase struct {
	getLedger  *GetLedgerUseCase
	changeFeed gateway.ChangeFeed
}

func NewWatchLedger(getLedger *GetLedgerUseCase, feed gateway.ChangeFeed) *WatchLedgerUseCase {
	return &WatchLedgerUseCase{
		getLedger:  getLedger,
		changeFeed: feed,
	}
}

// Subscribe chama onUpdate uma vez com o estado atual e de novo a cada sinal do feed,
// sempre com o conjunto completo relido (nunca um patch incremental).
// A função devolvida cancela a assinatura e espera a goroutine terminar;
// não deve ser chamada de dentro de onUpdate.
func (u *WatchLedgerUseCase) Subscribe(ctx context.Context, account domain.Account, onUpdate func(*domain.Ledger)) (cancel func(), err error) {
	if account.ID == "" {
		return nil, domain.ErrAccountRequired
	}

	watchCtx, stop := context.WithCancel(ctx)
	// Assina antes da primeira leitura para não perder gravações no meio
	signals, err := u.changeFeed.Watch(watchCtx, account.ID)
	if err != nil {
		stop()
		return nil, domain.StoreError("watch transactions", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		u.deliver(watchCtx, account, onUpdate)
		for {
			select {
			case <-watchCtx.Done():
				return
			case _, ok := <-signals:
				if !ok {
					log.Warn().Str("account_id", account.ID).Msg("Feed de mudanças encerrado")
					return
				}
				u.deliver(watchCtx, account, onUpdate)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			stop()
			<-done
		})
	}, nil
}

func (u *WatchLedgerUseCase) deliver(ctx context.Context, account domain.Account, onUpdate func(*domain.Ledger)) {
	if ctx.Err() != nil {
		return
	}
	ledger, err := u.getLedger.Execute(ctx, account)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn().Err(err).Str("account_id", account.ID).Msg("Falha ao recalcular ledger")
		}
		return
	}
	onUpdate(ledger)
}
