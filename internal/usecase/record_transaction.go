package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/samuelasefa34/Sheger-pay/internal/domain"
	"github.com/samuelasefa34/Sheger-pay/internal/gateway"
)

// RecordTransactionInput define os dados de uma nova transação.
// A conta vem explícita: não existe sessão global.
type RecordTransactionInput struct {
	Account domain.Account
	Type    domain.TransactionType
	Amount  decimal.NullDecimal
	Title   string
}

// RecordTransactionUseCase contém as dependências necessárias.
type RecordTransactionUseCase struct {
	transactionRepository gateway.TransactionRepository
	accountLocker         gateway.AccountLocker
	eventPublisher        gateway.EventPublisher
	tracker               *MutationTracker
	options               Options
}

// NewRecordTransaction cria uma nova instância do UseCase.
// publisher pode ser nil (eventos desabilitados).
func NewRecordTransaction(
	transactionRepo gateway.TransactionRepository,
	locker gateway.AccountLocker,
	publisher gateway.EventPublisher,
	tracker *MutationTracker,
	options Options,
) *RecordTransactionUseCase {
	if tracker == nil {
		tracker = NewMutationTracker()
	}
	return &RecordTransactionUseCase{
		transactionRepository: transactionRepo,
		accountLocker:         locker,
		eventPublisher:        publisher,
		tracker:               tracker,
		options:               options,
	}
}

// Execute valida, trava a conta, confere o saldo (saques) e grava exatamente um registro.
func (u *RecordTransactionUseCase) Execute(ctx context.Context, input RecordTransactionInput) (*domain.Transaction, error) {
	if input.Account.ID == "" {
		return nil, domain.ErrAccountRequired
	}

	// Validação antes de qualquer contato com o store
	draft, err := domain.NewDraft(input.Type, input.Amount, input.Title)
	if err != nil {
		return nil, err
	}

	accountID := input.Account.ID
	created, err := u.admitLocked(ctx, accountID, draft)
	if err != nil {
		return nil, err
	}

	// Fora do lock: a seção crítica é só leitura do saldo + gravação.
	u.publish(ctx, accountID, created)
	return created, nil
}

// SendMoney grava um saque com o título "Sent to <recipient>".
// O destinatário é texto livre; nenhuma identidade é verificada aqui.
func (u *RecordTransactionUseCase) SendMoney(ctx context.Context, account domain.Account, amount decimal.NullDecimal, recipient string) (*domain.Transaction, error) {
	return u.Execute(ctx, RecordTransactionInput{
		Account: account,
		Type:    domain.TransactionTypeWithdrawal,
		Amount:  amount,
		Title:   domain.SendTitle(recipient),
	})
}

// TopUp grava um depósito de recarga.
func (u *RecordTransactionUseCase) TopUp(ctx context.Context, account domain.Account, amount decimal.NullDecimal) (*domain.Transaction, error) {
	return u.Execute(ctx, RecordTransactionInput{
		Account: account,
		Type:    domain.TransactionTypeDeposit,
		Amount:  amount,
		Title:   domain.TopUpTitle,
	})
}

// State expõe o estado da mutação da conta para a camada de apresentação.
func (u *RecordTransactionUseCase) State(accountID string) domain.MutationState {
	return u.tracker.State(accountID)
}

// admitLocked segura o lock da conta só durante a leitura do saldo e a gravação.
// Um único escritor por conta: quem chega durante uma gravação espera até
// LockWait e depois recebe ErrBusy. Sem isso dois saques simultâneos
// leriam o mesmo saldo.
func (u *RecordTransactionUseCase) admitLocked(ctx context.Context, accountID string, draft domain.Draft) (*domain.Transaction, error) {
	lockCtx, cancelLock := context.WithTimeout(ctx, u.options.LockWait)
	unlock, err := u.accountLocker.Lock(lockCtx, accountID)
	cancelLock()
	if err != nil {
		if !errors.Is(err, domain.ErrBusy) {
			log.Error().Err(err).Str("account_id", accountID).Msg("Falha ao travar conta")
		}
		return nil, err
	}
	defer unlock()

	u.tracker.begin(accountID)
	created, err := u.admit(ctx, accountID, draft)
	u.tracker.finish(accountID, err)
	return created, err
}

func (u *RecordTransactionUseCase) admit(ctx context.Context, accountID string, draft domain.Draft) (*domain.Transaction, error) {
	if draft.Type == domain.TransactionTypeWithdrawal {
		ledger, err := readLedger(ctx, u.transactionRepository, u.options, accountID)
		if err != nil {
			return nil, err
		}
		if draft.Amount.GreaterThan(ledger.Balance) {
			return nil, domain.ErrInsufficientFunds
		}
	}

	storeCtx, cancel := context.WithTimeout(ctx, u.options.storeTimeout())
	defer cancel()

	created, err := u.transactionRepository.Create(storeCtx, accountID, draft)
	if err != nil {
		return nil, domain.StoreError("create transaction", err)
	}
	return created, nil
}

func (u *RecordTransactionUseCase) publish(ctx context.Context, accountID string, created *domain.Transaction) {
	if u.eventPublisher == nil {
		return
	}
	// A gravação já foi aceita; o evento sai mesmo se o chamador desistiu.
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), u.options.storeTimeout())
	defer cancel()

	event := domain.NewTransactionEvent(accountID, created)
	routingKey := domain.TransactionCreatedKey(accountID)
	if err := u.eventPublisher.Publish(publishCtx, domain.LedgerExchange, routingKey, event); err != nil {
		// Apenas logamos o erro, não falhamos a operação
		log.Error().Err(err).Str("routing_key", routingKey).Msg("Falha ao publicar evento")
	}
}
