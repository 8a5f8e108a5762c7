package rabbitmq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/samuelasefa34/Sheger-pay/internal/domain"
	"github.com/samuelasefa34/Sheger-pay/internal/gateway"
)

// ChangeFeed assina os eventos transaction.created.<conta> com uma fila
// exclusiva e temporária por Watch.
type ChangeFeed struct {
	conn *amqp.Connection
}

func NewChangeFeed(conn *amqp.Connection) *ChangeFeed {
	return &ChangeFeed{conn: conn}
}

func (f *ChangeFeed) Watch(ctx context.Context, accountID string) (<-chan struct{}, error) {
	ch, err := f.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	deliveries, err := f.bind(ch, accountID)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}

	signals := make(chan struct{}, 1)
	go func() {
		defer close(signals)
		defer func() {
			if err := ch.Close(); err != nil && !ch.IsClosed() {
				log.Error().Err(err).Msg("Erro ao fechar canal RabbitMQ")
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-deliveries:
				if !ok {
					return
				}
				select {
				case signals <- struct{}{}:
				default:
				}
			}
		}
	}()
	return signals, nil
}

func (f *ChangeFeed) bind(ch *amqp.Channel, accountID string) (<-chan amqp.Delivery, error) {
	q, err := ch.QueueDeclare(
		"",    // name gerado pelo servidor
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, domain.TransactionCreatedKey(accountID), domain.LedgerExchange, false, nil); err != nil {
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	deliveries, err := ch.Consume(
		q.Name,
		"",    // consumer tag
		true,  // auto-ack: o sinal não carrega dados, perder um não faz mal
		true,  // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to consume queue: %w", err)
	}
	return deliveries, nil
}

var _ gateway.ChangeFeed = (*ChangeFeed)(nil)
