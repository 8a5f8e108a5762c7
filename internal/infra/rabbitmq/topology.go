package rabbitmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/samuelasefa34/Sheger-pay/internal/domain"
)

// DeclareExchange garante que a exchange de tópico exista (idempotente).
func DeclareExchange(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(
		domain.LedgerExchange, // name
		"topic",               // type
		true,                  // durable
		false,                 // auto-deleted
		false,                 // internal
		false,                 // no-wait
		nil,                   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	return nil
}

// Dial abre a conexão com um nome visível no painel do RabbitMQ.
func Dial(url, connectionName string) (*amqp.Connection, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Properties: amqp.Table{
			"connection_name": connectionName,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	return conn, nil
}
