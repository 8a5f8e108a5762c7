package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/samuelasefa34/Sheger-pay/internal/domain"
)

const (
	AuditQueue       = "audit_queue"
	auditConsumerTag = "audit_worker"
	auditBindingKey  = domain.TransactionCreatedRouting + ".#"
)

// EventHandler processa um evento. Erro faz a mensagem voltar para a fila.
type EventHandler func(ctx context.Context, event domain.TransactionEvent) error

// AuditConsumer consome todos os eventos transaction.created.* com ack manual.
type AuditConsumer struct {
	channel *amqp.Channel
	handler EventHandler
}

func NewAuditConsumer(ch *amqp.Channel, handler EventHandler) *AuditConsumer {
	return &AuditConsumer{channel: ch, handler: handler}
}

// Setup declara exchange, fila durável e bind. Prefetch 1: uma mensagem por vez.
func (c *AuditConsumer) Setup() (<-chan amqp.Delivery, error) {
	if err := c.channel.Qos(1, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set qos: %w", err)
	}
	if err := DeclareExchange(c.channel); err != nil {
		return nil, err
	}

	q, err := c.channel.QueueDeclare(
		AuditQueue, // name
		true,       // durable (sobrevive a restart do server)
		false,      // delete when unused
		false,      // exclusive
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := c.channel.QueueBind(q.Name, auditBindingKey, domain.LedgerExchange, false, nil); err != nil {
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	msgs, err := c.channel.Consume(
		q.Name,           // queue
		auditConsumerTag, // consumer tag
		false,            // auto-ack desligado: ack só depois de salvar
		false,            // exclusive
		false,            // no-local
		false,            // no-wait
		nil,              // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register consumer: %w", err)
	}
	return msgs, nil
}

// Handle decide o destino de uma entrega: JSON inválido é descartado,
// falha do handler volta para a fila, sucesso recebe ack.
func (c *AuditConsumer) Handle(ctx context.Context, d Acknowledger, body []byte) {
	var event domain.TransactionEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error().Err(err).Msg("Erro ao decodificar JSON")
		if err := d.Nack(false, false); err != nil {
			log.Error().Err(err).Msg("Erro ao enviar Nack (JSON inválido)")
		}
		return
	}

	if err := c.handler(ctx, event); err != nil {
		log.Error().Err(err).Str("transaction_id", event.TransactionID).Msg("Erro ao processar evento")
		if err := d.Nack(false, true); err != nil {
			log.Error().Err(err).Msg("Erro ao enviar Nack")
		}
		return
	}

	if err := d.Ack(false); err != nil {
		log.Error().Err(err).Msg("Erro ao enviar Ack")
	}
}

// Acknowledger é o subconjunto de amqp.Delivery usado por Handle.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}
