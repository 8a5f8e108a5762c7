package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/samuelasefa34/Sheger-pay/internal/gateway"
)

// RabbitMQPublisher publica eventos JSON persistentes.
// amqp.Channel não é seguro para publicações concorrentes, daí o mutex.
type RabbitMQPublisher struct {
	mu      sync.Mutex
	channel *amqp.Channel
	appID   string
}

func NewRabbitMQPublisher(ch *amqp.Channel, appID string) *RabbitMQPublisher {
	return &RabbitMQPublisher{channel: ch, appID: appID}
}

func (p *RabbitMQPublisher) Publish(ctx context.Context, exchange, routingKey string, body any) error {
	bytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.PublishWithContext(ctx,
		exchange,   // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         bytes,
			DeliveryMode: amqp.Persistent, // Garante que a mensagem não suma se o Rabbit reiniciar
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now().UTC(),
			AppId:        p.appID,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Debug().Str("routing_key", routingKey).Str("exchange", exchange).Msg("Evento publicado no RabbitMQ")
	return nil
}

var _ gateway.EventPublisher = (*RabbitMQPublisher)(nil)
