package gateway

import "context"

// EventPublisher entrega eventos de domínio depois de uma gravação aceita.
// Falhas são reportadas, mas nunca desfazem a gravação.
type EventPublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body any) error
}
