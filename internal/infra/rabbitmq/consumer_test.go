package rabbitmq

import (
	"context"
	"errors"
	"testing"

	"github.com/samuelasefa34/Sheger-pay/internal/domain"
)

type fakeDelivery struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (d *fakeDelivery) Ack(bool) error {
	d.acked = true
	return nil
}

func (d *fakeDelivery) Nack(_, requeue bool) error {
	d.nacked = true
	d.requeue = requeue
	return nil
}

func TestAuditConsumerHandle(t *testing.T) {
	errMongoDown := errors.New("mongo down")

	tests := []struct {
		name        string
		body        string
		handlerErr  error
		wantAck     bool
		wantRequeue bool
		wantCalled  bool
	}{
		{"saved", `{"transaction_id":"t1","account_id":"user-1","amount":"10"}`, nil, true, false, true},
		{"store failure requeues", `{"transaction_id":"t1"}`, errMongoDown, false, true, true},
		{"invalid json dropped", `{not json`, nil, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			var got domain.TransactionEvent
			c := NewAuditConsumer(nil, func(_ context.Context, event domain.TransactionEvent) error {
				called = true
				got = event
				return tt.handlerErr
			})

			d := &fakeDelivery{}
			c.Handle(context.Background(), d, []byte(tt.body))

			if called != tt.wantCalled {
				t.Fatalf("handler called = %v, want %v", called, tt.wantCalled)
			}
			if d.acked != tt.wantAck {
				t.Errorf("acked = %v, want %v", d.acked, tt.wantAck)
			}
			if !tt.wantAck && (!d.nacked || d.requeue != tt.wantRequeue) {
				t.Errorf("nacked = %v requeue = %v, want requeue %v", d.nacked, d.requeue, tt.wantRequeue)
			}
			if tt.wantAck && got.TransactionID != "t1" {
				t.Errorf("event = %+v", got)
			}
		})
	}
}

func TestAuditBindingCoversPerAccountKeys(t *testing.T) {
	if auditBindingKey != "transaction.created.#" {
		t.Fatalf("binding = %q", auditBindingKey)
	}
	key := domain.TransactionCreatedKey("user.1")
	if key != "transaction.created.user_1" {
		t.Fatalf("routing key = %q", key)
	}
}
