// Package notify is the boundary to the notification subsystem. The
// orchestrator invokes it explicitly after a successful placement; delivery
// is fire-and-forget and its result is never observed by the placement path.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/barewire/storefront-orders/internal/kafka"
	"github.com/barewire/storefront-orders/internal/orders"
)

type publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Trigger publishes confirmation events for the mailer worker to consume.
type Trigger struct {
	Producer publisher
	Service  string
}

func (t *Trigger) OrderConfirmation(ctx context.Context, recipient orders.Identity, o orders.Order) error {
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventOrderConfirmation,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      t.Service,
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(OrderConfirmationPayload{
			Recipient:     recipient.Email,
			RecipientName: recipient.Name,
			Order:         o,
			Template:      TemplateInvoice,
		}),
	}
	t.Producer.Publish(PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventOrderConfirmation)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
	return nil
}
