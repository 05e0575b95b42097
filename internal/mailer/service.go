// Package mailer consumes order confirmation events and sends the invoice
// mail. Delivery is best effort: a failed send is logged and the event is
// still committed, matching the fire-and-forget contract of the trigger.
package mailer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/barewire/storefront-orders/internal/kafka"
	"github.com/barewire/storefront-orders/internal/metrics"
	"github.com/barewire/storefront-orders/internal/notify"
	"github.com/barewire/storefront-orders/internal/redisx"
)

// MailSender is implemented by *Sender; substituted in tests.
type MailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Dedup tracks already-processed event ids across redeliveries.
type Dedup interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

type Service struct {
	Sender      MailSender
	Dedup       Dedup
	Log         *zap.Logger
	CompanyName string
}

// HandleConfirmation is installed as the consumer handler for the
// confirmation topic.
func (s *Service) HandleConfirmation(ctx context.Context, m kafkago.Message) error {
	var env notify.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != notify.EventOrderConfirmation {
		return nil
	}

	if seen, err := s.Dedup.Seen(ctx, env.EventID); err == nil && seen {
		metrics.MailDeliveriesTotal.WithLabelValues("skipped_duplicate").Inc()
		return nil
	}

	p, err := kafkax.UnwrapPayload[notify.OrderConfirmationPayload](env.Payload)
	if err != nil {
		return err
	}
	if p.Recipient == "" {
		s.Log.Warn("confirmation event without recipient, dropping",
			zap.String("order_id", p.Order.ID))
		return nil
	}

	content, err := RenderInvoice(p.RecipientName, p.Order, s.CompanyName)
	if err != nil {
		return err
	}

	if err := s.Sender.Send(ctx, p.Recipient, "Order Confirmation", content); err != nil {
		// Never fails the placement and never blocks the topic; logged only.
		s.Log.Warn("confirmation mail delivery failed",
			zap.String("order_id", p.Order.ID),
			zap.String("recipient", p.Recipient),
			zap.Error(err))
		metrics.MailDeliveriesTotal.WithLabelValues("error").Inc()
		return nil
	}

	_ = s.Dedup.Mark(ctx, env.EventID)
	metrics.MailDeliveriesTotal.WithLabelValues("ok").Inc()
	s.Log.Info("confirmation mail sent",
		zap.String("order_id", p.Order.ID),
		zap.String("recipient", p.Recipient))
	return nil
}

// RedisDedup implements Dedup on the shared Redis instance.
type RedisDedup struct {
	Client  *redis.Client
	Service string
}

func (d *RedisDedup) Seen(ctx context.Context, eventID string) (bool, error) {
	return redisx.Exists(ctx, d.Client, fmt.Sprintf(redisx.KeyDedup, d.Service, eventID))
}

func (d *RedisDedup) Mark(ctx context.Context, eventID string) error {
	return d.Client.Set(ctx, fmt.Sprintf(redisx.KeyDedup, d.Service, eventID), "1", redisx.TTLDedup).Err()
}
