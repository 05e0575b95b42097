package notify

import (
	"encoding/json"
	"time"

	"github.com/barewire/storefront-orders/internal/orders"
)

const (
	TopicOrderConfirmation = "order.confirmation"

	EventOrderConfirmation = "OrderConfirmation"

	// TemplateInvoice is the template the mailer renders for confirmations.
	TemplateInvoice = "invoice"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type OrderConfirmationPayload struct {
	Recipient     string       `json:"recipient"`
	RecipientName string       `json:"recipient_name,omitempty"`
	Order         orders.Order `json:"order"`
	Template      string       `json:"template"`
}

// PartitionKey keeps all events for one order on one partition.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
