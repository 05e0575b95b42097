package notify

import (
	"context"
	"encoding/json"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barewire/storefront-orders/internal/orders"
)

type capturedMessage struct {
	key     []byte
	value   []byte
	headers []kafkago.Header
}

type fakePublisher struct {
	messages []capturedMessage
}

func (p *fakePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	p.messages = append(p.messages, capturedMessage{key: key, value: value, headers: headers})
}

func TestTrigger_OrderConfirmation(t *testing.T) {
	pub := &fakePublisher{}
	tr := &Trigger{Producer: pub, Service: "storefront-orders"}

	o := orders.Order{
		ID:         "order-1",
		CreatedBy:  "user-1",
		GrandTotal: 200,
		Status:     orders.StatusPending,
		Items: []orders.OrderItem{
			{ProductID: "64f1b2c3d4e5f6a7b8c9d0e1", Name: "Widget", Price: 100, Quantity: 2},
		},
	}
	recipient := orders.Identity{UserID: "user-1", Name: "Test User", Email: "user@example.com"}

	require.NoError(t, tr.OrderConfirmation(context.Background(), recipient, o))
	require.Len(t, pub.messages, 1)

	m := pub.messages[0]
	assert.Equal(t, []byte("order-1"), m.key)

	var env Envelope
	require.NoError(t, json.Unmarshal(m.value, &env))
	assert.Equal(t, EventOrderConfirmation, env.EventType)
	assert.Equal(t, 1, env.EventVersion)
	assert.Equal(t, "storefront-orders", env.Producer)
	assert.Equal(t, "order-1", env.CorrelationID)
	assert.NotEmpty(t, env.EventID)

	var p OrderConfirmationPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Equal(t, "user@example.com", p.Recipient)
	assert.Equal(t, TemplateInvoice, p.Template)
	assert.Equal(t, "order-1", p.Order.ID)
	require.Len(t, m.headers, 2)
	assert.Equal(t, "x-event-type", m.headers[0].Key)
}
