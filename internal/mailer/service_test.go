package mailer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	kafkax "github.com/barewire/storefront-orders/internal/kafka"
	"github.com/barewire/storefront-orders/internal/notify"
	"github.com/barewire/storefront-orders/internal/orders"
)

type recordedMail struct {
	to, subject, body string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []recordedMail
	fail error
}

func (s *fakeSender) Send(_ context.Context, to, subject, htmlBody string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.sent = append(s.sent, recordedMail{to: to, subject: subject, body: htmlBody})
	return nil
}

type memDedup struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMemDedup() *memDedup { return &memDedup{seen: map[string]bool{}} }

func (d *memDedup) Seen(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seen[id], nil
}

func (d *memDedup) Mark(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen[id] = true
	return nil
}

func confirmationMessage(t *testing.T, eventID, recipient string) kafkago.Message {
	t.Helper()
	env := notify.Envelope{
		EventID:      eventID,
		EventType:    notify.EventOrderConfirmation,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     "test",
		Payload: kafkax.MustMarshal(notify.OrderConfirmationPayload{
			Recipient:     recipient,
			RecipientName: "Test User",
			Order: orders.Order{
				ID:         "order-1",
				GrandTotal: 200,
				Status:     orders.StatusPending,
				Items: []orders.OrderItem{
					{ProductID: "64f1b2c3d4e5f6a7b8c9d0e1", Name: "Widget", Price: 100, Quantity: 2},
				},
			},
			Template: notify.TemplateInvoice,
		}),
	}
	return kafkago.Message{Value: kafkax.MustMarshal(env)}
}

func newTestService(sender *fakeSender) (*Service, *memDedup) {
	dedup := newMemDedup()
	return &Service{
		Sender:      sender,
		Dedup:       dedup,
		Log:         zap.NewNop(),
		CompanyName: "Storefront",
	}, dedup
}

func TestHandleConfirmation_SendsInvoice(t *testing.T) {
	sender := &fakeSender{}
	svc, _ := newTestService(sender)

	err := svc.HandleConfirmation(context.Background(), confirmationMessage(t, "ev-1", "user@example.com"))

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	m := sender.sent[0]
	assert.Equal(t, "user@example.com", m.to)
	assert.Equal(t, "Order Confirmation", m.subject)
	assert.Contains(t, m.body, "order-1")
	assert.Contains(t, m.body, "Widget")
	assert.Contains(t, m.body, "200")
}

func TestHandleConfirmation_DedupsRedeliveries(t *testing.T) {
	sender := &fakeSender{}
	svc, _ := newTestService(sender)

	msg := confirmationMessage(t, "ev-1", "user@example.com")
	require.NoError(t, svc.HandleConfirmation(context.Background(), msg))
	require.NoError(t, svc.HandleConfirmation(context.Background(), msg))

	assert.Len(t, sender.sent, 1)
}

func TestHandleConfirmation_SendFailureIsSwallowed(t *testing.T) {
	sender := &fakeSender{fail: errors.New("smtp down")}
	svc, dedup := newTestService(sender)

	err := svc.HandleConfirmation(context.Background(), confirmationMessage(t, "ev-1", "user@example.com"))

	// nil so the offset commits; delivery is best effort
	require.NoError(t, err)
	seen, _ := dedup.Seen(context.Background(), "ev-1")
	assert.False(t, seen, "failed delivery must not be marked processed")
}

func TestHandleConfirmation_IgnoresForeignEvents(t *testing.T) {
	sender := &fakeSender{}
	svc, _ := newTestService(sender)

	env := notify.Envelope{EventID: "ev-2", EventType: "SomethingElse"}
	err := svc.HandleConfirmation(context.Background(), kafkago.Message{Value: kafkax.MustMarshal(env)})

	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestHandleConfirmation_MissingRecipientDropped(t *testing.T) {
	sender := &fakeSender{}
	svc, _ := newTestService(sender)

	err := svc.HandleConfirmation(context.Background(), confirmationMessage(t, "ev-3", ""))

	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestHandleConfirmation_MalformedEnvelope(t *testing.T) {
	svc, _ := newTestService(&fakeSender{})
	err := svc.HandleConfirmation(context.Background(), kafkago.Message{Value: []byte("{not json")})
	assert.Error(t, err)
}
