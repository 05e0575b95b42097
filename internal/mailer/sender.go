package mailer

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/barewire/storefront-orders/internal/config"
)

// Sender delivers mail over SMTP behind a circuit breaker, so a flapping
// mail provider sheds load fast instead of tying up consumer workers.
type Sender struct {
	client *mail.Client
	from   string
	cb     *gobreaker.CircuitBreaker
	log    *zap.Logger
}

func NewSender(cfg config.SMTP, log *zap.Logger) (*Sender, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, err
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 3,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("smtp circuit breaker state change",
				zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})

	return &Sender{client: client, from: cfg.From, cb: cb, log: log}, nil
}

func (s *Sender) Send(ctx context.Context, to, subject, htmlBody string) error {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return err
	}
	if err := m.To(to); err != nil {
		return err
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextHTML, htmlBody)

	_, err := s.cb.Execute(func() (any, error) {
		return nil, s.client.DialAndSendWithContext(ctx, m)
	})
	return err
}
