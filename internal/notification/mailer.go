// Package notification delivers outbound email to clinic users.
//
// Delivery is fire-and-forget: senders run on the mail worker pool and
// failures are logged, never surfaced to the triggering request.
package notification

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"securevet.io/securevet/internal/config"
	"securevet.io/securevet/internal/pkg/logger"
	"securevet.io/securevet/internal/pkg/worker"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer sends a single message synchronously.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers through an SMTP relay via go-mail.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

// NewSMTPMailer creates an SMTP-backed mailer.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send composes and delivers one message.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	message, err := buildMessage(m.cfg.From, msg)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.User),
		mail.WithPassword(m.cfg.Password),
	}
	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, message); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

func buildMessage(from string, msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	return m, nil
}

// NoopMailer discards messages. Used when SMTP is not configured.
type NoopMailer struct{}

// Send logs and drops the message.
func (NoopMailer) Send(_ context.Context, msg Message) error {
	logger.Debug("mail delivery disabled, dropping message",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}

var (
	_ Mailer = (*SMTPMailer)(nil)
	_ Mailer = NoopMailer{}
)

// Dispatcher queues messages onto the mail worker pool.
type Dispatcher struct {
	mailer Mailer
	pools  *worker.Pools
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(mailer Mailer, pools *worker.Pools) *Dispatcher {
	return &Dispatcher{mailer: mailer, pools: pools}
}

// Dispatch sends the message in the background. Delivery failures are
// logged; the caller never waits on SMTP.
func (d *Dispatcher) Dispatch(msg Message) {
	err := d.pools.SubmitDetached("mail", func(ctx context.Context) {
		if err := d.mailer.Send(ctx, msg); err != nil {
			logger.Error("mail delivery failed",
				zap.String("to", msg.To),
				zap.String("subject", msg.Subject),
				zap.Error(err),
			)
		}
	})
	if err != nil {
		logger.Error("mail dispatch rejected",
			zap.String("to", msg.To),
			zap.Error(err),
		)
	}
}
