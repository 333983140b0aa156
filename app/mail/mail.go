// Package mail is the mail-relay client. Failures are reported to the
// caller and never retried here.
package mail

import (
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"

	"github.com/jharris/campwise/app/observability/metrics"
	appconfig "github.com/jharris/campwise/config"
)

// Mailer is the narrow contract the services rely on.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

var _ Mailer = (*SMTPMailer)(nil)

// SMTPMailer delivers through a plain SMTP relay.
type SMTPMailer struct {
	logger *slog.Logger
	client *gomail.Client
	from   string
}

// NewSMTPMailer creates the relay client from configuration.
func NewSMTPMailer(cfg *appconfig.Config, logger *slog.Logger) (*SMTPMailer, error) {
	client, err := gomail.NewClient(cfg.SMTP.Host,
		gomail.WithPort(cfg.SMTP.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.SMTP.Username),
		gomail.WithPassword(cfg.SMTP.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}
	return &SMTPMailer{
		logger: logger,
		client: client,
		from:   cfg.SMTP.From,
	}, nil
}

// Send delivers a single plain-text message.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		metrics.Get().MailErrorsTotal.Add(ctx, 1)
		m.logger.ErrorContext(ctx, "Mail send failed", slog.String("to", to), slog.Any("error", err))
		return fmt.Errorf("failed to send mail: %w", err)
	}
	metrics.Get().MailSentTotal.Add(ctx, 1)
	return nil
}
