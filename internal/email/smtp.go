package email

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTPConfig carries the SMTP transport settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTPSender delivers mail through an authenticated SMTP relay.
type SMTPSender struct {
	client   *mail.Client
	from     string
	fromName string
}

// NewSMTPSender builds a sender from the transport config.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp from address is required")
	}

	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	return &SMTPSender{client: client, from: cfg.From, fromName: cfg.FromName}, nil
}

// Send delivers one message.
func (s *SMTPSender) Send(ctx context.Context, email Email) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.from); err != nil {
		return fmt.Errorf("failed to set from address: %w", err)
	}
	if err := msg.AddToFormat(email.ToName, email.To); err != nil {
		return fmt.Errorf("failed to set to address: %w", err)
	}
	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextPlain, email.Text)
	if email.HTML != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, email.HTML)
	}

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", email.To, err)
	}
	return nil
}
