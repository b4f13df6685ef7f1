package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

type SMTPMailer struct {
	client *mail.Client
	from   string
}

func NewSMTPMailer(host string, port int, username, password, from string) (*SMTPMailer, error) {
	client, err := mail.NewClient(
		host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(username),
		mail.WithPassword(password),
		mail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return &SMTPMailer{client: client, from: from}, nil
}

func (m *SMTPMailer) SendHTML(ctx context.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("failed to set from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("failed to set to: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
