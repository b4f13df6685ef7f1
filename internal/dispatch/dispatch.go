package dispatch

import (
	"context"
	"fmt"
	"log/slog"
)

// Outgoing is one message pair addressed to one recipient.
type Outgoing struct {
	Email    string
	Phone    string
	Subject  string
	SMSText  string
	HTMLBody string
}

type Dispatcher interface {
	// Send attempts delivery. A nil return means the dispatch was
	// attempted; it does not imply every channel succeeded.
	Send(ctx context.Context, out Outgoing) error
}

// Mailer is the email channel.
type Mailer interface {
	SendHTML(ctx context.Context, to, subject, htmlBody string) error
}

// SMSClient is the SMS channel. It returns the provider message id.
type SMSClient interface {
	SendSMS(to, body string) (string, error)
}

// Composite sends over email and, when an SMS client is configured and the
// recipient has a phone number, over SMS. The two channels fail
// independently: an email error fails the call, an SMS error is only
// logged here.
type Composite struct {
	mail Mailer
	sms  SMSClient
}

// NewComposite builds a dispatcher. sms may be nil to disable the channel.
func NewComposite(mail Mailer, sms SMSClient) *Composite {
	return &Composite{mail: mail, sms: sms}
}

func (d *Composite) Send(ctx context.Context, out Outgoing) error {
	if err := d.mail.SendHTML(ctx, out.Email, out.Subject, out.HTMLBody); err != nil {
		return fmt.Errorf("email to %s: %w", out.Email, err)
	}

	if d.sms == nil || out.Phone == "" || out.SMSText == "" {
		return nil
	}

	sid, err := d.sms.SendSMS(out.Phone, out.SMSText)
	if err != nil {
		slog.Error("sms send failed", "phone", out.Phone, "err", err)
		return nil
	}
	slog.Info("sms sent", "phone", out.Phone, "sid", sid)
	return nil
}
