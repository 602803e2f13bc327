package notifier

import (
	"context"
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/iliyamo/hoa-community-api/internal/queue"
)

// Email sends notification events as transactional mail through SendGrid.
type Email struct {
	client   *sendgrid.Client
	fromName string
	fromAddr string
	sandbox  bool
}

// NewEmail returns a SendGrid-backed notifier.  Sandbox mode validates the
// request against the API without delivering mail, for staging environments.
func NewEmail(apiKey, fromName, fromAddr string, sandbox bool) *Email {
	return &Email{
		client:   sendgrid.NewSendClient(apiKey),
		fromName: fromName,
		fromAddr: fromAddr,
		sandbox:  sandbox,
	}
}

// Notify sends the event body as a plain-text email to the recipient.
// Events without a recipient address are dropped with a log line.
func (e *Email) Notify(_ context.Context, ev queue.NotificationEvent) error {
	if ev.Recipient == "" {
		log.Printf("email: dropping %s event with no recipient", ev.Type)
		return nil
	}
	from := mail.NewEmail(e.fromName, e.fromAddr)
	to := mail.NewEmail("", ev.Recipient)
	msg := mail.NewSingleEmail(from, ev.Subject, to, ev.Body, "")
	if e.sandbox {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}
	resp, err := e.client.Send(msg)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
