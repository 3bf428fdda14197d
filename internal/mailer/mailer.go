// Package mailer delivers transactional mail through SendGrid.
package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// ErrNoRecipient is returned for a message without a To address.
var ErrNoRecipient = errors.New("mailer: missing recipient")

// Message is one outgoing email. It is also the payload stored on the mail queue.
type Message struct {
	To        string `json:"to"`
	ToName    string `json:"to_name,omitempty"`
	ReplyTo   string `json:"reply_to,omitempty"`
	Subject   string `json:"subject"`
	PlainText string `json:"plain_text"`
	HTML      string `json:"html,omitempty"`
	Attempts  int    `json:"attempts,omitempty"`
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SendGridSender implements Sender with the SendGrid v3 API.
type SendGridSender struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

func NewSendGridSender(apiKey, from, fromName string) *SendGridSender {
	return &SendGridSender{
		client:   sendgrid.NewSendClient(apiKey),
		from:     from,
		fromName: fromName,
	}
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}

	from := mail.NewEmail(s.fromName, s.from)
	to := mail.NewEmail(msg.ToName, msg.To)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.PlainText, msg.HTML)
	if msg.ReplyTo != "" {
		message.SetReplyTo(mail.NewEmail("", msg.ReplyTo))
	}

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
