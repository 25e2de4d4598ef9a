// Package resend delivers invoice emails through the Resend API.
package resend

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"

	"github.com/MrJamesThe3rd/accountill/internal/notify"
)

// Transport implements notify.Transport using the Resend API.
type Transport struct {
	client *resend.Client
}

func New(apiKey string) *Transport {
	return NewWithClient(resend.NewClient(apiKey))
}

func NewWithClient(client *resend.Client) *Transport {
	return &Transport{client: client}
}

func (t *Transport) Name() string {
	return "resend"
}

func (t *Transport) Send(ctx context.Context, msg *notify.Message) error {
	req := &resend.SendEmailRequest{
		From:    msg.From.String(),
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
	}

	if len(msg.Attachments) > 0 {
		req.Attachments = make([]*resend.Attachment, len(msg.Attachments))
		for i, a := range msg.Attachments {
			req.Attachments[i] = &resend.Attachment{
				Filename:    a.Filename,
				Content:     a.Content,
				ContentType: a.ContentType,
			}
		}
	}

	if _, err := t.client.Emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
