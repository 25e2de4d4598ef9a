// Package smtp delivers invoice emails through an SMTP relay.
package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/MrJamesThe3rd/accountill/internal/notify"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	// InsecureSkipVerify accepts any server certificate, matching relays with
	// self-signed certificates.
	InsecureSkipVerify bool
}

// Transport implements notify.Transport with go-mail.
type Transport struct {
	client *mail.Client
}

func New(cfg Config) (*Transport, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}

	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	if cfg.InsecureSkipVerify {
		opts = append(opts, mail.WithTLSConfig(&tls.Config{
			ServerName:         cfg.Host,
			InsecureSkipVerify: true, //nolint:gosec // relay uses a self-signed certificate
		}))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}

	return &Transport{client: client}, nil
}

func (t *Transport) Name() string {
	return "smtp"
}

func (t *Transport) Send(ctx context.Context, msg *notify.Message) error {
	m, err := buildMsg(msg)
	if err != nil {
		return err
	}

	if err := t.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("sending message: %w", err)
	}

	return nil
}

func buildMsg(msg *notify.Message) (*mail.Msg, error) {
	m := mail.NewMsg()

	if err := m.FromFormat(msg.From.Name, msg.From.Address); err != nil {
		return nil, fmt.Errorf("setting from address: %w", err)
	}

	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("setting recipient: %w", err)
	}

	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("setting reply-to: %w", err)
		}
	}

	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)

	if msg.Text != "" {
		m.AddAlternativeString(mail.TypeTextPlain, msg.Text)
	}

	for _, a := range msg.Attachments {
		m.AttachReadSeeker(a.Filename, bytes.NewReader(a.Content),
			mail.WithFileContentType(mail.ContentType(a.ContentType)))
	}

	return m, nil
}
