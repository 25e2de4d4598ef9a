// Package notify emails generated invoices through a pluggable transport.
package notify

import (
	"context"
	"fmt"
)

// Sender is the fixed identity invoices are sent from.
type Sender struct {
	Name    string
	Address string
}

// DefaultSender is used when no identity is configured.
var DefaultSender = Sender{Name: "Accountill", Address: "hello@accountill.com"}

func (s Sender) String() string {
	if s.Name == "" {
		return s.Address
	}

	return fmt.Sprintf("%s <%s>", s.Name, s.Address)
}

// Request asks for an invoice email. The attachment is resolved from the
// artifact store by key when the message is built.
type Request struct {
	To          string
	ReplyTo     string
	Subject     string
	HTML        string
	Text        string
	ArtifactKey string
}

// Message is a fully prepared email handed to a Transport.
type Message struct {
	From        Sender
	To          string
	ReplyTo     string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
}

type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Transport hands messages to a mail provider. A nil error means the
// provider accepted the message, not that it reached the inbox.
type Transport interface {
	Name() string
	Send(ctx context.Context, msg *Message) error
}

// TransportError reports a rejected or failed hand-off to the provider.
type TransportError struct {
	Transport string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport: %v", e.Transport, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// AttachmentError reports that the document to attach could not be loaded.
type AttachmentError struct {
	Key string
	Err error
}

func (e *AttachmentError) Error() string {
	return fmt.Sprintf("loading attachment %q: %v", e.Key, e.Err)
}

func (e *AttachmentError) Unwrap() error {
	return e.Err
}
