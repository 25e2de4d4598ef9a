package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/accountill/internal/artifact"
)

const defaultRegistrySize = 1000

var ErrDeliveryNotFound = errors.New("delivery not found")

// Notifier sends invoice emails in the background and remembers the outcome
// of the most recent deliveries.
type Notifier struct {
	transport Transport
	store     artifact.Store
	sender    Sender
	now       func() time.Time
	limit     int

	wg sync.WaitGroup

	mu         sync.Mutex
	deliveries map[string]*Delivery
	order      []string
}

type Option func(*Notifier)

func WithSender(s Sender) Option {
	return func(n *Notifier) {
		if s.Address != "" {
			n.sender = s
		}
	}
}

// WithRegistrySize bounds how many deliveries Lookup can find.
func WithRegistrySize(size int) Option {
	return func(n *Notifier) {
		if size > 0 {
			n.limit = size
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(n *Notifier) {
		n.now = now
	}
}

func New(transport Transport, store artifact.Store, opts ...Option) *Notifier {
	n := &Notifier{
		transport:  transport,
		store:      store,
		sender:     DefaultSender,
		now:        time.Now,
		limit:      defaultRegistrySize,
		deliveries: make(map[string]*Delivery),
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Sender returns the identity messages are sent from.
func (n *Notifier) Sender() Sender {
	return n.sender
}

// Dispatch starts sending req and returns immediately. The send keeps going
// when ctx is cancelled; only ctx values are carried over.
func (n *Notifier) Dispatch(ctx context.Context, req Request) *Delivery {
	d := newDelivery(uuid.NewString(), req.To, n.now())
	n.register(d)

	ctx = context.WithoutCancel(ctx)

	n.wg.Add(1)

	go func() {
		defer n.wg.Done()

		err := n.send(ctx, req)
		if err != nil {
			slog.Error("failed to send invoice email", "delivery_id", d.ID, "to", req.To, "error", err)
		} else {
			slog.Info("invoice email accepted", "delivery_id", d.ID, "to", req.To, "transport", n.transport.Name())
		}

		d.complete(err, n.now())
	}()

	return d
}

// Send dispatches req and waits for the transport's answer.
func (n *Notifier) Send(ctx context.Context, req Request) (*Delivery, error) {
	d := n.Dispatch(ctx, req)

	return d, d.Wait(ctx)
}

// Lookup returns a delivery still held in the registry.
func (n *Notifier) Lookup(id string) (*Delivery, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	d, ok := n.deliveries[id]
	if !ok {
		return nil, ErrDeliveryNotFound
	}

	return d, nil
}

// Shutdown waits for in-flight sends.
func (n *Notifier) Shutdown(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		n.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *Notifier) register(d *Delivery) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.deliveries[d.ID] = d
	n.order = append(n.order, d.ID)

	for len(n.order) > n.limit {
		delete(n.deliveries, n.order[0])
		n.order = n.order[1:]
	}
}

func (n *Notifier) send(ctx context.Context, req Request) error {
	msg, err := n.message(ctx, req)
	if err != nil {
		return err
	}

	if err := n.transport.Send(ctx, msg); err != nil {
		return &TransportError{Transport: n.transport.Name(), Err: err}
	}

	return nil
}

// message builds the outgoing email, attaching the stored document.
func (n *Notifier) message(ctx context.Context, req Request) (*Message, error) {
	if req.To == "" {
		return nil, errors.New("message has no recipient")
	}

	a, err := n.store.Load(ctx, req.ArtifactKey)
	if err != nil {
		return nil, &AttachmentError{Key: req.ArtifactKey, Err: err}
	}

	filename := a.Filename
	if filename == "" {
		filename = artifact.DefaultFilename
	}

	return &Message{
		From:    n.sender,
		To:      req.To,
		ReplyTo: req.ReplyTo,
		Subject: req.Subject,
		HTML:    req.HTML,
		Text:    req.Text,
		Attachments: []Attachment{{
			Filename:    filename,
			ContentType: a.ContentType,
			Content:     a.Content,
		}},
	}, nil
}
