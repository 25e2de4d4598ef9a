// Package delivery runs the invoice pipeline: render, compose, persist and
// optionally notify the client.
package delivery

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/accountill/internal/artifact"
	"github.com/MrJamesThe3rd/accountill/internal/compose"
	"github.com/MrJamesThe3rd/accountill/internal/invoice"
	"github.com/MrJamesThe3rd/accountill/internal/notify"
	"github.com/MrJamesThe3rd/accountill/internal/render"
)

//go:generate mockgen -source=dispatcher.go -destination=dependencies_mock.go -package=delivery
type Compositor interface {
	Compose(ctx context.Context, doc *render.Markup, opts compose.LayoutOptions) (*artifact.Artifact, error)
}

type Store interface {
	Save(ctx context.Context, a *artifact.Artifact) error
	Load(ctx context.Context, key string) (*artifact.Artifact, error)
}

// Notifier sends the invoice email and returns once the transport answered.
type Notifier interface {
	Send(ctx context.Context, req notify.Request) (*notify.Delivery, error)
}

type Dispatcher struct {
	compositor Compositor
	store      Store
	notifier   Notifier
	newKey     func() string
	pageFormat string
}

type Option func(*Dispatcher)

// WithKeyFunc overrides the request token generator.
func WithKeyFunc(fn func() string) Option {
	return func(d *Dispatcher) {
		d.newKey = fn
	}
}

// WithDefaultPageFormat sets the page format used when a request names none.
func WithDefaultPageFormat(format string) Option {
	return func(d *Dispatcher) {
		d.pageFormat = format
	}
}

func New(compositor Compositor, store Store, notifier Notifier, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		compositor: compositor,
		store:      store,
		notifier:   notifier,
		newKey:     uuid.NewString,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Generate renders, composes and saves the invoice document.
func (d *Dispatcher) Generate(ctx context.Context, inv *invoice.Invoice, layout compose.LayoutOptions) (*Result, error) {
	res := &Result{Stage: StageReceived}

	if err := d.generate(ctx, inv, layout, res); err != nil {
		return res, err
	}

	res.Stage = StageCompleted

	return res, nil
}

// GenerateAndNotify generates the document and emails it to the invoice
// recipient. It returns once the mail transport accepted the message.
func (d *Dispatcher) GenerateAndNotify(ctx context.Context, inv *invoice.Invoice, layout compose.LayoutOptions) (*Result, error) {
	res := &Result{Stage: StageReceived}

	if err := d.generate(ctx, inv, layout, res); err != nil {
		return res, err
	}

	res.Stage = StageNotifying

	msg, err := render.Notification(inv)
	if err != nil {
		return res, fail(res, err)
	}

	sent, err := d.notifier.Send(ctx, notify.Request{
		To:          inv.RecipientEmail,
		ReplyTo:     inv.Company.Email,
		Subject:     msg.Subject,
		HTML:        msg.HTML,
		Text:        msg.Text,
		ArtifactKey: res.Key,
	})
	if sent != nil {
		res.DeliveryID = sent.ID
	}

	if err != nil {
		return res, fail(res, err)
	}

	res.Stage = StageCompleted

	return res, nil
}

// Fetch returns a saved artifact. artifact.Latest returns the newest one.
func (d *Dispatcher) Fetch(ctx context.Context, key string) (*artifact.Artifact, error) {
	a, err := d.store.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetching artifact: %w", err)
	}

	return a, nil
}

func (d *Dispatcher) generate(ctx context.Context, inv *invoice.Invoice, layout compose.LayoutOptions, res *Result) error {
	res.Stage = StageRendering

	doc, err := render.Document(inv)
	if err != nil {
		return fail(res, err)
	}

	res.Stage = StageComposing

	if layout.PageFormat == "" {
		layout.PageFormat = d.pageFormat
	}

	a, err := d.compositor.Compose(ctx, doc, layout)
	if err != nil {
		return fail(res, err)
	}

	a.Key = d.newKey()

	if err := d.store.Save(ctx, a); err != nil {
		return fail(res, fmt.Errorf("saving artifact: %w", err))
	}

	res.Key = a.Key
	res.Stage = StagePersisted

	slog.Info("invoice document generated", "key", a.Key, "page_format", a.PageFormat, "size", a.Size())

	return nil
}

func fail(res *Result, err error) error {
	serr := &StageError{Stage: res.Stage, Err: err}
	res.Stage = StageFailed

	slog.Error("failed to process invoice", "stage", serr.Stage, "key", res.Key, "error", err)

	return serr
}
