// Package compose draws document markup onto fixed-size PDF pages.
package compose

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/MrJamesThe3rd/accountill/internal/artifact"
	"github.com/MrJamesThe3rd/accountill/internal/encoding"
	"github.com/MrJamesThe3rd/accountill/internal/render"
)

// Compositor renders markup with gofpdf core fonts.
type Compositor struct {
	now     func() time.Time
	creator string
}

type Option func(*Compositor)

// WithClock fixes the timestamp embedded in documents, for reproducible output.
func WithClock(now func() time.Time) Option {
	return func(c *Compositor) {
		c.now = now
	}
}

// WithCreator sets the PDF creator metadata.
func WithCreator(name string) Option {
	return func(c *Compositor) {
		c.creator = name
	}
}

func New(opts ...Option) *Compositor {
	c := &Compositor{now: time.Now, creator: "Accountill"}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Compose renders doc into a PDF artifact. The context is only checked before
// rendering starts; once the engine runs it finishes or fails.
func (c *Compositor) Compose(ctx context.Context, doc *render.Markup, opts LayoutOptions) (a *artifact.Artifact, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format, err := ResolvePageFormat(opts.PageFormat)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			a = nil
			err = &Error{Diagnostic: fmt.Sprintf("engine panic: %v", r)}
		}
	}()

	orientation := "P"
	if opts.Landscape {
		orientation = "L"
	}

	created := c.now()

	pdf := gofpdf.New(orientation, "mm", format, "")
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(created)
	pdf.SetModificationDate(created)
	pdf.SetCreator(c.creator, true)
	pdf.SetTitle(encoding.Windows1252(titleOf(doc)), false)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")

	newPage(pdf, doc).draw()

	if pdf.Err() {
		return nil, &Error{Diagnostic: pdf.Error().Error(), Err: pdf.Error()}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &Error{Diagnostic: err.Error(), Err: err}
	}

	return &artifact.Artifact{
		Content:     buf.Bytes(),
		ContentType: artifact.ContentTypePDF,
		PageFormat:  format,
		Filename:    artifact.DefaultFilename,
		CreatedAt:   created,
	}, nil
}

func titleOf(doc *render.Markup) string {
	if doc.Number == "" {
		return doc.Title
	}

	return doc.Title + " " + doc.Number
}
