package compose_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/accountill/internal/compose"
	"github.com/MrJamesThe3rd/accountill/internal/invoice"
	"github.com/MrJamesThe3rd/accountill/internal/render"
)

var fixedClock = func() time.Time { return time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC) }

func sampleMarkup() *render.Markup {
	return &render.Markup{
		Title:  "INVOICE",
		Number: "INV-0042",
		Status: "Unpaid",
		From:   render.Party{Heading: "From", Lines: []string{"Acme", "acme@x.com"}},
		BillTo: render.Party{Heading: "Bill to", Lines: []string{"Zoë Ångström", "a@b.com"}},
		Meta: []render.Field{
			{Label: "Invoice #", Value: "INV-0042"},
			{Label: "Currency", Value: "EUR"},
		},
		Columns: []string{"Item", "Qty", "Price", "Disc (%)", "Amount"},
		Rows: [][]string{
			{"Widget", "2", "€5.00", "0", "€10.00"},
			{strings.Repeat("A very long description that wraps ", 6), "1", "€40.00", "50", "€20.00"},
		},
		Summary: []render.Field{
			{Label: "Subtotal", Value: "€30.00"},
			{Label: "Total", Value: "€33.00", Emphasis: true},
		},
		Notes:       []string{"Thanks for your business.", "日本語 is not in the core fonts."},
		PaymentLink: "https://pay.example.com/inv-0042",
	}
}

func TestCompose(t *testing.T) {
	c := compose.New(compose.WithClock(fixedClock))

	a, err := c.Compose(context.Background(), sampleMarkup(), compose.LayoutOptions{})
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(a.Content, []byte("%PDF-")))
	assert.Equal(t, "A4", a.PageFormat)
	assert.Equal(t, "application/pdf", a.ContentType)
	assert.Equal(t, "invoice.pdf", a.Filename)
	assert.Equal(t, fixedClock(), a.CreatedAt)
	assert.Empty(t, a.Key)
}

func TestCompose_PageFormats(t *testing.T) {
	type testCase struct {
		name     string
		format   string
		want     string
		mediaBox string
	}

	tests := []testCase{
		{name: "Default", format: "", want: "A4", mediaBox: "/MediaBox [0 0 595.28 841.89]"},
		{name: "Letter", format: "Letter", want: "Letter", mediaBox: "/MediaBox [0 0 612.00 792.00]"},
		{name: "CaseInsensitive", format: "legal", want: "Legal", mediaBox: "/MediaBox [0 0 612.00 1008.00]"},
	}

	c := compose.New(compose.WithClock(fixedClock))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := c.Compose(context.Background(), sampleMarkup(), compose.LayoutOptions{PageFormat: tt.format})
			require.NoError(t, err)

			assert.Equal(t, tt.want, a.PageFormat)
			assert.Contains(t, string(a.Content), tt.mediaBox)
		})
	}
}

func TestCompose_UnknownFormat(t *testing.T) {
	c := compose.New()

	a, err := c.Compose(context.Background(), sampleMarkup(), compose.LayoutOptions{PageFormat: "B7"})
	require.ErrorIs(t, err, invoice.ErrValidation)
	assert.Nil(t, a)
}

func TestCompose_Deterministic(t *testing.T) {
	c := compose.New(compose.WithClock(fixedClock))

	first, err := c.Compose(context.Background(), sampleMarkup(), compose.LayoutOptions{PageFormat: "A5"})
	require.NoError(t, err)

	second, err := c.Compose(context.Background(), sampleMarkup(), compose.LayoutOptions{PageFormat: "A5"})
	require.NoError(t, err)

	assert.Equal(t, first.Content, second.Content)
}

func TestCompose_ManyRowsSpanPages(t *testing.T) {
	doc := sampleMarkup()
	for range 120 {
		doc.Rows = append(doc.Rows, []string{"Line", "1", "€1.00", "0", "€1.00"})
	}

	a, err := compose.New().Compose(context.Background(), doc, compose.LayoutOptions{})
	require.NoError(t, err)
	assert.NotContains(t, string(a.Content), "/Count 1\n")
}

func TestCompose_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := compose.New().Compose(ctx, sampleMarkup(), compose.LayoutOptions{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestResolvePageFormat(t *testing.T) {
	for in, want := range map[string]string{"a3": "A3", " A4 ": "A4", "TABLOID": "Tabloid"} {
		got, err := compose.ResolvePageFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestError(t *testing.T) {
	err := &compose.Error{Diagnostic: "font missing"}
	assert.Equal(t, "composing document: font missing", err.Error())
}
