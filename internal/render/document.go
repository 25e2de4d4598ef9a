// Package render turns invoices into document markup and notification bodies.
// Everything here is pure: no I/O and no clock.
package render

import (
	"strings"
	"time"

	"golang.org/x/text/currency"

	"github.com/MrJamesThe3rd/accountill/internal/invoice"
)

const dateLayout = "2 Jan 2006"

// Markup is the fixed-layout description of an invoice document.
type Markup struct {
	Title       string
	Number      string
	Status      string
	IssuedAt    time.Time // zero when the invoice has no issue date
	From        Party
	BillTo      Party
	Meta        []Field
	Columns     []string
	Rows        [][]string
	Summary     []Field
	Notes       []string
	PaymentLink string
}

// Party is an address block.
type Party struct {
	Heading string
	Lines   []string
}

// Field is a label/value pair. Emphasis marks the grand total style rows.
type Field struct {
	Label    string
	Value    string
	Emphasis bool
}

// Document builds the markup for an invoice.
func Document(inv *invoice.Invoice) (*Markup, error) {
	if err := inv.Validate(); err != nil {
		return nil, err
	}

	m := newMoney(inv.CurrencyCode(), currency.ISO)
	totals := inv.Totals()

	doc := &Markup{
		Title:       strings.ToUpper(inv.Label()),
		Number:      inv.Number,
		Status:      inv.Status,
		PaymentLink: inv.PaymentLink,
		From: Party{
			Heading: "From",
			Lines:   nonEmpty(inv.Company.DisplayName(), inv.Company.Email, inv.Company.Phone, inv.Company.Address),
		},
		BillTo: Party{
			Heading: "Bill to",
			Lines:   nonEmpty(inv.Client.Name, inv.RecipientEmail, inv.Client.Phone, inv.Client.Address),
		},
		Columns: []string{"Item", "Qty", "Price", "Disc (%)", "Amount"},
		Notes:   paragraphs(inv.Notes),
	}

	if inv.IssueDate != nil {
		doc.IssuedAt = *inv.IssueDate
	}

	if inv.Number != "" {
		doc.Meta = append(doc.Meta, Field{Label: inv.Label() + " #", Value: inv.Number})
	}

	if inv.IssueDate != nil {
		doc.Meta = append(doc.Meta, Field{Label: "Date", Value: inv.IssueDate.Format(dateLayout)})
	}

	if inv.DueDate != nil {
		doc.Meta = append(doc.Meta, Field{Label: "Due date", Value: inv.DueDate.Format(dateLayout)})
	}

	if inv.Status != "" {
		doc.Meta = append(doc.Meta, Field{Label: "Status", Value: inv.Status})
	}

	doc.Meta = append(doc.Meta, Field{Label: "Currency", Value: inv.CurrencyCode()})

	for _, item := range inv.Items {
		doc.Rows = append(doc.Rows, []string{
			item.Description,
			item.Quantity.String(),
			m.format(item.UnitPrice),
			item.Discount.String(),
			m.format(item.Amount()),
		})
	}

	doc.Summary = []Field{
		{Label: "Subtotal", Value: m.format(totals.Subtotal)},
		{Label: "Tax (" + inv.TaxRate.String() + "%)", Value: m.format(totals.Tax)},
		{Label: "Total", Value: m.format(totals.Total), Emphasis: true},
	}

	if !totals.AmountPaid.IsZero() {
		doc.Summary = append(doc.Summary,
			Field{Label: "Paid", Value: m.format(totals.AmountPaid)},
			Field{Label: "Balance due", Value: m.format(totals.BalanceDue), Emphasis: true},
		)
	}

	return doc, nil
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	return out
}

// paragraphs splits text on blank lines and folds the lines within each paragraph.
func paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var out []string

	for _, block := range strings.Split(text, "\n\n") {
		if p := strings.Join(strings.Fields(block), " "); p != "" {
			out = append(out, p)
		}
	}

	return out
}
