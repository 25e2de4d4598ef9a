package invoice

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when the payload does not name one.
const DefaultCurrency = "USD"

// FallbackSenderName is shown when the company has neither a business name nor a name.
const FallbackSenderName = "Accountill"

// MaxScale is the number of decimal places accepted on amounts and rates.
const MaxScale = 4

var (
	hundred = decimal.NewFromInt(100)

	MaxQuantity   = decimal.New(1, 9)
	MaxUnitPrice  = decimal.New(1, 12)
	MaxAmountPaid = decimal.New(1, 21)
)

// Invoice is the validated invoice record that flows through the document pipeline.
type Invoice struct {
	Number         string
	Type           string // Display label, e.g. "Invoice" or "Receipt".
	Status         string
	IssueDate      *time.Time
	DueDate        *time.Time
	Items          []LineItem
	TaxRate        decimal.Decimal // Percentage applied to the subtotal
	AmountPaid     decimal.Decimal
	Currency       string
	Notes          string // Markdown
	PaymentLink    string
	Company        Company
	Client         Client
	RecipientEmail string
}

// LineItem is a single billed row.
type LineItem struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal // Percentage off the row
}

// Company is the invoicing business.
type Company struct {
	Name         string
	BusinessName string
	Email        string
	Phone        string
	Address      string
}

// Client is the billed party.
type Client struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// Totals are always derived from the line items; totals sent by callers are ignored.
type Totals struct {
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
	AmountPaid decimal.Decimal
	BalanceDue decimal.Decimal
}

// Amount returns quantity * unit price minus the row discount, rounded to cents.
func (li LineItem) Amount() decimal.Decimal {
	gross := li.Quantity.Mul(li.UnitPrice)
	if li.Discount.IsZero() {
		return gross.Round(2)
	}

	return gross.Sub(gross.Mul(li.Discount).Div(hundred)).Round(2)
}

// DisplayName returns the business name, falling back to the personal name.
func (c Company) DisplayName() string {
	if name := strings.TrimSpace(c.BusinessName); name != "" {
		return name
	}

	if name := strings.TrimSpace(c.Name); name != "" {
		return name
	}

	return FallbackSenderName
}

// Totals recomputes the monetary summary of the invoice.
func (inv *Invoice) Totals() Totals {
	subtotal := decimal.Zero
	for _, item := range inv.Items {
		subtotal = subtotal.Add(item.Amount())
	}

	tax := subtotal.Mul(inv.TaxRate).Div(hundred).Round(2)
	total := subtotal.Add(tax)

	return Totals{
		Subtotal:   subtotal,
		Tax:        tax,
		Total:      total,
		AmountPaid: inv.AmountPaid.Round(2),
		BalanceDue: total.Sub(inv.AmountPaid).Round(2),
	}
}

// CurrencyCode returns the ISO 4217 code to format amounts with.
func (inv *Invoice) CurrencyCode() string {
	if inv.Currency == "" {
		return DefaultCurrency
	}

	return strings.ToUpper(inv.Currency)
}

// Label returns the document title, "Invoice" unless the record says otherwise.
func (inv *Invoice) Label() string {
	if inv.Type == "" {
		return "Invoice"
	}

	return inv.Type
}

// Validate checks the fields the renderer cannot do without.
func (inv *Invoice) Validate() error {
	verr := &ValidationError{}

	if len(inv.Items) == 0 {
		verr.Add("items", "at least one line item is required")
	}

	if strings.TrimSpace(inv.RecipientEmail) == "" {
		verr.Add("email", "recipient email is required")
	}

	for i, item := range inv.Items {
		if strings.TrimSpace(item.Description) == "" {
			verr.Add(itemField(i, "description"), "is required")
		}

		switch {
		case !item.Quantity.IsPositive():
			verr.Add(itemField(i, "qty"), "must be greater than zero")
		case !bounded(item.Quantity, MaxQuantity):
			verr.Add(itemField(i, "qty"), "must be at most "+MaxQuantity.String()+" with up to 4 decimal places")
		}

		switch {
		case item.UnitPrice.IsNegative():
			verr.Add(itemField(i, "price"), "must not be negative")
		case !bounded(item.UnitPrice, MaxUnitPrice):
			verr.Add(itemField(i, "price"), "must be at most "+MaxUnitPrice.String()+" with up to 4 decimal places")
		}

		if item.Discount.IsNegative() || !bounded(item.Discount, hundred) {
			verr.Add(itemField(i, "discount"), "must be between 0 and 100")
		}
	}

	if inv.TaxRate.IsNegative() || !bounded(inv.TaxRate, hundred) {
		verr.Add("taxRate", "must be between 0 and 100")
	}

	if inv.AmountPaid.IsNegative() || !bounded(inv.AmountPaid, MaxAmountPaid) {
		verr.Add("amountPaid", "must be between 0 and "+MaxAmountPaid.String())
	}

	return verr.OrNil()
}

// bounded reports whether |d| <= limit and d has at most MaxScale decimal
// places. Size is checked on the exponent and coefficient first so that values
// like 1e3000000 are never expanded.
func bounded(d, limit decimal.Decimal) bool {
	if d.Exponent() < -MaxScale {
		return false
	}

	if d.Coefficient().BitLen() > 128 {
		return false
	}

	if int64(d.NumDigits())+int64(d.Exponent()) > int64(limit.NumDigits())+int64(limit.Exponent()) {
		return false
	}

	return d.Abs().LessThanOrEqual(limit)
}
