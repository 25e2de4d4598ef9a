package invoice

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// Payload is the wire shape accepted by /create-pdf and /send-pdf.
type Payload struct {
	Email         string          `json:"email" validate:"omitempty,email"`
	InvoiceNumber string          `json:"invoiceNumber" validate:"max=64"`
	Type          string          `json:"type" validate:"max=32"`
	Status        string          `json:"status" validate:"max=32"`
	IssueDate     string          `json:"issueDate"`
	DueDate       string          `json:"dueDate"`
	Currency      string          `json:"currency" validate:"omitempty,iso4217"`
	TaxRate       decimal.Decimal `json:"taxRate"`
	AmountPaid    decimal.Decimal `json:"amountPaid"`
	Notes         string          `json:"notes" validate:"max=5000"`
	PaymentLink   string          `json:"link" validate:"omitempty,url"`
	PageFormat    string          `json:"pageFormat"`
	Company       CompanyPayload  `json:"company"`
	Client        ClientPayload   `json:"client"`
	Items         []ItemPayload   `json:"items" validate:"required,min=1,dive"`
}

type CompanyPayload struct {
	Name         string `json:"name"`
	BusinessName string `json:"businessName"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phoneNumber"`
	Address      string `json:"contactAddress"`
}

type ClientPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type ItemPayload struct {
	Description string          `json:"description" validate:"required,max=500"`
	Quantity    decimal.Decimal `json:"qty"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
}

// DecodePayload reads a JSON payload. Malformed JSON is reported as a
// ValidationError; failures of the underlying reader are returned wrapped.
func DecodePayload(r io.Reader) (*Payload, error) {
	src := &readerErr{r: r}

	var p Payload
	if err := json.NewDecoder(src).Decode(&p); err != nil {
		if src.err != nil {
			return nil, fmt.Errorf("reading payload: %w", src.err)
		}

		return nil, NewValidationError("body", "malformed JSON: "+err.Error())
	}

	return &p, nil
}

// readerErr remembers the last non-EOF error of r.
type readerErr struct {
	r   io.Reader
	err error
}

func (e *readerErr) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		e.err = err
	}

	return n, err
}

// Invoice validates the payload and converts it into an Invoice.
// The recipient is the top level email, falling back to the client's address.
func (p *Payload) Invoice() (*Invoice, error) {
	verr := &ValidationError{}

	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))

	if err := validate.Struct(p); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, err
		}

		for _, fe := range fieldErrs {
			verr.Add(fieldPath(fe.Namespace()), "failed on "+fe.Tag())
		}
	}

	inv := &Invoice{
		Number:      strings.TrimSpace(p.InvoiceNumber),
		Type:        strings.TrimSpace(p.Type),
		Status:      strings.TrimSpace(p.Status),
		IssueDate:   parseDate(verr, "issueDate", p.IssueDate),
		DueDate:     parseDate(verr, "dueDate", p.DueDate),
		TaxRate:     p.TaxRate,
		AmountPaid:  p.AmountPaid,
		Currency:    p.Currency,
		Notes:       p.Notes,
		PaymentLink: p.PaymentLink,
		Company: Company{
			Name:         strings.TrimSpace(p.Company.Name),
			BusinessName: strings.TrimSpace(p.Company.BusinessName),
			Email:        strings.TrimSpace(p.Company.Email),
			Phone:        p.Company.Phone,
			Address:      p.Company.Address,
		},
		Client: Client{
			Name:    strings.TrimSpace(p.Client.Name),
			Email:   strings.TrimSpace(p.Client.Email),
			Phone:   p.Client.Phone,
			Address: p.Client.Address,
		},
		RecipientEmail: strings.TrimSpace(p.Email),
	}

	if inv.RecipientEmail == "" {
		inv.RecipientEmail = inv.Client.Email
	}

	inv.Items = make([]LineItem, 0, len(p.Items))
	for _, item := range p.Items {
		inv.Items = append(inv.Items, LineItem{
			Description: strings.TrimSpace(item.Description),
			Quantity:    item.Quantity,
			UnitPrice:   item.Price,
			Discount:    item.Discount,
		})
	}

	if err := inv.Validate(); err != nil {
		var more *ValidationError
		if errors.As(err, &more) {
			for field, msg := range more.Fields {
				verr.Add(field, msg)
			}
		}
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	return inv, nil
}

// fieldPath drops the struct name from a validator namespace ("Payload.items[0].qty").
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}

	return ns
}

func parseDate(verr *ValidationError, field, s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}

	verr.Add(field, "must be a date (YYYY-MM-DD or RFC 3339)")

	return nil
}
