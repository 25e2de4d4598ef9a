package invoice_test

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/accountill/internal/invoice"
)

func TestDecodePayload(t *testing.T) {
	type testCase struct {
		name       string
		body       string
		wantFields []string
		check      func(t *testing.T, inv *invoice.Invoice)
	}

	tests := []testCase{
		{
			name: "Minimal",
			body: `{"email":"a@b.com","company":{"name":"Acme","email":"acme@x.com"},
				"items":[{"description":"Widget","qty":2,"price":5}]}`,
			check: func(t *testing.T, inv *invoice.Invoice) {
				assert.Equal(t, "a@b.com", inv.RecipientEmail)
				assert.Equal(t, "Acme", inv.Company.DisplayName())
				assert.Equal(t, "acme@x.com", inv.Company.Email)
				require.Len(t, inv.Items, 1)
				assert.Equal(t, "10", inv.Totals().Total.String())
			},
		},
		{
			name: "RecipientFallsBackToClient",
			body: `{"client":{"name":"Bob","email":"bob@client.io"},"currency":"eur","dueDate":"2026-11-01",
				"items":[{"description":"Audit","qty":"1.5","price":"200.00"}]}`,
			check: func(t *testing.T, inv *invoice.Invoice) {
				assert.Equal(t, "bob@client.io", inv.RecipientEmail)
				assert.Equal(t, "EUR", inv.CurrencyCode())
				require.NotNil(t, inv.DueDate)
				assert.Equal(t, 2026, inv.DueDate.Year())
				assert.Equal(t, "300", inv.Totals().Subtotal.String())
			},
		},
		{
			name:       "MissingItems",
			body:       `{"email":"a@b.com"}`,
			wantFields: []string{"items"},
		},
		{
			name:       "MissingRecipient",
			body:       `{"items":[{"description":"Widget","qty":1,"price":5}]}`,
			wantFields: []string{"email"},
		},
		{
			name:       "InvalidFields",
			body:       `{"email":"not-an-email","currency":"ZZZ","dueDate":"tomorrow","items":[{"qty":1,"price":5}]}`,
			wantFields: []string{"email", "currency", "dueDate", "items[0].description"},
		},
		{
			name: "LowercaseCurrency",
			body: `{"email":"a@b.com","currency":" gbp ","items":[{"description":"Widget","qty":1,"price":5}]}`,
			check: func(t *testing.T, inv *invoice.Invoice) {
				assert.Equal(t, "GBP", inv.Currency)
			},
		},
		{
			name:       "ExponentQuantity",
			body:       `{"email":"a@b.com","items":[{"description":"Widget","qty":"1e3000000","price":5}]}`,
			wantFields: []string{"items[0].qty"},
		},
		{
			name:       "MalformedJSON",
			body:       `{"email":`,
			wantFields: []string{"body"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := invoice.DecodePayload(strings.NewReader(tt.body))
			if err == nil {
				var inv *invoice.Invoice

				inv, err = p.Invoice()
				if len(tt.wantFields) == 0 {
					require.NoError(t, err)
					tt.check(t, inv)

					return
				}
			}

			var verr *invoice.ValidationError
			require.ErrorAs(t, err, &verr)

			for _, f := range tt.wantFields {
				assert.Contains(t, verr.Fields, f)
			}
		})
	}
}

func TestDecodePayload_ReaderFailure(t *testing.T) {
	errRead := errors.New("request body too large")
	r := io.MultiReader(strings.NewReader(`{"email":"a@b.com","notes":"`), iotest.ErrReader(errRead))

	_, err := invoice.DecodePayload(r)
	require.ErrorIs(t, err, errRead)
	assert.NotErrorIs(t, err, invoice.ErrValidation)
}
