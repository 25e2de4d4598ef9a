package resend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	resendapi "github.com/resend/resend-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/accountill/internal/notify"
	"github.com/MrJamesThe3rd/accountill/internal/notify/resend"
)

func newTransport(t *testing.T, handler http.HandlerFunc) *resend.Transport {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := resendapi.NewClient("re_test")
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base

	return resend.NewWithClient(client)
}

func TestTransport_Send(t *testing.T) {
	var got map[string]any

	tr := newTransport(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"email_123"}`))
	})

	err := tr.Send(context.Background(), &notify.Message{
		From:    notify.DefaultSender,
		To:      "a@b.com",
		ReplyTo: "acme@x.com",
		Subject: "Invoice from Acme",
		HTML:    "<p>Hi</p>",
		Attachments: []notify.Attachment{
			{Filename: "invoice.pdf", ContentType: "application/pdf", Content: []byte("%PDF")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Accountill <hello@accountill.com>", got["from"])
	assert.Equal(t, []any{"a@b.com"}, got["to"])
	assert.Equal(t, "Invoice from Acme", got["subject"])
	assert.NotEmpty(t, got["attachments"])
}

func TestTransport_SendRejected(t *testing.T) {
	tr := newTransport(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"Invalid to field"}`))
	})

	err := tr.Send(context.Background(), &notify.Message{From: notify.DefaultSender, To: "bad", Subject: "x"})
	require.Error(t, err)
	assert.Equal(t, "resend", tr.Name())
}
