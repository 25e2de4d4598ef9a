package invoice

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/accountill/internal/artifact"
	"github.com/MrJamesThe3rd/accountill/internal/compose"
	"github.com/MrJamesThe3rd/accountill/internal/delivery"
	"github.com/MrJamesThe3rd/accountill/internal/encoding"
	"github.com/MrJamesThe3rd/accountill/internal/invoice"
	"github.com/MrJamesThe3rd/accountill/internal/notify"
)

const defaultMaxBody = 1 << 20

type Dispatcher interface {
	Generate(ctx context.Context, inv *invoice.Invoice, layout compose.LayoutOptions) (*delivery.Result, error)
	GenerateAndNotify(ctx context.Context, inv *invoice.Invoice, layout compose.LayoutOptions) (*delivery.Result, error)
	Fetch(ctx context.Context, key string) (*artifact.Artifact, error)
}

type Deliveries interface {
	Lookup(id string) (*notify.Delivery, error)
}

type Handler struct {
	dispatcher Dispatcher
	deliveries Deliveries
	maxBody    int64
}

func NewHandler(dispatcher Dispatcher, deliveries Deliveries) *Handler {
	return &Handler{dispatcher: dispatcher, deliveries: deliveries, maxBody: defaultMaxBody}
}

// WithMaxBody limits the accepted request body size.
func (h *Handler) WithMaxBody(n int64) *Handler {
	if n > 0 {
		h.maxBody = n
	}

	return h
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/send-pdf", h.send)
	r.Post("/create-pdf", h.create)
	r.Get("/fetch-pdf", h.fetch)
	r.Get("/deliveries/{id}", h.deliveryStatus)
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	inv, layout, err := h.decode(w, r)
	if err != nil {
		writeError(w, err, delivery.StageReceived)
		return
	}

	res, err := h.dispatcher.GenerateAndNotify(r.Context(), inv, layout)
	if err != nil {
		writeResultError(w, err, res)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{Success: true, Token: res.Key, DeliveryID: res.DeliveryID})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	inv, layout, err := h.decode(w, r)
	if err != nil {
		writeError(w, err, delivery.StageReceived)
		return
	}

	res, err := h.dispatcher.Generate(r.Context(), inv, layout)
	if err != nil {
		writeResultError(w, err, res)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{Success: true, Token: res.Key})
}

func (h *Handler) fetch(w http.ResponseWriter, r *http.Request) {
	a, err := h.dispatcher.Fetch(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		writeError(w, err, "")
		return
	}

	w.Header().Set("Content-Type", a.ContentType)
	w.Header().Set("Content-Disposition", `inline; filename="`+a.Filename+`"`)

	http.ServeContent(w, r, a.Filename, a.CreatedAt, bytes.NewReader(a.Content))
}

func (h *Handler) deliveryStatus(w http.ResponseWriter, r *http.Request) {
	d, err := h.deliveries.Lookup(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, notify.ErrDeliveryNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "delivery not found"})
			return
		}

		writeError(w, err, "")

		return
	}

	writeJSON(w, http.StatusOK, toDeliveryResponse(d))
}

// decode normalises the body to UTF-8 and validates it into an invoice. The
// format query parameter takes precedence over the body's pageFormat.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (*invoice.Invoice, compose.LayoutOptions, error) {
	body, err := encoding.NewUTF8Reader(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		return nil, compose.LayoutOptions{}, err
	}

	payload, err := invoice.DecodePayload(body)
	if err != nil {
		return nil, compose.LayoutOptions{}, err
	}

	inv, err := payload.Invoice()
	if err != nil {
		return nil, compose.LayoutOptions{}, err
	}

	layout := compose.LayoutOptions{PageFormat: payload.PageFormat}
	if format := r.URL.Query().Get("format"); format != "" {
		layout.PageFormat = format
	}

	layout.Landscape = r.URL.Query().Get("orientation") == "landscape"

	if _, err := compose.ResolvePageFormat(layout.PageFormat); err != nil {
		return nil, compose.LayoutOptions{}, err
	}

	return inv, layout, nil
}
