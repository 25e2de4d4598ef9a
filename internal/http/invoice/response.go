package invoice

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/MrJamesThe3rd/accountill/internal/artifact"
	"github.com/MrJamesThe3rd/accountill/internal/compose"
	"github.com/MrJamesThe3rd/accountill/internal/delivery"
	"github.com/MrJamesThe3rd/accountill/internal/invoice"
	"github.com/MrJamesThe3rd/accountill/internal/notify"
)

type generateResponse struct {
	Success    bool   `json:"success"`
	Token      string `json:"token,omitempty"`
	DeliveryID string `json:"delivery_id,omitempty"`
}

type errorResponse struct {
	Success    bool              `json:"success"`
	Error      string            `json:"error"`
	Stage      delivery.Stage    `json:"stage,omitempty"`
	DeliveryID string            `json:"delivery_id,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
}

type deliveryResponse struct {
	ID          string        `json:"id"`
	Status      notify.Status `json:"status"`
	Recipient   string        `json:"recipient"`
	Error       string        `json:"error,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

func toDeliveryResponse(d *notify.Delivery) deliveryResponse {
	resp := deliveryResponse{
		ID:        d.ID,
		Status:    d.Status(),
		Recipient: d.Recipient,
		CreatedAt: d.CreatedAt,
	}

	if err := d.Err(); err != nil {
		resp.Error = err.Error()
	}

	if t := d.CompletedAt(); !t.IsZero() {
		resp.CompletedAt = &t
	}

	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps pipeline errors to status codes. Stage is taken from the
// error when the dispatcher reported one.
func writeError(w http.ResponseWriter, err error, stage delivery.Stage) {
	writeResultError(w, err, &delivery.Result{Stage: stage})
}

// writeResultError is writeError for a partially processed request; the
// delivery id is echoed so the send can still be looked up.
func writeResultError(w http.ResponseWriter, err error, res *delivery.Result) {
	resp := errorResponse{Error: err.Error()}
	if res != nil {
		resp.Stage = res.Stage
		resp.DeliveryID = res.DeliveryID
	}

	var serr *delivery.StageError
	if errors.As(err, &serr) {
		resp.Stage = serr.Stage
		resp.Error = serr.Err.Error()
	}

	var (
		verr   *invoice.ValidationError
		cerr   *compose.Error
		terr   *notify.TransportError
		aerr   *notify.AttachmentError
		tooBig *http.MaxBytesError
		status int
	)

	switch {
	case errors.As(err, &tooBig):
		status = http.StatusRequestEntityTooLarge
		resp.Error = "request body too large"
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		resp.Fields = verr.Fields
	case errors.As(err, &aerr):
		status = http.StatusInternalServerError
		resp.Error = aerr.Error()
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		resp.Error = "timed out waiting for the mail transport"
	case errors.Is(err, artifact.ErrNotFound):
		status = http.StatusNotFound
		resp.Error = "no document has been generated"
	case errors.As(err, &cerr):
		status = http.StatusInternalServerError
		resp.Error = cerr.Error()
	case errors.As(err, &terr):
		status = http.StatusInternalServerError
		resp.Error = terr.Error()
	default:
		slog.Error("failed to handle invoice request", "stage", resp.Stage, "error", err)

		status = http.StatusInternalServerError
		resp.Error = "internal error"
	}

	writeJSON(w, status, resp)
}
