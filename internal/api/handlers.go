package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/nartaq/forms-service/internal/notifier"
	"github.com/nartaq/forms-service/internal/service/forms"
	"github.com/nartaq/forms-service/internal/validation"
)

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	forms  *forms.Service
	mailer *notifier.Service
	db     *sql.DB
	mode   string // active email delivery mode, reported by /health
}

// NewHandlers creates the handler set. db may be nil in tests; /health then
// skips the store probe.
func NewHandlers(formsSvc *forms.Service, mailer *notifier.Service, db *sql.DB, mode string) *Handlers {
	return &Handlers{forms: formsSvc, mailer: mailer, db: db, mode: mode}
}

// SubscribeNewsletter handles POST /api/forms/newsletter.
func (h *Handlers) SubscribeNewsletter(w http.ResponseWriter, r *http.Request) {
	var in validation.NewsletterInput
	if !decodeBody(w, r, &in) {
		return
	}
	respondResult(w, h.forms.SubscribeNewsletter(r.Context(), in))
}

// SubmitInvestorApplication handles POST /api/forms/investor.
func (h *Handlers) SubmitInvestorApplication(w http.ResponseWriter, r *http.Request) {
	var in validation.InvestorInput
	if !decodeBody(w, r, &in) {
		return
	}
	respondResult(w, h.forms.SubmitInvestorApplication(r.Context(), in))
}

// SubmitCareerApplication handles POST /api/forms/career.
func (h *Handlers) SubmitCareerApplication(w http.ResponseWriter, r *http.Request) {
	var in validation.CareerInput
	if !decodeBody(w, r, &in) {
		return
	}
	respondResult(w, h.forms.SubmitCareerApplication(r.Context(), in))
}

// GetSubscribers handles GET /api/admin/subscribers.
func (h *Handlers) GetSubscribers(w http.ResponseWriter, r *http.Request) {
	respondResult(w, h.forms.GetSubscribers(r.Context()))
}

// GetStats handles GET /api/admin/stats.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	respondResult(w, h.forms.GetStats(r.Context()))
}

// SendTestEmail handles POST /api/admin/test-email: sends the generic test
// template to the given recipient through whatever delivery mode the process
// started with. The provider's own error message is surfaced — this is an
// admin diagnostics route, not a public one.
func (h *Handlers) SendTestEmail(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Recipient string `json:"recipient"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Recipient == "" {
		respondJSON(w, http.StatusBadRequest, forms.Result{Success: false, Error: "recipient is required"})
		return
	}

	res, err := h.mailer.Send(r.Context(), notifier.TemplateTest, in.Recipient, map[string]interface{}{
		"mode": h.mode,
	})
	if err != nil {
		respondJSON(w, http.StatusBadGateway, forms.Result{Success: false, Error: err.Error()})
		return
	}
	respondJSON(w, http.StatusOK, forms.Result{Success: true, Data: map[string]string{
		"messageId": res.MessageID,
		"mode":      h.mode,
	}})
}

// HealthCheck handles GET /health.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status": "ok",
		"mode":   h.mode,
		"time":   time.Now().UTC().Format(time.RFC3339),
	}
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			respondSafeError(w, http.StatusServiceUnavailable, err, "Database unreachable")
			return
		}
		status["database"] = "ok"
	}
	respondJSON(w, http.StatusOK, status)
}

// decodeBody parses the JSON request body. A malformed body short-circuits
// with a 400 envelope and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, forms.Result{Success: false, Error: "Invalid request body"})
		return false
	}
	return true
}

// respondResult maps a pipeline result onto an HTTP status: validation
// failures are 400, the duplicate-subscription rejection is 409, any other
// failure is a masked 500. The envelope body is the result itself.
func respondResult(w http.ResponseWriter, res *forms.Result) {
	status := http.StatusOK
	if !res.Success {
		switch {
		case len(res.Details) > 0:
			status = http.StatusBadRequest
		case res.Error == forms.MsgAlreadySubscribed:
			status = http.StatusConflict
		default:
			status = http.StatusInternalServerError
		}
	}
	respondJSON(w, status, res)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
