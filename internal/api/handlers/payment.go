package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nulbom/go-kiosk/internal/api/middleware"
	"github.com/nulbom/go-kiosk/internal/billing"
	"github.com/nulbom/go-kiosk/internal/observability/metrics"
	"github.com/nulbom/go-kiosk/internal/visit"
	"github.com/nulbom/go-kiosk/pkg/faults"
)

// PaymentHandler serves the payment stage: fee selection and ledger appends.
type PaymentHandler struct {
	selector *billing.Selector
	ledger   *billing.Ledger
	workflow *visit.Workflow
	sessions *visit.SessionStore
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewPaymentHandler creates the payment handler.
func NewPaymentHandler(selector *billing.Selector, ledger *billing.Ledger, workflow *visit.Workflow, sessions *visit.SessionStore, m *metrics.Metrics, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		selector: selector,
		ledger:   ledger,
		workflow: workflow,
		sessions: sessions,
		metrics:  m,
		logger:   logger,
	}
}

// Routes returns the handler routes
func (h *PaymentHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/prescriptions", h.SelectPrescriptions)
	r.Post("/", h.Record)
	r.Get("/{id}", h.Get)
	return r
}

// SelectPrescriptions handles GET /payment/prescriptions. It draws the billed
// set for the visit's department and retains it on the session for display.
func (h *PaymentHandler) SelectPrescriptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kioskID := middleware.GetKioskID(ctx)

	sess, ok := h.sessions.Get(ctx, kioskID)
	if !ok || !sess.Ticketed() {
		writeFault(w, faults.New(faults.CodeSequence,
			"fee selection requires a ticketed visit"))
		return
	}

	sel, err := h.selector.Select(ctx, sess.Department)
	if err != nil {
		writeFault(w, err)
		return
	}

	items := make([]visit.SelectedItem, len(sel.Items))
	for i, it := range sel.Items {
		items[i] = visit.SelectedItem{Name: it.Prescription, Fee: it.Fee}
	}
	sess, err = h.workflow.AttachSelection(sess, visit.Selection{
		Items:    items,
		TotalFee: sel.TotalFee,
	})
	if err != nil {
		writeFault(w, err)
		return
	}
	h.sessions.Put(ctx, kioskID, sess)

	h.metrics.SelectionsServed.Inc()
	writeJSON(w, http.StatusOK, sel)
}

// RecordRequest is the request body for recording a payment.
type RecordRequest struct {
	Amount int    `json:"amount"`
	Method string `json:"method"`
}

// Record handles POST /payment
func (h *PaymentHandler) Record(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFault(w, faults.New(faults.CodeValidation, "invalid request body"))
		return
	}
	if req.Amount <= 0 {
		writeFault(w, faults.New(faults.CodeValidation, "amount must be positive"))
		return
	}
	if req.Method == "" {
		req.Method = "card"
	}

	sess, ok := h.sessions.Get(ctx, middleware.GetKioskID(ctx))
	if !ok || !sess.Identified() {
		writeFault(w, faults.New(faults.CodeSequence,
			"payment requires an identified visit"))
		return
	}

	payment := h.ledger.Append(ctx, sess.Identity.ResidentID, req.Amount, req.Method)
	h.metrics.PaymentsRecorded.Inc()
	writeJSON(w, http.StatusCreated, payment)
}

// Get handles GET /payment/{id}
func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	payment, ok := h.ledger.Find(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "payment not found"})
		return
	}
	writeJSON(w, http.StatusOK, payment)
}
