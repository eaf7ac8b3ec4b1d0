package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nulbom/go-kiosk/internal/api/middleware"
	"github.com/nulbom/go-kiosk/internal/observability/metrics"
	"github.com/nulbom/go-kiosk/internal/triage"
	"github.com/nulbom/go-kiosk/internal/visit"
	"github.com/nulbom/go-kiosk/pkg/faults"
)

// ReceptionHandler drives the intake flow: identification, symptom triage,
// ticket issuance.
type ReceptionHandler struct {
	workflow *visit.Workflow
	sessions *visit.SessionStore
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewReceptionHandler creates the reception handler.
func NewReceptionHandler(workflow *visit.Workflow, sessions *visit.SessionStore, m *metrics.Metrics, logger *zap.Logger) *ReceptionHandler {
	return &ReceptionHandler{workflow: workflow, sessions: sessions, metrics: m, logger: logger}
}

// Routes returns the handler routes
func (h *ReceptionHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/scan", h.Scan)
	r.Post("/manual", h.Manual)
	r.Post("/symptom", h.ChooseSymptom)
	r.Get("/session", h.Session)
	return r
}

// StageResponse is the per-stage result the presentation layer renders.
type StageResponse struct {
	Step       string           `json:"step"`
	Name       string           `json:"name,omitempty"`
	ResidentID string           `json:"resident_id,omitempty"`
	Department string           `json:"department,omitempty"`
	Ticket     string           `json:"ticket,omitempty"`
	Symptoms   []triage.Symptom `json:"symptoms,omitempty"`
}

func stageFor(sess visit.Session) StageResponse {
	resp := StageResponse{
		Name:       sess.Identity.Name,
		ResidentID: sess.Identity.ResidentID,
		Department: sess.Department,
		Ticket:     sess.Ticket,
	}
	switch sess.State {
	case visit.StateReserved:
		resp.Step = "reserved"
	case visit.StateTicketed:
		resp.Step = "ticket"
	default:
		resp.Step = "symptom"
		resp.Symptoms = triage.Symptoms
	}
	return resp
}

// Scan handles POST /reception/scan
func (h *ReceptionHandler) Scan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := h.workflow.IdentifyByScan(ctx)
	if err != nil {
		h.metrics.VisitsIdentified.WithLabelValues("scan", "error").Inc()
		writeFault(w, err)
		return
	}

	h.sessions.Put(ctx, middleware.GetKioskID(ctx), sess)
	h.metrics.VisitsIdentified.WithLabelValues("scan", string(sess.State)).Inc()
	writeJSON(w, http.StatusOK, stageFor(sess))
}

// ManualRequest is the request body for manual identification.
type ManualRequest struct {
	Name       string `json:"name"`
	ResidentID string `json:"resident_id"`
}

// Manual handles POST /reception/manual
func (h *ReceptionHandler) Manual(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ManualRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFault(w, faults.New(faults.CodeValidation, "invalid request body"))
		return
	}

	sess, err := h.workflow.IdentifyManually(ctx, req.Name, req.ResidentID)
	if err != nil {
		h.metrics.VisitsIdentified.WithLabelValues("manual", "error").Inc()
		writeFault(w, err)
		return
	}

	h.sessions.Put(ctx, middleware.GetKioskID(ctx), sess)
	h.metrics.VisitsIdentified.WithLabelValues("manual", string(sess.State)).Inc()
	writeJSON(w, http.StatusOK, stageFor(sess))
}

// SymptomRequest is the request body for symptom selection.
type SymptomRequest struct {
	Symptom string `json:"symptom"`
}

// ChooseSymptom handles POST /reception/symptom
func (h *ReceptionHandler) ChooseSymptom(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kioskID := middleware.GetKioskID(ctx)

	var req SymptomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFault(w, faults.New(faults.CodeValidation, "invalid request body"))
		return
	}

	sess, ok := h.sessions.Get(ctx, kioskID)
	if !ok {
		writeFault(w, faults.New(faults.CodeSequence,
			"no active visit; restart at identification"))
		return
	}

	sess, err := h.workflow.ChooseSymptom(ctx, sess, req.Symptom)
	if err != nil {
		writeFault(w, err)
		return
	}

	h.sessions.Put(ctx, kioskID, sess)
	h.metrics.TicketsIssued.WithLabelValues(sess.Department).Inc()
	writeJSON(w, http.StatusOK, stageFor(sess))
}

// Session handles GET /reception/session
func (h *ReceptionHandler) Session(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, ok := h.sessions.Get(ctx, middleware.GetKioskID(ctx))
	if !ok {
		writeJSON(w, http.StatusOK, StageResponse{Step: "method"})
		return
	}
	writeJSON(w, http.StatusOK, stageFor(sess))
}
