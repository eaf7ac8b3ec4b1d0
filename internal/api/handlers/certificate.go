package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nulbom/go-kiosk/internal/api/middleware"
	"github.com/nulbom/go-kiosk/internal/certificate"
	"github.com/nulbom/go-kiosk/internal/observability/metrics"
	"github.com/nulbom/go-kiosk/internal/visit"
	"github.com/nulbom/go-kiosk/pkg/faults"
)

// CertificateHandler issues the prescription and medical confirmation
// documents for the current visit.
type CertificateHandler struct {
	assembler *certificate.Assembler
	renderer  certificate.Renderer
	sessions  *visit.SessionStore
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewCertificateHandler creates the certificate handler.
func NewCertificateHandler(assembler *certificate.Assembler, renderer certificate.Renderer, sessions *visit.SessionStore, m *metrics.Metrics, logger *zap.Logger) *CertificateHandler {
	return &CertificateHandler{
		assembler: assembler,
		renderer:  renderer,
		sessions:  sessions,
		metrics:   m,
		logger:    logger,
	}
}

// Routes returns the handler routes
func (h *CertificateHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/prescription", h.Prescription)
	r.Get("/confirmation", h.Confirmation)
	return r
}

// session returns the current visit session when it holds an identity.
func (h *CertificateHandler) session(r *http.Request) (visit.Session, error) {
	sess, ok := h.sessions.Get(r.Context(), middleware.GetKioskID(r.Context()))
	if !ok || !sess.Identified() {
		return visit.Session{}, faults.New(faults.CodeSequence,
			"certificates require an identified visit; restart at identification")
	}
	return sess, nil
}

// Prescription handles GET /certificate/prescription. The billed
// prescriptions and fee come from the reservation store, not the session.
func (h *CertificateHandler) Prescription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := h.session(r)
	if err != nil {
		writeFault(w, err)
		return
	}

	payload, err := h.assembler.BuildPrescription(ctx, sess.Identity.ResidentID)
	if err != nil {
		h.metrics.CertificatesFailed.Inc()
		writeFault(w, err)
		return
	}
	h.metrics.CertificatesAssembled.WithLabelValues("prescription").Inc()

	doc, err := h.renderer.RenderPrescription(payload)
	if err != nil {
		h.renderError(w, err)
		return
	}
	h.serveDocument(w, doc, h.assembler.Filename("prescription", payload.PatientName, "txt"))
}

// Confirmation handles GET /certificate/confirmation. Only identity and
// department are needed; there is no reservation lookup.
func (h *CertificateHandler) Confirmation(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		writeFault(w, err)
		return
	}
	if sess.Department == "" {
		writeFault(w, faults.New(faults.CodeSequence,
			"confirmation requires a resolved department"))
		return
	}

	payload := h.assembler.BuildConfirmation(
		sess.Identity.Name, sess.Identity.ResidentID, sess.Department)
	h.metrics.CertificatesAssembled.WithLabelValues("confirmation").Inc()

	doc, err := h.renderer.RenderConfirmation(payload)
	if err != nil {
		h.renderError(w, err)
		return
	}
	h.serveDocument(w, doc, h.assembler.Filename("medical_confirmation", payload.PatientName, "txt"))
}

// renderError surfaces renderer faults (missing fonts) as terminal failures.
func (h *CertificateHandler) renderError(w http.ResponseWriter, err error) {
	h.metrics.CertificatesFailed.Inc()
	h.logger.Error("document rendering failed", zap.Error(err))
	if errors.Is(err, certificate.ErrMissingFont) {
		writeFault(w, faults.Wrap(faults.CodeRendering, "document rendering failed", err))
		return
	}
	writeFault(w, faults.Wrap(faults.CodeInternal, "document rendering failed", err))
}

func (h *CertificateHandler) serveDocument(w http.ResponseWriter, doc []byte, filename string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}
