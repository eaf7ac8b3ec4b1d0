package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nulbom/go-kiosk/internal/observability/metrics"
	"github.com/nulbom/go-kiosk/pkg/faults"
)

// Asker is the assistant surface the handler needs.
type Asker interface {
	Ask(ctx context.Context, question, base64Image string) (string, error)
}

// AssistantHandler proxies visitor questions to the external AI guide. It has
// no dependency on visit workflow state.
type AssistantHandler struct {
	client  Asker
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewAssistantHandler creates the assistant handler.
func NewAssistantHandler(client Asker, m *metrics.Metrics, logger *zap.Logger) *AssistantHandler {
	return &AssistantHandler{client: client, metrics: m, logger: logger}
}

// Routes returns the handler routes
func (h *AssistantHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/ask", h.Ask)
	return r
}

// AskRequest is the request body for an assistant question.
type AskRequest struct {
	Question string `json:"question"`
	Image    string `json:"image,omitempty"`
}

// AskResponse is the assistant's reply.
type AskResponse struct {
	Reply string `json:"reply"`
}

// Ask handles POST /assistant/ask
func (h *AssistantHandler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFault(w, faults.New(faults.CodeValidation, "invalid request body"))
		return
	}

	h.metrics.AssistantRequests.Inc()

	reply, err := h.client.Ask(ctx, req.Question, req.Image)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AskResponse{Reply: reply})
}
