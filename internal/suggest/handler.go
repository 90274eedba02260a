package suggest

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/HerbHall/govify/pkg/assistant"
	"go.uber.org/zap"
)

// Handler serves follow-up suggestions. The server keeps no conversation
// state, so callers send the questions they have already asked.
type Handler struct {
	logger *zap.Logger
}

// NewHandler creates a suggestions Handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger}
}

// RegisterRoutes mounts POST /api/suggestions.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/suggestions", h.handleSuggest)
}

// Request is the body of POST /api/suggestions.
type Request struct {
	Content  string   `json:"content"`
	Previous []string `json:"previous,omitempty"`
}

// Response is the reply of POST /api/suggestions.
type Response struct {
	Questions []string `json:"questions"`
}

func (h *Handler) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "Invalid request body", "content must not be empty")
		return
	}

	questions := Suggest(req.Content, req.Previous)
	h.logger.Debug("suggestions computed",
		zap.Int("previous", len(req.Previous)),
		zap.Int("questions", len(questions)),
	)
	if questions == nil {
		questions = []string{}
	}
	writeJSON(w, http.StatusOK, Response{Questions: questions})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, assistant.ErrorEnvelope{
		Error:     msg,
		Details:   details,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
