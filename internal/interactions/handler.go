package interactions

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/HerbHall/govify/pkg/assistant"
	"go.uber.org/zap"
)

// maxBodyBytes bounds the request body of POST /api/log-chat.
const maxBodyBytes = 64 << 10

// Handler accepts interaction log entries.
type Handler struct {
	log    Recorder
	logger *zap.Logger
}

// NewHandler creates an interaction log Handler.
func NewHandler(log Recorder, logger *zap.Logger) *Handler {
	return &Handler{log: log, logger: logger}
}

// RegisterRoutes mounts POST /api/log-chat and its pre-flight.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/log-chat", h.handleLog)
	mux.HandleFunc("OPTIONS /api/log-chat", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// StatusResponse is the body of a successful POST /api/log-chat.
type StatusResponse struct {
	Status string `json:"status"`
}

func (h *Handler) handleLog(w http.ResponseWriter, r *http.Request) {
	var e Entry
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	// Ids are always assigned server side.
	e.ID = ""

	if err := h.log.Record(r.Context(), e); err != nil {
		if assistant.IsValidationError(err) {
			writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}
		h.logger.Error("record interaction failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error logging chat", "")
		return
	}

	h.logger.Debug("interaction logged",
		zap.String("type", e.Type),
		zap.Int("length", len(e.Message)),
	)
	writeJSON(w, http.StatusOK, StatusResponse{Status: "success"})
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
