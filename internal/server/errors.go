package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/HerbHall/govify/pkg/assistant"
)

// WriteJSON writes data as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes the standard {error, details, timestamp} envelope.
func WriteError(w http.ResponseWriter, status int, msg, details string) {
	WriteJSON(w, status, assistant.ErrorEnvelope{
		Error:     msg,
		Details:   details,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// InternalError writes a 500 envelope.
func InternalError(w http.ResponseWriter, details string) {
	WriteError(w, http.StatusInternalServerError, "Internal server error", details)
}

// RateLimited writes a 429 envelope.
func RateLimited(w http.ResponseWriter, details string) {
	WriteError(w, http.StatusTooManyRequests, "Too many requests", details)
}

// NotFound writes a 404 envelope.
func NotFound(w http.ResponseWriter, details string) {
	WriteError(w, http.StatusNotFound, "Not found", details)
}
