// Package chatproxy implements the chat proxy endpoint: it validates browser
// chat requests, attaches the server-held assistant credential, forwards the
// conversation to the assistant service, and relays the reply or a
// normalized error envelope.
package chatproxy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/HerbHall/govify/pkg/assistant"
	"go.uber.org/zap"
)

// Error messages returned in the envelope's "error" field.
const (
	msgMethodNotAllowed = "Method not allowed"
	msgConfigMissing    = "Server configuration error - API key missing"
	msgInvalidBody      = "Invalid request body"
	msgTransport        = "Error connecting to assistant service"
)

// maxRequestBytes bounds the accepted browser request body.
const maxRequestBytes = 1 << 20

// Forwarder sends a conversation to the assistant service.
type Forwarder interface {
	Chat(ctx context.Context, messages []assistant.Message) (*Reply, error)
}

// Handler is the chat proxy endpoint. It holds no per-request state, keeps
// no conversation data, and is safe for concurrent use.
type Handler struct {
	cfg      Config
	upstream Forwarder
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithForwarder replaces the default HTTP upstream.
func WithForwarder(f Forwarder) Option {
	return func(h *Handler) { h.upstream = f }
}

// NewHandler creates the proxy handler from an explicit configuration.
func NewHandler(cfg Config, logger *zap.Logger, opts ...Option) *Handler {
	cfg = cfg.withDefaults()
	h := &Handler{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.upstream == nil {
		h.upstream = NewUpstream(cfg, logger)
	}
	return h
}

// RegisterRoutes mounts the proxy. /api/pinecone is kept for clients built
// against the legacy route name. Method dispatch happens in ServeHTTP so
// pre-flight and 405 responses share the endpoint's envelope.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/api/chat-proxy", h)
	mux.Handle("/api/pinecone", h)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		writeJSON(w, http.StatusMethodNotAllowed, assistant.ErrorEnvelope{Error: msgMethodNotAllowed})
		return
	}

	if !h.cfg.HasCredential() {
		h.logger.Error("assistant API key not configured; refusing to forward")
		assistantRequestsTotal.WithLabelValues(outcomeConfigError).Inc()
		writeJSON(w, http.StatusInternalServerError, assistant.ErrorEnvelope{Error: msgConfigMissing})
		return
	}

	var req assistant.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		assistantRequestsTotal.WithLabelValues(outcomeInvalidRequest).Inc()
		writeJSON(w, http.StatusBadRequest, assistant.ErrorEnvelope{Error: msgInvalidBody, Details: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		assistantRequestsTotal.WithLabelValues(outcomeInvalidRequest).Inc()
		writeJSON(w, http.StatusBadRequest, assistant.ErrorEnvelope{Error: msgInvalidBody, Details: err.Error()})
		return
	}

	start := h.now()
	reply, err := h.upstream.Chat(r.Context(), req.Messages)
	assistantRequestDuration.Observe(h.now().Sub(start).Seconds())
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}

	assistantRequestsTotal.WithLabelValues(outcomeSuccess).Inc()
	ct := reply.ContentType
	if ct == "" {
		ct = "application/json"
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(reply.Status)
	_, _ = w.Write(reply.Body)
}

// writeUpstreamError maps a forwarding failure to its envelope and status.
func (h *Handler) writeUpstreamError(w http.ResponseWriter, err error) {
	switch {
	case assistant.IsUpstreamError(err):
		var ae *assistant.Error
		errors.As(err, &ae)
		status, body := ae.Status, ae.Body
		h.logger.Warn("assistant service returned an error",
			zap.Int("status", status),
			zap.String("url", h.cfg.ChatURL()),
			zap.String("details", body),
		)
		assistantRequestsTotal.WithLabelValues(outcomeUpstreamError).Inc()
		writeJSON(w, status, assistant.ErrorEnvelope{Error: ae.Message, Details: body})

	case assistant.IsConfigurationError(err):
		h.logger.Error("assistant configuration error", zap.Error(err))
		assistantRequestsTotal.WithLabelValues(outcomeConfigError).Inc()
		writeJSON(w, http.StatusInternalServerError, assistant.ErrorEnvelope{Error: msgConfigMissing})

	default:
		outcome := outcomeTransportError
		switch {
		case assistant.IsTimeoutError(err):
			outcome = outcomeTimeout
		case assistant.IsMalformedError(err):
			outcome = outcomeMalformed
		}
		h.logger.Error("error proxying to assistant service",
			zap.String("url", h.cfg.ChatURL()),
			zap.String("outcome", outcome),
			zap.Error(err),
		)
		assistantRequestsTotal.WithLabelValues(outcome).Inc()
		writeJSON(w, http.StatusInternalServerError, assistant.ErrorEnvelope{
			Error:     msgTransport,
			Details:   redact(err.Error(), h.cfg.APIKey),
			Timestamp: h.now().UTC().Format(time.RFC3339),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
