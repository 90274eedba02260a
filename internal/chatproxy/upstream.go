package chatproxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/HerbHall/govify/pkg/assistant"
	"go.uber.org/zap"
)

// maxReplyBytes bounds how much of an assistant response is buffered.
const maxReplyBytes = 4 << 20

// Reply is a successful assistant service response, relayed verbatim.
type Reply struct {
	Status      int
	ContentType string
	Body        []byte
}

// Upstream calls the assistant service chat endpoint.
type Upstream struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewUpstream creates an assistant service client. Every call is bounded by
// cfg.Timeout.
func NewUpstream(cfg Config, logger *zap.Logger) *Upstream {
	cfg = cfg.withDefaults()
	return &Upstream{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Chat forwards messages, reduced to {role, content}, to the assistant
// service. Non-2xx responses return an upstream_error carrying the status
// and body; network failures return transport_error or timeout.
func (u *Upstream) Chat(ctx context.Context, messages []assistant.Message) (*Reply, error) {
	if !u.cfg.HasCredential() {
		return nil, assistant.NewError(assistant.ErrCodeConfiguration, "assistant API key missing", nil)
	}

	body, err := json.Marshal(assistant.ChatRequest{Messages: assistant.Reduce(messages)})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, u.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.cfg.ChatURL(), bytes.NewReader(body))
	if err != nil {
		return nil, assistant.NewError(assistant.ErrCodeConfiguration, "invalid assistant URL", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Api-Key", u.cfg.APIKey)

	u.logger.Debug("forwarding chat request",
		zap.String("url", u.cfg.ChatURL()),
		zap.Int("messages", len(messages)),
	)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, u.mapError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes+1))
	if err != nil {
		return nil, u.mapError(err)
	}
	if len(data) > maxReplyBytes {
		return nil, assistant.NewError(assistant.ErrCodeMalformed,
			fmt.Sprintf("assistant reply exceeds %d bytes", maxReplyBytes), nil)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, assistant.NewUpstreamError(resp.StatusCode, redact(string(data), u.cfg.APIKey))
	}

	return &Reply{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

// mapError translates network errors into typed assistant errors with the
// credential scrubbed from the message.
func (u *Upstream) mapError(err error) error {
	clean := errors.New(redact(err.Error(), u.cfg.APIKey))

	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return assistant.NewError(assistant.ErrCodeTimeout,
			fmt.Sprintf("assistant service did not respond within %s", u.cfg.Timeout), clean)
	}
	if errors.Is(err, context.Canceled) {
		return assistant.NewError(assistant.ErrCodeTransport, "request cancelled", clean)
	}

	msg := err.Error()
	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "dial tcp") {
		return assistant.NewError(assistant.ErrCodeTransport, "assistant service unreachable", clean)
	}
	return assistant.NewError(assistant.ErrCodeTransport, "assistant service error", clean)
}

// redact replaces every occurrence of secret in s.
func redact(s, secret string) string {
	if strings.TrimSpace(secret) == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "[REDACTED]")
}
