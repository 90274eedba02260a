// Package widget is the chat widget client: it owns the conversation state,
// turns user text into chat proxy calls, and folds proxy responses back into
// an append-only transcript.
package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/HerbHall/govify/internal/history"
	"github.com/HerbHall/govify/internal/suggest"
	"github.com/HerbHall/govify/pkg/assistant"
	"go.uber.org/zap"
)

// Status is the client's request state.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusSending Status = "sending"
	StatusError   Status = "error"
)

// FallbackReply is appended to the transcript whenever a submission fails.
const FallbackReply = "Sorry, I encountered an error. Please try again."

// DefaultTimeout bounds a single proxy call from the client side. It sits
// above the proxy's own upstream timeout so the proxy's envelope wins.
const DefaultTimeout = 15 * time.Second

// Paths on the proxy server.
const (
	ChatPath  = "/api/chat-proxy"
	HelloPath = "/api/hello"
	LogPath   = "/api/log-chat"
)

// Rejections returned by Submit and Clear. They leave the state untouched.
var (
	ErrEmptyInput = assistant.NewError(assistant.ErrCodeValidation, "message is empty", nil)
	ErrBusy       = assistant.NewError(assistant.ErrCodeValidation, "a request is already in flight", nil)
)

// State is a point-in-time copy of the conversation.
type State struct {
	Messages  []assistant.Message
	Status    Status
	LastError string
	Debug     string
}

// Item is one rendered transcript element: a message, or the loading
// marker shown while a request is in flight.
type Item struct {
	Message assistant.Message
	Loading bool
}

// Client drives one conversation against a chat proxy. It is safe for
// concurrent use, but admits at most one in-flight submission.
type Client struct {
	baseURL    string
	httpClient *http.Client
	history    history.Store
	logger     *zap.Logger

	logInteractions bool
	userID          string

	mu          sync.Mutex
	messages    []assistant.Message
	status      Status
	lastError   string
	debug       string
	suggestions []string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithHistory sets the question history cache. Defaults to an in-memory
// store of history.DefaultMaxItems entries.
func WithHistory(s history.Store) Option {
	return func(c *Client) { c.history = s }
}

// WithLogger sets the client logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithInteractionLogging posts every question, reply, and failure to the
// server's interaction log under userID (empty means anonymous). Logging is
// best effort and never changes the conversation.
func WithInteractionLogging(userID string) Option {
	return func(c *Client) {
		c.logInteractions = true
		c.userID = userID
	}
}

// New creates a client for the proxy served at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		status:  StatusIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if c.history == nil {
		c.history = history.NewMemoryStore(history.DefaultMaxItems)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// Submit sends text as the next user turn. Blank text and submissions made
// while another is in flight are rejected with ErrEmptyInput or ErrBusy and
// change nothing. Otherwise the user message is appended immediately and
// the call resolves to StatusIdle with the reply appended, or to
// StatusError with FallbackReply appended and the cause returned.
func (c *Client) Submit(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}

	c.mu.Lock()
	if c.status == StatusSending {
		c.mu.Unlock()
		return ErrBusy
	}
	userMsg := assistant.Message{Role: assistant.RoleUser, Content: text}
	c.messages = append(c.messages, userMsg)
	outbound := assistant.Reduce(c.messages)
	c.status = StatusSending
	c.lastError = ""
	c.mu.Unlock()

	// The question is cached as soon as it is asked, whatever the outcome.
	c.remember(ctx, userMsg)
	c.logInteraction(ctx, "user", text)

	content, err := c.send(ctx, outbound)
	if err != nil {
		c.logger.Warn("chat request failed", zap.Error(err))
		c.mu.Lock()
		c.lastError = "Failed to connect: " + err.Error()
		c.messages = append(c.messages, assistant.Message{Role: assistant.RoleAssistant, Content: FallbackReply})
		c.status = StatusError
		c.mu.Unlock()
		c.logInteraction(ctx, "error", err.Error())
		return err
	}

	reply := assistant.Message{Role: assistant.RoleAssistant, Content: content}
	c.remember(ctx, reply)
	c.logInteraction(ctx, "assistant", content)
	next := suggest.Suggest(content, c.previousQuestions(ctx))

	c.mu.Lock()
	c.messages = append(c.messages, reply)
	c.suggestions = next
	c.status = StatusIdle
	c.mu.Unlock()
	return nil
}

// send posts the conversation and returns the validated reply content.
func (c *Client) send(ctx context.Context, messages []assistant.Message) (string, error) {
	body, err := json.Marshal(assistant.ChatRequest{Messages: messages})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ChatPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", assistant.NewError(assistant.ErrCodeTransport, "proxy unreachable", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", assistant.NewError(assistant.ErrCodeTransport, "read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e := assistant.NewUpstreamError(resp.StatusCode, strings.TrimSpace(string(data)))
		e.Message = fmt.Sprintf("API error: %d - %s", resp.StatusCode, e.Body)
		return "", e
	}

	parsed := assistant.ParseReply(data)
	if err := parsed.Err(); err != nil {
		return "", err
	}
	return parsed.Content, nil
}

// remember caches messages in the history store. Failures only get logged.
func (c *Client) remember(ctx context.Context, msgs ...assistant.Message) {
	for _, m := range msgs {
		if err := c.history.Save(ctx, history.FromMessage(m)); err != nil {
			c.logger.Warn("save history failed", zap.Error(err))
			return
		}
	}
}

// logInteraction posts one entry to the interaction log when enabled.
func (c *Client) logInteraction(ctx context.Context, typ, message string) {
	if !c.logInteractions {
		return
	}
	body, err := json.Marshal(map[string]string{
		"type":    typ,
		"message": message,
		"user_id": c.userID,
	})
	if err != nil {
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+LogPath, bytes.NewReader(body))
	if err != nil {
		c.logger.Debug("build interaction log request failed", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("interaction log unavailable", zap.Error(err))
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("interaction log rejected entry", zap.Int("status", resp.StatusCode))
	}
}

func (c *Client) previousQuestions(ctx context.Context) []string {
	qs, err := history.PreviousQuestions(ctx, c.history)
	if err != nil {
		c.logger.Warn("read history failed", zap.Error(err))
		return nil
	}
	return qs
}

// Clear empties the transcript and the history cache and resets the client
// to StatusIdle. It returns ErrBusy while a request is in flight.
func (c *Client) Clear(ctx context.Context) error {
	c.mu.Lock()
	if c.status == StatusSending {
		c.mu.Unlock()
		return ErrBusy
	}
	c.messages = nil
	c.suggestions = nil
	c.lastError = ""
	c.status = StatusIdle
	c.mu.Unlock()

	if err := c.history.Clear(ctx); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Snapshot returns a copy of the current state.
func (c *Client) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	msgs := make([]assistant.Message, len(c.messages))
	copy(msgs, c.messages)
	return State{
		Messages:  msgs,
		Status:    c.status,
		LastError: c.lastError,
		Debug:     c.debug,
	}
}

// Transcript returns the elements to render in order: every message in
// append order, then a loading marker while a request is in flight.
func (c *Client) Transcript() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]Item, 0, len(c.messages)+1)
	for _, m := range c.messages {
		items = append(items, Item{Message: m})
	}
	if c.status == StatusSending {
		items = append(items, Item{Loading: true})
	}
	return items
}

// Suggestions returns the follow-up questions computed from the last
// successful reply.
func (c *Client) Suggestions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.suggestions))
	copy(out, c.suggestions)
	return out
}

// CheckLiveness probes the proxy's hello endpoint and records the outcome
// in State.Debug. It never touches the conversation or its status.
func (c *Client) CheckLiveness(ctx context.Context) error {
	err := c.hello(ctx)
	if err != nil {
		c.setDebug("API test error: " + err.Error())
		return err
	}
	return nil
}

func (c *Client) hello(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+HelloPath, http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API test failed with status: %d", resp.StatusCode)
	}
	var hello assistant.HelloResponse
	if err := json.NewDecoder(resp.Body).Decode(&hello); err != nil {
		return fmt.Errorf("decode hello: %w", err)
	}
	data, err := json.Marshal(hello)
	if err != nil {
		return err
	}
	c.setDebug("API test successful: " + string(data))
	return nil
}

func (c *Client) setDebug(s string) {
	c.mu.Lock()
	c.debug = s
	c.mu.Unlock()
}

// IsRejection reports whether err is a Submit or Clear rejection that left
// the state unchanged.
func IsRejection(err error) bool {
	return errors.Is(err, ErrEmptyInput) || errors.Is(err, ErrBusy)
}
