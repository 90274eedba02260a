package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/HerbHall/govify/internal/server"
	"go.uber.org/zap"
)

func mockAssistant(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"message":{"role":"assistant","content":"Your bill is due March 31."}}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestApp(t *testing.T, env map[string]string) http.Handler {
	t.Helper()
	t.Chdir(t.TempDir())
	upstream := mockAssistant(t)
	t.Setenv("GOVIFY_ASSISTANT_BASE_URL", upstream.URL)
	t.Setenv("GOVIFY_ASSISTANT_API_KEY", "test-key")
	t.Setenv("GOVIFY_INTERACTIONS_ENABLED", "")
	for k, v := range env {
		t.Setenv(k, v)
	}

	v, err := server.LoadConfig("", "")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	a, err := newApp(context.Background(), v, zap.NewNop())
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a.server.Handler()
}

func request(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(body)))
	return w
}

func TestDefaultConfig_ProxyKeepsNoConversationData(t *testing.T) {
	h := newTestApp(t, nil)

	body := `{"messages":[{"role":"user","content":"Alice Smith, 12 Main St: what is my tax bill?"}]}`
	if w := request(h, http.MethodPost, "/api/chat-proxy", body); w.Code != http.StatusOK {
		t.Fatalf("chat-proxy status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}

	for _, path := range []string{"/api/history", "/api/history/questions", "/api/log-chat"} {
		w := request(h, http.MethodGet, path, "")
		if w.Code == http.StatusOK {
			t.Errorf("GET %s = 200, want no read access", path)
		}
		if strings.Contains(w.Body.String(), "Alice Smith") {
			t.Errorf("GET %s leaked a question: %s", path, w.Body.String())
		}
	}

	if _, err := os.Stat(filepath.Join("data", "govify.db")); !os.IsNotExist(err) {
		t.Errorf("database created with default config (stat err = %v)", err)
	}
}

func TestInteractionLogOptIn(t *testing.T) {
	h := newTestApp(t, map[string]string{"GOVIFY_INTERACTIONS_ENABLED": "true"})

	w := request(h, http.MethodPost, "/api/log-chat", `{"type":"user","message":"When is my water bill due?"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("log-chat status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}

	if w := request(h, http.MethodGet, "/api/log-chat", ""); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET log-chat = %d, want 405", w.Code)
	}
	if w := request(h, http.MethodGet, "/readyz", ""); w.Code != http.StatusOK {
		t.Errorf("readyz = %d, want 200", w.Code)
	}
	if _, err := os.Stat(filepath.Join("data", "govify.db")); err != nil {
		t.Errorf("interaction log database missing: %v", err)
	}
}
