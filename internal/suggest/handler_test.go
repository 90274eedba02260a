package suggest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"go.uber.org/zap"
)

func postSuggest(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("POST", "/api/suggestions", bytes.NewBufferString(body)))
	return w
}

func decodeSuggestions(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.Questions
}

func TestHandleSuggest_SkipsCoveredTopic(t *testing.T) {
	body := `{"content":"The mayor is Peter Urscheler.","previous":["How do I contact mayor Urscheler?"]}`
	got := decodeSuggestions(t, postSuggest(t, NewHandler(zap.NewNop()), body))

	if slices.Contains(got, "How can I contact the mayor?") {
		t.Errorf("questions %q should skip the contact mayor topic", got)
	}
	if !slices.Contains(got, "What are the mayor's responsibilities?") {
		t.Errorf("questions = %q", got)
	}
}

// Coverage is substring overlap with the topic key, not with the full
// question, so a differently worded question does not cover its topic.
func TestHandleSuggest_RephrasedQuestionNotCovered(t *testing.T) {
	body := `{"content":"The mayor is Peter Urscheler.","previous":["How can I contact the mayor?"]}`
	got := decodeSuggestions(t, postSuggest(t, NewHandler(zap.NewNop()), body))

	want := []string{"What are the mayor's responsibilities?", "How can I contact the mayor?"}
	if !slices.Equal(got, want) {
		t.Errorf("questions = %q, want %q", got, want)
	}
}

func TestHandleSuggest_ExplicitPrevious(t *testing.T) {
	w := postSuggest(t, NewHandler(zap.NewNop()), `{"content":"Hello","previous":[]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp Response
	_ = json.NewDecoder(w.Body).Decode(&resp)
	if len(resp.Questions) != MaxSuggestions {
		t.Errorf("questions = %q, want %d general questions", resp.Questions, MaxSuggestions)
	}
}

func TestHandleSuggest_BadRequest(t *testing.T) {
	for _, body := range []string{`not json`, `{"content":"   "}`} {
		w := postSuggest(t, NewHandler(zap.NewNop()), body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}
