package assistant

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseReply(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantKind    ReplyKind
		wantContent string
	}{
		{name: "well formed", body: `{"message":{"role":"assistant","content":"Hi there"}}`, wantKind: ReplyOK, wantContent: "Hi there"},
		{name: "extra fields", body: `{"id":"x","message":{"role":"assistant","content":"ok"},"citations":[]}`, wantKind: ReplyOK, wantContent: "ok"},
		{name: "role omitted", body: `{"message":{"content":"ok"}}`, wantKind: ReplyOK, wantContent: "ok"},
		{name: "not json", body: `rate limited`, wantKind: ReplyMalformed},
		{name: "array", body: `[1,2]`, wantKind: ReplyMalformed},
		{name: "missing message", body: `{"reply":"hi"}`, wantKind: ReplyMalformed},
		{name: "null message", body: `{"message":null}`, wantKind: ReplyMalformed},
		{name: "missing content", body: `{"message":{"role":"assistant"}}`, wantKind: ReplyMalformed},
		{name: "numeric content", body: `{"message":{"content":42}}`, wantKind: ReplyMalformed},
		{name: "blank content", body: `{"message":{"content":"  "}}`, wantKind: ReplyMalformed},
		{name: "user role", body: `{"message":{"role":"user","content":"echo"}}`, wantKind: ReplyMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseReply([]byte(tt.body))
			if got.Kind != tt.wantKind {
				t.Fatalf("Kind = %v, want %v (reason %q)", got.Kind, tt.wantKind, got.Reason)
			}
			if got.Content != tt.wantContent {
				t.Errorf("Content = %q, want %q", got.Content, tt.wantContent)
			}
			if tt.wantKind == ReplyMalformed {
				if got.Reason == "" {
					t.Error("expected a reason for malformed reply")
				}
				if !IsMalformedError(got.Err()) {
					t.Errorf("Err() = %v, want malformed_response", got.Err())
				}
			} else if got.Err() != nil {
				t.Errorf("Err() = %v, want nil", got.Err())
			}
		})
	}
}

func TestChatRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     ChatRequest
		wantErr bool
	}{
		{name: "single user", req: ChatRequest{Messages: []Message{{Role: RoleUser, Content: "Hello"}}}},
		{name: "conversation", req: ChatRequest{Messages: []Message{
			{Role: RoleUser, Content: "Hello"},
			{Role: RoleAssistant, Content: "Hi"},
			{Role: RoleUser, Content: "Who is the mayor?"},
		}}},
		{name: "empty", req: ChatRequest{}, wantErr: true},
		{name: "bad role", req: ChatRequest{Messages: []Message{{Role: "system", Content: "x"}}}, wantErr: true},
		{name: "blank user", req: ChatRequest{Messages: []Message{{Role: RoleUser, Content: "   "}}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !IsValidationError(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestReduce_PreservesOrder(t *testing.T) {
	in := []Message{{Role: RoleUser, Content: "a"}, {Role: RoleAssistant, Content: "b"}, {Role: RoleUser, Content: "c"}}
	out := Reduce(in)
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("out[%d] = %+v, want %+v", i, out[i], in[i])
		}
	}
	out[0].Content = "changed"
	if in[0].Content != "a" {
		t.Error("Reduce must copy, not alias")
	}
}

func TestErrorClassification(t *testing.T) {
	up := NewUpstreamError(503, "rate limited")
	if up.Error() != "Assistant API error: 503" {
		t.Errorf("Error() = %q", up.Error())
	}
	wrapped := fmt.Errorf("proxy: %w", up)
	if !IsUpstreamError(wrapped) {
		t.Error("wrapped upstream error not classified")
	}
	if StatusOf(wrapped) != 503 {
		t.Errorf("StatusOf = %d, want 503", StatusOf(wrapped))
	}

	timeout := NewError(ErrCodeTimeout, "timed out", errors.New("deadline"))
	if !IsTransportError(timeout) || !IsTimeoutError(timeout) {
		t.Error("timeout must classify as transport and timeout")
	}
	if errors.Unwrap(timeout) == nil {
		t.Error("expected underlying error")
	}
	if IsConfigurationError(timeout) {
		t.Error("timeout is not a configuration error")
	}
	if StatusOf(errors.New("plain")) != 0 {
		t.Error("StatusOf plain error should be 0")
	}
}
