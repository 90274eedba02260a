// Package assistant defines the wire contract shared by the chat proxy and
// the chat widget client: conversation messages, the proxy request body,
// the reply shape returned by the assistant service, and the error envelope.
package assistant

import (
	"encoding/json"
	"strings"
)

// Role constants for the Message.Role field.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation turn. Messages are never mutated after
// creation; a transcript is an append-only slice of them.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ValidRole reports whether role is one the assistant service accepts.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAssistant
}

// ChatRequest is the JSON body POSTed to the chat proxy and forwarded to the
// assistant service.
type ChatRequest struct {
	Messages []Message `json:"messages"`
}

// Reduce copies messages keeping only role and content, preserving order.
func Reduce(messages []Message) []Message {
	out := make([]Message, len(messages))
	for i, m := range messages {
		out[i] = Message{Role: m.Role, Content: m.Content}
	}
	return out
}

// Validate checks that the request carries at least one message and that
// every message has a known role and, for user turns, non-blank content.
func (r ChatRequest) Validate() error {
	if len(r.Messages) == 0 {
		return NewError(ErrCodeValidation, "messages must not be empty", nil)
	}
	for _, m := range r.Messages {
		if !ValidRole(m.Role) {
			return NewError(ErrCodeValidation, "invalid message role: "+m.Role, nil)
		}
		if m.Role == RoleUser && strings.TrimSpace(m.Content) == "" {
			return NewError(ErrCodeValidation, "user message content must not be empty", nil)
		}
	}
	return nil
}

// ReplyKind tags the outcome of ParseReply.
type ReplyKind int

const (
	ReplyOK ReplyKind = iota
	ReplyMalformed
)

func (k ReplyKind) String() string {
	if k == ReplyOK {
		return "ok"
	}
	return "malformed"
}

// ParsedReply is the tagged result of validating an assistant service reply.
// Content is set only when Kind is ReplyOK; Reason only when ReplyMalformed.
type ParsedReply struct {
	Kind    ReplyKind
	Content string
	Reason  string
}

// Err returns a malformed_response error for malformed replies, nil otherwise.
func (p ParsedReply) Err() error {
	if p.Kind == ReplyOK {
		return nil
	}
	return NewError(ErrCodeMalformed, "malformed assistant response: "+p.Reason, nil)
}

// wireReply mirrors the expected shape {"message":{"role":"assistant","content":"..."}}.
// Pointer fields distinguish "absent" from "empty".
type wireReply struct {
	Message *struct {
		Role    string  `json:"role"`
		Content *string `json:"content"`
	} `json:"message"`
}

// ParseReply validates data against the reply schema. It never panics on
// unexpected input; anything that is not an object with a string
// message.content is reported as ReplyMalformed.
func ParseReply(data []byte) ParsedReply {
	var r wireReply
	if err := json.Unmarshal(data, &r); err != nil {
		return ParsedReply{Kind: ReplyMalformed, Reason: "invalid JSON: " + err.Error()}
	}
	switch {
	case r.Message == nil:
		return ParsedReply{Kind: ReplyMalformed, Reason: "missing message"}
	case r.Message.Content == nil:
		return ParsedReply{Kind: ReplyMalformed, Reason: "missing message.content"}
	case r.Message.Role != "" && r.Message.Role != RoleAssistant:
		return ParsedReply{Kind: ReplyMalformed, Reason: "unexpected message.role " + r.Message.Role}
	case strings.TrimSpace(*r.Message.Content) == "":
		return ParsedReply{Kind: ReplyMalformed, Reason: "empty message.content"}
	}
	return ParsedReply{Kind: ReplyOK, Content: *r.Message.Content}
}

// ErrorEnvelope is the JSON body of every non-success proxy response.
type ErrorEnvelope struct {
	Error     string `json:"error"`
	Details   string `json:"details,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// HelloResponse is the body of the liveness endpoint.
type HelloResponse struct {
	Message   string `json:"message"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
