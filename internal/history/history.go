// Package history keeps a client's bounded, most-recent-first cache of chat
// turns so the widget can show previously asked questions and avoid
// suggesting them again. It is owned by a single client; the server never
// holds conversation history.
package history

import (
	"context"
	"strings"
	"time"

	"github.com/HerbHall/govify/pkg/assistant"
)

// DefaultMaxItems bounds the cache when no explicit limit is configured.
const DefaultMaxItems = 20

// Entry is one cached conversation turn.
type Entry struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Store persists entries, newest first, trimming to its configured limit.
type Store interface {
	// Save stamps e with an ID and timestamp when missing and prepends it.
	Save(ctx context.Context, e Entry) error
	// List returns all cached entries, most recent first.
	List(ctx context.Context) ([]Entry, error)
	// Clear removes every entry.
	Clear(ctx context.Context) error
}

// FromMessage converts a transcript message into an unsaved entry.
func FromMessage(m assistant.Message) Entry {
	return Entry{Role: m.Role, Content: m.Content}
}

// PreviousQuestions returns the content of cached user entries, most recent
// first.
func PreviousQuestions(ctx context.Context, s Store) ([]string, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	questions := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Role == assistant.RoleUser && strings.TrimSpace(e.Content) != "" {
			questions = append(questions, e.Content)
		}
	}
	return questions, nil
}

func normalizeMax(n int) int {
	if n <= 0 {
		return DefaultMaxItems
	}
	return n
}
