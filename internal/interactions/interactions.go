// Package interactions records chat interactions for usage analytics.
// The log is write-only over HTTP: entries can be appended but never read
// back through the API.
package interactions

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/HerbHall/govify/internal/store"
	"github.com/HerbHall/govify/pkg/assistant"
	"github.com/google/uuid"
)

// AnonymousUser is recorded when an entry carries no user id.
const AnonymousUser = "anonymous"

// Interaction types.
const (
	TypeUser      = "user"
	TypeAssistant = "assistant"
	TypeError     = "error"
)

// maxMessageLen bounds a single logged message.
const maxMessageLen = 8 << 10

// Entry is one logged interaction.
type Entry struct {
	ID        string    `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	UserID    string    `json:"user_id,omitempty"`
}

// Validate checks the entry's type and message.
func (e Entry) Validate() error {
	switch e.Type {
	case TypeUser, TypeAssistant, TypeError:
	default:
		return assistant.NewError(assistant.ErrCodeValidation, "invalid interaction type: "+e.Type, nil)
	}
	if strings.TrimSpace(e.Message) == "" {
		return assistant.NewError(assistant.ErrCodeValidation, "message must not be empty", nil)
	}
	if len(e.Message) > maxMessageLen {
		return assistant.NewError(assistant.ErrCodeValidation,
			fmt.Sprintf("message exceeds %d bytes", maxMessageLen), nil)
	}
	return nil
}

// Recorder appends interactions to a log.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// SQLiteLog is a Recorder backed by the chat_interactions table.
type SQLiteLog struct {
	db  *store.SQLiteStore
	now func() time.Time
}

// NewSQLiteLog runs the interaction log migrations and returns a ready log.
func NewSQLiteLog(ctx context.Context, db *store.SQLiteStore) (*SQLiteLog, error) {
	if err := db.Migrate(ctx, "interactions", migrations()); err != nil {
		return nil, fmt.Errorf("migrate interactions: %w", err)
	}
	return &SQLiteLog{db: db, now: time.Now}, nil
}

// Record validates e, fills its defaults, and appends it.
func (l *SQLiteLog) Record(ctx context.Context, e Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = l.now()
	}
	if strings.TrimSpace(e.UserID) == "" {
		e.UserID = AnonymousUser
	}

	_, err := l.db.DB().ExecContext(ctx,
		"INSERT INTO chat_interactions (id, created_at, type, message, user_id) VALUES (?, ?, ?, ?, ?)",
		e.ID, e.Timestamp.UTC().Format(time.RFC3339Nano), e.Type, e.Message, e.UserID,
	)
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	return nil
}

// Count returns the number of logged interactions.
func (l *SQLiteLog) Count(ctx context.Context) (int, error) {
	var n int
	if err := l.db.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM chat_interactions").Scan(&n); err != nil {
		return 0, fmt.Errorf("count interactions: %w", err)
	}
	return n, nil
}

func migrations() []store.Migration {
	return []store.Migration{
		{
			Version:     1,
			Description: "create chat_interactions table",
			Up: func(tx *sql.Tx) error {
				_, err := tx.Exec(`
					CREATE TABLE chat_interactions (
						id         TEXT PRIMARY KEY,
						created_at TEXT NOT NULL,
						type       TEXT NOT NULL,
						message    TEXT NOT NULL,
						user_id    TEXT NOT NULL
					)`)
				return err
			},
		},
	}
}
