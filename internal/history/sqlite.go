package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/HerbHall/govify/internal/store"
	"github.com/google/uuid"
)

// SQLiteStore is a Store persisted in a local SQLite file, so one client
// keeps its question history across sessions.
type SQLiteStore struct {
	db  *store.SQLiteStore
	max int
	now func() time.Time
}

// NewSQLiteStore runs the history migrations and returns a ready store.
func NewSQLiteStore(ctx context.Context, db *store.SQLiteStore, maxItems int) (*SQLiteStore, error) {
	if err := db.Migrate(ctx, "history", migrations()); err != nil {
		return nil, fmt.Errorf("migrate history: %w", err)
	}
	return &SQLiteStore{db: db, max: normalizeMax(maxItems), now: time.Now}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now().UTC()
	}

	return s.db.Tx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO history_entries (id, role, content, created_at) VALUES (?, ?, ?, ?)",
			e.ID, e.Role, e.Content, e.Timestamp.Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert history entry: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			DELETE FROM history_entries
			WHERE seq NOT IN (SELECT seq FROM history_entries ORDER BY seq DESC LIMIT ?)`,
			s.max,
		)
		if err != nil {
			return fmt.Errorf("trim history: %w", err)
		}
		return nil
	})
}

func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.DB().QueryContext(ctx,
		"SELECT id, role, content, created_at FROM history_entries ORDER BY seq DESC LIMIT ?",
		s.max,
	)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e  Entry
			ts string
		)
		if err := rows.Scan(&e.ID, &e.Role, &e.Content, &ts); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		e.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse history timestamp %q: %w", ts, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.DB().ExecContext(ctx, "DELETE FROM history_entries"); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func migrations() []store.Migration {
	return []store.Migration{
		{
			Version:     1,
			Description: "create history_entries table",
			Up: func(tx *sql.Tx) error {
				_, err := tx.Exec(`
					CREATE TABLE history_entries (
						seq        INTEGER PRIMARY KEY AUTOINCREMENT,
						id         TEXT    NOT NULL UNIQUE,
						role       TEXT    NOT NULL,
						content    TEXT    NOT NULL,
						created_at TEXT    NOT NULL
					)`)
				return err
			},
		},
	}
}
