package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tempDB(t *testing.T) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New(%q): %v", path, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNew_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "govify.db")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file was not created: %v", err)
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestTx_Rollback(t *testing.T) {
	s := tempDB(t)
	ctx := context.Background()

	if _, err := s.DB().ExecContext(ctx, "CREATE TABLE t (id INTEGER PRIMARY KEY)"); err != nil {
		t.Fatalf("create table: %v", err)
	}

	sentinel := errors.New("boom")
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO t (id) VALUES (1)"); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("Tx error = %v, want sentinel", err)
	}

	var count int
	if err := s.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM t").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0 after rollback", count)
	}
}

func TestMigrate_AppliesOnce(t *testing.T) {
	s := tempDB(t)
	ctx := context.Background()

	calls := 0
	migrations := []Migration{
		{Version: 1, Description: "create entries", Up: func(tx *sql.Tx) error {
			calls++
			_, err := tx.Exec("CREATE TABLE entries (id TEXT PRIMARY KEY)")
			return err
		}},
		{Version: 2, Description: "add role", Up: func(tx *sql.Tx) error {
			calls++
			_, err := tx.Exec("ALTER TABLE entries ADD COLUMN role TEXT")
			return err
		}},
	}

	for i := 0; i < 2; i++ {
		if err := s.Migrate(ctx, "history", migrations); err != nil {
			t.Fatalf("Migrate run %d: %v", i, err)
		}
	}
	if calls != 2 {
		t.Errorf("Up called %d times, want 2", calls)
	}
	if _, err := s.DB().ExecContext(ctx, "INSERT INTO entries (id, role) VALUES ('a', 'user')"); err != nil {
		t.Errorf("insert after migrations: %v", err)
	}
}

func TestMigrate_FailureRollsBack(t *testing.T) {
	s := tempDB(t)
	ctx := context.Background()

	err := s.Migrate(ctx, "history", []Migration{
		{Version: 1, Description: "broken", Up: func(tx *sql.Tx) error {
			if _, err := tx.Exec("CREATE TABLE half (id INTEGER)"); err != nil {
				return err
			}
			_, err := tx.Exec("NOT VALID SQL")
			return err
		}},
	})
	if err == nil {
		t.Fatal("expected migration error")
	}

	var n int
	if err := s.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='half'").Scan(&n); err != nil {
		t.Fatalf("query: %v", err)
	}
	if n != 0 {
		t.Error("table from failed migration should not exist")
	}
}

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		name    string
		stored  string
		current string
		wantErr error
	}{
		{name: "first run", stored: "", current: "v0.2.0"},
		{name: "same", stored: "v0.2.0", current: "v0.2.0"},
		{name: "upgrade", stored: "v0.2.0", current: "v0.3.0"},
		{name: "patch without prefix", stored: "0.2.0", current: "0.2.1"},
		{name: "downgrade rejected", stored: "v0.3.0", current: "v0.2.0", wantErr: ErrNewerSchema},
		{name: "dev binary", stored: "v9.0.0", current: "dev"},
		{name: "dev database", stored: "dev", current: "v0.1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tempDB(t)
			ctx := context.Background()
			if tt.stored != "" {
				if err := s.CheckVersion(ctx, tt.stored); err != nil {
					t.Fatalf("seed version: %v", err)
				}
			}

			err := s.CheckVersion(ctx, tt.current)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CheckVersion = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CheckVersion: %v", err)
			}

			var stored string
			if err := s.DB().QueryRowContext(ctx, "SELECT app_version FROM _schema_meta WHERE id = 1").Scan(&stored); err != nil {
				t.Fatalf("read version: %v", err)
			}
			if stored != tt.current {
				t.Errorf("stored version = %q, want %q", stored, tt.current)
			}
		})
	}
}
