package storedb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func seedProject(t *testing.T, store *Store, id string) {
	t.Helper()
	_, err := store.DB().ExecContext(context.Background(),
		`INSERT INTO projects (id, name, slug, project_type, root_path, owner_user_id)
		 VALUES (?, ?, ?, 'translation', '/tmp/'||?, 'owner-1')`,
		id, id, id, id)
	if err != nil {
		t.Fatalf("seedProject failed: %v", err)
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := Open(dbPath, JournalModeWAL, SynchronousNormal)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenAndClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath, JournalModeWAL, SynchronousNormal)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpenAppliesMigrations(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tables := []string{
		"projects", "project_files", "project_language_pairs",
		"file_targets", "conversions", "artifacts", "jobs",
		"notes", "validations", "schema_migrations",
	}
	for _, table := range tables {
		var name string
		err := store.DB().QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing after migration: %v", table, err)
		}
	}

	var count int
	if err := store.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count schema_migrations: %v", err)
	}
	if count != 2 {
		t.Errorf("applied migrations = %d, want 2", count)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store1, err := Open(dbPath, JournalModeWAL, SynchronousNormal)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	store1.Close()

	store2, err := Open(dbPath, JournalModeWAL, SynchronousNormal)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer store2.Close()

	var count int
	if err := store2.DB().QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count schema_migrations: %v", err)
	}
	if count != 2 {
		t.Errorf("applied migrations on reopen = %d, want 2 (no duplicate apply)", count)
	}
}

func TestPragmasApplied(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	var journalMode string
	if err := store.DB().QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %q, want wal", journalMode)
	}

	var foreignKeys int
	if err := store.DB().QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&foreignKeys); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if foreignKeys != 1 {
		t.Error("foreign_keys pragma should be enabled")
	}
}

func TestWithTxCommits(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	seedProject(t, store, "p1")

	err := store.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO notes (note_id, project_id, author_user_id, body) VALUES (?, ?, ?, ?)",
			"n1", "p1", "u1", "hello")
		return err
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}

	var body string
	if err := store.DB().QueryRowContext(ctx, "SELECT body FROM notes WHERE note_id=?", "n1").Scan(&body); err != nil {
		t.Fatalf("committed row not visible: %v", err)
	}
	if body != "hello" {
		t.Errorf("body = %q, want hello", body)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	seedProject(t, store, "p1")

	sentinel := errors.New("boom")
	err := store.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO notes (note_id, project_id, author_user_id, body) VALUES (?, ?, ?, ?)",
			"n2", "p1", "u1", "will not persist"); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("WithTx error = %v, want sentinel", err)
	}

	var count int
	if err := store.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM notes WHERE note_id=?", "n2").Scan(&count); err != nil {
		t.Fatalf("count notes: %v", err)
	}
	if count != 0 {
		t.Error("failed transaction should not have persisted its insert")
	}
}
