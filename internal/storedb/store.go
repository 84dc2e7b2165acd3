// Package storedb owns the SQLite connection pool: pragma policy, embedded
// schema migrations, and the single-writer concurrency discipline described
// in spec.md §4.2/§5. internal/store builds the actual project/artifact
// queries on top of it.
package storedb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wegentic/translator-core/internal/applog"
)

// Store wraps a pooled SQLite connection plus the write-mutex that
// serializes every mutating statement, mirroring SQLite's single-writer
// reality rather than fighting it with retries.
type Store struct {
	mu          sync.RWMutex // guards db/path across Reopen
	db          *sql.DB
	writeMu     sync.Mutex // serializes all writers
	path        string
	journalMode JournalMode
	synchronous Synchronous
	log         *applog.Logger
}

// Open creates or opens the SQLite database at path, applies the pragma
// policy, and brings the schema up to date via embedded migrations.
func Open(path string, journalMode JournalMode, synchronous Synchronous) (*Store, error) {
	db, err := openPool(path, journalMode, synchronous)
	if err != nil {
		return nil, err
	}
	if err := runMigrations(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{
		db:          db,
		path:        path,
		journalMode: journalMode,
		synchronous: synchronous,
		log:         applog.New("store"),
	}, nil
}

func openPool(path string, journalMode JournalMode, synchronous Synchronous) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	escaped := strings.ReplaceAll(path, " ", "%20")
	dsn := fmt.Sprintf(
		"file:%s?_pragma=foreign_keys(1)&_pragma=recursive_triggers(1)&_pragma=journal_mode(%s)&_pragma=synchronous(%s)&_pragma=busy_timeout(5000)",
		escaped, journalMode, synchronous,
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Every new connection in the pool re-runs the _pragma DSN options, so a
	// small idle pool is fine: it bounds concurrent readers without
	// reintroducing per-connection pragma drift.
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// DB returns the pooled *sql.DB for read-only queries. Callers performing
// writes should go through WithTx instead, so the write-mutex is held.
func (s *Store) DB() *sql.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db
}

// WithTx runs fn inside a transaction, serialized against every other
// writer via the store's write-mutex. Read-only callers may use DB()
// directly and skip the serialization.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	db := s.DB()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Reopen closes the current pool and opens a fresh one at newPath, for
// when the database file's location changes. It takes the write-mutex for the duration so no writer observes a torn
// pool swap.
func (s *Store) Reopen(newPath string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close previous pool: %w", err)
	}

	db, err := openPool(newPath, s.journalMode, s.synchronous)
	if err != nil {
		return err
	}
	if err := runMigrations(context.Background(), db); err != nil {
		db.Close()
		return fmt.Errorf("run migrations: %w", err)
	}

	s.db = db
	s.path = newPath
	return nil
}

// Path returns the database file path currently backing the store.
func (s *Store) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.Close()
}

// Now returns the current time in UTC with the monotonic reading stripped,
// matching the clean timestamps SQLite's datetime functions expect.
func Now() time.Time {
	return time.Now().UTC().Round(0)
}
