/*
Package sqlite provides a SQLite-backed docstore.Slot.

PURPOSE:
  Host-local durable storage for the snapshot blob. One row per key in a
  tiny key-value table; the document store only ever touches one key.

SCHEMA:
  blobs(key TEXT PRIMARY KEY, value TEXT NOT NULL, updated_at TEXT NOT NULL)

ATOMICITY:
  Write is a single upsert inside a transaction. Readers see either the old
  or the new value. WAL mode lets reads proceed during a write.

CONCURRENCY:
  Uses sync.RWMutex on top of SQLite's own locking, and a single connection
  so ":memory:" databases are shared by every call.

USAGE:
  slot, err := sqlite.New("./data/stock.db", docstore.DefaultKey)
  if err != nil {
      log.Fatal(err)
  }
  defer slot.Close()
  store := docstore.New(docstore.NewBlobStore(slot, inventory.SeedSnapshot))

SEE ALSO:
  - docstore/blob.go: Slot interface
  - store/memory: in-memory slot for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/stockledger/docstore"
)

// Ensure Slot implements the interfaces.
var (
	_ docstore.Slot        = (*Slot)(nil)
	_ docstore.Resetter    = (*Slot)(nil)
	_ docstore.Timestamped = (*Slot)(nil)
)

// Slot stores the snapshot under one key of a SQLite table.
type Slot struct {
	db  *sql.DB
	key string
	mu  sync.RWMutex
}

// New opens (or creates) the database at dbPath.
// Use ":memory:" for an in-memory database.
func New(dbPath, key string) (*Slot, error) {
	if key == "" {
		key = docstore.DefaultKey
	}
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	slot := &Slot{db: db, key: key}
	if err := slot.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return slot, nil
}

// Close closes the database connection.
func (s *Slot) Close() error {
	return s.db.Close()
}

func (s *Slot) Name() string { return "sqlite" }

func (s *Slot) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS blobs (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Read returns the stored snapshot bytes.
func (s *Slot) Read(ctx context.Context) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM blobs WHERE key = ?", s.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read blob: %w", err)
	}
	return []byte(value), true, nil
}

// Write replaces the stored snapshot bytes.
func (s *Slot) Write(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO blobs (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := tx.ExecContext(ctx, query, s.key, string(data), time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("failed to write blob: %w", err)
	}
	return tx.Commit()
}

// UpdatedAt returns when the key was last written; zero time if never.
func (s *Slot) UpdatedAt(ctx context.Context) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT updated_at FROM blobs WHERE key = ?", s.key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, raw)
}

// Reset removes the stored snapshot so the next load returns the seed.
func (s *Slot) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, "DELETE FROM blobs WHERE key = ?", s.key)
	return err
}
