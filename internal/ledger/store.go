// Package ledger reads the token-transfer ledger and reshapes it for the
// dashboard charts. It never writes.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

var ErrNoDatabase = errors.New("ledger database path is empty")

// Store is a read-only handle on a ledger file. It is safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open opens the SQLite file at path in read-only mode and checks that it
// is reachable.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, ErrNoDatabase
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve ledger path: %w", err)
	}

	dsn := (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs), RawQuery: "mode=ro"}).String()
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open ledger %s: %w", abs, err)
	}

	return &Store{db: db, path: abs, now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Ping reports whether the database still answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
