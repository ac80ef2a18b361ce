// Package sqlite stores blobs in a single SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"arthagpt/internal/blobstore"
)

const schema = `
CREATE TABLE IF NOT EXISTS blobs (
	key        TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`

// Storage is a BlobStore backed by SQLite.
type Storage struct {
	db   *sql.DB
	path string
}

// NewStorage opens (or creates) the database at path.
func NewStorage(path string) (*Storage, error) {
	if path == "" {
		return nil, errors.New("sqlite storage: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating blobs table: %w", err)
	}
	return &Storage{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Storage) Path() string {
	return s.path
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM blobs WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, blobstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get blob: %w", err)
	}
	return data, nil
}

func (s *Storage) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blobs (key, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		key, data)
	if err != nil {
		return fmt.Errorf("put blob: %w", err)
	}
	return nil
}
