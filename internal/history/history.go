// Package history keeps a display-only log of uploads and questions.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"arthagpt/internal/config"
)

// DefaultLimit is used when a listing asks for a non-positive number of rows.
const DefaultLimit = 20

// UploadRecord describes one ingested document.
type UploadRecord struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Type      string    `json:"type"`
	Size      int64     `json:"size"`
	Chunks    int       `json:"chunks"`
	Summary   string    `json:"summary,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// QueryRecord describes one answered question.
type QueryRecord struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Provider  string    `json:"provider,omitempty"`
	Sources   []string  `json:"sources"`
	Fallback  bool      `json:"fallback"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists history records. Recent* return newest first.
type Store interface {
	RecordUpload(ctx context.Context, rec UploadRecord) (UploadRecord, error)
	RecordQuery(ctx context.Context, rec QueryRecord) (QueryRecord, error)
	RecentUploads(ctx context.Context, limit int) ([]UploadRecord, error)
	RecentQueries(ctx context.Context, limit int) ([]QueryRecord, error)
	Close() error
}

// Open builds the store selected by cfg.Type.
func Open(cfg config.HistoryConfig) (Store, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemory(0), nil
	case "sqlite":
		return OpenSQLite(cfg.DSN)
	case "postgres":
		return OpenPostgres(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown history type %q", cfg.Type)
	}
}

func stampUpload(rec UploadRecord, now time.Time) UploadRecord {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	return rec
}

func stampQuery(rec QueryRecord, now time.Time) QueryRecord {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.Sources == nil {
		rec.Sources = []string{}
	}
	return rec
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}
