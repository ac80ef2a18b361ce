package history

import (
	"context"
	"sync"
	"time"
)

const defaultMemoryCapacity = 500

// Memory is an in-process Store that keeps the most recent records only.
type Memory struct {
	mu       sync.RWMutex
	capacity int
	uploads  []UploadRecord
	queries  []QueryRecord
}

// NewMemory creates a store holding up to capacity records of each kind.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = defaultMemoryCapacity
	}
	return &Memory{capacity: capacity}
}

func (m *Memory) RecordUpload(_ context.Context, rec UploadRecord) (UploadRecord, error) {
	rec = stampUpload(rec, time.Now().UTC())
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads = append(m.uploads, rec)
	if len(m.uploads) > m.capacity {
		m.uploads = m.uploads[len(m.uploads)-m.capacity:]
	}
	return rec, nil
}

func (m *Memory) RecordQuery(_ context.Context, rec QueryRecord) (QueryRecord, error) {
	rec = stampQuery(rec, time.Now().UTC())
	rec.Sources = append([]string{}, rec.Sources...)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, rec)
	if len(m.queries) > m.capacity {
		m.queries = m.queries[len(m.queries)-m.capacity:]
	}
	return rec, nil
}

func (m *Memory) RecentUploads(_ context.Context, limit int) ([]UploadRecord, error) {
	limit = normalizeLimit(limit)
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]UploadRecord, 0, min(limit, len(m.uploads)))
	for i := len(m.uploads) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.uploads[i])
	}
	return out, nil
}

func (m *Memory) RecentQueries(_ context.Context, limit int) ([]QueryRecord, error) {
	limit = normalizeLimit(limit)
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]QueryRecord, 0, min(limit, len(m.queries)))
	for i := len(m.queries) - 1; i >= 0 && len(out) < limit; i-- {
		q := m.queries[i]
		q.Sources = append([]string{}, q.Sources...)
		out = append(out, q)
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }
