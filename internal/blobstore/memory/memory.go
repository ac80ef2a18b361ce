package memory

import (
	"context"
	"sync"

	"arthagpt/internal/blobstore"
)

// Storage keeps blobs in process memory. Values are copied on the way in and out.
type Storage struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewStorage() *Storage { return &Storage{blobs: make(map[string][]byte)} }

func (s *Storage) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, blobstore.ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *Storage) Put(_ context.Context, key string, data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = buf
	return nil
}
