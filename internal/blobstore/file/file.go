package file

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"arthagpt/internal/blobstore"
)

// Storage writes each key to its own file under a directory.
// Writes go to a temp file first and are renamed into place.
type Storage struct {
	dir string
}

// NewStorage creates the directory if needed.
func NewStorage(dir string) (*Storage, error) {
	if dir == "" {
		return nil, errors.New("file storage: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Storage{dir: dir}, nil
}

func (s *Storage) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *Storage) Put(_ context.Context, key string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".blob-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename blob: %w", err)
	}
	return nil
}

func (s *Storage) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".json")
}
