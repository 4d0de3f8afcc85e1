package state

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/fruitsalade/drivesbrowser/internal/metrics"
)

// FileStore keeps one file per key under a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store, creating dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("state path is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create state dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) fullPath(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".json")
}

// Fetch reads the file stored for key.
func (s *FileStore) Fetch(_ context.Context, key string) ([]byte, error) {
	start := time.Now()
	defer func() { metrics.RecordStateOperation("file", "fetch", time.Since(start)) }()

	data, err := os.ReadFile(s.fullPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read state %s: %w", key, err)
	}
	return data, nil
}

// Save writes value for key atomically.
func (s *FileStore) Save(_ context.Context, key string, value []byte) error {
	start := time.Now()
	defer func() { metrics.RecordStateOperation("file", "save", time.Since(start)) }()

	path := s.fullPath(key)

	// Write to temp file then rename for atomicity
	tmp, err := os.CreateTemp(s.dir, ".state-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp for %s: %w", key, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp to %s: %w", key, err)
	}
	return nil
}
