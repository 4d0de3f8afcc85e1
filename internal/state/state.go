// Package state persists view-model snapshots by key.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fruitsalade/drivesbrowser/internal/metrics"
)

// ErrNotFound is returned by Fetch when no snapshot is stored under a key.
var ErrNotFound = errors.New("state not found")

// Store saves and fetches opaque snapshot values by key.
type Store interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}

// Options selects and configures a store backend.
type Options struct {
	Backend     string // memory, file, postgres
	Path        string // directory for the file backend
	DatabaseURL string // DSN for the postgres backend
}

// New creates a Store for the configured backend.
func New(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(opts.Path)
	case "postgres":
		return NewPostgresStore(ctx, opts.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown state backend: %s", opts.Backend)
	}
}

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

// Fetch returns a copy of the value stored under key.
func (s *MemoryStore) Fetch(_ context.Context, key string) ([]byte, error) {
	start := time.Now()
	defer func() { metrics.RecordStateOperation("memory", "fetch", time.Since(start)) }()

	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Save stores a copy of value under key.
func (s *MemoryStore) Save(_ context.Context, key string, value []byte) error {
	start := time.Now()
	defer func() { metrics.RecordStateOperation("memory", "save", time.Since(start)) }()

	s.mu.Lock()
	s.values[key] = append([]byte(nil), value...)
	s.mu.Unlock()
	return nil
}
