// Package memdrive provides an in-memory drive, used as a test double and
// as the "memory" backend type.
package memdrive

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/fruitsalade/drivesbrowser/internal/drive"
)

// Config seeds a memory drive. Paths ending in "/" are directories.
type Config struct {
	Paths []string `json:"paths"`
}

// Drive is an in-memory drive.Contents.
type Drive struct {
	name string

	mu      sync.RWMutex
	entries map[string]drive.Entry
	lists   int
}

// New creates an empty memory drive.
func New(name string) *Drive {
	return &Drive{
		name:    name,
		entries: make(map[string]drive.Entry),
	}
}

// NewFromJSON creates a memory drive seeded from raw JSON config.
func NewFromJSON(name string, raw json.RawMessage) (*Drive, error) {
	if name == "" {
		return nil, drive.ErrInvalidName
	}
	var cfg Config
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse memory config: %w", err)
		}
	}
	d := New(name)
	for _, p := range cfg.Paths {
		if len(p) > 0 && p[len(p)-1] == '/' {
			d.AddDir(p)
		} else {
			d.AddFile(p, 0)
		}
	}
	return d, nil
}

// AddDir creates a directory and its parents.
func (d *Drive) AddDir(p string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.addLocked(drive.Clean(p), true, 0)
}

// AddFile creates a file and its parent directories.
func (d *Drive) AddFile(p string, size int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.addLocked(drive.Clean(p), false, size)
}

func (d *Drive) addLocked(p string, isDir bool, size int64) {
	if p == "" {
		return
	}
	d.entries[p] = drive.Entry{
		Name:    path.Base(p),
		Path:    p,
		IsDir:   isDir,
		Size:    size,
		ModTime: time.Now(),
	}
	if parent := drive.Parent(p); parent != "" {
		if e, ok := d.entries[parent]; !ok || !e.IsDir {
			d.addLocked(parent, true, 0)
		}
	}
}

// Name returns the registry name of the drive.
func (d *Drive) Name() string { return d.name }

// List returns the direct children of dir, directories first.
func (d *Drive) List(_ context.Context, dir string) ([]drive.Entry, error) {
	dir = drive.Clean(dir)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.lists++

	if dir != "" {
		e, ok := d.entries[dir]
		if !ok || !e.IsDir {
			return nil, fmt.Errorf("list %s: %w", dir, fs.ErrNotExist)
		}
	}

	var out []drive.Entry
	for p, e := range d.entries {
		if drive.Parent(p) == dir {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDir != out[j].IsDir {
			return out[i].IsDir
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Stat describes a path.
func (d *Drive) Stat(_ context.Context, p string) (drive.Entry, error) {
	p = drive.Clean(p)
	if p == "" {
		return drive.Entry{IsDir: true}, nil
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.entries[p]
	if !ok {
		return drive.Entry{}, fmt.Errorf("stat %s: %w", p, fs.ErrNotExist)
	}
	return e, nil
}

// ListCalls reports how many times List has been called.
func (d *Drive) ListCalls() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lists
}

// Type returns "memory".
func (d *Drive) Type() string { return "memory" }

// Close is a no-op; the tree lives as long as the drive.
func (d *Drive) Close() error { return nil }
