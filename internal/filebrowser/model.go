package filebrowser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"go.uber.org/zap"

	"github.com/fruitsalade/drivesbrowser/internal/drive"
	"github.com/fruitsalade/drivesbrowser/internal/logging"
	"github.com/fruitsalade/drivesbrowser/internal/state"
)

// snapshot is the persisted part of a model.
type snapshot struct {
	Path string `json:"path"`
}

// Model is the ViewModel over a drive.Contents. Once restored, every
// directory change is persisted under "<id>:cwd".
type Model struct {
	drive drive.Contents
	store state.Store

	restoreMu sync.Mutex
	restored  bool

	mu     sync.RWMutex
	key    string
	path   string
	items  []drive.Entry
	filter func(drive.Entry) bool
}

// NewModel creates a model at the drive root.
func NewModel(d drive.Contents, store state.Store) *Model {
	return &Model{drive: d, store: store}
}

// StateKey returns the snapshot key for a browser ID.
func StateKey(id string) string {
	return id + ":cwd"
}

// Restore reads the snapshot stored for id. A model restores once; calls
// after a successful restore are no-ops, a failed restore may be retried.
// A missing snapshot starts at the root. With populate, a snapshot
// directory that no longer exists falls back to the root.
func (m *Model) Restore(ctx context.Context, id string, populate bool) error {
	m.restoreMu.Lock()
	defer m.restoreMu.Unlock()
	if m.restored {
		return nil
	}

	key := StateKey(id)
	var snap snapshot
	data, err := m.store.Fetch(ctx, key)
	switch {
	case errors.Is(err, state.ErrNotFound):
	case err != nil:
		return fmt.Errorf("restore %s: %w", id, err)
	default:
		if err := json.Unmarshal(data, &snap); err != nil {
			logging.WithContext(ctx).Warn("discarding unreadable snapshot",
				zap.String("key", key), zap.Error(err))
			snap = snapshot{}
		}
	}

	if !populate {
		m.mu.Lock()
		m.key = key
		m.path = drive.Clean(snap.Path)
		m.mu.Unlock()
		m.restored = true
		return nil
	}

	m.setKey(key)
	err = m.Cd(ctx, snap.Path)
	if errors.Is(err, fs.ErrNotExist) && drive.Clean(snap.Path) != "" {
		logging.WithContext(ctx).Warn("restored directory is gone, using root",
			zap.String("drive", m.drive.Name()), zap.String("path", snap.Path))
		err = m.Cd(ctx, "")
	}
	if err != nil {
		m.setKey("")
		return err
	}
	m.restored = true
	return nil
}

func (m *Model) setKey(key string) {
	m.mu.Lock()
	m.key = key
	m.mu.Unlock()
}

// Cd lists dir and makes it the current directory.
func (m *Model) Cd(ctx context.Context, dir string) error {
	dir = drive.Clean(dir)
	entries, err := m.drive.List(ctx, dir)
	if err != nil {
		return fmt.Errorf("cd %s: %w", drive.JoinPath(m.drive.Name(), dir), err)
	}

	m.mu.Lock()
	m.path = dir
	m.items = entries
	key := m.key
	m.mu.Unlock()

	if key == "" {
		return nil
	}
	data, err := json.Marshal(snapshot{Path: dir})
	if err != nil {
		return err
	}
	if err := m.store.Save(ctx, key, data); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Refresh re-lists the current directory.
func (m *Model) Refresh(ctx context.Context) error {
	m.mu.RLock()
	dir := m.path
	m.mu.RUnlock()

	entries, err := m.drive.List(ctx, dir)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", drive.JoinPath(m.drive.Name(), dir), err)
	}

	m.mu.Lock()
	m.items = entries
	m.mu.Unlock()
	return nil
}

// Path returns the current directory.
func (m *Model) Path() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.path
}

// Items returns the current listing with the filter applied.
func (m *Model) Items() []drive.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]drive.Entry, 0, len(m.items))
	for _, e := range m.items {
		if m.filter == nil || m.filter(e) {
			out = append(out, e)
		}
	}
	return out
}

// SetFilter sets the listing filter. nil shows everything.
func (m *Model) SetFilter(f func(drive.Entry) bool) {
	m.mu.Lock()
	m.filter = f
	m.mu.Unlock()
}
