// Package local provides a local filesystem drive.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fruitsalade/drivesbrowser/internal/drive"
	"github.com/fruitsalade/drivesbrowser/internal/metrics"
)

// Config holds local filesystem drive settings.
type Config struct {
	RootPath   string `json:"root_path"`
	CreateDirs bool   `json:"create_dirs"`
}

// LocalDrive implements drive.Contents over a directory on local disk.
type LocalDrive struct {
	name     string
	rootPath string
}

// New creates a new local filesystem drive.
func New(name string, cfg Config) (*LocalDrive, error) {
	if name == "" {
		return nil, drive.ErrInvalidName
	}
	if cfg.RootPath == "" {
		return nil, fmt.Errorf("root_path is required")
	}

	// Ensure root exists
	info, err := os.Stat(cfg.RootPath)
	if err != nil {
		if os.IsNotExist(err) && cfg.CreateDirs {
			if mkErr := os.MkdirAll(cfg.RootPath, 0755); mkErr != nil {
				return nil, fmt.Errorf("create root path %s: %w", cfg.RootPath, mkErr)
			}
		} else {
			return nil, fmt.Errorf("stat root path %s: %w", cfg.RootPath, err)
		}
	} else if !info.IsDir() {
		return nil, fmt.Errorf("root path %s is not a directory", cfg.RootPath)
	}

	return &LocalDrive{
		name:     name,
		rootPath: cfg.RootPath,
	}, nil
}

// NewFromJSON creates a LocalDrive from raw JSON config.
func NewFromJSON(name string, raw json.RawMessage) (*LocalDrive, error) {
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse local config: %w", err)
	}
	return New(name, cfg)
}

func (d *LocalDrive) fullPath(p string) string {
	return filepath.Join(d.rootPath, filepath.FromSlash(drive.Clean(p)))
}

// Name returns the registry name of the drive.
func (d *LocalDrive) Name() string { return d.name }

// Root returns the directory the drive serves.
func (d *LocalDrive) Root() string { return d.rootPath }

// List reads a directory, directories first, then by name.
func (d *LocalDrive) List(_ context.Context, dir string) ([]drive.Entry, error) {
	start := time.Now()
	dir = drive.Clean(dir)

	des, err := os.ReadDir(d.fullPath(dir))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	entries := make([]drive.Entry, 0, len(des))
	for _, de := range des {
		info, err := de.Info()
		if err != nil {
			// Entry vanished between readdir and stat
			continue
		}
		entries = append(entries, entryFromInfo(dir, info))
	}
	sortEntries(entries)

	metrics.RecordListing(d.name, time.Since(start))
	return entries, nil
}

// Stat describes a path on the local filesystem.
func (d *LocalDrive) Stat(_ context.Context, p string) (drive.Entry, error) {
	p = drive.Clean(p)
	info, err := os.Stat(d.fullPath(p))
	if err != nil {
		return drive.Entry{}, fmt.Errorf("stat %s: %w", p, err)
	}
	e := entryFromInfo(drive.Parent(p), info)
	if p == "" {
		e.Name = ""
		e.Path = ""
	}
	return e, nil
}

// Type returns "local".
func (d *LocalDrive) Type() string { return "local" }

// Close is a no-op for local drives.
func (d *LocalDrive) Close() error { return nil }

func entryFromInfo(dir string, info os.FileInfo) drive.Entry {
	e := drive.Entry{
		Name:    info.Name(),
		Path:    joinChild(dir, info.Name()),
		IsDir:   info.IsDir(),
		ModTime: info.ModTime(),
	}
	if !e.IsDir {
		e.Size = info.Size()
	}
	return e
}

func joinChild(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

func sortEntries(entries []drive.Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return entries[i].Name < entries[j].Name
	})
}
