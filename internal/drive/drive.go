// Package drive defines the mountable drive contract and the registry that
// maps drive names to mounted content sources.
package drive

import (
	"context"
	"path"
	"strings"
	"time"
)

// Drive is a named content source. Any backend with a stable, non-empty
// name can be registered and used as the backing store for a browser.
type Drive interface {
	// Name identifies the drive in the registry and prefixes its paths.
	Name() string
}

// Contents is the content-access side of a drive: what a browser model
// needs to list directories and resolve paths.
type Contents interface {
	Drive

	// List returns the entries of a directory. Missing directories wrap fs.ErrNotExist.
	List(ctx context.Context, dir string) ([]Entry, error)

	// Stat describes a single path. Missing paths wrap fs.ErrNotExist.
	Stat(ctx context.Context, p string) (Entry, error)
}

// Entry is a file or directory served by a drive.
type Entry struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	IsDir   bool      `json:"is_dir"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mtime"`
}

// Separator splits a drive name from the path it serves ("S3TestDrive:data/a.csv").
const Separator = ":"

// SplitPath separates a drive prefix from a path. Unprefixed paths return an
// empty drive name. The split is syntactic: "notes:v2.txt" yields drive
// "notes", so callers holding a registry should check the name is mounted.
func SplitPath(p string) (driveName, local string) {
	if i := strings.Index(p, Separator); i > 0 && !strings.Contains(p[:i], "/") {
		return p[:i], Clean(p[i+1:])
	}
	return "", Clean(p)
}

// JoinPath prefixes a local path with a drive name. An empty name yields the
// bare path.
func JoinPath(driveName, local string) string {
	local = Clean(local)
	if driveName == "" {
		return local
	}
	return driveName + Separator + local
}

// Clean normalizes a drive-local path: slash separated, no leading or
// trailing slash, "" for the root.
func Clean(p string) string {
	p = strings.Trim(path.Clean("/"+p), "/")
	return p
}

// Parent returns the directory containing p ("" for top-level entries).
func Parent(p string) string {
	dir := path.Dir(Clean(p))
	if dir == "." {
		return ""
	}
	return dir
}
