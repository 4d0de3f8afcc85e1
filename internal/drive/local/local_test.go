package local

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/fruitsalade/drivesbrowser/internal/drive"
)

func newTestDrive(t *testing.T) (*LocalDrive, string) {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "docs", "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "docs", "readme.md"), []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "top.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	d, err := New("local", Config{RootPath: root})
	if err != nil {
		t.Fatal(err)
	}
	return d, root
}

func TestNewRequiresRoot(t *testing.T) {
	if _, err := New("local", Config{}); err == nil {
		t.Fatal("expected error for empty root_path")
	}
	if _, err := New("", Config{RootPath: t.TempDir()}); !errors.Is(err, drive.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestNewCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "a", "b")
	if _, err := New("local", Config{RootPath: root}); err == nil {
		t.Fatal("expected error for missing root without create_dirs")
	}
	if _, err := New("local", Config{RootPath: root, CreateDirs: true}); err != nil {
		t.Fatalf("expected root to be created: %v", err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		t.Fatalf("expected %s to be a directory", root)
	}
}

func TestNewRejectsFileRoot(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(f, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := New("local", Config{RootPath: f}); err == nil {
		t.Fatal("expected error for file root")
	}
}

func TestList(t *testing.T) {
	d, _ := newTestDrive(t)

	entries, err := d.List(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Name != "docs" || !entries[0].IsDir {
		t.Errorf("expected docs directory first, got %+v", entries[0])
	}
	if entries[1].Path != "top.txt" || entries[1].Size != 1 {
		t.Errorf("unexpected file entry %+v", entries[1])
	}

	entries, err = d.List(context.Background(), "/docs/")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Path != "docs/sub" || entries[1].Path != "docs/readme.md" {
		t.Errorf("unexpected docs listing %+v", entries)
	}
}

func TestListMissing(t *testing.T) {
	d, _ := newTestDrive(t)
	_, err := d.List(context.Background(), "nope")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestStat(t *testing.T) {
	d, _ := newTestDrive(t)

	e, err := d.Stat(context.Background(), "docs/readme.md")
	if err != nil {
		t.Fatal(err)
	}
	if e.IsDir || e.Size != 5 || e.Path != "docs/readme.md" {
		t.Errorf("unexpected entry %+v", e)
	}

	root, err := d.Stat(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if !root.IsDir || root.Path != "" {
		t.Errorf("unexpected root entry %+v", root)
	}

	if _, err := d.Stat(context.Background(), "missing.txt"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestNewFromJSON(t *testing.T) {
	root := t.TempDir()
	d, err := NewFromJSON("local", []byte(`{"root_path":"`+filepath.ToSlash(root)+`"}`))
	if err != nil {
		t.Fatal(err)
	}
	if d.Name() != "local" || d.Type() != "local" {
		t.Errorf("unexpected drive %s/%s", d.Name(), d.Type())
	}
	if _, err := NewFromJSON("local", []byte(`{`)); err == nil {
		t.Fatal("expected parse error")
	}
}
