package shell

import (
	"context"
	"testing"
)

func TestRegions(t *testing.T) {
	s := New()
	if !s.IsEmpty(RegionMain) {
		t.Fatal("expected main to start empty")
	}

	s.Add(RegionMain, "doc-1")
	s.Add(RegionMain, "doc-1")
	s.Add(RegionLeft, "filebrowser")

	if s.IsEmpty(RegionMain) {
		t.Fatal("expected main to be occupied")
	}
	if got := s.Widgets(RegionMain); len(got) != 1 || got[0] != "doc-1" {
		t.Errorf("expected one widget in main, got %v", got)
	}
}

func TestLauncherHandler(t *testing.T) {
	s := New()
	h := LauncherHandler(s)

	if err := h(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if err := h(context.Background(), nil); err != nil {
		t.Fatal(err)
	}

	got := s.Widgets(RegionMain)
	if len(got) != 2 || got[0] != "launcher-1" || got[1] != "launcher-2" {
		t.Errorf("unexpected launchers %v", got)
	}
	if s.Active() != "launcher-2" {
		t.Errorf("expected newest launcher active, got %s", s.Active())
	}
}
