// Package shell tracks which widgets occupy the application's named regions.
package shell

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/fruitsalade/drivesbrowser/internal/commands"
	"github.com/fruitsalade/drivesbrowser/internal/logging"
)

// Region names.
const (
	RegionMain = "main"
	RegionLeft = "left"
)

// Shell holds the widgets placed in each region and the active widget.
type Shell struct {
	mu        sync.RWMutex
	regions   map[string][]string
	active    string
	launchers int
}

// New creates an empty shell.
func New() *Shell {
	return &Shell{regions: make(map[string][]string)}
}

// Add places a widget in a region. Adding a widget twice is a no-op.
func (s *Shell) Add(region, widget string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.regions[region] {
		if w == widget {
			return
		}
	}
	s.regions[region] = append(s.regions[region], widget)
}

// Activate marks a widget as the active one.
func (s *Shell) Activate(widget string) {
	s.mu.Lock()
	s.active = widget
	s.mu.Unlock()
}

// Active returns the active widget.
func (s *Shell) Active() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// IsEmpty reports whether a region holds no widgets.
func (s *Shell) IsEmpty(region string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.regions[region]) == 0
}

// Widgets returns a copy of the widgets in a region.
func (s *Shell) Widgets(region string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.regions[region]...)
}

// LauncherHandler implements commands.CreateLauncher: it opens a new
// launcher in the main region and activates it.
func LauncherHandler(s *Shell) commands.Handler {
	return func(ctx context.Context, _ commands.Args) error {
		s.mu.Lock()
		s.launchers++
		id := fmt.Sprintf("launcher-%d", s.launchers)
		s.regions[RegionMain] = append(s.regions[RegionMain], id)
		s.active = id
		s.mu.Unlock()

		logging.WithContext(ctx).Info("launcher created", zap.String("widget", id))
		return nil
	}
}
