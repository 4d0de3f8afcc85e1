// Package commands provides the command registry the browser and the
// restoration coordinator dispatch through.
package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/fruitsalade/drivesbrowser/internal/logging"
	"github.com/fruitsalade/drivesbrowser/internal/metrics"
)

// Command IDs.
const (
	OpenPath       = "filebrowser:open-path"
	CreateLauncher = "launcher:create"
)

// Argument keys for OpenPath.
const (
	ArgPath            = "path"
	ArgDontShowBrowser = "dontShowBrowser"
)

var (
	// ErrUnknownCommand is returned when executing an unregistered command.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrDuplicateCommand is returned when registering an ID twice.
	ErrDuplicateCommand = errors.New("command already registered")
)

// Args are the arguments passed to a command.
type Args map[string]any

// String returns a string argument, or "" if missing or of another type.
func (a Args) String(key string) string {
	s, _ := a[key].(string)
	return s
}

// Bool returns a bool argument, or false if missing or of another type.
func (a Args) Bool(key string) bool {
	b, _ := a[key].(bool)
	return b
}

// Handler executes a command. It returns once the command's work is done.
type Handler func(ctx context.Context, args Args) error

// Registry maps command IDs to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty command registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds a handler under id.
func (r *Registry) Register(id string, h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateCommand, id)
	}
	r.handlers[id] = h
	return nil
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[id]
	return ok
}

// IDs returns the registered command IDs in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.handlers))
	for id := range r.handlers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Execute runs the handler registered under id and waits for it.
// Handler errors are returned wrapped with the command ID.
func (r *Registry) Execute(ctx context.Context, id string, args Args) error {
	r.mu.RLock()
	h, ok := r.handlers[id]
	r.mu.RUnlock()
	if !ok {
		metrics.RecordCommand(id, false)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, id)
	}

	log := logging.WithContext(ctx)
	log.Debug("executing command", zap.String("command", id), zap.Any("args", args))

	if err := h(ctx, args); err != nil {
		metrics.RecordCommand(id, false)
		return fmt.Errorf("command %s: %w", id, err)
	}
	metrics.RecordCommand(id, true)
	return nil
}
