package drive

import (
	"io"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/fruitsalade/drivesbrowser/internal/logging"
	"github.com/fruitsalade/drivesbrowser/internal/metrics"
)

// Registry maps drive names to mounted drives. It is populated during
// startup and read-only afterwards; names are never unregistered.
type Registry struct {
	mu     sync.RWMutex
	drives map[string]Drive
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{drives: make(map[string]Drive)}
}

// Register adds a drive under its name. A name collision returns a
// *DuplicateNameError and keeps the first registration. A nil drive or an
// empty name returns ErrInvalidName.
func (r *Registry) Register(d Drive) error {
	if d == nil {
		return ErrInvalidName
	}
	name := d.Name()
	if name == "" {
		return ErrInvalidName
	}

	r.mu.Lock()
	if _, exists := r.drives[name]; exists {
		r.mu.Unlock()
		return &DuplicateNameError{Name: name}
	}
	r.drives[name] = d
	count := len(r.drives)
	r.mu.Unlock()

	metrics.SetDrivesRegistered(count)
	logging.Info("drive registered", zap.String("drive", name))
	return nil
}

// Lookup returns the drive registered under name, or a *NotFoundError.
func (r *Registry) Lookup(name string) (Drive, error) {
	r.mu.RLock()
	d, ok := r.drives[name]
	r.mu.RUnlock()

	metrics.RecordDriveLookup(ok)
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return d, nil
}

// Names returns the registered drive names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.drives))
	for name := range r.drives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered drives.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.drives)
}

// Close closes every drive that holds resources.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for name, d := range r.drives {
		c, ok := d.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			logging.Error("drive close failed", zap.String("drive", name), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
