// Package filebrowser provides file browser instances bound to a drive,
// their view model, and the open-path command.
package filebrowser

import (
	"context"
	"sync/atomic"

	"github.com/fruitsalade/drivesbrowser/internal/drive"
)

// RestoreState is the transient restoration marker of a browser. It is
// never persisted.
type RestoreState int32

const (
	// Idle browsers have not started restoring.
	Idle RestoreState = iota
	// Restoring browsers must not be treated as settled.
	Restoring
	// Settled browsers have finished restoring.
	Settled
)

func (s RestoreState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Restoring:
		return "restoring"
	case Settled:
		return "settled"
	default:
		return "unknown"
	}
}

// ViewModel holds a browser's current directory and listing.
type ViewModel interface {
	// Restore applies the snapshot persisted under id. With populate=false
	// the listing is not fetched.
	Restore(ctx context.Context, id string, populate bool) error

	// Refresh re-fetches the listing of the current directory.
	Refresh(ctx context.Context) error

	// Cd changes directory and fetches its listing.
	Cd(ctx context.Context, dir string) error

	// Path returns the current directory.
	Path() string

	// Items returns the filtered listing.
	Items() []drive.Entry
}

// Browser is one file browser surface, bound to exactly one drive at
// creation.
type Browser struct {
	id        string
	driveName string
	model     ViewModel
	state     atomic.Int32
}

// NewBrowser creates an idle browser.
func NewBrowser(id, driveName string, model ViewModel) *Browser {
	return &Browser{
		id:        id,
		driveName: driveName,
		model:     model,
	}
}

// ID returns the browser ID, also the persistence key of its snapshot.
func (b *Browser) ID() string { return b.id }

// DriveName returns the name of the bound drive.
func (b *Browser) DriveName() string { return b.driveName }

// Model returns the browser's view model.
func (b *Browser) Model() ViewModel { return b.model }

// State returns the current restoration marker.
func (b *Browser) State() RestoreState {
	return RestoreState(b.state.Load())
}

// SetState sets the restoration marker. Only the running restoration
// coordinator for this browser calls it.
func (b *Browser) SetState(s RestoreState) {
	b.state.Store(int32(s))
}
