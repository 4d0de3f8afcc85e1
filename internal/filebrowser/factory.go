package filebrowser

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fruitsalade/drivesbrowser/internal/drive"
	"github.com/fruitsalade/drivesbrowser/internal/logging"
	"github.com/fruitsalade/drivesbrowser/internal/state"
)

// ErrNotBrowsable is returned when a drive cannot list its contents.
var ErrNotBrowsable = errors.New("drive does not provide contents")

// Factory creates browsers bound to registered drives.
type Factory struct {
	drives *drive.Registry
	store  state.Store
}

// NewFactory creates a browser factory.
func NewFactory(drives *drive.Registry, store state.Store) *Factory {
	return &Factory{drives: drives, store: store}
}

// CreateBrowser creates an idle browser with the given ID bound to
// driveName. Lookup failures (*drive.NotFoundError) are returned unchanged.
// The browser is neither restored nor populated.
func (f *Factory) CreateBrowser(id, driveName string) (*Browser, error) {
	d, err := f.drives.Lookup(driveName)
	if err != nil {
		return nil, err
	}
	contents, ok := d.(drive.Contents)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotBrowsable, driveName)
	}

	logging.Info("file browser created",
		zap.String("browser", id),
		zap.String("drive", driveName))
	return NewBrowser(id, driveName, NewModel(contents, f.store)), nil
}
