package filebrowser

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fruitsalade/drivesbrowser/internal/commands"
	"github.com/fruitsalade/drivesbrowser/internal/drive"
	"github.com/fruitsalade/drivesbrowser/internal/logging"
	"github.com/fruitsalade/drivesbrowser/internal/shell"
)

var (
	// ErrMissingPath is returned when open-path is called without a path.
	ErrMissingPath = errors.New("path argument is required")

	// ErrForeignDrive is returned when a path names a drive other than the browser's.
	ErrForeignDrive = errors.New("path belongs to another drive")
)

// Workspace is where opened documents are placed.
type Workspace interface {
	Add(region, widget string)
	Activate(widget string)
}

// OpenPathHandler implements commands.OpenPath for a browser. Directories
// become the browser's current directory; files open in the main region
// with their parent directory shown in the browser. Unless dontShowBrowser
// is set the browser is activated.
func OpenPathHandler(b *Browser, drives *drive.Registry, ws Workspace) commands.Handler {
	return func(ctx context.Context, args commands.Args) error {
		raw := args.String(commands.ArgPath)
		if raw == "" {
			return ErrMissingPath
		}

		p, ok := localPath(raw, b.DriveName(), drives)
		if !ok {
			return fmt.Errorf("%w: %s", ErrForeignDrive, raw)
		}

		d, err := drives.Lookup(b.DriveName())
		if err != nil {
			return err
		}
		contents, ok := d.(drive.Contents)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotBrowsable, b.DriveName())
		}

		entry, err := contents.Stat(ctx, p)
		if err != nil {
			return fmt.Errorf("open %s: %w", raw, err)
		}

		log := logging.WithContext(ctx)
		if entry.IsDir {
			if err := b.Model().Cd(ctx, p); err != nil {
				return err
			}
			log.Info("opened directory", zap.String("browser", b.ID()), zap.String("path", raw))
		} else {
			if err := b.Model().Cd(ctx, drive.Parent(p)); err != nil {
				return err
			}
			doc := drive.JoinPath(b.DriveName(), p)
			ws.Add(shell.RegionMain, doc)
			ws.Activate(doc)
			log.Info("opened document", zap.String("browser", b.ID()), zap.String("path", raw))
		}

		if !args.Bool(commands.ArgDontShowBrowser) {
			ws.Activate(b.ID())
		}
		return nil
	}
}

// localPath returns the path of raw on the browser's drive. A prefix only
// counts as a drive when a drive of that name is registered, so file names
// containing the separator ("notes:v2.txt") stay local. It reports false
// when raw names another registered drive.
func localPath(raw, own string, drives *drive.Registry) (string, bool) {
	name, p := drive.SplitPath(raw)
	if name == "" || name == own {
		return p, true
	}
	if _, err := drives.Lookup(name); err == nil {
		return "", false
	}
	return drive.Clean(raw), true
}
