// Package backend builds drives from a backend type string and JSON config.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fruitsalade/drivesbrowser/internal/drive"
	"github.com/fruitsalade/drivesbrowser/internal/drive/local"
	"github.com/fruitsalade/drivesbrowser/internal/logging"
	"github.com/fruitsalade/drivesbrowser/internal/drive/memdrive"
	s3drive "github.com/fruitsalade/drivesbrowser/internal/drive/s3"
	"github.com/fruitsalade/drivesbrowser/internal/drive/smb"
)

// Types lists the backend types NewFromConfig understands.
var Types = []string{"local", "memory", "s3", "smb"}

// NewFromConfig creates a drive from a backend type string and JSON config.
func NewFromConfig(ctx context.Context, name, backendType string, config json.RawMessage) (drive.Contents, error) {
	switch backendType {
	case "s3":
		return s3drive.NewFromJSON(ctx, name, config)
	case "local":
		return local.NewFromJSON(name, config)
	case "smb":
		return smb.NewFromJSON(name, config)
	case "memory":
		return memdrive.NewFromJSON(name, config)
	default:
		return nil, fmt.Errorf("unknown backend type %q (want one of %s)",
			backendType, strings.Join(Types, ", "))
	}
}

// Mount creates a drive and registers it. Registration errors
// (*drive.DuplicateNameError) are returned unchanged.
func Mount(ctx context.Context, reg *drive.Registry, name, backendType string, config json.RawMessage) (drive.Contents, error) {
	logging.Debug("mounting drive", zap.String("drive", name), zap.String("type", backendType))
	d, err := NewFromConfig(ctx, name, backendType, config)
	if err != nil {
		return nil, fmt.Errorf("create drive %s: %w", name, err)
	}
	if err := reg.Register(d); err != nil {
		if c, ok := d.(interface{ Close() error }); ok {
			c.Close()
		}
		return nil, err
	}
	logging.Info("drive mounted", zap.String("drive", name), zap.String("type", TypeOf(d)))
	return d, nil
}

// TypeOf returns the backend type a drive reports, or "unknown".
func TypeOf(d drive.Drive) string {
	if t, ok := d.(interface{ Type() string }); ok {
		return t.Type()
	}
	return "unknown"
}
