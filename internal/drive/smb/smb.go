// Package smb provides an SMB/CIFS network share drive.
// The SMB share must be pre-mounted on the OS (via mount.cifs or fstab).
// This drive delegates to the local filesystem drive at the mount path.
package smb

import (
	"encoding/json"
	"fmt"

	"github.com/fruitsalade/drivesbrowser/internal/drive/local"
)

// Config holds SMB drive settings.
// Server/Username/Domain are kept for reference only.
// Actual I/O uses the MountPath where the share is pre-mounted.
type Config struct {
	Server    string `json:"server"`     // SMB server path (e.g., //server/share)
	Username  string `json:"username"`   // SMB credentials
	Domain    string `json:"domain"`     // SMB domain
	MountPath string `json:"mount_path"` // Local mount point where share is mounted
}

// SMBDrive wraps a LocalDrive at the SMB mount point.
type SMBDrive struct {
	*local.LocalDrive
	config Config
}

// New creates a new SMB drive from the given config.
func New(name string, cfg Config) (*SMBDrive, error) {
	if cfg.MountPath == "" {
		return nil, fmt.Errorf("mount_path is required")
	}

	ld, err := local.New(name, local.Config{RootPath: cfg.MountPath})
	if err != nil {
		return nil, fmt.Errorf("smb drive at %s: %w", cfg.MountPath, err)
	}

	return &SMBDrive{
		LocalDrive: ld,
		config:     cfg,
	}, nil
}

// NewFromJSON creates an SMBDrive from raw JSON config.
func NewFromJSON(name string, raw json.RawMessage) (*SMBDrive, error) {
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse smb config: %w", err)
	}
	return New(name, cfg)
}

// Server returns the configured share address.
func (d *SMBDrive) Server() string { return d.config.Server }

// Type returns "smb".
func (d *SMBDrive) Type() string { return "smb" }
