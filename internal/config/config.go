// Package config loads configuration from environment variables and an
// optional YAML drives file.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all drives-browser configuration.
type Config struct {
	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	// Metrics server; empty disables it
	MetricsAddr string `envconfig:"METRICS_ADDR" default:""`

	// Browser
	BrowserID    string `envconfig:"BROWSER_ID" default:"filebrowser"`
	DefaultDrive string `envconfig:"DEFAULT_DRIVE" default:"local"`
	StartURL     string `envconfig:"START_URL" default:"/lab"`

	// Local drive backing DEFAULT_DRIVE when no drives file defines it
	LocalRoot string `envconfig:"LOCAL_ROOT" default:"."`

	// Extra drives
	DrivesFile string `envconfig:"DRIVES_FILE" default:""`

	// S3 drive
	S3Enabled   bool   `envconfig:"S3_ENABLED" default:"false"`
	S3DriveName string `envconfig:"S3_DRIVE_NAME" default:"S3TestDrive"`
	S3Endpoint  string `envconfig:"S3_ENDPOINT" default:"http://localhost:9000"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"drives"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY" default:""`
	S3SecretKey string `envconfig:"S3_SECRET_KEY" default:""`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3UseSSL    bool   `envconfig:"S3_USE_SSL" default:"false"`

	// Snapshot state ("memory", "file" or "postgres")
	StateBackend     string `envconfig:"STATE_BACKEND" default:"memory"`
	StatePath        string `envconfig:"STATE_PATH" default:".drives-browser/state"`
	StateDatabaseURL string `envconfig:"STATE_DATABASE_URL" default:""`
}

// DriveSpec describes one drive in the drives file.
type DriveSpec struct {
	Name   string         `yaml:"name"`
	Type   string         `yaml:"type"`
	Config map[string]any `yaml:"config"`
}

// RawConfig returns the backend config as JSON for the backend factory.
func (d DriveSpec) RawConfig() (json.RawMessage, error) {
	if d.Config == nil {
		return json.RawMessage("{}"), nil
	}
	raw, err := json.Marshal(d.Config)
	if err != nil {
		return nil, fmt.Errorf("encode config of drive %s: %w", d.Name, err)
	}
	return raw, nil
}

type drivesFile struct {
	Drives []DriveSpec `yaml:"drives"`
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	if c.BrowserID == "" {
		return fmt.Errorf("BROWSER_ID must not be empty")
	}
	if c.DefaultDrive == "" {
		return fmt.Errorf("DEFAULT_DRIVE must not be empty")
	}
	switch c.StateBackend {
	case "memory", "file":
	case "postgres":
		if c.StateDatabaseURL == "" {
			return fmt.Errorf("STATE_DATABASE_URL is required for the postgres state backend")
		}
	default:
		return fmt.Errorf("unknown STATE_BACKEND %q", c.StateBackend)
	}
	return nil
}

// LoadDrives reads the drives file. An empty path yields no drives.
func LoadDrives(path string) ([]DriveSpec, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read drives file: %w", err)
	}
	return ParseDrives(data)
}

// ParseDrives decodes drive specs from YAML.
func ParseDrives(data []byte) ([]DriveSpec, error) {
	var f drivesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse drives file: %w", err)
	}
	for i, d := range f.Drives {
		if d.Name == "" {
			return nil, fmt.Errorf("drive %d: name is required", i)
		}
		if d.Type == "" {
			return nil, fmt.Errorf("drive %s: type is required", d.Name)
		}
	}
	return f.Drives, nil
}
