package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "filebrowser", cfg.BrowserID)
	assert.Equal(t, "local", cfg.DefaultDrive)
	assert.Equal(t, "/lab", cfg.StartURL)
	assert.Equal(t, "memory", cfg.StateBackend)
	assert.Equal(t, "S3TestDrive", cfg.S3DriveName)
	assert.False(t, cfg.S3Enabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BROWSER_ID", "left-browser")
	t.Setenv("DEFAULT_DRIVE", "S3TestDrive")
	t.Setenv("START_URL", "/lab/tree/data")
	t.Setenv("S3_ENABLED", "true")
	t.Setenv("STATE_BACKEND", "file")
	t.Setenv("STATE_PATH", "/tmp/state")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "left-browser", cfg.BrowserID)
	assert.Equal(t, "S3TestDrive", cfg.DefaultDrive)
	assert.Equal(t, "/lab/tree/data", cfg.StartURL)
	assert.True(t, cfg.S3Enabled)
	assert.Equal(t, "file", cfg.StateBackend)
	assert.Equal(t, "/tmp/state", cfg.StatePath)
}

func TestLoadInvalidBool(t *testing.T) {
	t.Setenv("S3_ENABLED", "sometimes")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"no browser", func(c *Config) { c.BrowserID = "" }, "BROWSER_ID must not be empty"},
		{"no drive", func(c *Config) { c.DefaultDrive = "" }, "DEFAULT_DRIVE must not be empty"},
		{"unknown backend", func(c *Config) { c.StateBackend = "redis" }, `unknown STATE_BACKEND "redis"`},
		{"postgres without url", func(c *Config) { c.StateBackend = "postgres" },
			"STATE_DATABASE_URL is required for the postgres state backend"},
		{"postgres with url", func(c *Config) {
			c.StateBackend = "postgres"
			c.StateDatabaseURL = "postgres://localhost/drives"
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{BrowserID: "fb", DefaultDrive: "local", StateBackend: "memory"}
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}

func TestParseDrives(t *testing.T) {
	drives, err := ParseDrives([]byte(`
drives:
  - name: S3TestDrive
    type: s3
    config:
      endpoint: http://localhost:9000
      bucket: drives
  - name: scratch
    type: memory
`))
	require.NoError(t, err)
	require.Len(t, drives, 2)

	assert.Equal(t, "S3TestDrive", drives[0].Name)
	assert.Equal(t, "s3", drives[0].Type)
	raw, err := drives[0].RawConfig()
	require.NoError(t, err)
	assert.JSONEq(t, `{"endpoint":"http://localhost:9000","bucket":"drives"}`, string(raw))

	raw, err = drives[1].RawConfig()
	require.NoError(t, err)
	assert.Equal(t, "{}", string(raw))
}

func TestParseDrivesValidation(t *testing.T) {
	_, err := ParseDrives([]byte("drives:\n  - type: s3\n"))
	assert.EqualError(t, err, "drive 0: name is required")

	_, err = ParseDrives([]byte("drives:\n  - name: x\n"))
	assert.EqualError(t, err, "drive x: type is required")

	_, err = ParseDrives([]byte("drives: [oops"))
	assert.Error(t, err)
}

func TestLoadDrives(t *testing.T) {
	drives, err := LoadDrives("")
	require.NoError(t, err)
	assert.Nil(t, drives)

	path := filepath.Join(t.TempDir(), "drives.yaml")
	require.NoError(t, os.WriteFile(path, []byte("drives:\n  - name: docs\n    type: local\n"), 0644))
	drives, err = LoadDrives(path)
	require.NoError(t, err)
	require.Len(t, drives, 1)
	assert.Equal(t, "docs", drives[0].Name)

	_, err = LoadDrives(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
