// Drives Browser
//
// Mounts the configured drives, creates the default file browser bound to
// DEFAULT_DRIVE and restores it, either from its persisted snapshot or from
// the deep link in START_URL (e.g. /lab/tree/data/report.csv).
//
// Features:
// - Pluggable drives (local, SMB, S3, memory) registered by name
// - Snapshot persistence (memory, file, PostgreSQL)
// - Prometheus metrics & structured logging (zap)
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/fruitsalade/drivesbrowser/internal/commands"
	"github.com/fruitsalade/drivesbrowser/internal/config"
	"github.com/fruitsalade/drivesbrowser/internal/drive"
	"github.com/fruitsalade/drivesbrowser/internal/drive/backend"
	"github.com/fruitsalade/drivesbrowser/internal/drive/local"
	s3drive "github.com/fruitsalade/drivesbrowser/internal/drive/s3"
	"github.com/fruitsalade/drivesbrowser/internal/filebrowser"
	"github.com/fruitsalade/drivesbrowser/internal/logging"
	"github.com/fruitsalade/drivesbrowser/internal/metrics"
	"github.com/fruitsalade/drivesbrowser/internal/restore"
	"github.com/fruitsalade/drivesbrowser/internal/router"
	"github.com/fruitsalade/drivesbrowser/internal/shell"
	"github.com/fruitsalade/drivesbrowser/internal/state"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Can't use structured logging yet
		panic("configuration error: " + err.Error())
	}

	// Initialize structured logging
	if err := logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	}); err != nil {
		panic("logging init error: " + err.Error())
	}
	defer logging.Sync()

	logging.Info("Drives Browser starting...",
		zap.String("browser", cfg.BrowserID),
		zap.String("drive", cfg.DefaultDrive),
		zap.String("url", cfg.StartURL))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Mount drives
	drives := drive.NewRegistry()
	defer drives.Close()
	if err := mountDrives(ctx, cfg, drives); err != nil {
		logging.Fatal("drive setup failed", zap.Error(err))
	}
	logging.Info("drives mounted", zap.Strings("drives", drives.Names()))

	// Snapshot store
	store, err := state.New(ctx, state.Options{
		Backend:     cfg.StateBackend,
		Path:        cfg.StatePath,
		DatabaseURL: cfg.StateDatabaseURL,
	})
	if err != nil {
		logging.Fatal("state store init failed", zap.Error(err))
	}
	if c, ok := store.(interface{ Close() error }); ok {
		defer c.Close()
	}

	// Shell, router and commands
	appShell := shell.New()
	nav := router.New()
	defer nav.Close()
	tree := router.NewTreeResolver(nav)
	cmds := commands.NewRegistry()

	// Default file browser
	browser, err := filebrowser.NewFactory(drives, store).CreateBrowser(cfg.BrowserID, cfg.DefaultDrive)
	if err != nil {
		logging.Fatal("file browser creation failed", zap.Error(err))
	}
	appShell.Add(shell.RegionLeft, browser.ID())

	if err := cmds.Register(commands.OpenPath, filebrowser.OpenPathHandler(browser, drives, appShell)); err != nil {
		logging.Fatal("command registration failed", zap.Error(err))
	}
	if err := cmds.Register(commands.CreateLauncher, shell.LauncherHandler(appShell)); err != nil {
		logging.Fatal("command registration failed", zap.Error(err))
	}

	// Start metrics server
	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: metrics.Handler(),
		}
		go func() {
			logging.Info("metrics server listening", zap.String("addr", cfg.MetricsAddr))
			if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("metrics server error", zap.Error(err))
			}
		}()
	}

	// Restore the browser; Start connects to the router before navigating
	coordinator, err := restore.New(restore.Options{
		Browser:  browser,
		Commands: cmds,
		Router:   nav,
		Tree:     tree,
		Shell:    appShell,
	})
	if err != nil {
		logging.Fatal("restoration setup failed", zap.Error(err))
	}
	restored := coordinator.Start(ctx)

	if err := nav.Navigate(ctx, cfg.StartURL); err != nil {
		logging.Warn("navigation failed", zap.String("url", cfg.StartURL), zap.Error(err))
	}

	if err := <-restored; err != nil {
		logging.Error("file browser did not finish restoring",
			zap.String("state", browser.State().String()),
			zap.Error(err))
	} else {
		logListing(browser)
	}

	if metricsServer == nil {
		return
	}

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logging.Info("shutting down...")
	cancel()
	metricsServer.Close()
}

// mountDrives registers every drive in the drives file, then the optional S3
// drive, then a local drive for DEFAULT_DRIVE if nothing else provided it.
// Duplicate names abort startup.
func mountDrives(ctx context.Context, cfg *config.Config, drives *drive.Registry) error {
	specs, err := config.LoadDrives(cfg.DrivesFile)
	if err != nil {
		return err
	}

	for _, spec := range specs {
		raw, err := spec.RawConfig()
		if err != nil {
			return err
		}
		if _, err := backend.Mount(ctx, drives, spec.Name, spec.Type, raw); err != nil {
			return err
		}
	}

	if cfg.S3Enabled {
		raw, _ := json.Marshal(s3drive.Config{
			Endpoint:  cfg.S3Endpoint,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Region:    cfg.S3Region,
			UseSSL:    cfg.S3UseSSL,
		})
		if _, err := backend.Mount(ctx, drives, cfg.S3DriveName, "s3", raw); err != nil {
			return err
		}
	}

	// Local fallback for the default drive
	if _, err := drives.Lookup(cfg.DefaultDrive); errors.Is(err, drive.ErrNotFound) {
		raw, _ := json.Marshal(local.Config{RootPath: cfg.LocalRoot})
		if _, err := backend.Mount(ctx, drives, cfg.DefaultDrive, "local", raw); err != nil {
			return err
		}
	}
	return nil
}

func logListing(b *filebrowser.Browser) {
	items := b.Model().Items()
	names := make([]string, 0, len(items))
	for _, e := range items {
		if e.IsDir {
			names = append(names, e.Name+"/")
		} else {
			names = append(names, e.Name)
		}
	}
	logging.Info("file browser ready",
		zap.String("browser", b.ID()),
		zap.String("path", drive.JoinPath(b.DriveName(), b.Model().Path())),
		zap.Strings("items", names))
}
