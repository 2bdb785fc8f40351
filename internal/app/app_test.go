package app

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jobrunner/meridian/internal/adapters/watcher"
	"github.com/jobrunner/meridian/internal/config"
	"github.com/jobrunner/meridian/internal/domain"
)

const ed50WKT = `GEOGCS["ED50",DATUM["European_Datum_1950",SPHEROID["International 1924",6378388,297],TOWGS84[-87,-98,-121,0,0,0,0]],PRIMEM["Greenwich",0],UNIT["degree",0.0174532925199433],AUTHORITY["EPSG","4230"]]`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testConfig(dir string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0},
		Storage: config.StorageConfig{
			Type:      "local",
			LocalPath: dir,
		},
		Transform: config.TransformConfig{
			MaxPoints: 100,
			CacheSize: 16,
			CacheTTL:  time.Minute,
		},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func TestNewWiresComponents(t *testing.T) {
	app, err := New(context.Background(), testConfig(t.TempDir()), testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if app.Metrics == nil {
		t.Error("metrics collector should be created when enabled")
	}
	if app.SyncService != nil {
		t.Error("local storage without an interval should not create a sync service")
	}
	if app.Watcher != nil {
		t.Error("watcher should stay off when watch is disabled")
	}
	if app.TLSServer != nil {
		t.Error("TLS server should stay off when disabled")
	}
}

func TestNewUnknownStorage(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Storage.Type = "ftp"

	_, err := New(context.Background(), cfg, testLogger())
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("New() error = %v, want configuration error", err)
	}
}

func TestHandleFileEvent(t *testing.T) {
	dir := t.TempDir()
	app, err := New(context.Background(), testConfig(dir), testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	path := filepath.Join(dir, "ed50.prj")
	if err := os.WriteFile(path, []byte(ed50WKT), 0o644); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}

	if err := app.handleFileEvent(ctx, watcher.Event{Path: path, Operation: watcher.OpCreate}); err != nil {
		t.Fatalf("create event error = %v", err)
	}
	if _, err := app.Registry.Resolve(ctx, "EPSG:4230"); err != nil {
		t.Errorf("Resolve() after create error = %v", err)
	}

	if err := app.handleFileEvent(ctx, watcher.Event{Path: path, Operation: watcher.OpDelete}); err != nil {
		t.Fatalf("delete event error = %v", err)
	}
	if _, err := app.Registry.Resolve(ctx, "EPSG:4230"); !errors.Is(err, domain.ErrDefinitionNotFound) {
		t.Errorf("Resolve() after delete error = %v, want not found", err)
	}

	// Deleting an unknown catalog is logged, not returned.
	if err := app.handleFileEvent(ctx, watcher.Event{Path: path, Operation: watcher.OpDelete}); err != nil {
		t.Errorf("second delete error = %v", err)
	}
}
