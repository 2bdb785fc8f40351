// Package app provides application initialization and wiring.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/jobrunner/meridian/internal/adapters/cache"
	"github.com/jobrunner/meridian/internal/adapters/geopackage"
	httpAdapter "github.com/jobrunner/meridian/internal/adapters/http"
	"github.com/jobrunner/meridian/internal/adapters/metrics"
	"github.com/jobrunner/meridian/internal/adapters/storage"
	tlsAdapter "github.com/jobrunner/meridian/internal/adapters/tls"
	"github.com/jobrunner/meridian/internal/adapters/watcher"
	"github.com/jobrunner/meridian/internal/adapters/wktfile"
	"github.com/jobrunner/meridian/internal/application"
	"github.com/jobrunner/meridian/internal/config"
	"github.com/jobrunner/meridian/internal/domain"
	"github.com/jobrunner/meridian/internal/operation"
	"github.com/jobrunner/meridian/internal/ports/output"
)

// App holds all application components.
type App struct {
	Config           *config.Config
	Logger           *slog.Logger
	Storage          output.ObjectStorage
	Registry         *application.CatalogRegistry
	Cache            *cache.OperationCache
	TransformService *application.TransformService
	HealthService    *application.HealthService
	SyncService      *application.SyncService
	HTTPServer       *httpAdapter.Server
	TLSServer        *tlsAdapter.Server
	Watcher          *watcher.Watcher
	Metrics          *metrics.Collector
}

// New creates and initializes a new application.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	var metricsCollector output.MetricsCollector = &output.NoOpMetrics{}
	if cfg.Metrics.Enabled {
		app.Metrics = metrics.NewCollector("meridian")
		metricsCollector = app.Metrics
	}

	store, err := initStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	app.Storage = store

	if err := os.MkdirAll(cfg.Storage.LocalPath, 0o750); err != nil {
		return nil, &domain.StorageError{Operation: "mkdir", Key: cfg.Storage.LocalPath, Err: err}
	}

	app.Registry = application.NewCatalogRegistry(
		[]output.CatalogReader{geopackage.NewReader(), wktfile.NewReader()},
		app.Storage,
		metricsCollector,
		logger,
		cfg.Storage.LocalPath,
	)

	app.Cache = cache.NewOperationCache(cache.Config{
		Capacity: cfg.Transform.CacheSize,
		TTL:      cfg.Transform.CacheTTL,
	}, logger)

	app.TransformService = application.NewTransformService(
		app.Registry,
		operation.NewFactory(logger),
		app.Cache,
		metricsCollector,
		logger,
		application.TransformServiceConfig{
			DefaultSource: cfg.Transform.DefaultSource,
			DefaultTarget: cfg.Transform.DefaultTarget,
			MaxPoints:     cfg.Transform.MaxPoints,
			Workers:       cfg.Transform.Workers,
			Timeout:       cfg.Transform.Timeout,
		},
	)

	app.HealthService = application.NewHealthService(app.Registry)

	// Remote catalogs can be synced on demand even without a schedule.
	if cfg.Sync.Interval > 0 || output.StorageType(cfg.Storage.Type).IsRemote() {
		app.SyncService = application.NewSyncService(app.Registry, cfg.Sync.Interval, logger)
	}

	app.HTTPServer = httpAdapter.NewServer(
		cfg.Server,
		app.TransformService,
		app.Registry,
		app.HealthService,
		app.SyncService,
		logger,
	)
	if app.Metrics != nil {
		app.HTTPServer.EnableMetrics(cfg.Metrics.Path, app.Metrics)
	}

	if cfg.TLS.Enabled {
		tlsServer, err := tlsAdapter.NewServer(cfg.TLS, cfg.Server, app.HTTPServer.Router(), logger)
		if err != nil {
			return nil, fmt.Errorf("initializing TLS: %w", err)
		}
		app.TLSServer = tlsServer
	}

	// Hot reload only makes sense when the catalogs live on local disk.
	if output.StorageType(cfg.Storage.Type) == output.StorageTypeLocal && cfg.Watch.Enabled {
		w, err := watcher.New(
			watcher.Config{
				Paths:    []string{cfg.Storage.LocalPath},
				Debounce: cfg.Watch.Debounce,
			},
			app.handleFileEvent,
			logger,
		)
		if err != nil {
			logger.Warn("failed to initialize file watcher", "error", err)
		} else {
			app.Watcher = w
		}
	}

	return app, nil
}

// Start loads the catalogs, starts the background components and serves
// until the server is shut down.
func (a *App) Start(ctx context.Context) error {
	if err := a.Registry.LoadAll(ctx); err != nil {
		a.Logger.Warn("failed to load catalogs", "error", err)
	}
	a.Logger.Info("catalogs loaded",
		"catalogs", a.Registry.CatalogCount(),
		"definitions", a.Registry.DefinitionCount(),
	)

	a.Cache.Start()

	if a.Watcher != nil {
		if err := a.Watcher.Start(ctx); err != nil {
			a.Logger.Warn("failed to start file watcher", "error", err)
		}
	}

	if a.SyncService != nil {
		a.SyncService.Start(ctx)
	}

	if a.TLSServer != nil {
		if err := a.TLSServer.ManageCertificates(ctx); err != nil {
			return err
		}
		return a.TLSServer.ListenAndServe(a.Config.Server.Address())
	}

	if err := a.HTTPServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down all components.
func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.Info("shutting down application")

	if a.Watcher != nil {
		_ = a.Watcher.Stop()
	}

	if a.SyncService != nil {
		a.SyncService.Stop()
	}

	var errs []error
	if a.TLSServer != nil {
		if err := a.TLSServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("TLS server shutdown: %w", err))
		}
	} else if err := a.HTTPServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP server shutdown: %w", err))
	}

	a.Cache.Stop()

	catalogs, _ := a.Registry.ListCatalogs(ctx)
	for _, cat := range catalogs {
		if err := a.Registry.UnloadCatalog(ctx, cat.ID); err != nil {
			a.Logger.Error("failed to unload catalog", "id", cat.ID, "error", err)
		}
	}

	return errors.Join(errs...)
}

// handleFileEvent handles file system events for hot-reload.
func (a *App) handleFileEvent(ctx context.Context, event watcher.Event) error {
	a.Logger.Info("file event", "path", event.Path, "operation", event.Operation.String())

	switch event.Operation {
	case watcher.OpCreate, watcher.OpModify:
		return a.Registry.LoadCatalog(ctx, event.Path)

	case watcher.OpDelete:
		catalogID := wktfile.DeriveCatalogID(event.Path)
		if err := a.Registry.UnloadCatalog(ctx, catalogID); err != nil {
			a.Logger.Warn("failed to unload deleted catalog", "id", catalogID, "error", err)
		}
		return nil
	}

	return nil
}

// initStorage initializes the appropriate storage adapter.
func initStorage(ctx context.Context, cfg config.StorageConfig) (output.ObjectStorage, error) {
	typ, ok := output.ParseStorageType(cfg.Type)
	if !ok {
		return nil, &domain.ConfigError{Field: "storage.type", Message: fmt.Sprintf("unknown storage type: %s", cfg.Type)}
	}

	switch typ {
	case output.StorageTypeLocal:
		return storage.NewLocalStorage(cfg.LocalPath), nil

	case output.StorageTypeS3:
		return storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Prefix:          cfg.S3.Prefix,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})

	case output.StorageTypeAzure:
		return storage.NewAzureStorage(storage.AzureConfig{
			Container:        cfg.Azure.Container,
			AccountName:      cfg.Azure.AccountName,
			AccountKey:       cfg.Azure.AccountKey,
			ConnectionString: cfg.Azure.ConnectionString,
			Prefix:           cfg.Azure.Prefix,
		})

	case output.StorageTypeHTTP:
		return storage.NewHTTPStorage(storage.HTTPConfig{
			BaseURL:   cfg.HTTP.BaseURL,
			IndexFile: cfg.HTTP.IndexFile,
			Timeout:   cfg.HTTP.Timeout,
			Username:  cfg.HTTP.Username,
			Password:  cfg.HTTP.Password,
		}), nil
	}
	return nil, &domain.ConfigError{Field: "storage.type", Message: fmt.Sprintf("unsupported storage type: %s", cfg.Type)}
}
