package application

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jobrunner/meridian/internal/domain"
	"github.com/jobrunner/meridian/internal/ports/output"
)

func newSyncRegistry(storage *mockStorage, localPath string) *CatalogRegistry {
	return NewCatalogRegistry(
		[]output.CatalogReader{&mockReader{}},
		storage,
		&output.NoOpMetrics{},
		testLogger(),
		localPath,
	)
}

func TestSyncService_RateLimiting(t *testing.T) {
	registry := newSyncRegistry(&mockStorage{}, "/tmp")
	service := NewSyncService(registry, time.Hour, testLogger())

	ctx := context.Background()

	result, err := service.TriggerSync(ctx)
	if err != nil {
		t.Errorf("first sync should succeed, got error: %v", err)
	}
	if result.CatalogsAdded != 0 {
		t.Errorf("expected 0 catalogs added with empty storage, got %d", result.CatalogsAdded)
	}
	if result.Definitions != 123 {
		t.Errorf("expected the 123 built-in definitions, got %d", result.Definitions)
	}

	_, err = service.TriggerSync(ctx)
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}

func TestSyncService_StartStop(t *testing.T) {
	registry := newSyncRegistry(&mockStorage{}, "/tmp")
	service := NewSyncService(registry, 100*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	service.Start(ctx)
	time.Sleep(50 * time.Millisecond)

	// Should complete without hanging
	service.Stop()
}

func TestSyncService_Interval(t *testing.T) {
	registry := newSyncRegistry(&mockStorage{}, "/tmp")

	interval := 2 * time.Hour
	service := NewSyncService(registry, interval, testLogger())

	if service.Interval() != interval {
		t.Errorf("expected interval %v, got %v", interval, service.Interval())
	}
}

func TestSyncService_ScheduledSyncLoadsCatalogs(t *testing.T) {
	storage := &mockStorage{
		objects: []output.StorageObject{{Key: "europe.wkt"}},
	}
	registry := newSyncRegistry(storage, "/tmp")
	service := NewSyncService(registry, 20*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	service.Start(ctx)
	defer service.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for !registry.IsLoaded("europe") {
		if time.Now().After(deadline) {
			t.Fatal("scheduled sync did not load the catalog")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSyncService_SyncAddsNewCatalogs(t *testing.T) {
	storage := &mockStorage{
		objects: []output.StorageObject{
			{Key: "test1.gpkg"},
			{Key: "nested/test2.wkt"},
		},
	}
	registry := newSyncRegistry(storage, "/tmp")
	service := NewSyncService(registry, time.Hour, testLogger())

	result, err := service.TriggerSync(context.Background())
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if result.CatalogsAdded != 2 {
		t.Errorf("expected 2 catalogs added, got %d", result.CatalogsAdded)
	}
	if result.CatalogsTotal != 2 {
		t.Errorf("expected 2 total catalogs, got %d", result.CatalogsTotal)
	}
	if result.SyncedAt.IsZero() {
		t.Error("SyncedAt should be set")
	}
}

func TestSyncService_SyncError(t *testing.T) {
	listErr := &domain.StorageError{Operation: "list", Err: domain.ErrStorageUnavailable}
	registry := newSyncRegistry(&mockStorage{listErr: listErr}, "/tmp")
	service := NewSyncService(registry, time.Hour, testLogger())

	_, err := service.TriggerSync(context.Background())
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Errorf("err = %v, want ErrStorageUnavailable", err)
	}
}

func TestRegistry_IsLoaded(t *testing.T) {
	registry := newTestRegistry()

	if registry.IsLoaded("test-catalog") {
		t.Error("expected catalog to not be loaded initially")
	}

	registry.catalogs["test-catalog"] = &catalogEntry{Catalog: &domain.Catalog{ID: "test-catalog"}}

	if !registry.IsLoaded("test-catalog") {
		t.Error("expected catalog to be loaded after adding")
	}
}

func TestRegistry_CatalogCount(t *testing.T) {
	registry := newTestRegistry()

	if registry.CatalogCount() != 0 {
		t.Errorf("expected 0 catalogs, got %d", registry.CatalogCount())
	}

	registry.catalogs["cat1"] = &catalogEntry{Catalog: &domain.Catalog{ID: "cat1"}}
	registry.catalogs["cat2"] = &catalogEntry{Catalog: &domain.Catalog{ID: "cat2"}}

	if registry.CatalogCount() != 2 {
		t.Errorf("expected 2 catalogs, got %d", registry.CatalogCount())
	}
}

func TestRegistry_SyncRemovesDeletedCatalogs(t *testing.T) {
	dir := t.TempDir()
	storage := &mockStorage{
		objects: []output.StorageObject{
			{Key: "test1.gpkg"},
			{Key: "test2.prj"},
		},
	}
	registry := newSyncRegistry(storage, dir)
	ctx := context.Background()

	stats, err := registry.Sync(ctx)
	if err != nil {
		t.Fatalf("first sync failed: %v", err)
	}
	if stats.Added != 2 || stats.Removed != 0 {
		t.Errorf("first sync: added %d, removed %d, want 2 and 0", stats.Added, stats.Removed)
	}

	// Cached copy of the catalog that disappears remotely.
	cached := filepath.Join(dir, "test2.prj")
	if err := os.WriteFile(cached, []byte("PROJCS[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	storage.objects = []output.StorageObject{
		{Key: "test1.gpkg"},
	}

	stats, err = registry.Sync(ctx)
	if err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	if stats.Added != 0 || stats.Removed != 1 {
		t.Errorf("second sync: added %d, removed %d, want 0 and 1", stats.Added, stats.Removed)
	}
	if registry.CatalogCount() != 1 {
		t.Errorf("expected 1 total catalog, got %d", registry.CatalogCount())
	}
	if _, err := os.Stat(cached); !os.IsNotExist(err) {
		t.Errorf("cached file should be deleted, stat err = %v", err)
	}
}

func TestRegistry_SyncSkipsFailedDownloads(t *testing.T) {
	storage := &mockStorage{
		objects:     []output.StorageObject{{Key: "test1.gpkg"}},
		downloadErr: errors.New("connection reset"),
	}
	registry := newSyncRegistry(storage, "/tmp")

	stats, err := registry.Sync(context.Background())
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if stats.Added != 0 {
		t.Errorf("expected 0 catalogs added, got %d", stats.Added)
	}
}

func TestRegistry_FindCatalogsToRemove(t *testing.T) {
	registry := newTestRegistry()

	registry.catalogs["cat1"] = &catalogEntry{}
	registry.catalogs["cat2"] = &catalogEntry{}
	registry.catalogs["cat3"] = &catalogEntry{}

	remoteCatalogs := map[string]string{
		"cat1": "cat1.gpkg",
		"cat3": "cat3.wkt",
	}

	toRemove := registry.findCatalogsToRemove(remoteCatalogs)

	if len(toRemove) != 1 {
		t.Fatalf("expected 1 catalog to remove, got %d", len(toRemove))
	}
	if toRemove[0] != "cat2" {
		t.Errorf("expected cat2 to be removed, got %s", toRemove[0])
	}
}

func TestSyncService_StopWithoutStart(t *testing.T) {
	service := NewSyncService(newSyncRegistry(&mockStorage{}, "/tmp"), 0, testLogger())

	// A disabled schedule does not start a loop.
	service.Start(context.Background())
	service.Stop()
	service.Stop()
}

func TestSyncService_ConcurrentTriggersShareRun(t *testing.T) {
	storage := &mockStorage{
		objects: []output.StorageObject{{Key: "europe.wkt"}},
	}
	registry := newSyncRegistry(storage, "/tmp")
	service := NewSyncService(registry, time.Hour, testLogger())

	results := make(chan SyncResult, 2)
	errs := make(chan error, 2)
	for range 2 {
		go func() {
			r, err := service.sync(context.Background())
			results <- r
			errs <- err
		}()
	}

	added := 0
	for range 2 {
		if err := <-errs; err != nil {
			t.Fatalf("sync() error = %v", err)
		}
		added += (<-results).CatalogsAdded
	}
	// Either both calls joined one run, or the second found the catalog loaded.
	if added < 1 || added > 2 || registry.CatalogCount() != 1 {
		t.Errorf("added = %d, catalogs = %d", added, registry.CatalogCount())
	}
}
