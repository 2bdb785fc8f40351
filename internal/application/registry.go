// Package application contains the application services.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jobrunner/meridian/internal/crs"
	"github.com/jobrunner/meridian/internal/domain"
	"github.com/jobrunner/meridian/internal/ports/input"
	"github.com/jobrunner/meridian/internal/ports/output"
	"github.com/jobrunner/meridian/internal/wkt"
)

var _ input.CRSRegistry = (*CatalogRegistry)(nil)

// CatalogRegistry manages loaded CRS catalogs and resolves CRS references
// against them and the built-in systems.
type CatalogRegistry struct {
	mu        sync.RWMutex
	catalogs  map[string]*catalogEntry
	readers   map[domain.CatalogFormat]output.CatalogReader
	storage   output.ObjectStorage
	metrics   output.MetricsCollector
	logger    *slog.Logger
	localPath string

	builtins map[string]crs.CoordinateSystem
	byKey    map[string]*resolved
	byName   map[string]*resolved
	ordered  []*resolved
	version  uint64
}

type catalogEntry struct {
	Catalog *domain.Catalog
	Error   error
	systems map[string]crs.CoordinateSystem
}

// resolved is one lookup target: a definition and its parsed system.
type resolved struct {
	def       domain.Definition
	cs        crs.CoordinateSystem
	catalogID string
}

// builtinDescription marks definitions that come from the built-in set.
const builtinDescription = "built-in"

// NewCatalogRegistry creates a new catalog registry. Each reader serves
// the formats it reports; later readers win for a shared format.
func NewCatalogRegistry(
	readers []output.CatalogReader,
	storage output.ObjectStorage,
	metrics output.MetricsCollector,
	logger *slog.Logger,
	localPath string,
) *CatalogRegistry {
	r := &CatalogRegistry{
		catalogs:  make(map[string]*catalogEntry),
		readers:   make(map[domain.CatalogFormat]output.CatalogReader),
		storage:   storage,
		metrics:   metrics,
		logger:    logger,
		localPath: localPath,
		builtins:  crs.WellKnown(),
	}
	for _, reader := range readers {
		for _, format := range reader.Formats() {
			r.readers[format] = reader
		}
	}

	r.mu.Lock()
	r.rebuildIndex()
	r.mu.Unlock()
	return r
}

// LoadCatalog reads a catalog file and parses its definitions. A catalog
// already registered under the same ID is replaced.
func (r *CatalogRegistry) LoadCatalog(ctx context.Context, path string) error {
	r.logger.Info("loading catalog", "path", path)

	catalogID := deriveCatalogID(path)
	format, ok := domain.FormatForPath(path)
	reader := r.readers[format]
	if !ok || reader == nil {
		return &domain.CatalogError{
			CatalogID: catalogID,
			Err:       fmt.Errorf("%w: catalog format %q", domain.ErrUnsupported, filepath.Ext(path)),
		}
	}

	cat, err := reader.Read(ctx, path)
	if err != nil {
		r.logger.Error("failed to read catalog", "path", path, "error", err)
		return err
	}
	if cat.ID == "" {
		cat.ID = catalogID
	}
	cat.Status = domain.StatusParsing

	r.mu.Lock()
	r.catalogs[cat.ID] = &catalogEntry{Catalog: cat}
	r.mu.Unlock()

	defs, systems := r.parseDefinitions(cat)
	cat.Failed = len(cat.Definitions) - len(defs)

	var loadErr error
	if len(defs) == 0 && cat.Failed > 0 {
		loadErr = &domain.CatalogError{
			CatalogID: cat.ID,
			Err:       fmt.Errorf("%w: none of %d definitions could be parsed", domain.ErrParse, cat.Failed),
		}
	}

	r.mu.Lock()
	if entry, ok := r.catalogs[cat.ID]; ok {
		entry.Catalog.Definitions = defs
		entry.Catalog.LoadedAt = time.Now()
		entry.systems = systems
		entry.Error = loadErr
		entry.Catalog.Status = domain.StatusReady
		if loadErr != nil {
			entry.Catalog.Status = domain.StatusError
		}
	}
	r.rebuildIndex()
	r.mu.Unlock()

	r.updateMetrics()
	if loadErr != nil {
		r.logger.Error("catalog has no usable definitions", "id", cat.ID, "failed", cat.Failed)
		return loadErr
	}
	r.logger.Info("catalog loaded", "id", cat.ID, "definitions", len(defs), "failed", cat.Failed)
	return nil
}

// parseDefinitions parses every definition of cat. Definitions without a
// name or authority take them from the parsed system.
func (r *CatalogRegistry) parseDefinitions(cat *domain.Catalog) ([]domain.Definition, map[string]crs.CoordinateSystem) {
	defs := make([]domain.Definition, 0, len(cat.Definitions))
	systems := make(map[string]crs.CoordinateSystem, len(cat.Definitions))

	for _, def := range cat.Definitions {
		cs, err := wkt.ParseCoordinateSystem(def.WKT)
		if err != nil {
			r.logger.Warn("skipping definition", "catalog", cat.ID, "definition", def.Key(), "error", err)
			continue
		}

		info := cs.Description()
		if def.Name == "" {
			def.Name = info.Name
		}
		if def.Organization == "" && info.HasAuthority() {
			def.Organization = info.Authority
			def.Code = info.AuthorityCode
		}
		if def.Key() == "" {
			r.logger.Warn("skipping anonymous definition", "catalog", cat.ID)
			continue
		}

		defs = append(defs, def)
		systems[strings.ToUpper(def.Key())] = cs
	}
	return defs, systems
}

// UnloadCatalog removes a catalog and its definitions.
func (r *CatalogRegistry) UnloadCatalog(_ context.Context, catalogID string) error {
	r.logger.Info("unloading catalog", "id", catalogID)

	r.mu.Lock()
	entry, ok := r.catalogs[catalogID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrCatalogNotFound, catalogID)
	}
	entry.Catalog.Status = domain.StatusUnloading
	delete(r.catalogs, catalogID)
	r.rebuildIndex()
	r.mu.Unlock()

	r.updateMetrics()
	return nil
}

// rebuildIndex recomputes the lookup tables. Ready catalogs are consulted
// in ID order and shadow the built-ins; the first catalog defining a key
// wins. Callers hold r.mu.
func (r *CatalogRegistry) rebuildIndex() {
	r.version++
	r.byKey = make(map[string]*resolved)
	r.byName = make(map[string]*resolved)
	r.ordered = nil

	add := func(e *resolved) {
		key := strings.ToUpper(e.def.Key())
		if _, taken := r.byKey[key]; taken {
			return
		}
		r.byKey[key] = e
		if name := strings.ToLower(e.def.Name); name != "" {
			if _, taken := r.byName[name]; !taken {
				r.byName[name] = e
			}
		}
		r.ordered = append(r.ordered, e)
	}

	ids := make([]string, 0, len(r.catalogs))
	for id, entry := range r.catalogs {
		if entry.Catalog.IsReady() {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	for _, id := range ids {
		entry := r.catalogs[id]
		for _, def := range entry.Catalog.Definitions {
			add(&resolved{def: def, cs: entry.systems[strings.ToUpper(def.Key())], catalogID: id})
		}
	}

	keys := make([]string, 0, len(r.builtins))
	for key := range r.builtins {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		cs := r.builtins[key]
		info := cs.Description()
		add(&resolved{
			def: domain.Definition{
				SRSID:        info.AuthorityCode,
				Organization: info.Authority,
				Code:         info.AuthorityCode,
				Name:         info.Name,
				Description:  builtinDescription,
			},
			cs: cs,
		})
	}

	slices.SortFunc(r.ordered, func(a, b *resolved) int {
		return strings.Compare(a.def.Key(), b.def.Key())
	})
}

// lookup finds a definition by "AUTHORITY:CODE", bare EPSG code or name.
func (r *CatalogRegistry) lookup(ref string) (*resolved, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if authority, code, err := domain.ParseKey(ref); err == nil {
		if e, ok := r.byKey[domain.FormatKey(authority, code)]; ok {
			return e, true
		}
	}
	ref = strings.TrimSpace(ref)
	if e, ok := r.byKey[strings.ToUpper(ref)]; ok {
		return e, true
	}
	e, ok := r.byName[strings.ToLower(ref)]
	return e, ok
}

// Resolve returns the coordinate system for a registry key, a CRS name or
// an inline WKT definition.
func (r *CatalogRegistry) Resolve(_ context.Context, ref string) (crs.CoordinateSystem, error) {
	if isInlineWKT(ref) {
		return wkt.ParseCoordinateSystem(ref)
	}
	e, ok := r.lookup(ref)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDefinitionNotFound, ref)
	}
	return e.cs, nil
}

// isInlineWKT reports whether ref reads as a WKT definition rather than a key.
func isInlineWKT(ref string) bool {
	ref = strings.TrimSpace(ref)
	i := strings.IndexAny(ref, "[(")
	return i > 0 && !strings.ContainsAny(ref[:i], ": ")
}

// GetDefinition returns a definition by key or name.
func (r *CatalogRegistry) GetDefinition(_ context.Context, keyOrName string) (*domain.Definition, error) {
	e, ok := r.lookup(keyOrName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDefinitionNotFound, keyOrName)
	}
	def := e.def
	return &def, nil
}

// ListDefinitions returns every resolvable definition ordered by key.
func (r *CatalogRegistry) ListDefinitions(_ context.Context) ([]domain.Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]domain.Definition, len(r.ordered))
	for i, e := range r.ordered {
		defs[i] = e.def
	}
	return defs, nil
}

// Version changes whenever the set of resolvable definitions changes.
func (r *CatalogRegistry) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// DefinitionCount returns the number of resolvable definitions.
func (r *CatalogRegistry) DefinitionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ordered)
}

// ListCatalogs returns all registered catalogs ordered by ID.
func (r *CatalogRegistry) ListCatalogs(_ context.Context) ([]domain.Catalog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	catalogs := make([]domain.Catalog, 0, len(r.catalogs))
	for _, entry := range r.catalogs {
		catalogs = append(catalogs, *entry.Catalog)
	}
	slices.SortFunc(catalogs, func(a, b domain.Catalog) int {
		return strings.Compare(a.ID, b.ID)
	})
	return catalogs, nil
}

// GetCatalog returns a specific catalog by ID.
func (r *CatalogRegistry) GetCatalog(_ context.Context, id string) (*domain.Catalog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.catalogs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCatalogNotFound, id)
	}
	cat := *entry.Catalog
	return &cat, nil
}

// GetCatalogStatus returns the status of a catalog.
func (r *CatalogRegistry) GetCatalogStatus(_ context.Context, id string) (domain.CatalogStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.catalogs[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrCatalogNotFound, id)
	}
	return entry.Catalog.Status, nil
}

// IsReady returns true if a catalog is ready for lookups.
func (r *CatalogRegistry) IsReady(catalogID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.catalogs[catalogID]
	return ok && entry.Catalog.IsReady()
}

// ReadyCatalogIDs returns IDs of all ready catalogs.
func (r *CatalogRegistry) ReadyCatalogIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0)
	for id, entry := range r.catalogs {
		if entry.Catalog.IsReady() {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// updateMetrics updates the metrics collector with current counts.
func (r *CatalogRegistry) updateMetrics() {
	r.mu.RLock()
	total := len(r.catalogs)
	ready := 0
	for _, entry := range r.catalogs {
		if entry.Catalog.IsReady() {
			ready++
		}
	}
	definitions := len(r.ordered)
	r.mu.RUnlock()

	r.metrics.SetCatalogsLoaded(total)
	r.metrics.SetCatalogsReady(ready)
	r.metrics.SetDefinitionsLoaded(definitions)
}

// LoadAll loads all catalogs from storage.
func (r *CatalogRegistry) LoadAll(ctx context.Context) error {
	r.logger.Info("loading all catalogs from storage")

	objects, err := r.storage.List(ctx)
	if err != nil {
		return err
	}

	for _, obj := range objects {
		localPath := filepath.Join(r.localPath, obj.Key)
		if err := r.download(ctx, obj.Key, localPath); err != nil {
			r.logger.Error("failed to download catalog", "key", obj.Key, "error", err)
			continue
		}

		if err := r.LoadCatalog(ctx, localPath); err != nil {
			r.logger.Error("failed to load catalog", "path", localPath, "error", err)
		}
	}

	return nil
}

// download fetches a remote object and records the storage metrics.
func (r *CatalogRegistry) download(ctx context.Context, key, localPath string) error {
	start := time.Now()
	err := r.storage.Download(ctx, key, localPath)
	r.metrics.IncStorageOperations("download", err == nil)
	r.metrics.ObserveStorageDuration("download", time.Since(start))
	return err
}

// IsLoaded returns true if a catalog with the given ID is registered.
func (r *CatalogRegistry) IsLoaded(catalogID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.catalogs[catalogID]
	return ok
}

// CatalogCount returns the number of registered catalogs.
func (r *CatalogRegistry) CatalogCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.catalogs)
}

// SyncStats contains statistics from a sync operation.
type SyncStats struct {
	Added   int
	Removed int
}

// Sync synchronizes with remote storage, downloading new catalogs and
// removing catalogs that no longer exist in remote storage.
func (r *CatalogRegistry) Sync(ctx context.Context) (SyncStats, error) {
	r.logger.Info("syncing catalogs from storage")

	objects, err := r.storage.List(ctx)
	if err != nil {
		return SyncStats{}, err
	}

	remoteCatalogs := make(map[string]string) // catalogID -> objectKey
	for _, obj := range objects {
		remoteCatalogs[deriveCatalogID(obj.Key)] = obj.Key
	}

	stats := SyncStats{}

	for catalogID, objectKey := range remoteCatalogs {
		if r.IsLoaded(catalogID) {
			r.logger.Debug("catalog already loaded, skipping", "id", catalogID)
			continue
		}

		localPath := filepath.Join(r.localPath, objectKey)
		if err := r.download(ctx, objectKey, localPath); err != nil {
			r.logger.Error("failed to download catalog", "key", objectKey, "error", err)
			continue
		}

		if err := r.LoadCatalog(ctx, localPath); err != nil {
			r.logger.Error("failed to load catalog", "path", localPath, "error", err)
			continue
		}

		stats.Added++
		r.logger.Info("new catalog synced", "id", catalogID)
	}

	for _, catalogID := range r.findCatalogsToRemove(remoteCatalogs) {
		r.logger.Info("removing catalog not in remote storage", "id", catalogID)

		localPath := r.getCatalogPath(catalogID)

		if err := r.UnloadCatalog(ctx, catalogID); err != nil {
			r.logger.Error("failed to unload removed catalog", "id", catalogID, "error", err)
			continue
		}

		if localPath != "" {
			if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
				r.logger.Warn("failed to delete local cache file", "path", localPath, "error", err)
			} else {
				r.logger.Debug("deleted local cache file", "path", localPath)
			}
		}

		stats.Removed++
	}

	r.logger.Info("sync completed", "added", stats.Added, "removed", stats.Removed, "total", r.CatalogCount())
	return stats, nil
}

// findCatalogsToRemove returns catalog IDs that are loaded but not in remote storage.
func (r *CatalogRegistry) findCatalogsToRemove(remoteCatalogs map[string]string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var toRemove []string
	for catalogID := range r.catalogs {
		if _, exists := remoteCatalogs[catalogID]; !exists {
			toRemove = append(toRemove, catalogID)
		}
	}
	return toRemove
}

// getCatalogPath returns the local file path for a loaded catalog.
func (r *CatalogRegistry) getCatalogPath(catalogID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if entry, ok := r.catalogs[catalogID]; ok && entry.Catalog != nil {
		return entry.Catalog.Path
	}
	return ""
}

// deriveCatalogID extracts a catalog ID from a file path or object key.
func deriveCatalogID(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}
