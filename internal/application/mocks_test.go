package application

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/jobrunner/meridian/internal/domain"
	"github.com/jobrunner/meridian/internal/operation"
	"github.com/jobrunner/meridian/internal/ports/output"
)

// ed50WKT is a datum-shifted geographic system that is not built in.
const ed50WKT = `GEOGCS["ED50",
	DATUM["European_Datum_1950",
		SPHEROID["International 1924",6378388,297,AUTHORITY["EPSG","7022"]],
		TOWGS84[-87,-98,-121,0,0,0,0],
		AUTHORITY["EPSG","6230"]],
	PRIMEM["Greenwich",0,AUTHORITY["EPSG","8901"]],
	UNIT["degree",0.0174532925199433,AUTHORITY["EPSG","9122"]],
	AUTHORITY["EPSG","4230"]]`

// gk3WKT is DHDN / 3-degree Gauss-Kruger zone 3.
const gk3WKT = `PROJCS["DHDN / 3-degree Gauss-Kruger zone 3",
	GEOGCS["DHDN",
		DATUM["Deutsches_Hauptdreiecksnetz",
			SPHEROID["Bessel 1841",6377397.155,299.1528128,AUTHORITY["EPSG","7004"]],
			TOWGS84[598.1,73.7,418.2,0.202,0.045,-2.455,6.7],
			AUTHORITY["EPSG","6314"]],
		PRIMEM["Greenwich",0],
		UNIT["degree",0.0174532925199433],
		AUTHORITY["EPSG","4314"]],
	PROJECTION["Transverse_Mercator"],
	PARAMETER["latitude_of_origin",0],
	PARAMETER["central_meridian",9],
	PARAMETER["scale_factor",1],
	PARAMETER["false_easting",3500000],
	PARAMETER["false_northing",0],
	UNIT["metre",1,AUTHORITY["EPSG","9001"]],
	AUTHORITY["EPSG","31467"]]`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// mockReader implements output.CatalogReader for testing. Paths without
// an entry in catalogs yield one catalog holding ed50WKT.
type mockReader struct {
	catalogs map[string]*domain.Catalog
	readErr  error
}

func (m *mockReader) Formats() []domain.CatalogFormat {
	return []domain.CatalogFormat{domain.FormatGeoPackage, domain.FormatWKT, domain.FormatPRJ}
}

func (m *mockReader) Read(_ context.Context, path string) (*domain.Catalog, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	if cat, ok := m.catalogs[path]; ok {
		c := *cat
		c.Definitions = append([]domain.Definition(nil), cat.Definitions...)
		return &c, nil
	}
	format, _ := domain.FormatForPath(path)
	return &domain.Catalog{
		ID:          deriveCatalogID(path),
		Name:        deriveCatalogID(path),
		Path:        path,
		Format:      format,
		Definitions: []domain.Definition{{WKT: ed50WKT}},
	}, nil
}

// mockStorage implements output.ObjectStorage for testing.
type mockStorage struct {
	objects     []output.StorageObject
	downloadErr error
	listErr     error
}

func (m *mockStorage) List(_ context.Context) ([]output.StorageObject, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.objects, nil
}

func (m *mockStorage) Download(_ context.Context, _, _ string) error {
	return m.downloadErr
}

func (m *mockStorage) GetReader(_ context.Context, _ string) (io.ReadCloser, error) {
	return nil, nil
}

func (m *mockStorage) Exists(_ context.Context, _ string) (bool, error) {
	return true, nil
}

// mockMetrics records the calls the services make.
type mockMetrics struct {
	output.NoOpMetrics

	mu          sync.Mutex
	successes   int
	failures    int
	defined     int
	undefined   int
	cacheHits   int
	cacheMisses int
	definitions int
}

func (m *mockMetrics) IncTransformCount(_, _ string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if success {
		m.successes++
	} else {
		m.failures++
	}
}

func (m *mockMetrics) AddTransformedPoints(defined, undefined int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defined += defined
	m.undefined += undefined
}

func (m *mockMetrics) IncOperationCache(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.cacheHits++
	} else {
		m.cacheMisses++
	}
}

func (m *mockMetrics) SetDefinitionsLoaded(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.definitions = count
}

func (m *mockMetrics) ObserveTransformDuration(_, _ string, _ time.Duration) {}

// mockCache implements output.OperationCache on a plain map.
type mockCache struct {
	mu  sync.Mutex
	ops map[string]*operation.CoordinateTransformation
}

func newMockCache() *mockCache {
	return &mockCache{ops: make(map[string]*operation.CoordinateTransformation)}
}

func (m *mockCache) Get(key string) (*operation.CoordinateTransformation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ct, ok := m.ops[key]
	return ct, ok
}

func (m *mockCache) Set(key string, ct *operation.CoordinateTransformation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops[key] = ct
}

func (m *mockCache) Purge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.ops)
}

func (m *mockCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ops)
}

func newTestRegistry() *CatalogRegistry {
	return NewCatalogRegistry(
		[]output.CatalogReader{&mockReader{}},
		&mockStorage{},
		&output.NoOpMetrics{},
		testLogger(),
		"/tmp",
	)
}
