// Package input defines the primary/driving ports of the application.
package input

import (
	"context"

	"github.com/paulmach/orb/geojson"

	"github.com/jobrunner/meridian/internal/crs"
	"github.com/jobrunner/meridian/internal/domain"
)

// TransformService defines the primary port for coordinate transformations.
type TransformService interface {
	// Transform converts a list of coordinates between two CRSs.
	Transform(ctx context.Context, req domain.TransformRequest) (*domain.TransformResponse, error)

	// TransformFeatures reprojects every geometry of a GeoJSON feature collection.
	TransformFeatures(ctx context.Context, source, target string, fc *geojson.FeatureCollection) (*geojson.FeatureCollection, error)

	// ParseWKT parses a WKT coordinate system definition.
	ParseWKT(ctx context.Context, text string) (crs.CoordinateSystem, error)
}

// CRSRegistry defines the primary port for catalog and definition lookup.
type CRSRegistry interface {
	// ListCatalogs returns all registered catalogs.
	ListCatalogs(ctx context.Context) ([]domain.Catalog, error)

	// GetCatalog returns a specific catalog by ID.
	GetCatalog(ctx context.Context, id string) (*domain.Catalog, error)

	// GetCatalogStatus returns the status of a catalog.
	GetCatalogStatus(ctx context.Context, id string) (domain.CatalogStatus, error)

	// ListDefinitions returns every resolvable definition, built-ins included.
	ListDefinitions(ctx context.Context) ([]domain.Definition, error)

	// GetDefinition returns a definition by key or name.
	GetDefinition(ctx context.Context, keyOrName string) (*domain.Definition, error)

	// Resolve returns the coordinate system for a key, a name or inline WKT.
	Resolve(ctx context.Context, ref string) (crs.CoordinateSystem, error)
}

// HealthChecker defines the primary port for health checks.
type HealthChecker interface {
	// IsHealthy returns true if the service is healthy.
	IsHealthy(ctx context.Context) bool

	// IsReady returns true if the service is ready to accept requests.
	IsReady(ctx context.Context) bool

	// GetHealthDetails returns detailed health information.
	GetHealthDetails(ctx context.Context) HealthDetails
}

// HealthDetails contains detailed health information.
type HealthDetails struct {
	Healthy        bool              // Overall health status
	Ready          bool              // Ready to accept requests
	CatalogsLoaded int               // Number of registered catalogs
	CatalogsReady  int               // Number of ready catalogs
	Definitions    int               // Number of resolvable definitions
	Components     map[string]string // Component statuses
}
