package application

import (
	"context"

	"github.com/jobrunner/meridian/internal/domain"
	"github.com/jobrunner/meridian/internal/ports/input"
)

var _ input.HealthChecker = (*HealthService)(nil)

// HealthService provides health check functionality.
type HealthService struct {
	registry *CatalogRegistry
}

// NewHealthService creates a new health service.
func NewHealthService(registry *CatalogRegistry) *HealthService {
	return &HealthService{
		registry: registry,
	}
}

// IsHealthy returns true if the service is healthy.
func (s *HealthService) IsHealthy(_ context.Context) bool {
	return true
}

// IsReady returns true if at least one catalog is ready, or if none are
// configured and the built-in systems serve alone.
func (s *HealthService) IsReady(ctx context.Context) bool {
	catalogs, err := s.registry.ListCatalogs(ctx)
	if err != nil {
		return false
	}

	for _, cat := range catalogs {
		if cat.IsReady() {
			return true
		}
	}
	return len(catalogs) == 0
}

// GetHealthDetails returns detailed health information.
func (s *HealthService) GetHealthDetails(ctx context.Context) input.HealthDetails {
	catalogs, _ := s.registry.ListCatalogs(ctx)

	ready := 0
	failed := 0
	for _, cat := range catalogs {
		switch {
		case cat.IsReady():
			ready++
		case cat.Status == domain.StatusError:
			failed++
		}
	}

	components := map[string]string{
		"storage":  "ok",
		"registry": "ok",
	}
	if failed > 0 {
		components["registry"] = "degraded"
	}

	return input.HealthDetails{
		Healthy:        s.IsHealthy(ctx),
		Ready:          s.IsReady(ctx),
		CatalogsLoaded: len(catalogs),
		CatalogsReady:  ready,
		Definitions:    s.registry.DefinitionCount(),
		Components:     components,
	}
}

// CatalogHealth contains health info for a single catalog.
type CatalogHealth struct {
	ID          string
	Status      domain.CatalogStatus
	Ready       bool
	Definitions int
	Failed      int
}

// GetCatalogHealth returns health info for all catalogs.
func (s *HealthService) GetCatalogHealth(ctx context.Context) []CatalogHealth {
	catalogs, _ := s.registry.ListCatalogs(ctx)

	health := make([]CatalogHealth, len(catalogs))
	for i, cat := range catalogs {
		health[i] = CatalogHealth{
			ID:          cat.ID,
			Status:      cat.Status,
			Ready:       cat.IsReady(),
			Definitions: cat.DefinitionCount(),
			Failed:      cat.Failed,
		}
	}

	return health
}
