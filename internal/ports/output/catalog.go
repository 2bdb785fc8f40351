package output

import (
	"context"

	"github.com/jobrunner/meridian/internal/domain"
)

// CatalogReader defines the secondary port for reading CRS definitions
// from catalog files.
type CatalogReader interface {
	// Formats returns the catalog formats the reader understands.
	Formats() []domain.CatalogFormat

	// Read reads every definition stored in the file at path. The returned
	// definitions carry raw WKT; parsing happens in the registry.
	Read(ctx context.Context, path string) (*domain.Catalog, error)
}
