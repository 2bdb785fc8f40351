package domain

import (
	"strings"
	"time"
)

// CatalogFormat identifies how a catalog file stores its definitions.
type CatalogFormat string

// Catalog formats.
const (
	FormatGeoPackage CatalogFormat = "geopackage" // gpkg_spatial_ref_sys table
	FormatWKT        CatalogFormat = "wkt"        // one or more WKT definitions per file
	FormatPRJ        CatalogFormat = "prj"        // ESRI .prj sidecar, a single WKT definition
)

// FormatForPath derives the catalog format from a file extension.
func FormatForPath(path string) (CatalogFormat, bool) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".gpkg"):
		return FormatGeoPackage, true
	case strings.HasSuffix(lower, ".wkt"):
		return FormatWKT, true
	case strings.HasSuffix(lower, ".prj"):
		return FormatPRJ, true
	default:
		return "", false
	}
}

// Catalog represents a registered source of CRS definitions.
type Catalog struct {
	ID          string        // Unique identifier (derived from filename)
	Name        string        // Display name
	Path        string        // File path
	Format      CatalogFormat // Storage format
	Size        int64         // File size in bytes
	Status      CatalogStatus // Current load state
	Definitions []Definition  // CRS definitions read from the file
	Failed      int           // Definitions that could not be parsed
	LoadedAt    time.Time     // Load timestamp
}

// IsReady returns true if the catalog's definitions can be resolved.
func (c *Catalog) IsReady() bool {
	return c.Status == StatusReady
}

// DefinitionCount returns the number of usable definitions.
func (c *Catalog) DefinitionCount() int {
	return len(c.Definitions)
}

// GetDefinition returns a definition by key ("EPSG:4326") or by name.
func (c *Catalog) GetDefinition(keyOrName string) (*Definition, bool) {
	for i := range c.Definitions {
		d := &c.Definitions[i]
		if strings.EqualFold(d.Key(), keyOrName) || strings.EqualFold(d.Name, keyOrName) {
			return d, true
		}
	}
	return nil, false
}

// Definition is one CRS definition as stored in a catalog.
type Definition struct {
	SRSID        int64  // Catalog-local identifier (gpkg srs_id)
	Organization string // Defining organization, e.g. "EPSG"
	Code         int64  // Code within the organization
	Name         string // CRS name
	WKT          string // WKT text
	Description  string // Free text
}

// Key returns the "ORG:CODE" lookup key, or the name when no organization is set.
func (d Definition) Key() string {
	if d.Organization == "" || strings.EqualFold(d.Organization, "none") {
		return d.Name
	}
	return FormatKey(d.Organization, d.Code)
}

// CatalogStatus represents the load state of a catalog.
type CatalogStatus string

const (
	StatusLoading   CatalogStatus = "loading"
	StatusParsing   CatalogStatus = "parsing"
	StatusReady     CatalogStatus = "ready"
	StatusError     CatalogStatus = "error"
	StatusUnloading CatalogStatus = "unloading"
)
