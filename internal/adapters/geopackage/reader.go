// Package geopackage reads CRS definitions from the gpkg_spatial_ref_sys
// table of GeoPackage files.
package geopackage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver

	"github.com/jobrunner/meridian/internal/domain"
	"github.com/jobrunner/meridian/internal/ports/output"
)

var _ output.CatalogReader = (*Reader)(nil)

// undefinedDefinition is the placeholder WKT of the reserved srs_id rows
// -1 (undefined Cartesian) and 0 (undefined geographic).
const undefinedDefinition = "undefined"

// Reader implements the CatalogReader port for GeoPackage files.
type Reader struct{}

// NewReader creates a new GeoPackage reader.
func NewReader() *Reader {
	return &Reader{}
}

// Formats returns the formats this reader serves.
func (r *Reader) Formats() []domain.CatalogFormat {
	return []domain.CatalogFormat{domain.FormatGeoPackage}
}

// Read opens a GeoPackage read-only and returns its spatial reference systems.
func (r *Reader) Read(ctx context.Context, path string) (*domain.Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &domain.StorageError{Operation: "open", Key: path, Err: err}
	}

	db, err := openDB(ctx, path)
	if err != nil {
		return nil, &domain.StorageError{Operation: "open", Key: path, Err: err}
	}
	defer func() { _ = db.Close() }()

	catalogID := DeriveCatalogID(path)
	defs, err := readSpatialRefSys(ctx, db)
	if err != nil {
		return nil, &domain.CatalogError{CatalogID: catalogID, Err: err}
	}

	return &domain.Catalog{
		ID:          catalogID,
		Name:        catalogID,
		Path:        path,
		Format:      domain.FormatGeoPackage,
		Size:        info.Size(),
		Status:      domain.StatusLoading,
		Definitions: defs,
	}, nil
}

// openDB opens the SQLite database read-only.
func openDB(ctx context.Context, path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// readSpatialRefSys reads every usable row of gpkg_spatial_ref_sys.
func readSpatialRefSys(ctx context.Context, db *sql.DB) ([]domain.Definition, error) {
	var exists int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='gpkg_spatial_ref_sys'",
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking gpkg_spatial_ref_sys: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: gpkg_spatial_ref_sys table missing", domain.ErrInvalidInput)
	}

	query := `
		SELECT
			srs_name,
			srs_id,
			organization,
			organization_coordsys_id,
			definition,
			COALESCE(description, '')
		FROM gpkg_spatial_ref_sys
		ORDER BY srs_id
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reading spatial reference systems: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var defs []domain.Definition
	for rows.Next() {
		var d domain.Definition
		if err := rows.Scan(&d.Name, &d.SRSID, &d.Organization, &d.Code, &d.WKT, &d.Description); err != nil {
			return nil, fmt.Errorf("scanning spatial reference system: %w", err)
		}

		d.WKT = strings.TrimSpace(d.WKT)
		if d.WKT == "" || strings.EqualFold(d.WKT, undefinedDefinition) {
			continue
		}
		defs = append(defs, d)
	}

	return defs, rows.Err()
}

// DeriveCatalogID extracts a catalog ID from a file path.
func DeriveCatalogID(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}
