// Package wktfile reads CRS definitions from WKT text files: .wkt files
// holding any number of definitions and single-definition ESRI .prj files.
package wktfile

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/jobrunner/meridian/internal/domain"
	"github.com/jobrunner/meridian/internal/ports/output"
	"github.com/jobrunner/meridian/internal/wkt"
)

var _ output.CatalogReader = (*Reader)(nil)

// maxFileSize bounds the text read from one catalog file.
const maxFileSize = 64 << 20

// Reader implements the CatalogReader port for .wkt and .prj files.
type Reader struct{}

// NewReader creates a new WKT file reader.
func NewReader() *Reader {
	return &Reader{}
}

// Formats returns the formats this reader serves.
func (r *Reader) Formats() []domain.CatalogFormat {
	return []domain.CatalogFormat{domain.FormatWKT, domain.FormatPRJ}
}

// Read returns the definitions in the file at path. A byte order mark
// selects UTF-16 decoding; text without one is read as UTF-8.
func (r *Reader) Read(_ context.Context, path string) (*domain.Catalog, error) {
	format, ok := domain.FormatForPath(path)
	if !ok || format == domain.FormatGeoPackage {
		return nil, fmt.Errorf("%w: %s is not a WKT file", domain.ErrUnsupported, filepath.Base(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.StorageError{Operation: "open", Key: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, &domain.StorageError{Operation: "stat", Key: path, Err: err}
	}

	text, err := decode(f)
	if err != nil {
		return nil, &domain.StorageError{Operation: "read", Key: path, Err: err}
	}

	catalogID := DeriveCatalogID(path)
	return &domain.Catalog{
		ID:          catalogID,
		Name:        catalogID,
		Path:        path,
		Format:      format,
		Size:        info.Size(),
		Status:      domain.StatusLoading,
		Definitions: definitions(format, text),
	}, nil
}

func decode(r io.Reader) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	b, err := io.ReadAll(io.LimitReader(transform.NewReader(r, decoder), maxFileSize))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// definitions splits text into one definition per top-level WKT object.
// A .prj file holds exactly one, whatever it contains.
func definitions(format domain.CatalogFormat, text string) []domain.Definition {
	if format == domain.FormatPRJ {
		text = strings.TrimSpace(text)
		if text == "" {
			return nil
		}
		return []domain.Definition{{WKT: text}}
	}

	segments := wkt.Split(text)
	defs := make([]domain.Definition, 0, len(segments))
	for i, s := range segments {
		defs = append(defs, domain.Definition{SRSID: int64(i + 1), WKT: s})
	}
	return defs
}

// DeriveCatalogID extracts a catalog ID from a file path.
func DeriveCatalogID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
