package wktfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/unicode"

	"github.com/jobrunner/meridian/internal/domain"
)

const (
	wgs84WKT = `GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563]],PRIMEM["Greenwich",0],UNIT["degree",0.0174532925199433],AUTHORITY["EPSG","4326"]]`
	ed50WKT  = `GEOGCS["ED50",DATUM["European_Datum_1950",SPHEROID["International 1924",6378388,297],TOWGS84[-87,-98,-121,0,0,0,0]],PRIMEM["Greenwich",0],UNIT["degree",0.0174532925199433],AUTHORITY["EPSG","4230"]]`
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestReader_ReadWKT(t *testing.T) {
	text := "# two definitions\n" + wgs84WKT + "\n\n" + ed50WKT + "\n"
	path := writeFile(t, "europe.wkt", []byte(text))

	cat, err := NewReader().Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if cat.ID != "europe" {
		t.Errorf("ID = %q, want %q", cat.ID, "europe")
	}
	if cat.Format != domain.FormatWKT {
		t.Errorf("Format = %q, want %q", cat.Format, domain.FormatWKT)
	}
	if cat.Size != int64(len(text)) {
		t.Errorf("Size = %d, want %d", cat.Size, len(text))
	}
	if len(cat.Definitions) != 2 {
		t.Fatalf("len(Definitions) = %d, want 2", len(cat.Definitions))
	}
	if cat.Definitions[0].WKT != wgs84WKT {
		t.Errorf("Definitions[0].WKT = %q", cat.Definitions[0].WKT)
	}
	if cat.Definitions[1].WKT != ed50WKT {
		t.Errorf("Definitions[1].WKT = %q", cat.Definitions[1].WKT)
	}
	if cat.Definitions[1].SRSID != 2 {
		t.Errorf("Definitions[1].SRSID = %d, want 2", cat.Definitions[1].SRSID)
	}
}

func TestReader_ReadPRJ(t *testing.T) {
	path := writeFile(t, "roads.prj", []byte("  "+ed50WKT+"\r\n"))

	cat, err := NewReader().Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if cat.Format != domain.FormatPRJ {
		t.Errorf("Format = %q, want %q", cat.Format, domain.FormatPRJ)
	}
	if len(cat.Definitions) != 1 || cat.Definitions[0].WKT != ed50WKT {
		t.Errorf("Definitions = %+v, want the single trimmed definition", cat.Definitions)
	}
}

func TestReader_ReadUTF16(t *testing.T) {
	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(wgs84WKT)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	path := writeFile(t, "wgs84.prj", []byte(encoded))

	cat, err := NewReader().Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(cat.Definitions) != 1 || cat.Definitions[0].WKT != wgs84WKT {
		t.Errorf("Definitions = %+v, want decoded definition", cat.Definitions)
	}
}

func TestReader_ReadEmpty(t *testing.T) {
	path := writeFile(t, "empty.prj", nil)

	cat, err := NewReader().Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(cat.Definitions) != 0 {
		t.Errorf("len(Definitions) = %d, want 0", len(cat.Definitions))
	}
}

func TestReader_ReadErrors(t *testing.T) {
	r := NewReader()

	_, err := r.Read(context.Background(), filepath.Join(t.TempDir(), "missing.wkt"))
	var storageErr *domain.StorageError
	if !errors.As(err, &storageErr) {
		t.Errorf("missing file: error = %v, want StorageError", err)
	}

	_, err = r.Read(context.Background(), "epsg.gpkg")
	if !errors.Is(err, domain.ErrUnsupported) {
		t.Errorf("geopackage path: error = %v, want ErrUnsupported", err)
	}
}

func TestReader_Formats(t *testing.T) {
	formats := NewReader().Formats()
	if len(formats) != 2 || formats[0] != domain.FormatWKT || formats[1] != domain.FormatPRJ {
		t.Errorf("Formats() = %v", formats)
	}
}

func TestDeriveCatalogID(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/data/europe.wkt", "europe"},
		{"roads.prj", "roads"},
		{"a/b/utm.zones.wkt", "utm.zones"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := DeriveCatalogID(tt.path); got != tt.want {
				t.Errorf("DeriveCatalogID(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
