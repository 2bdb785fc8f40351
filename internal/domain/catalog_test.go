package domain

import "testing"

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path   string
		want   CatalogFormat
		wantOK bool
	}{
		{"data/epsg.gpkg", FormatGeoPackage, true},
		{"data/EPSG.GPKG", FormatGeoPackage, true},
		{"defs/utm.wkt", FormatWKT, true},
		{"roads.prj", FormatPRJ, true},
		{"roads.shp", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := FormatForPath(tt.path)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("FormatForPath(%q) = (%q, %v), want (%q, %v)", tt.path, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestDefinitionKey(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
		want string
	}{
		{"epsg", Definition{Organization: "EPSG", Code: 4326, Name: "WGS 84"}, "EPSG:4326"},
		{"lower case organization", Definition{Organization: "esri", Code: 102100, Name: "WGS 84 / Auxiliary Sphere"}, "ESRI:102100"},
		{"no organization", Definition{Code: 1, Name: "Local grid"}, "Local grid"},
		{"none organization", Definition{Organization: "NONE", Code: -1, Name: "Undefined"}, "Undefined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.def.Key(); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCatalogGetDefinition(t *testing.T) {
	cat := &Catalog{
		ID: "epsg",
		Definitions: []Definition{
			{Organization: "EPSG", Code: 4326, Name: "WGS 84"},
			{Organization: "EPSG", Code: 31467, Name: "DHDN / 3-degree Gauss-Kruger zone 3"},
		},
	}

	if cat.DefinitionCount() != 2 {
		t.Fatalf("DefinitionCount() = %d, want 2", cat.DefinitionCount())
	}

	tests := []struct {
		lookup   string
		wantCode int64
		wantOK   bool
	}{
		{"EPSG:4326", 4326, true},
		{"epsg:31467", 31467, true},
		{"wgs 84", 4326, true},
		{"EPSG:3857", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.lookup, func(t *testing.T) {
			def, ok := cat.GetDefinition(tt.lookup)
			if ok != tt.wantOK {
				t.Fatalf("GetDefinition(%q) ok = %v, want %v", tt.lookup, ok, tt.wantOK)
			}
			if ok && def.Code != tt.wantCode {
				t.Errorf("GetDefinition(%q).Code = %d, want %d", tt.lookup, def.Code, tt.wantCode)
			}
		})
	}
}

func TestTransformResponseDefinedCount(t *testing.T) {
	resp := &TransformResponse{
		Coordinates: []Coordinate{{X: 1}, {X: 2}, {X: 3}},
		Undefined:   []int{1},
	}
	if got := resp.DefinedCount(); got != 2 {
		t.Errorf("DefinedCount() = %d, want 2", got)
	}
}
