package crs

import (
	"fmt"

	"github.com/jobrunner/meridian/internal/domain"
)

// Default axes used when a definition does not name its own.
func geographicAxes() []domain.AxisInfo {
	return []domain.AxisInfo{{Name: "Lon", Orientation: domain.AxisEast}, {Name: "Lat", Orientation: domain.AxisNorth}}
}

func projectedAxes() []domain.AxisInfo {
	return []domain.AxisInfo{{Name: "X", Orientation: domain.AxisEast}, {Name: "Y", Orientation: domain.AxisNorth}}
}

func geocentricAxes() []domain.AxisInfo {
	return []domain.AxisInfo{
		{Name: "X", Orientation: domain.AxisOther},
		{Name: "Y", Orientation: domain.AxisOther},
		{Name: "Z", Orientation: domain.AxisOther},
	}
}

// WGS84 returns the WGS 84 geographic system (EPSG:4326).
func WGS84() *GeographicCS {
	return &GeographicCS{
		HorizontalCS: HorizontalCS{
			Info:  domain.Info{Name: "WGS 84", Authority: "EPSG", AuthorityCode: 4326},
			Datum: domain.DatumWGS84(),
			Axes:  geographicAxes(),
		},
		AngularUnit:   domain.Degrees(),
		PrimeMeridian: domain.Greenwich(),
	}
}

// WGS84Geocentric returns the WGS 84 geocentric system (EPSG:4978).
func WGS84Geocentric() *GeocentricCS {
	return &GeocentricCS{
		Info:          domain.Info{Name: "WGS 84 Geocentric", Authority: "EPSG", AuthorityCode: 4978},
		Datum:         domain.DatumWGS84(),
		LinearUnit:    domain.Metre(),
		PrimeMeridian: domain.Greenwich(),
		Axes:          geocentricAxes(),
	}
}

// WGS84UTM returns the WGS 84 / UTM system for a zone and hemisphere
// (EPSG:326zz north, 327zz south).
func WGS84UTM(zone int, north bool) (*ProjectedCS, error) {
	if zone < 1 || zone > 60 {
		return nil, &domain.ConfigError{Field: "zone", Message: fmt.Sprintf("UTM zone %d out of range 1..60", zone)}
	}
	hemisphere, code, northing := "N", int64(32600+zone), 0.0
	if !north {
		hemisphere, code, northing = "S", int64(32700+zone), 10000000
	}

	params := domain.NewParameterSet(
		domain.Parameter{Name: "latitude_of_origin", Value: 0},
		domain.Parameter{Name: "central_meridian", Value: float64(zone*6 - 183)},
		domain.Parameter{Name: "scale_factor", Value: 0.9996},
		domain.Parameter{Name: "false_easting", Value: 500000},
		domain.Parameter{Name: "false_northing", Value: northing},
	)
	geo := WGS84()
	return &ProjectedCS{
		HorizontalCS: HorizontalCS{
			Info:  domain.Info{Name: fmt.Sprintf("WGS 84 / UTM zone %d%s", zone, hemisphere), Authority: "EPSG", AuthorityCode: code},
			Datum: geo.Datum,
			Axes:  projectedAxes(),
		},
		Geographic: geo,
		LinearUnit: domain.Metre(),
		Projection: Projection{
			Info:       domain.Info{Name: "Transverse_Mercator", Authority: "EPSG", AuthorityCode: 9807},
			ClassName:  "Transverse_Mercator",
			Parameters: params,
		},
	}, nil
}

// UTMZone returns the UTM zone number containing a longitude in degrees.
func UTMZone(lon float64) int {
	zone := int((lon+180)/6 + 1)
	return min(max(zone, 1), 60)
}

// WebMercator returns WGS 84 / Pseudo-Mercator (EPSG:3857).
func WebMercator() *ProjectedCS {
	params := domain.NewParameterSet(
		domain.Parameter{Name: "latitude_of_origin", Value: 0},
		domain.Parameter{Name: "central_meridian", Value: 0},
		domain.Parameter{Name: "false_easting", Value: 0},
		domain.Parameter{Name: "false_northing", Value: 0},
	)
	geo := WGS84()
	return &ProjectedCS{
		HorizontalCS: HorizontalCS{
			Info:  domain.Info{Name: "WGS 84 / Pseudo-Mercator", Authority: "EPSG", AuthorityCode: 3857},
			Datum: geo.Datum,
			Axes:  projectedAxes(),
		},
		Geographic: geo,
		LinearUnit: domain.Metre(),
		Projection: Projection{
			Info:       domain.Info{Name: "Popular Visualisation Pseudo-Mercator", Authority: "EPSG", AuthorityCode: 1024},
			ClassName:  "Popular Visualisation Pseudo-Mercator",
			Parameters: params,
		},
	}
}

// WellKnown returns the built-in systems keyed by "EPSG:code": WGS 84,
// its geocentric form, Web Mercator and all 120 WGS 84 / UTM zones.
func WellKnown() map[string]CoordinateSystem {
	out := map[string]CoordinateSystem{
		"EPSG:4326": WGS84(),
		"EPSG:4978": WGS84Geocentric(),
		"EPSG:3857": WebMercator(),
	}
	for zone := 1; zone <= 60; zone++ {
		for _, north := range []bool{true, false} {
			p, _ := WGS84UTM(zone, north)
			out[p.Key()] = p
		}
	}
	return out
}
