package domain

import "fmt"

// secToRad converts arc-seconds to radians.
const secToRad = 4.84813681109535993589914102357e-6

// DatumType is the OGC datum classification.
type DatumType int

// OGC datum type codes.
const (
	DatumOther              DatumType = 1000
	DatumClassic            DatumType = 1001
	DatumGeocentric         DatumType = 1002
	DatumVerticalOther      DatumType = 2000
	DatumOrthometric        DatumType = 2001
	DatumEllipsoidal        DatumType = 2002
	DatumAltitudeBarometric DatumType = 2003
	DatumNormal             DatumType = 2004
	DatumGeoidModelDerived  DatumType = 2005
	DatumDepth              DatumType = 2006
	DatumLocalMin           DatumType = 10000
	DatumLocalMax           DatumType = 32767
	datumHorizontalMin      DatumType = 1000
	datumHorizontalMax      DatumType = 1999
)

// IsHorizontal returns true for the horizontal datum range.
func (t DatumType) IsHorizontal() bool {
	return t >= datumHorizontalMin && t <= datumHorizontalMax
}

// Wgs84ConversionInfo holds the Bursa-Wolf parameters that shift a datum to WGS 84.
// Translations are in metres, rotations in arc-seconds and scale in parts per million.
type Wgs84ConversionInfo struct {
	Dx, Dy, Dz float64
	Ex, Ey, Ez float64
	Ppm        float64
	AreaOfUse  string
}

// NewWgs84ConversionInfo creates a seven-parameter shift.
func NewWgs84ConversionInfo(dx, dy, dz, ex, ey, ez, ppm float64) *Wgs84ConversionInfo {
	return &Wgs84ConversionInfo{Dx: dx, Dy: dy, Dz: dz, Ex: ex, Ey: ey, Ez: ez, Ppm: ppm}
}

// HasZeroValuesOnly reports the "already WGS 84 aligned" state.
func (w *Wgs84ConversionInfo) HasZeroValuesOnly() bool {
	return w.Dx == 0 && w.Dy == 0 && w.Dz == 0 && w.Ex == 0 && w.Ey == 0 && w.Ez == 0 && w.Ppm == 0
}

// AffineTransform returns the linearised shift coefficients
// [scale, ex, ey, ez, dx, dy, dz] with rotations in radians, all scaled.
func (w *Wgs84ConversionInfo) AffineTransform() [7]float64 {
	rs := 1 + w.Ppm*0.000001
	return [7]float64{rs, w.Ex * secToRad * rs, w.Ey * secToRad * rs, w.Ez * secToRad * rs, w.Dx, w.Dy, w.Dz}
}

// Equal compares all seven parameters. A nil receiver or argument is never equal.
func (w *Wgs84ConversionInfo) Equal(other *Wgs84ConversionInfo) bool {
	if w == nil || other == nil {
		return false
	}
	return w.Dx == other.Dx && w.Dy == other.Dy && w.Dz == other.Dz &&
		w.Ex == other.Ex && w.Ey == other.Ey && w.Ez == other.Ez && w.Ppm == other.Ppm
}

// String renders the parameters as a TOWGS84 clause.
func (w *Wgs84ConversionInfo) String() string {
	return fmt.Sprintf("TOWGS84[%g, %g, %g, %g, %g, %g, %g]", w.Dx, w.Dy, w.Dz, w.Ex, w.Ey, w.Ez, w.Ppm)
}

// HorizontalDatum anchors a horizontal coordinate system to the earth.
type HorizontalDatum struct {
	Info
	Type      DatumType
	Ellipsoid Ellipsoid
	Wgs84     *Wgs84ConversionInfo // nil when no shift to WGS 84 is known
}

// HasShift returns true if the datum carries a non-zero shift to WGS 84.
func (d HorizontalDatum) HasShift() bool {
	return d.Wgs84 != nil && !d.Wgs84.HasZeroValuesOnly()
}

// EqualParams compares ellipsoid, datum type and WGS 84 shift.
func (d HorizontalDatum) EqualParams(other HorizontalDatum) bool {
	if other.Wgs84 == nil && d.Wgs84 != nil {
		return false
	}
	if other.Wgs84 != nil && !other.Wgs84.Equal(d.Wgs84) {
		return false
	}
	return other.Ellipsoid.EqualParams(d.Ellipsoid) && d.Type == other.Type
}

// DatumWGS84 returns the World Geodetic System 1984 datum (EPSG:6326).
func DatumWGS84() HorizontalDatum {
	return HorizontalDatum{
		Info:      Info{Name: "World Geodetic System 1984", Authority: "EPSG", AuthorityCode: 6326},
		Type:      DatumGeocentric,
		Ellipsoid: EllipsoidWGS84(),
	}
}

// DatumWGS72 returns the World Geodetic System 1972 datum (EPSG:6322).
func DatumWGS72() HorizontalDatum {
	return HorizontalDatum{
		Info:      Info{Name: "World Geodetic System 1972", Authority: "EPSG", AuthorityCode: 6322},
		Type:      DatumGeocentric,
		Ellipsoid: EllipsoidWGS72(),
		Wgs84:     NewWgs84ConversionInfo(0, 0, 4.5, 0, 0, 0.554, 0.219),
	}
}

// DatumETRF89 returns the European Terrestrial Reference Frame 1989 (EPSG:6258).
func DatumETRF89() HorizontalDatum {
	return HorizontalDatum{
		Info:      Info{Name: "European Terrestrial Reference System 1989", Authority: "EPSG", AuthorityCode: 6258, Alias: "ETRF89"},
		Type:      DatumGeocentric,
		Ellipsoid: EllipsoidGRS80(),
		Wgs84:     &Wgs84ConversionInfo{},
	}
}

// DatumED50 returns the European Datum 1950 (EPSG:6230).
func DatumED50() HorizontalDatum {
	return HorizontalDatum{
		Info:      Info{Name: "European Datum 1950", Authority: "EPSG", AuthorityCode: 6230, Alias: "ED50"},
		Type:      DatumGeocentric,
		Ellipsoid: EllipsoidInternational1924(),
		Wgs84:     NewWgs84ConversionInfo(-87, -98, -121, 0, 0, 0, 0),
	}
}
