package domain

import "math"

// Ellipsoid describes the figure of the earth used by a datum.
type Ellipsoid struct {
	Info
	SemiMajorAxis     float64
	SemiMinorAxis     float64
	InverseFlattening float64
	IvfDefinitive     bool
	AxisUnit          LinearUnit
}

// NewEllipsoid creates an ellipsoid. When the inverse flattening is definitive
// and finite the semi-minor axis is derived from it and the supplied value is ignored.
func NewEllipsoid(semiMajor, semiMinor, invFlattening float64, ivfDefinitive bool, unit LinearUnit, info Info) Ellipsoid {
	e := Ellipsoid{
		Info:              info,
		SemiMajorAxis:     semiMajor,
		SemiMinorAxis:     semiMinor,
		InverseFlattening: invFlattening,
		IvfDefinitive:     ivfDefinitive,
		AxisUnit:          unit,
	}
	if ivfDefinitive && invFlattening != 0 && !math.IsInf(invFlattening, 0) {
		e.SemiMinorAxis = (1.0 - 1.0/invFlattening) * semiMajor
	}
	return e
}

// SemiMajorMeters returns the semi-major axis in metres.
func (e Ellipsoid) SemiMajorMeters() float64 {
	return e.SemiMajorAxis * e.AxisUnit.MetersPerUnit
}

// SemiMinorMeters returns the semi-minor axis in metres.
func (e Ellipsoid) SemiMinorMeters() float64 {
	return e.SemiMinorAxis * e.AxisUnit.MetersPerUnit
}

// EqualParams compares the shape parameters and axis unit, ignoring metadata.
func (e Ellipsoid) EqualParams(other Ellipsoid) bool {
	return e.InverseFlattening == other.InverseFlattening &&
		e.IvfDefinitive == other.IvfDefinitive &&
		e.SemiMajorAxis == other.SemiMajorAxis &&
		e.SemiMinorAxis == other.SemiMinorAxis &&
		e.AxisUnit.EqualParams(other.AxisUnit)
}

// EllipsoidWGS84 returns the WGS 84 ellipsoid (EPSG:7030).
func EllipsoidWGS84() Ellipsoid {
	return NewEllipsoid(6378137, 0, 298.257223563, true, Metre(),
		Info{Name: "WGS 84", Authority: "EPSG", AuthorityCode: 7030, Alias: "WGS84"})
}

// EllipsoidWGS72 returns the WGS 72 ellipsoid (EPSG:7043).
func EllipsoidWGS72() Ellipsoid {
	return NewEllipsoid(6378135, 0, 298.26, true, Metre(),
		Info{Name: "WGS 72", Authority: "EPSG", AuthorityCode: 7043, Alias: "WGS 72"})
}

// EllipsoidGRS80 returns the GRS 1980 ellipsoid (EPSG:7019).
func EllipsoidGRS80() Ellipsoid {
	return NewEllipsoid(6378137, 0, 298.257222101, true, Metre(),
		Info{Name: "GRS 1980", Authority: "EPSG", AuthorityCode: 7019, Alias: "International 1979"})
}

// EllipsoidInternational1924 returns the International 1924 ellipsoid (EPSG:7022).
func EllipsoidInternational1924() Ellipsoid {
	return NewEllipsoid(6378388, 0, 297, true, Metre(),
		Info{Name: "International 1924", Authority: "EPSG", AuthorityCode: 7022, Alias: "Hayford 1909"})
}

// EllipsoidClarke1880 returns the Clarke 1880 ellipsoid (EPSG:7034), in Clarke's feet.
func EllipsoidClarke1880() Ellipsoid {
	return NewEllipsoid(20926202, 0, 297, true, ClarkesFoot(),
		Info{Name: "Clarke 1880", Authority: "EPSG", AuthorityCode: 7034, Alias: "Clarke 1880"})
}

// EllipsoidClarke1866 returns the Clarke 1866 ellipsoid (EPSG:7008).
func EllipsoidClarke1866() Ellipsoid {
	return NewEllipsoid(6378206.4, 6356583.8, math.Inf(1), false, Metre(),
		Info{Name: "Clarke 1866", Authority: "EPSG", AuthorityCode: 7008, Alias: "Clarke 1866"})
}

// EllipsoidSphere returns the GRS 1980 authalic sphere (EPSG:7048).
func EllipsoidSphere() Ellipsoid {
	return NewEllipsoid(6370997, 6370997, math.Inf(1), false, Metre(),
		Info{Name: "GRS 1980 Authalic Sphere", Authority: "EPSG", AuthorityCode: 7048, Alias: "Sphere"})
}
