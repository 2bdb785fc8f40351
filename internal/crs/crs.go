// Package crs models coordinate reference systems: geographic, geocentric,
// projected and fitted systems built from the datum, unit and prime
// meridian values of the domain package.
package crs

import (
	"github.com/jobrunner/meridian/internal/domain"
	"github.com/jobrunner/meridian/internal/transform"
)

// CoordinateSystem is one of *GeographicCS, *GeocentricCS, *ProjectedCS
// or *FittedCS.
type CoordinateSystem interface {
	domain.Described
	// Dimension returns the number of axes.
	Dimension() int
	// Axis returns axis i, or the zero AxisInfo when i is out of range.
	Axis(i int) domain.AxisInfo
	// Units returns the unit of axis i, or nil when i is out of range.
	Units(i int) domain.Unit
	// EqualParams compares everything except descriptive metadata.
	EqualParams(other CoordinateSystem) bool

	coordinateSystem()
}

// HorizontalCS is the datum and axes shared by geographic and projected systems.
type HorizontalCS struct {
	domain.Info
	Datum domain.HorizontalDatum
	Axes  []domain.AxisInfo
}

// Dimension returns the number of axes.
func (h *HorizontalCS) Dimension() int { return len(h.Axes) }

// Axis returns axis i.
func (h *HorizontalCS) Axis(i int) domain.AxisInfo {
	if i < 0 || i >= len(h.Axes) {
		return domain.AxisInfo{}
	}
	return h.Axes[i]
}

func axesEqual(a, b []domain.AxisInfo) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Orientation != b[i].Orientation {
			return false
		}
	}
	return true
}

// GeographicCS locates points by longitude and latitude.
type GeographicCS struct {
	HorizontalCS
	AngularUnit    domain.AngularUnit
	PrimeMeridian  domain.PrimeMeridian
	ConversionInfo []domain.Wgs84ConversionInfo
}

func (*GeographicCS) coordinateSystem() {}

// Units returns the angular unit for every axis.
func (g *GeographicCS) Units(i int) domain.Unit {
	if i < 0 || i >= g.Dimension() {
		return nil
	}
	return g.AngularUnit
}

// EqualParams compares datum, unit, prime meridian and axis orientations.
func (g *GeographicCS) EqualParams(other CoordinateSystem) bool {
	o, ok := other.(*GeographicCS)
	if !ok || o == nil {
		return false
	}
	return g.Datum.EqualParams(o.Datum) &&
		g.AngularUnit.EqualParams(o.AngularUnit) &&
		g.PrimeMeridian.EqualParams(o.PrimeMeridian) &&
		axesEqual(g.Axes, o.Axes)
}

// Frame returns the unit, meridian and dimension used by geographic transforms.
func (g *GeographicCS) Frame() transform.GeographicFrame {
	return transform.GeographicFrame{Unit: g.AngularUnit, PrimeMeridian: g.PrimeMeridian, Dimension: g.Dimension()}
}

// GeocentricCS locates points by earth-centred cartesian X, Y, Z.
type GeocentricCS struct {
	domain.Info
	Datum         domain.HorizontalDatum
	LinearUnit    domain.LinearUnit
	PrimeMeridian domain.PrimeMeridian
	Axes          []domain.AxisInfo
}

func (*GeocentricCS) coordinateSystem() {}

// Dimension returns 3.
func (g *GeocentricCS) Dimension() int { return len(g.Axes) }

// Axis returns axis i.
func (g *GeocentricCS) Axis(i int) domain.AxisInfo {
	if i < 0 || i >= len(g.Axes) {
		return domain.AxisInfo{}
	}
	return g.Axes[i]
}

// Units returns the linear unit for every axis.
func (g *GeocentricCS) Units(i int) domain.Unit {
	if i < 0 || i >= g.Dimension() {
		return nil
	}
	return g.LinearUnit
}

// EqualParams compares datum, unit and prime meridian.
func (g *GeocentricCS) EqualParams(other CoordinateSystem) bool {
	o, ok := other.(*GeocentricCS)
	if !ok || o == nil {
		return false
	}
	return g.Datum.EqualParams(o.Datum) &&
		g.LinearUnit.EqualParams(o.LinearUnit) &&
		g.PrimeMeridian.EqualParams(o.PrimeMeridian)
}

// Projection describes a map projection by class name and parameters.
type Projection struct {
	domain.Info
	ClassName  string
	Parameters *domain.ParameterSet
}

// EqualParams compares class name (normalized) and parameters.
func (p Projection) EqualParams(other Projection) bool {
	return domain.NormalizeName(p.ClassName) == domain.NormalizeName(other.ClassName) &&
		p.Parameters.Equal(other.Parameters)
}

// ProjectedCS is a geographic system flattened by a map projection.
type ProjectedCS struct {
	HorizontalCS
	Geographic *GeographicCS
	LinearUnit domain.LinearUnit
	Projection Projection
}

func (*ProjectedCS) coordinateSystem() {}

// Units returns the linear unit for every axis.
func (p *ProjectedCS) Units(i int) domain.Unit {
	if i < 0 || i >= p.Dimension() {
		return nil
	}
	return p.LinearUnit
}

// EqualParams compares the base system, unit, projection and axes.
func (p *ProjectedCS) EqualParams(other CoordinateSystem) bool {
	o, ok := other.(*ProjectedCS)
	if !ok || o == nil {
		return false
	}
	return p.Geographic.EqualParams(o.Geographic) &&
		p.LinearUnit.EqualParams(o.LinearUnit) &&
		p.Projection.EqualParams(o.Projection) &&
		axesEqual(p.Axes, o.Axes)
}

// FittedCS is positioned inside a base system by a to-base transform.
type FittedCS struct {
	domain.Info
	Base   CoordinateSystem
	ToBase transform.MathTransform
}

func (*FittedCS) coordinateSystem() {}

// Dimension returns the base dimension.
func (f *FittedCS) Dimension() int { return f.Base.Dimension() }

// Axis returns the base axis i.
func (f *FittedCS) Axis(i int) domain.AxisInfo { return f.Base.Axis(i) }

// Units returns the base unit of axis i.
func (f *FittedCS) Units(i int) domain.Unit { return f.Base.Units(i) }

// EqualParams compares the base systems and the to-base transforms.
// Affine transforms compare by matrix, others by identity.
func (f *FittedCS) EqualParams(other CoordinateSystem) bool {
	o, ok := other.(*FittedCS)
	if !ok || o == nil {
		return false
	}
	if !f.Base.EqualParams(o.Base) {
		return false
	}
	return sameTransform(f.ToBase, o.ToBase)
}

func sameTransform(a, b transform.MathTransform) bool {
	if a == b {
		return true
	}
	aa, ok1 := a.(*transform.AffineTransform)
	bb, ok2 := b.(*transform.AffineTransform)
	if !ok1 || !ok2 {
		return false
	}
	ma, mb := aa.Matrix(), bb.Matrix()
	if len(ma) != len(mb) {
		return false
	}
	for i := range ma {
		if len(ma[i]) != len(mb[i]) {
			return false
		}
		for j := range ma[i] {
			if ma[i][j] != mb[i][j] {
				return false
			}
		}
	}
	return true
}
