package transform

import (
	"math"

	"github.com/jobrunner/meridian/internal/domain"
)

const (
	cos67p5 = 0.38268343236508977
	adC     = 1.0026000
)

// GeocentricTransform converts geodetic longitude, latitude (degrees) and
// ellipsoidal height (metres) to earth-centred X, Y, Z in metres, or back
// when inverted. The inverse uses Bowring's method.
type GeocentricTransform struct {
	twin
	Unsupported

	semiMajor float64
	semiMinor float64
	es        float64
	ses       float64
}

// NewGeocentric creates the conversion for an ellipsoid.
func NewGeocentric(e domain.Ellipsoid) *GeocentricTransform {
	a := e.SemiMajorMeters()
	b := e.SemiMinorMeters()
	g := &GeocentricTransform{
		semiMajor: a,
		semiMinor: b,
		es:        1 - (b*b)/(a*a),
		ses:       (a*a - b*b) / (b * b),
	}
	g.twin = newTwin(g)
	return g
}

// DimSource returns 3.
func (g *GeocentricTransform) DimSource() int { return 3 }

// DimTarget returns 3.
func (g *GeocentricTransform) DimTarget() int { return 3 }

// IsIdentity returns false.
func (g *GeocentricTransform) IsIdentity() bool { return false }

// IsInverse reports whether the transform currently maps X, Y, Z to geodetic.
func (g *GeocentricTransform) IsInverse() bool { return g.inverted() }

// Transform converts one point. A missing or NaN height counts as zero.
func (g *GeocentricTransform) Transform(p []float64) []float64 {
	if len(p) < 2 {
		return []float64{}
	}
	if g.inverted() {
		return g.toGeodetic(p)
	}
	return g.toGeocentric(p)
}

// TransformList converts every point.
func (g *GeocentricTransform) TransformList(points [][]float64) [][]float64 {
	return TransformAll(g, points)
}

// Inverse returns the conversion running the other way.
func (g *GeocentricTransform) Inverse() (MathTransform, error) {
	return g.inverse(func(w twin) MathTransform {
		inv := *g
		inv.twin = w
		return &inv
	}), nil
}

func (g *GeocentricTransform) toGeocentric(p []float64) []float64 {
	lon := p[0] * d2r
	lat := p[1] * d2r
	h := 0.0
	if len(p) > 2 && !math.IsNaN(p[2]) {
		h = p[2]
	}
	sinLat, cosLat := math.Sincos(lat)
	v := g.semiMajor / math.Sqrt(1-g.es*sinLat*sinLat)
	return []float64{
		(v + h) * cosLat * math.Cos(lon),
		(v + h) * cosLat * math.Sin(lon),
		((1-g.es)*v + h) * sinLat,
	}
}

func (g *GeocentricTransform) toGeodetic(p []float64) []float64 {
	x, y := p[0], p[1]
	z := 0.0
	if len(p) > 2 && !math.IsNaN(p[2]) {
		z = p[2]
	}

	var lon, lat float64
	atPole := false
	switch {
	case x != 0:
		lon = math.Atan2(y, x)
	case y > 0:
		lon = halfPi
	case y < 0:
		lon = -halfPi
	default:
		atPole = true
		switch {
		case z > 0:
			lat = halfPi
		case z < 0:
			lat = -halfPi
		default:
			return []float64{0, 90, -g.semiMinor}
		}
	}

	w := math.Hypot(x, y)
	t0 := z * adC
	s0 := math.Hypot(t0, w)
	sinB0 := t0 / s0
	cosB0 := w / s0
	t1 := z + g.semiMinor*g.ses*sinB0*sinB0*sinB0
	sum := w - g.semiMajor*g.es*cosB0*cosB0*cosB0
	s1 := math.Hypot(t1, sum)
	sinP1 := t1 / s1
	cosP1 := sum / s1
	rn := g.semiMajor / math.Sqrt(1-g.es*sinP1*sinP1)

	var h float64
	switch {
	case cosP1 >= cos67p5:
		h = w/cosP1 - rn
	case cosP1 <= -cos67p5:
		h = w/-cosP1 - rn
	default:
		h = z/sinP1 + rn*(g.es-1)
	}
	if !atPole {
		lat = math.Atan(sinP1 / cosP1)
	}
	return []float64{lon * r2d, lat * r2d, h}
}
