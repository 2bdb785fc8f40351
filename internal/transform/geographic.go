package transform

import (
	"sync"

	"github.com/jobrunner/meridian/internal/domain"
)

// GeographicFrame is the part of a geographic coordinate system that
// affects ordinate values.
type GeographicFrame struct {
	Unit          domain.AngularUnit
	PrimeMeridian domain.PrimeMeridian
	Dimension     int
}

// GeographicTransform converts between two geographic frames on the same
// datum: angular unit and prime meridian. It has no inverse object; use
// Invert to swap the frames in place.
type GeographicTransform struct {
	Unsupported

	mu     sync.RWMutex
	source GeographicFrame
	target GeographicFrame
}

// NewGeographicTransform creates the conversion from source to target.
func NewGeographicTransform(source, target GeographicFrame) *GeographicTransform {
	return &GeographicTransform{source: source, target: target}
}

func (g *GeographicTransform) frames() (GeographicFrame, GeographicFrame) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.source, g.target
}

// DimSource returns the source dimension.
func (g *GeographicTransform) DimSource() int {
	src, _ := g.frames()
	return src.Dimension
}

// DimTarget returns the target dimension.
func (g *GeographicTransform) DimTarget() int {
	_, tgt := g.frames()
	return tgt.Dimension
}

// IsIdentity returns true when units and prime meridians match.
func (g *GeographicTransform) IsIdentity() bool {
	src, tgt := g.frames()
	return src.Unit.EqualParams(tgt.Unit) && src.PrimeMeridian.EqualParams(tgt.PrimeMeridian)
}

// Transform rescales one point. A height passes through.
func (g *GeographicTransform) Transform(p []float64) []float64 {
	if len(p) < 2 {
		return []float64{}
	}
	src, tgt := g.frames()
	lon := src.Unit.ToRadians(p[0]) + src.PrimeMeridian.Radians() - tgt.PrimeMeridian.Radians()
	out := cloneOrdinates(p)
	out[0] = tgt.Unit.FromRadians(lon)
	out[1] = tgt.Unit.FromRadians(src.Unit.ToRadians(p[1]))
	return out
}

// TransformList rescales every point.
func (g *GeographicTransform) TransformList(points [][]float64) [][]float64 {
	return TransformAll(g, points)
}

// Inverse returns ErrNoInverse.
func (g *GeographicTransform) Inverse() (MathTransform, error) {
	return nil, domain.ErrNoInverse
}

// Invert swaps source and target frames.
func (g *GeographicTransform) Invert() {
	g.mu.Lock()
	g.source, g.target = g.target, g.source
	g.mu.Unlock()
}
