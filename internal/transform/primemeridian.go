package transform

import "github.com/jobrunner/meridian/internal/domain"

// PrimeMeridianTransform re-references longitudes in degrees from one
// prime meridian to another. Other ordinates pass through.
type PrimeMeridianTransform struct {
	twin
	Unsupported

	source domain.PrimeMeridian
	target domain.PrimeMeridian
	delta  float64
}

// NewPrimeMeridianTransform creates the shift from source to target.
func NewPrimeMeridianTransform(source, target domain.PrimeMeridian) *PrimeMeridianTransform {
	t := &PrimeMeridianTransform{
		source: source,
		target: target,
		delta:  source.Degrees() - target.Degrees(),
	}
	t.twin = newTwin(t)
	return t
}

// DimSource returns 3.
func (t *PrimeMeridianTransform) DimSource() int { return 3 }

// DimTarget returns 3.
func (t *PrimeMeridianTransform) DimTarget() int { return 3 }

// IsIdentity returns true when both meridians coincide.
func (t *PrimeMeridianTransform) IsIdentity() bool { return t.delta == 0 }

// Transform shifts the longitude of one point.
func (t *PrimeMeridianTransform) Transform(p []float64) []float64 {
	if len(p) < 2 {
		return []float64{}
	}
	out := cloneOrdinates(p)
	if t.inverted() {
		out[0] -= t.delta
	} else {
		out[0] += t.delta
	}
	return out
}

// TransformList shifts every point.
func (t *PrimeMeridianTransform) TransformList(points [][]float64) [][]float64 {
	return TransformAll(t, points)
}

// Inverse returns the shift from target back to source.
func (t *PrimeMeridianTransform) Inverse() (MathTransform, error) {
	return t.inverse(func(w twin) MathTransform {
		inv := *t
		inv.twin = w
		return &inv
	}), nil
}
