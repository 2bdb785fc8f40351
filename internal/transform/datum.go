package transform

import "github.com/jobrunner/meridian/internal/domain"

// DatumTransform applies a linearised seven-parameter Bursa-Wolf shift to
// geocentric coordinates. The inverse is the algebraic small-angle inverse.
type DatumTransform struct {
	twin
	Unsupported

	shift *domain.Wgs84ConversionInfo
	v     [7]float64
}

// NewDatumTransform creates the shift towards WGS 84. A nil shift is the identity.
func NewDatumTransform(shift *domain.Wgs84ConversionInfo) *DatumTransform {
	if shift == nil {
		shift = &domain.Wgs84ConversionInfo{}
	}
	d := &DatumTransform{shift: shift, v: shift.AffineTransform()}
	d.twin = newTwin(d)
	return d
}

// Shift returns the Bursa-Wolf parameters.
func (d *DatumTransform) Shift() domain.Wgs84ConversionInfo { return *d.shift }

// DimSource returns 3.
func (d *DatumTransform) DimSource() int { return 3 }

// DimTarget returns 3.
func (d *DatumTransform) DimTarget() int { return 3 }

// IsIdentity returns true when every shift parameter is zero.
func (d *DatumTransform) IsIdentity() bool { return d.shift.HasZeroValuesOnly() }

// IsInverse reports whether the shift currently runs from WGS 84.
func (d *DatumTransform) IsInverse() bool { return d.inverted() }

// Transform shifts one geocentric point.
func (d *DatumTransform) Transform(p []float64) []float64 {
	if len(p) < 3 {
		return []float64{}
	}
	x, y, z := p[0], p[1], p[2]
	v := d.v
	if d.inverted() {
		s := 1 - (v[0] - 1)
		return []float64{
			s*(x+v[3]*y-v[2]*z) - v[4],
			s*(-v[3]*x+y+v[1]*z) - v[5],
			s*(v[2]*x-v[1]*y+z) - v[6],
		}
	}
	return []float64{
		v[0]*(x-v[3]*y+v[2]*z) + v[4],
		v[0]*(v[3]*x+y-v[1]*z) + v[5],
		v[0]*(-v[2]*x+v[1]*y+z) + v[6],
	}
}

// TransformList shifts every point.
func (d *DatumTransform) TransformList(points [][]float64) [][]float64 {
	return TransformAll(d, points)
}

// Inverse returns the shift in the opposite direction.
func (d *DatumTransform) Inverse() (MathTransform, error) {
	return d.inverse(func(w twin) MathTransform {
		inv := *d
		inv.twin = w
		return &inv
	}), nil
}
