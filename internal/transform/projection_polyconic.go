package transform

import "math"

const (
	polyTolerance = 1e-10
	polyIterTol   = 1e-12
	polyMaxIter   = 20
)

// polyconic is the American polyconic projection.
type polyconic struct {
	*base
	ml0 float64
}

func newPolyconic(b *base) *polyconic {
	return &polyconic{base: b, ml0: b.mlfn(b.lat0, math.Sin(b.lat0), math.Cos(b.lat0))}
}

func (p *polyconic) forward(lam, phi float64) (float64, float64, bool) {
	dl := adjustLon(lam - p.lon0)
	var x, y float64
	if math.Abs(phi) <= polyTolerance {
		x, y = dl, -p.ml0
	} else {
		sp, cp := math.Sincos(phi)
		ms := 0.0
		if math.Abs(cp) > polyTolerance {
			ms = msfnz(p.e, sp, cp) / sp
		}
		dl *= sp
		x = ms * math.Sin(dl)
		y = p.mlfn(phi, sp, cp) - p.ml0 + ms*(1-math.Cos(dl))
	}
	scale := p.scaleFactor * p.semiMajor
	return x * scale, y * scale, true
}

func (p *polyconic) inverse(px, py float64) (float64, float64, bool) {
	scale := p.scaleFactor * p.semiMajor
	x := px / scale
	y := py/scale + p.ml0

	if math.Abs(y) <= polyTolerance {
		return adjustLon(x + p.lon0), 0, true
	}

	r := y*y + x*x
	phi := y
	converged := false
	for i := 0; i < polyMaxIter; i++ {
		sp, cp := math.Sincos(phi)
		if math.Abs(cp) < polyIterTol {
			return 0, 0, false
		}
		s2ph := sp * cp
		mlp := math.Sqrt(1 - p.es*sp*sp)
		c := sp * mlp / cp
		ml := p.mlfn(phi, sp, cp)
		mlb := ml*ml + r
		mlp = (1 - p.es) / (mlp * mlp * mlp)
		dPhi := (ml + ml + c*mlb - 2*y*(c*ml+1)) /
			(p.es*s2ph*(mlb-2*y*ml)/c + 2*(y-ml)*(c*mlp-1/s2ph) - mlp - mlp)
		phi += dPhi
		if math.Abs(dPhi) <= polyIterTol {
			converged = true
			break
		}
	}
	if !converged {
		return 0, 0, false
	}

	sp := math.Sin(phi)
	lam := math.Asin(x*math.Tan(phi)*math.Sqrt(1-p.es*sp*sp)) / sp
	return adjustLon(lam + p.lon0), phi, true
}
