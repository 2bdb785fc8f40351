package transform

import "math"

const (
	stereoMaxIter   = 15
	stereoTolerance = 1e-14
	stereoRhoMin    = 1e-6
	quarterPi       = math.Pi / 4
)

// obliqueStereographic maps the ellipsoid to the Gauss conformal sphere
// and projects that stereographically about the origin.
type obliqueStereographic struct {
	*base
	globalScale  float64
	r2           float64
	c            float64
	k            float64
	ratexp       float64
	phic0        float64
	sinc0, cosc0 float64
}

func newObliqueStereographic(b *base) *obliqueStereographic {
	s := &obliqueStereographic{base: b, globalScale: b.scaleFactor * b.semiMajor}
	sphi := math.Sin(b.lat0)
	cphi := math.Cos(b.lat0)
	cphi *= cphi
	s.r2 = 2 * math.Sqrt(1-b.es) / (1 - b.es*sphi*sphi)
	s.c = math.Sqrt(1 + b.es*cphi*cphi/(1-b.es))
	s.phic0 = math.Asin(sphi / s.c)
	s.sinc0, s.cosc0 = math.Sincos(s.phic0)
	s.ratexp = 0.5 * s.c * b.e
	s.k = math.Tan(0.5*s.phic0+quarterPi) /
		(math.Pow(math.Tan(0.5*b.lat0+quarterPi), s.c) * srat(b.e*sphi, s.ratexp))
	return s
}

func srat(esinp, exp float64) float64 {
	return math.Pow((1-esinp)/(1+esinp), exp)
}

func (s *obliqueStereographic) forward(lam, phi float64) (float64, float64, bool) {
	y := 2*math.Atan(s.k*math.Pow(math.Tan(0.5*phi+quarterPi), s.c)*srat(s.e*math.Sin(phi), s.ratexp)) - halfPi
	x := (lam - s.lon0) * s.c

	sinc, cosc := math.Sincos(y)
	cosl := math.Cos(x)
	k := s.r2 / (1 + s.sinc0*sinc + s.cosc0*cosc*cosl)
	px := k * cosc * math.Sin(x)
	py := k * (s.cosc0*sinc - s.sinc0*cosc*cosl)
	return px * s.globalScale, py * s.globalScale, true
}

func (s *obliqueStereographic) inverse(px, py float64) (float64, float64, bool) {
	x := px / s.globalScale
	y := py / s.globalScale
	rho := math.Hypot(x, y)

	var lam, phi float64
	if rho < stereoRhoMin {
		lam, phi = 0, s.phic0
	} else {
		ce := 2 * math.Atan2(rho, s.r2)
		sinc, cosc := math.Sincos(ce)
		lam = math.Atan2(x*sinc, rho*s.cosc0*cosc-y*s.sinc0*sinc)
		phi = asinz(cosc*s.sinc0 + y*sinc*s.cosc0/rho)
	}

	lam /= s.c
	num := math.Pow(math.Tan(0.5*phi+quarterPi)/s.k, 1/s.c)
	for i := 0; i < stereoMaxIter; i++ {
		next := 2*math.Atan(num*srat(s.e*math.Sin(phi), -0.5*s.e)) - halfPi
		if math.Abs(next-phi) < stereoTolerance {
			return lam + s.lon0, next, true
		}
		phi = next
	}
	return lam + s.lon0, math.NaN(), true
}
