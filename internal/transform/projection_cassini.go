package transform

import "math"

const (
	cassC1 = 1.0 / 6
	cassC2 = 1.0 / 120
	cassC3 = 1.0 / 24
	cassC4 = 1.0 / 3
	cassC5 = 1.0 / 15

	cassMaxIter   = 10
	cassTolerance = 1e-11
)

// cassiniSoldner is the ellipsoidal Cassini-Soldner projection.
type cassiniSoldner struct {
	*base
	cFactor float64
	m0      float64
}

func newCassiniSoldner(b *base) *cassiniSoldner {
	return &cassiniSoldner{
		base:    b,
		cFactor: b.es / (1 - b.es),
		m0:      b.mlfn(b.lat0, math.Sin(b.lat0), math.Cos(b.lat0)),
	}
}

func (c *cassiniSoldner) forward(lam, phi float64) (float64, float64, bool) {
	lam -= c.lon0
	sinPhi, cosPhi := math.Sincos(phi)
	y := c.mlfn(phi, sinPhi, cosPhi)
	n := 1 / math.Sqrt(1-c.es*sinPhi*sinPhi)
	tn := math.Tan(phi)
	t := tn * tn
	a1 := lam * cosPhi
	cc := c.cFactor * cosPhi * cosPhi
	a2 := a1 * a1
	x := n * a1 * (1 - a2*t*(cassC1-(8-t+8*cc)*a2*cassC2))
	y -= c.m0 - n*tn*a2*(0.5+(5-t+6*cc)*a2*cassC3)
	return x * c.semiMajor, y * c.semiMajor, true
}

func (c *cassiniSoldner) inverse(x, y float64) (float64, float64, bool) {
	x /= c.semiMajor
	y /= c.semiMajor
	ph1 := c.invert(c.m0+y, cassMaxIter, cassTolerance)
	if math.IsNaN(ph1) {
		return math.NaN(), math.NaN(), true
	}
	tn := math.Tan(ph1)
	t := tn * tn
	n := math.Sin(ph1)
	r := 1 / (1 - c.es*n*n)
	n = math.Sqrt(r)
	r *= (1 - c.es) * n
	dd := x / n
	d2 := dd * dd
	phi := ph1 - (n*tn/r)*d2*(0.5-(1+3*t)*d2*cassC3)
	lam := dd * (1 + t*d2*(-cassC4+(1+3*t)*d2*cassC5)) / math.Cos(ph1)
	return adjustLon(lam + c.lon0), phi, true
}
