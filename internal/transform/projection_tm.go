package transform

import "math"

// Series factors of the transverse Mercator expansion.
const (
	fc1 = 1.00000000000000000000000
	fc2 = 0.50000000000000000000000
	fc3 = 0.16666666666666666666666
	fc4 = 0.08333333333333333333333
	fc5 = 0.05000000000000000000000
	fc6 = 0.03333333333333333333333
	fc7 = 0.02380952380952380952380
	fc8 = 0.01785714285714285714285

	tmEpsilon = 1e-6
)

type transverseMercator struct {
	*base
	esp float64
	ml0 float64
}

func newTransverseMercator(b *base) *transverseMercator {
	return &transverseMercator{
		base: b,
		esp:  b.es / (1.0 - b.es),
		ml0:  b.mlfn(b.lat0, math.Sin(b.lat0), math.Cos(b.lat0)),
	}
}

func (t *transverseMercator) forward(lam, phi float64) (float64, float64, bool) {
	x := adjustLon(lam - t.lon0)
	sinphi, cosphi := math.Sincos(phi)

	tn := 0.0
	if math.Abs(cosphi) > tmEpsilon {
		tn = sinphi / cosphi
	}
	tn *= tn
	al := cosphi * x
	als := al * al
	al /= math.Sqrt(1.0 - t.es*sinphi*sinphi)
	n := t.esp * cosphi * cosphi

	aa := 5.0 - tn + n*(9.0+4.0*n) + fc6*als*(61.0+tn*(tn-58.0)+n*(270.0-330.0*tn)+fc8*als*(1385.0+tn*(tn*(543.0-tn)-3111.0)))
	y := t.mlfn(phi, sinphi, cosphi) - t.ml0 + sinphi*al*x*fc2*(1.0+fc4*als*aa)
	bb := 5.0 + tn*(tn-18.0) + n*(14.0-58.0*tn) + fc7*als*(61.0+tn*(tn*(179.0-tn)-479.0))
	x = al * (fc1 + fc3*als*(1.0-tn+n+fc5*als*bb))

	return t.scaleFactor * t.semiMajor * x, t.scaleFactor * t.semiMajor * y, true
}

func (t *transverseMercator) inverse(px, py float64) (float64, float64, bool) {
	x := px / t.semiMajor
	y := py / t.semiMajor
	phi := t.invMlfn(t.ml0 + y/t.scaleFactor)

	if math.Abs(phi) >= halfPi {
		if y < 0 {
			return 0, -halfPi, true
		}
		return 0, halfPi, true
	}

	sinphi, cosphi := math.Sincos(phi)
	tn := 0.0
	if math.Abs(cosphi) > tmEpsilon {
		tn = sinphi / cosphi
	}
	n := t.esp * cosphi * cosphi
	con := 1.0 - t.es*sinphi*sinphi
	d := x * math.Sqrt(con) / t.scaleFactor
	con *= tn
	tn *= tn
	ds := d * d

	lat := phi - (con*ds/(1.0-t.es))*fc2*(1.0-ds*fc4*(5.0+tn*(3.0-9.0*n)+n*(1.0-4*n)-ds*fc6*(61.0+tn*(90.0-252.0*n+45.0*tn)+46.0*n-ds*fc8*(1385.0+tn*(3633.0+tn*(4095.0+1574.0*tn))))))
	xxx := 5.0 + tn*(28.0+24*tn+8.0*n) + 6.0*n - ds*fc7*(61.0+tn*(662.0+tn*(1320.0+720.0*tn)))
	xx := fc1 - ds*fc3*(1.0+2.0*tn+n-ds*fc5*xxx)
	lon := adjustLon(t.lon0 + d*xx/cosphi)
	return lon, lat, true
}
