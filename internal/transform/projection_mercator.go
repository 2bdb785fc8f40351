package transform

import (
	"math"

	"github.com/jobrunner/meridian/internal/domain"
)

// mercator implements Mercator 1SP and 2SP on the ellipsoid. Pseudo-Mercator
// reuses it on a sphere.
type mercator struct {
	*base
	k0    float64
	twoSP bool
}

func newMercator(b *base, params *domain.ParameterSet) *mercator {
	m := &mercator{base: b, k0: b.scaleFactor}
	if !params.Has("scale_factor") {
		sinLat := math.Sin(b.lat0)
		m.k0 = math.Cos(b.lat0) / math.Sqrt(1.0-b.es*sinLat*sinLat)
		m.twoSP = true
	}
	return m
}

func (m *mercator) forward(lam, phi float64) (float64, float64, bool) {
	if math.IsNaN(lam) || math.IsNaN(phi) {
		return math.NaN(), math.NaN(), true
	}
	if math.Abs(math.Abs(phi)-halfPi) <= epsln {
		return math.NaN(), math.NaN(), true
	}
	esinphi := m.e * math.Sin(phi)
	x := m.semiMajor * m.k0 * (lam - m.lon0)
	y := m.semiMajor * m.k0 * math.Log(math.Tan(math.Pi*0.25+phi*0.5)*math.Pow((1-esinphi)/(1+esinphi), m.e*0.5))
	return x, y, true
}

func (m *mercator) inverse(x, y float64) (float64, float64, bool) {
	ts := math.Exp(-y / (m.semiMajor * m.k0))
	chi := halfPi - 2*math.Atan(ts)
	e4 := math.Pow(m.e, 4)
	e6 := math.Pow(m.e, 6)
	e8 := math.Pow(m.e, 8)
	phi := chi +
		(m.es*0.5+5*e4/24+e6/12+13*e8/360)*math.Sin(2*chi) +
		(7*e4/48+29*e6/240+811*e8/11520)*math.Sin(4*chi) +
		(7*e6/120+81*e8/1120)*math.Sin(6*chi) +
		(4279*e8/161280)*math.Sin(8*chi)
	lam := x/(m.semiMajor*m.k0) + m.lon0
	return lam, phi, true
}
