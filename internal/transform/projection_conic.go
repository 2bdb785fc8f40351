package transform

import (
	"math"

	"github.com/jobrunner/meridian/internal/domain"
)

type standardParallels struct {
	lat1, lat2 float64
}

func readStandardParallels(params *domain.ParameterSet) (standardParallels, error) {
	lat1, err := degreesParam(params, "standard_parallel_1")
	if err != nil {
		return standardParallels{}, err
	}
	lat2, err := degreesParam(params, "standard_parallel_2")
	if err != nil {
		return standardParallels{}, err
	}
	return standardParallels{lat1: lat1, lat2: lat2}, nil
}

// albers is the Albers equal-area conic.
type albers struct {
	*base
	ns0 float64
	c   float64
	rh  float64
}

func newAlbers(b *base, params *domain.ParameterSet) (*albers, error) {
	sp, err := readStandardParallels(params)
	if err != nil {
		return nil, err
	}
	if math.Abs(sp.lat1+sp.lat2) < epsln {
		return nil, &domain.ConfigError{Field: "standard_parallel_1", Message: "standard parallels must not be opposite"}
	}

	sin1, cos1 := math.Sincos(sp.lat1)
	ms1 := msfnz(b.e, sin1, cos1)
	qs1 := qsfnz(b.e, sin1)
	sin2, cos2 := math.Sincos(sp.lat2)
	ms2 := msfnz(b.e, sin2, cos2)
	qs2 := qsfnz(b.e, sin2)
	qs0 := qsfnz(b.e, math.Sin(b.lat0))

	a := &albers{base: b}
	if math.Abs(sp.lat1-sp.lat2) > epsln {
		a.ns0 = (ms1*ms1 - ms2*ms2) / (qs2 - qs1)
	} else {
		a.ns0 = sin1
	}
	a.c = ms1*ms1 + a.ns0*qs1
	a.rh = a.rho(qs0)
	return a, nil
}

func (a *albers) rho(qs float64) float64 {
	return a.semiMajor * math.Sqrt(a.c-a.ns0*qs) / a.ns0
}

func (a *albers) forward(lam, phi float64) (float64, float64, bool) {
	rh1 := a.rho(qsfnz(a.e, math.Sin(phi)))
	theta := a.ns0 * adjustLon(lam-a.lon0)
	return rh1 * math.Sin(theta), a.rh - rh1*math.Cos(theta), true
}

func (a *albers) inverse(x, y float64) (float64, float64, bool) {
	dy := a.rh - y
	rh1 := math.Sqrt(x*x + dy*dy)
	con := 1.0
	if a.ns0 < 0 {
		rh1, con = -rh1, -1
	}
	theta := 0.0
	if rh1 != 0 {
		theta = math.Atan2(con*x, con*dy)
	}
	con = rh1 * a.ns0 / a.semiMajor
	qs := (a.c - con*con) / a.ns0
	phi := phi1z(a.e, qs)
	return adjustLon(theta/a.ns0 + a.lon0), phi, true
}

// lambertConformalConic is the two standard parallel Lambert conformal conic.
type lambertConformalConic struct {
	*base
	ns float64
	f0 float64
	rh float64
}

func newLambertConformalConic(b *base, params *domain.ParameterSet) (*lambertConformalConic, error) {
	sp, err := readStandardParallels(params)
	if err != nil {
		return nil, err
	}
	if math.Abs(sp.lat1+sp.lat2) < epsln {
		return nil, &domain.ConfigError{Field: "standard_parallel_1", Message: "standard parallels must not be opposite"}
	}

	sin1, cos1 := math.Sincos(sp.lat1)
	ms1 := msfnz(b.e, sin1, cos1)
	ts1 := tsfnz(b.e, sp.lat1, sin1)
	sin2, cos2 := math.Sincos(sp.lat2)
	ms2 := msfnz(b.e, sin2, cos2)
	ts2 := tsfnz(b.e, sp.lat2, sin2)
	ts0 := tsfnz(b.e, b.lat0, math.Sin(b.lat0))

	l := &lambertConformalConic{base: b}
	if math.Abs(sp.lat1-sp.lat2) > epsln {
		l.ns = math.Log(ms1/ms2) / math.Log(ts1/ts2)
	} else {
		l.ns = sin1
	}
	l.f0 = ms1 / (l.ns * math.Pow(ts1, l.ns))
	l.rh = b.scaleFactor * b.semiMajor * l.f0 * math.Pow(ts0, l.ns)
	return l, nil
}

func (l *lambertConformalConic) forward(lam, phi float64) (float64, float64, bool) {
	var rh1 float64
	if math.Abs(math.Abs(phi)-halfPi) > epsln {
		ts := tsfnz(l.e, phi, math.Sin(phi))
		rh1 = l.scaleFactor * l.semiMajor * l.f0 * math.Pow(ts, l.ns)
	} else if phi*l.ns <= 0 {
		return 0, 0, false
	}
	theta := l.ns * adjustLon(lam-l.lon0)
	return rh1 * math.Sin(theta), l.rh - rh1*math.Cos(theta), true
}

func (l *lambertConformalConic) inverse(x, y float64) (float64, float64, bool) {
	dy := l.rh - y
	rh1 := math.Sqrt(x*x + dy*dy)
	con := 1.0
	if l.ns <= 0 {
		rh1, con = -rh1, -1
	}
	theta := 0.0
	if rh1 != 0 {
		theta = math.Atan2(con*x, con*dy)
	}
	phi := -halfPi
	if rh1 != 0 || l.ns > 0 {
		ts := math.Pow(rh1/(l.scaleFactor*l.semiMajor*l.f0), 1.0/l.ns)
		phi = phi2z(l.e, ts)
	}
	return adjustLon(theta/l.ns + l.lon0), phi, true
}
