package transform

import "math"

const (
	halfPi = math.Pi * 0.5
	twoPi  = math.Pi * 2.0
	epsln  = 1.0e-10

	maxVal     = 4
	prjMaxLong = 2147483647
	dblLong    = 4.61168601e18

	mlfnTolerance     = 1e-11
	mlfnMaxIterations = 20
)

// Meridian distance series constants.
const (
	c00 = 1.0
	c02 = 0.25
	c04 = 0.046875
	c06 = 0.01953125
	c08 = 0.01068115234375
	c22 = 0.75
	c44 = 0.46875
	c46 = 0.01302083333333333333
	c48 = 0.00712076822916666666
	c66 = 0.36458333333333333333
	c68 = 0.00569661458333333333
	c88 = 0.3076171875
)

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

// adjustLon wraps a longitude in radians into [-π, π]. The subtraction
// strategy depends on the magnitude so that huge inputs do not cancel.
func adjustLon(x float64) float64 {
	for i := 0; i <= maxVal; i++ {
		switch {
		case math.Abs(x) <= math.Pi:
			return x
		case math.Abs(x/math.Pi) < 2:
			x -= sign(x) * twoPi
		case math.Abs(x/twoPi) < prjMaxLong:
			x -= math.Trunc(x/twoPi) * twoPi
		case math.Abs(x/(prjMaxLong*twoPi)) < prjMaxLong:
			x -= math.Trunc(x/(prjMaxLong*twoPi)) * (twoPi * prjMaxLong)
		case math.Abs(x/(dblLong*twoPi)) < prjMaxLong:
			x -= math.Trunc(x/(dblLong*twoPi)) * (twoPi * dblLong)
		default:
			x -= sign(x) * twoPi
		}
	}
	return x
}

func msfnz(eccent, sinphi, cosphi float64) float64 {
	con := eccent * sinphi
	return cosphi / math.Sqrt(1.0-con*con)
}

func qsfnz(eccent, sinphi float64) float64 {
	if eccent > 1.0e-7 {
		con := eccent * sinphi
		return (1.0 - eccent*eccent) * (sinphi/(1.0-con*con) - (0.5/eccent)*math.Log((1.0-con)/(1.0+con)))
	}
	return 2.0 * sinphi
}

func tsfnz(eccent, phi, sinphi float64) float64 {
	con := eccent * sinphi
	com := 0.5 * eccent
	con = math.Pow((1.0-con)/(1.0+con), com)
	return math.Tan(0.5*(halfPi-phi)) / con
}

// phi1z computes the latitude from the authalic q value. NaN on non-convergence.
func phi1z(eccent, qs float64) float64 {
	phi := asinz(0.5 * qs)
	if eccent < epsln {
		return phi
	}
	eccnts := eccent * eccent
	for i := 1; i < 25; i++ {
		sinpi, cospi := math.Sincos(phi)
		con := eccent * sinpi
		com := 1.0 - con*con
		dphi := 0.5 * com * com / cospi * (qs/(1.0-eccnts) - sinpi/com + 0.5/eccent*math.Log((1.0-con)/(1.0+con)))
		phi += dphi
		if math.Abs(dphi) <= 1e-7 {
			return phi
		}
	}
	return math.NaN()
}

// phi2z computes the latitude from the conformal t value. NaN on non-convergence.
func phi2z(eccent, ts float64) float64 {
	eccnth := 0.5 * eccent
	chi := halfPi - 2*math.Atan(ts)
	for i := 0; i < 15; i++ {
		con := eccent * math.Sin(chi)
		dphi := halfPi - 2*math.Atan(ts*math.Pow((1.0-con)/(1.0+con), eccnth)) - chi
		chi += dphi
		if math.Abs(dphi) <= 1e-10 {
			return chi
		}
	}
	return math.NaN()
}

// asinz is asin with its argument clamped to [-1, 1].
func asinz(c float64) float64 {
	if math.Abs(c) > 1.0 {
		c = sign(c)
	}
	return math.Asin(c)
}

// meridian holds the en0..en4 series coefficients of one ellipsoid.
type meridian struct {
	es float64
	en [5]float64
}

func newMeridian(es float64) meridian {
	m := meridian{es: es}
	m.en[0] = c00 - es*(c02+es*(c04+es*(c06+es*c08)))
	m.en[1] = es * (c22 - es*(c04+es*(c06+es*c08)))
	m.en[2] = es * es * (c44 - es*(c46+es*c48))
	t := es * es
	m.en[3] = t * es * (c66 - es*c68)
	t *= es
	m.en[4] = t * es * c88
	return m
}

// mlfn returns the meridian distance on the unit ellipsoid.
func (m meridian) mlfn(phi, sphi, cphi float64) float64 {
	cphi *= sphi
	sphi *= sphi
	return m.en[0]*phi - cphi*(m.en[1]+sphi*(m.en[2]+sphi*(m.en[3]+sphi*m.en[4])))
}

// invMlfn inverts mlfn by Newton iteration. NaN on non-convergence.
func (m meridian) invMlfn(arg float64) float64 {
	return m.invert(arg, mlfnMaxIterations, mlfnTolerance)
}

func (m meridian) invert(arg float64, maxIter int, tol float64) float64 {
	k := 1.0 / (1.0 - m.es)
	phi := arg
	for i := 0; i <= maxIter; i++ {
		s := math.Sin(phi)
		t := 1.0 - m.es*s*s
		t = (m.mlfn(phi, s, math.Cos(phi)) - arg) * (t * math.Sqrt(t)) * k
		phi -= t
		if math.Abs(t) < tol {
			return phi
		}
	}
	return math.NaN()
}

// eccentricitySquared returns es = 2f - f² for the two semi axes.
func eccentricitySquared(semiMajor, semiMinor float64) float64 {
	f := (semiMajor - semiMinor) / semiMajor
	return 2*f - f*f
}
