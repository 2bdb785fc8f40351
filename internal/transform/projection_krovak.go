package transform

import (
	"math"

	"github.com/jobrunner/meridian/internal/domain"
)

const (
	s45             = 0.785398163397448
	krovakMaxIter   = 15
	krovakTolerance = 1e-11
)

// krovak is the Krovak oblique conformal conic, with south-west oriented
// axes as used for S-JTSK.
type krovak struct {
	*base
	sinAz, cosAz float64
	n            float64
	tanS2        float64
	alfa         float64
	hae          float64
	k1           float64
	ka           float64
	ro0          float64
	rop          float64
}

func newKrovak(b *base, params *domain.ParameterSet) (*krovak, error) {
	az, err := degreesParam(params, "azimuth")
	if err != nil {
		return nil, err
	}
	psp, err := degreesParam(params, "pseudo_standard_parallel_1")
	if err != nil {
		return nil, err
	}

	k := &krovak{base: b}
	k.sinAz, k.cosAz = math.Sincos(az)
	k.n = math.Sin(psp)
	k.tanS2 = math.Tan(psp/2 + s45)

	sinLat, cosLat := math.Sincos(b.lat0)
	k.alfa = math.Sqrt(1 + b.es*math.Pow(cosLat, 4)/(1-b.es))
	k.hae = k.alfa * b.e / 2
	u0 := math.Asin(sinLat / k.alfa)
	g := math.Pow((1-b.e*sinLat)/(1+b.e*sinLat), k.alfa*b.e/2)
	k.k1 = math.Pow(math.Tan(b.lat0/2+s45), k.alfa) * g / math.Tan(u0/2+s45)
	k.ka = math.Pow(1/k.k1, -1/k.alfa)
	n0 := math.Sqrt(1-b.es) / (1 - b.es*sinLat*sinLat)
	k.ro0 = b.scaleFactor * n0 / math.Tan(psp)
	k.rop = k.ro0 * math.Pow(k.tanS2, k.n)
	return k, nil
}

func (k *krovak) forward(lam, phi float64) (float64, float64, bool) {
	sinPhi := math.Sin(phi)
	gfi := math.Pow((1-k.e*sinPhi)/(1+k.e*sinPhi), k.hae)
	u := 2 * (math.Atan(math.Pow(math.Tan(phi/2+s45), k.alfa)/k.k1*gfi) - s45)
	dv := -(lam - k.lon0) * k.alfa
	s := math.Asin(k.cosAz*math.Sin(u) + k.sinAz*math.Cos(u)*math.Cos(dv))
	d := math.Asin(math.Cos(u) * math.Sin(dv) / math.Cos(s))
	eps := k.n * d
	ro := k.rop / math.Pow(math.Tan(s/2+s45), k.n)
	return -ro * math.Sin(eps) * k.semiMajor, -ro * math.Cos(eps) * k.semiMajor, true
}

func (k *krovak) inverse(x, y float64) (float64, float64, bool) {
	x /= k.semiMajor
	y /= k.semiMajor
	ro := math.Sqrt(x*x + y*y)
	eps := math.Atan2(-x, -y)
	d := eps / k.n
	s := 2 * (math.Atan(math.Pow(k.ro0/ro, 1/k.n)*k.tanS2) - s45)
	u := math.Asin(k.cosAz*math.Sin(s) - k.sinAz*math.Cos(s)*math.Cos(d))
	kau := k.ka * math.Pow(math.Tan(u/2+s45), 1/k.alfa)
	dv := math.Asin(math.Cos(s) * math.Sin(d) / math.Cos(u))
	lam := -dv/k.alfa + k.lon0

	phi := u
	for i := 0; i < krovakMaxIter; i++ {
		sinPhi := math.Sin(phi)
		next := 2 * (math.Atan(kau*math.Pow((1+k.e*sinPhi)/(1-k.e*sinPhi), k.e/2)) - s45)
		if math.Abs(next-phi) < krovakTolerance {
			return lam, next, true
		}
		phi = next
	}
	return lam, math.NaN(), true
}
