package transform

import (
	"math"

	"github.com/jobrunner/meridian/internal/domain"
)

const hotineTolerance = 1e-7

// hotine is the Hotine oblique Mercator defined by a centre point and the
// azimuth of the central line. With naturalOrigin set, coordinates are
// measured from the natural origin rather than the projection centre.
type hotine struct {
	*base
	naturalOrigin    bool
	lonOrigin        float64
	bl, al, el       float64
	u                float64
	singam, cosgam   float64
	singrid, cosgrid float64
}

func newHotine(b *base, params *domain.ParameterSet, naturalOrigin bool) (*hotine, error) {
	alpha, err := degreesParam(params, "azimuth", "alpha")
	if err != nil {
		return nil, err
	}
	gamma := params.Optional("rectified_grid_angle", alpha*r2d, "gamma") * d2r

	h := &hotine{base: b, naturalOrigin: naturalOrigin}
	sinP20, cosP20 := math.Sincos(b.lat0)
	con := 1 - b.es*sinP20*sinP20
	com := math.Sqrt(1 - b.es)
	h.bl = math.Sqrt(1 + b.es*math.Pow(cosP20, 4)/(1-b.es))
	h.al = b.semiMajor * h.bl * b.scaleFactor * com / con

	d, f := 1.0, 1.0
	h.el = 1
	if math.Abs(b.lat0) >= epsln {
		ts := tsfnz(b.e, b.lat0, sinP20)
		con = math.Sqrt(con)
		d = h.bl * com / (cosP20 * con)
		f = d
		if d*d-1 > 0 {
			f = d + sign(b.lat0)*math.Sqrt(d*d-1)
		}
		h.el = f * math.Pow(ts, h.bl)
	}

	g := 0.5 * (f - 1/f)
	gama := asinz(math.Sin(alpha) / d)
	h.lonOrigin = b.lon0 - asinz(g*math.Tan(gama))/h.bl
	h.singam, h.cosgam = math.Sincos(gama)
	h.singrid, h.cosgrid = math.Sincos(gamma)

	cosaz := math.Cos(alpha)
	lat := math.Abs(b.lat0)
	if lat > epsln && math.Abs(lat-halfPi) > epsln && d*d-1 > 0 {
		h.u = sign(b.lat0) * (h.al / h.bl) * math.Atan(math.Sqrt(d*d-1)/cosaz)
	}
	return h, nil
}

func (h *hotine) forward(lam, phi float64) (float64, float64, bool) {
	dlon := adjustLon(lam - h.lonOrigin)
	vl := math.Sin(h.bl * dlon)

	var ul, us float64
	if math.Abs(math.Abs(phi)-halfPi) > epsln {
		q := h.el / math.Pow(tsfnz(h.e, phi, math.Sin(phi)), h.bl)
		s := 0.5 * (q - 1/q)
		t := 0.5 * (q + 1/q)
		ul = (s*h.singam - vl*h.cosgam) / t
		con := math.Cos(h.bl * dlon)
		if math.Abs(con) < hotineTolerance {
			us = h.al * h.bl * dlon
		} else {
			us = h.al * math.Atan((s*h.cosgam+vl*h.singam)/con) / h.bl
			if con < 0 {
				us += math.Pi * h.al / h.bl
			}
		}
	} else {
		ul = sign(phi) * h.singam
		us = h.al * phi / h.bl
	}
	if math.Abs(math.Abs(ul)-1) <= epsln {
		return 0, 0, false
	}

	vs := 0.5 * h.al * math.Log((1-ul)/(1+ul)) / h.bl
	if !h.naturalOrigin {
		us -= h.u
	}
	return vs*h.cosgrid + us*h.singrid, us*h.cosgrid - vs*h.singrid, true
}

func (h *hotine) inverse(x, y float64) (float64, float64, bool) {
	vs := x*h.cosgrid - y*h.singrid
	us := y*h.cosgrid + x*h.singrid
	if !h.naturalOrigin {
		us += h.u
	}

	q := math.Exp(-h.bl * vs / h.al)
	s := 0.5 * (q - 1/q)
	t := 0.5 * (q + 1/q)
	vl := math.Sin(h.bl * us / h.al)
	ul := (vl*h.cosgam + s*h.singam) / t
	if math.Abs(math.Abs(ul)-1) <= epsln {
		return h.lonOrigin, sign(ul) * halfPi, true
	}

	ts := math.Pow(h.el/math.Sqrt((1+ul)/(1-ul)), 1/h.bl)
	phi := phi2z(h.e, ts)
	lam := adjustLon(h.lonOrigin - math.Atan2(s*h.cosgam-vl*h.singam, math.Cos(h.bl*us/h.al))/h.bl)
	return lam, phi, true
}
