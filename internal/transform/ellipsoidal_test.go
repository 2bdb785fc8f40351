package transform

import (
	"math"
	"testing"
)

func TestAdjustLon(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"inside", 1, 1},
		{"pi", math.Pi, math.Pi},
		{"just over pi", math.Pi + 0.5, -math.Pi + 0.5},
		{"just under -pi", -math.Pi - 0.5, math.Pi - 0.5},
		{"several turns", 7*twoPi + 0.25, 0.25},
		{"negative turns", -5*twoPi - 0.25, -0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adjustLon(tt.in); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("adjustLon(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMeridianDistanceInverts(t *testing.T) {
	m := newMeridian(eccentricitySquared(wgs84A, wgs84B))
	for _, deg := range []float64{-80, -45, -1, 0, 10, 52.5, 89} {
		phi := deg * d2r
		arc := m.mlfn(phi, math.Sin(phi), math.Cos(phi))
		if got := m.invMlfn(arc); math.Abs(got-phi) > 1e-11 {
			t.Errorf("invMlfn(mlfn(%v°)) = %v, want %v", deg, got, phi)
		}
	}
}

func TestMeridianQuadrant(t *testing.T) {
	m := newMeridian(eccentricitySquared(wgs84A, wgs84B))
	got := m.mlfn(halfPi, 1, 0) * wgs84A
	if math.Abs(got-10001965.729) > 0.01 {
		t.Errorf("quarter meridian = %.3f, want 10001965.729", got)
	}
}

func TestEccentricitySquared(t *testing.T) {
	if got := eccentricitySquared(wgs84A, wgs84B); math.Abs(got-0.00669437999014) > 1e-12 {
		t.Errorf("es = %v", got)
	}
	if got := eccentricitySquared(1, 1); got != 0 {
		t.Errorf("sphere es = %v, want 0", got)
	}
}

func TestConformalLatitudeHelpers(t *testing.T) {
	e := math.Sqrt(eccentricitySquared(wgs84A, wgs84B))
	for _, deg := range []float64{-60, -10, 15, 45, 75} {
		phi := deg * d2r
		ts := tsfnz(e, phi, math.Sin(phi))
		if got := phi2z(e, ts); math.Abs(got-phi) > 1e-9 {
			t.Errorf("phi2z(tsfnz(%v°)) = %v, want %v", deg, got, phi)
		}
		qs := qsfnz(e, math.Sin(phi))
		if got := phi1z(e, qs); math.Abs(got-phi) > 1e-6 {
			t.Errorf("phi1z(qsfnz(%v°)) = %v, want %v", deg, got, phi)
		}
	}
}

func TestAsinzClamps(t *testing.T) {
	if got := asinz(1.0000001); got != halfPi {
		t.Errorf("asinz(>1) = %v", got)
	}
	if got := asinz(-2); got != -halfPi {
		t.Errorf("asinz(-2) = %v", got)
	}
}
