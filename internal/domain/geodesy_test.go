package domain

import (
	"math"
	"testing"
)

func TestNewEllipsoidDerivesSemiMinor(t *testing.T) {
	tests := []struct {
		name      string
		ellipsoid Ellipsoid
		wantMinor float64
	}{
		{"WGS 84", EllipsoidWGS84(), 6356752.314245179},
		{"GRS 80", EllipsoidGRS80(), 6356752.314140356},
		{"Clarke 1866 keeps minor", EllipsoidClarke1866(), 6356583.8},
		{"sphere", EllipsoidSphere(), 6370997},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.ellipsoid.SemiMinorAxis-tt.wantMinor) > 1e-6 {
				t.Errorf("SemiMinorAxis = %.9f, want %.9f", tt.ellipsoid.SemiMinorAxis, tt.wantMinor)
			}
		})
	}
}

func TestEllipsoidMeters(t *testing.T) {
	e := EllipsoidClarke1880()
	if got := e.SemiMajorMeters(); math.Abs(got-6378249.145) > 0.01 {
		t.Errorf("SemiMajorMeters() = %v, want ~6378249.145", got)
	}
}

func TestEllipsoidEqualParamsIgnoresInfo(t *testing.T) {
	a := EllipsoidWGS84()
	b := a
	b.Name = "renamed"
	b.AuthorityCode = NoAuthorityCode

	if !a.EqualParams(b) {
		t.Error("metadata should not affect EqualParams")
	}
	if a.EqualParams(EllipsoidGRS80()) {
		t.Error("WGS 84 and GRS 80 should differ")
	}
}

func TestAngularUnitConversion(t *testing.T) {
	deg := Degrees()
	if got := deg.ToRadians(180); math.Abs(got-math.Pi) > 1e-15 {
		t.Errorf("ToRadians(180) = %v", got)
	}
	if got := deg.FromRadians(math.Pi / 2); math.Abs(got-90) > 1e-12 {
		t.Errorf("FromRadians(pi/2) = %v", got)
	}
	if !Grad().EqualParams(Gon()) {
		t.Error("grad and gon should be equal by parameters")
	}
	if Degrees().EqualParams(Radian()) {
		t.Error("degree and radian should differ")
	}
}

func TestLinearUnitEqualParams(t *testing.T) {
	if Foot().EqualParams(USSurveyFoot()) {
		t.Error("international and survey foot should differ")
	}
	m := Metre()
	m.Name = "meter"
	if !m.EqualParams(Metre()) {
		t.Error("metadata should not affect EqualParams")
	}
}

func TestWgs84ConversionInfo(t *testing.T) {
	zero := &Wgs84ConversionInfo{}
	if !zero.HasZeroValuesOnly() {
		t.Error("zero shift should report HasZeroValuesOnly")
	}

	w := NewWgs84ConversionInfo(1, 2, 3, 1, 1, 1, 1)
	a := w.AffineTransform()
	if math.Abs(a[0]-1.000001) > 1e-15 {
		t.Errorf("scale = %v, want 1.000001", a[0])
	}
	wantRot := math.Pi / (180 * 3600) * 1.000001
	if math.Abs(a[1]-wantRot) > 1e-18 {
		t.Errorf("rotation = %v, want %v", a[1], wantRot)
	}
	if a[4] != 1 || a[5] != 2 || a[6] != 3 {
		t.Errorf("translation = %v", a[4:])
	}

	var nilInfo *Wgs84ConversionInfo
	if nilInfo.Equal(w) || w.Equal(nil) {
		t.Error("nil shift should never be equal")
	}
	if got, want := w.String(), "TOWGS84[1, 2, 3, 1, 1, 1, 1]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestHorizontalDatumEqualParams(t *testing.T) {
	tests := []struct {
		name string
		a, b HorizontalDatum
		want bool
	}{
		{"same", DatumWGS84(), DatumWGS84(), true},
		{"different ellipsoid", DatumWGS84(), DatumWGS72(), false},
		{"shift on one side", DatumED50(), func() HorizontalDatum { d := DatumED50(); d.Wgs84 = nil; return d }(), false},
		{"same shift", DatumED50(), DatumED50(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.EqualParams(tt.b); got != tt.want {
				t.Errorf("EqualParams() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHorizontalDatumHasShift(t *testing.T) {
	if DatumWGS84().HasShift() {
		t.Error("WGS 84 has no shift")
	}
	if DatumETRF89().HasShift() {
		t.Error("zero shift should not count")
	}
	if !DatumED50().HasShift() {
		t.Error("ED50 has a shift")
	}
	if !DatumClassic.IsHorizontal() || DatumType(2005).IsHorizontal() {
		t.Error("IsHorizontal() mismatch")
	}
}

func TestPrimeMeridian(t *testing.T) {
	paris := NewPrimeMeridian(2.5969213, Grad(), Info{Name: "Paris"})
	if got := paris.Degrees(); math.Abs(got-2.33722917) > 1e-6 {
		t.Errorf("Degrees() = %v, want ~2.33722917", got)
	}
	if Greenwich().Radians() != 0 {
		t.Error("Greenwich should be zero")
	}
	if Greenwich().EqualParams(Oslo()) {
		t.Error("Greenwich and Oslo should differ")
	}
}

func TestAxisOrientation(t *testing.T) {
	tests := []struct {
		in     string
		want   AxisOrientation
		wantOK bool
	}{
		{"NORTH", AxisNorth, true},
		{"east", AxisEast, true},
		{" Up ", AxisUp, true},
		{"sideways", AxisOther, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAxisOrientation(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseAxisOrientation(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}

	if AxisOrientation(42).String() != "OTHER" {
		t.Error("out of range orientation should print OTHER")
	}
}

func TestInfoKey(t *testing.T) {
	if got := NewInfo("WGS 84", "EPSG", 4326).Key(); got != "EPSG:4326" {
		t.Errorf("Key() = %q", got)
	}
	if got := NewInfo("local", "", NoAuthorityCode).Key(); got != "local" {
		t.Errorf("Key() = %q", got)
	}
}
