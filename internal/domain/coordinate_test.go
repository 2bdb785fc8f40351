package domain

import (
	"errors"
	"math"
	"testing"
)

func TestCoordinateValidate(t *testing.T) {
	tests := []struct {
		name    string
		coord   Coordinate
		wantErr bool
	}{
		{"finite 2D", NewCoordinate(500000, 5500000), false},
		{"finite 3D", NewCoordinate3D(1, 2, 3), false},
		{"NaN x", NewCoordinate(math.NaN(), 0), true},
		{"infinite y", NewCoordinate(0, math.Inf(1)), true},
		{"infinite z", NewCoordinate3D(0, 0, math.Inf(-1)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.coord.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Validate() error should wrap ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestCoordinateValidateGeographic(t *testing.T) {
	tests := []struct {
		name    string
		coord   Coordinate
		wantErr bool
	}{
		{"valid", NewCoordinate(7.5, 51.5), false},
		{"date line", NewCoordinate(180, 0), false},
		{"pole", NewCoordinate(0, -90), false},
		{"longitude too large", NewCoordinate(180.1, 0), true},
		{"latitude too small", NewCoordinate(0, -90.5), true},
		{"NaN", NewCoordinate(math.NaN(), 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.coord.ValidateGeographic()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGeographic() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCoordinateOrdinates(t *testing.T) {
	if got := NewCoordinate(1, 2).Ordinates(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Ordinates() = %v, want [1 2]", got)
	}
	if got := NewCoordinate3D(1, 2, 3).Ordinates(); len(got) != 3 || got[2] != 3 {
		t.Errorf("Ordinates() = %v, want [1 2 3]", got)
	}
}

func TestCoordinateFromOrdinates(t *testing.T) {
	tests := []struct {
		name   string
		in     []float64
		want   Coordinate
		wantOK bool
	}{
		{"2D", []float64{1, 2}, NewCoordinate(1, 2), true},
		{"3D", []float64{1, 2, 3}, NewCoordinate3D(1, 2, 3), true},
		{"empty marker", []float64{}, Coordinate{}, false},
		{"nil", nil, Coordinate{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CoordinateFromOrdinates(tt.in)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("CoordinateFromOrdinates(%v) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCoordinateIsUndefined(t *testing.T) {
	if NewCoordinate(1, 2).IsUndefined() {
		t.Error("finite coordinate reported undefined")
	}
	if !NewCoordinate(math.NaN(), math.NaN()).IsUndefined() {
		t.Error("NaN coordinate not reported undefined")
	}
	if !NewCoordinate3D(0, 0, math.NaN()).IsUndefined() {
		t.Error("NaN height not reported undefined")
	}
}

func TestCoordinateString(t *testing.T) {
	if got, want := NewCoordinate(1, 2).String(), "POINT(1.000000 2.000000)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := NewCoordinate3D(1, 2, 3).String(), "POINT Z(1.000000 2.000000 3.000000)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		key           string
		wantAuthority string
		wantCode      int64
		wantErr       bool
	}{
		{"EPSG:4326", "EPSG", 4326, false},
		{"epsg:3857", "EPSG", 3857, false},
		{" 32632 ", "EPSG", 32632, false},
		{"ESRI: 102100", "ESRI", 102100, false},
		{"EPSG:abc", "", 0, true},
		{":4326", "", 0, true},
		{"", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			authority, code, err := ParseKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
			if authority != tt.wantAuthority || code != tt.wantCode {
				t.Errorf("ParseKey(%q) = (%q, %d), want (%q, %d)", tt.key, authority, code, tt.wantAuthority, tt.wantCode)
			}
		})
	}
}

func TestFormatKey(t *testing.T) {
	if got := FormatKey("epsg", 4326); got != KeyWGS84 {
		t.Errorf("FormatKey() = %q, want %q", got, KeyWGS84)
	}
}

func TestExtent(t *testing.T) {
	e := EmptyExtent()
	if e.IsValid() {
		t.Error("empty extent should not be valid")
	}

	e.Expand(NewCoordinate(10, 20))
	e.Expand(NewCoordinate(-5, 40))
	e.Expand(NewCoordinate(math.NaN(), 1000))

	want := Extent{MinX: -5, MinY: 20, MaxX: 10, MaxY: 40}
	if e != want {
		t.Fatalf("Expand() = %+v, want %+v", e, want)
	}
	if !e.IsValid() {
		t.Error("IsValid() = false after expanding")
	}
	if e.Width() != 15 || e.Height() != 20 {
		t.Errorf("Width/Height = %v/%v, want 15/20", e.Width(), e.Height())
	}
	if c := e.Center(); c.X != 2.5 || c.Y != 30 {
		t.Errorf("Center() = %v, want (2.5, 30)", c)
	}

	tests := []struct {
		name  string
		coord Coordinate
		want  bool
	}{
		{"inside", NewCoordinate(0, 30), true},
		{"on edge", NewCoordinate(10, 20), true},
		{"outside", NewCoordinate(11, 30), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Contains(tt.coord); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.coord, got, tt.want)
			}
		})
	}
}
