package transform

import (
	"errors"
	"math"
	"testing"

	"github.com/jobrunner/meridian/internal/domain"
)

func affine2D(t testing.TB, m00, m01, m02, m10, m11, m12 float64) *AffineTransform {
	t.Helper()
	a, err := NewAffine2D(m00, m01, m02, m10, m11, m12)
	if err != nil {
		t.Fatalf("NewAffine2D() error = %v", err)
	}
	return a
}

func TestAffineIdentity(t *testing.T) {
	id := NewIdentity(2)
	if !id.IsIdentity() {
		t.Error("IsIdentity() = false for identity")
	}
	got := id.Transform([]float64{3, 4, 5})
	if len(got) != 3 || got[0] != 3 || got[1] != 4 || got[2] != 5 {
		t.Errorf("Transform() = %v, want [3 4 5]", got)
	}
	if affine2D(t, 1, 0, 1, 0, 1, 0).IsIdentity() {
		t.Error("translation should not be identity")
	}
}

func TestAffine2D(t *testing.T) {
	a := affine2D(t, 2, 0, 10, 0, 3, -5)

	tests := []struct {
		in   []float64
		want []float64
	}{
		{[]float64{0, 0}, []float64{10, -5}},
		{[]float64{1, 1}, []float64{12, -2}},
		{[]float64{-5, 2}, []float64{0, 1}},
	}
	for _, tt := range tests {
		got := a.Transform(tt.in)
		if got[0] != tt.want[0] || got[1] != tt.want[1] {
			t.Errorf("Transform(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}

	inv, err := a.Inverse()
	if err != nil {
		t.Fatalf("Inverse() error = %v", err)
	}
	back := inv.Transform([]float64{12, -2})
	if math.Abs(back[0]-1) > 1e-12 || math.Abs(back[1]-1) > 1e-12 {
		t.Errorf("inverse Transform = %v, want [1 1]", back)
	}
	again, _ := inv.Inverse()
	if again != MathTransform(a) {
		t.Error("Inverse().Inverse() should be the original")
	}
}

func TestAffineInvertInPlace(t *testing.T) {
	a := affine2D(t, 1, 0, 100, 0, 1, 200)
	a.Invert()
	got := a.Transform([]float64{100, 200})
	if math.Abs(got[0]) > 1e-12 || math.Abs(got[1]) > 1e-12 {
		t.Errorf("Transform() after Invert = %v, want [0 0]", got)
	}
	m := a.Matrix()
	if m[0][2] != -100 || m[1][2] != -200 {
		t.Errorf("Matrix() = %v", m)
	}
}

func TestAffineSingular(t *testing.T) {
	tests := []struct {
		name   string
		matrix [][]float64
	}{
		{"collinear rows", [][]float64{{1, 2, 0}, {2, 4, 0}, {0, 0, 1}}},
		{"zero scale", [][]float64{{0, 0, 5}, {0, 1, 0}, {0, 0, 1}}},
		{"zero homogeneous row", [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAffine(tt.matrix)
			if !errors.Is(err, domain.ErrSingularMatrix) || a != nil {
				t.Errorf("NewAffine() = %v, %v, want ErrSingularMatrix", a, err)
			}
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Error("singular matrix should be invalid input")
			}
		})
	}

	if _, err := NewAffine2D(1, 2, 0, 2, 4, 0); !errors.Is(err, domain.ErrSingularMatrix) {
		t.Errorf("NewAffine2D() error = %v, want ErrSingularMatrix", err)
	}
}

func TestAffineInvertNonSquare(t *testing.T) {
	a, err := NewAffine([][]float64{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	a.Invert()
	if got := a.Transform([]float64{1, 2}); len(got) != 0 {
		t.Errorf("inverted non-square Transform() = %v, want empty", got)
	}
	if a.Matrix() != nil {
		t.Errorf("inverted non-square Matrix() = %v, want nil", a.Matrix())
	}
	if _, err := a.Derivative(nil); !errors.Is(err, domain.ErrSingularMatrix) {
		t.Errorf("Derivative() error = %v", err)
	}

	a.Invert()
	if got := a.Transform([]float64{1, 2, 3}); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Transform() after second Invert = %v, want [1 2]", got)
	}
}

func TestAffineDimensions(t *testing.T) {
	a, err := NewAffine([][]float64{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	if a.DimSource() != 3 || a.DimTarget() != 2 {
		t.Errorf("dims = %d -> %d, want 3 -> 2", a.DimSource(), a.DimTarget())
	}
	if _, err := a.Inverse(); !errors.Is(err, domain.ErrSingularMatrix) {
		t.Errorf("non-square Inverse() error = %v", err)
	}
	got := a.Transform([]float64{1, 2, 3})
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Transform() = %v, want [1 2]", got)
	}
	if got := a.Transform([]float64{1, 2}); len(got) != 0 {
		t.Errorf("short point = %v, want empty", got)
	}
}

func TestNewAffineRejectsRaggedMatrix(t *testing.T) {
	_, err := NewAffine([][]float64{{1, 0}, {0}})
	var cfgErr *domain.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("error = %v, want *ConfigError", err)
	}
	if _, err := NewAffine(nil); !errors.As(err, &cfgErr) {
		t.Errorf("empty matrix error = %v", err)
	}
}

func TestAffineDerivative(t *testing.T) {
	d, err := affine2D(t, 2, 3, 9, 4, 5, 9).Derivative(nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{2, 3, 4, 5}
	for i := range want {
		if d[i] != want[i] {
			t.Fatalf("Derivative() = %v, want %v", d, want)
		}
	}
}
