package transform

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/jobrunner/meridian/internal/domain"
)

// AffineTransform applies an augmented (N+1)×(M+1) matrix to M source
// ordinates and yields N target ordinates. Ordinates beyond M pass through.
type AffineTransform struct {
	twin
	Unsupported

	forward *mat.Dense
	back    *mat.Dense // nil for a non-square matrix
}

// NewAffine creates an affine transform from a row-major augmented matrix.
// A square matrix must be invertible.
func NewAffine(matrix [][]float64) (*AffineTransform, error) {
	rows := len(matrix)
	if rows < 1 || len(matrix[0]) < 1 {
		return nil, &domain.ConfigError{Field: "matrix", Message: "matrix must not be empty"}
	}
	cols := len(matrix[0])
	data := make([]float64, 0, rows*cols)
	for i, row := range matrix {
		if len(row) != cols {
			return nil, &domain.ConfigError{Field: "matrix", Message: fmt.Sprintf("row %d has %d columns, want %d", i, len(row), cols)}
		}
		data = append(data, row...)
	}

	a := &AffineTransform{forward: mat.NewDense(rows, cols, data)}
	if rows == cols {
		var inv mat.Dense
		if err := inv.Inverse(a.forward); err != nil {
			return nil, fmt.Errorf("affine %dx%d: %w", rows, cols, domain.ErrSingularMatrix)
		}
		a.back = &inv
	}
	a.twin = newTwin(a)
	return a, nil
}

// NewAffine2D creates the planar transform
//
//	x' = m00·x + m01·y + m02
//	y' = m10·x + m11·y + m12
//
// It fails with ErrSingularMatrix when the linear part has no inverse.
func NewAffine2D(m00, m01, m02, m10, m11, m12 float64) (*AffineTransform, error) {
	return NewAffine([][]float64{
		{m00, m01, m02},
		{m10, m11, m12},
		{0, 0, 1},
	})
}

// NewIdentity returns the identity affine transform of the given dimension.
func NewIdentity(dim int) *AffineTransform {
	m := make([][]float64, dim+1)
	for i := range m {
		m[i] = make([]float64, dim+1)
		m[i][i] = 1
	}
	a, _ := NewAffine(m)
	return a
}

func (a *AffineTransform) current() *mat.Dense {
	if a.inverted() {
		return a.back
	}
	return a.forward
}

// Matrix returns a copy of the matrix for the current direction, or nil
// when that direction does not exist.
func (a *AffineTransform) Matrix() [][]float64 {
	m := a.current()
	if m == nil {
		return nil
	}
	rows, _ := m.Dims()
	out := make([][]float64, rows)
	for i := range out {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}

// DimSource returns the number of columns minus one.
func (a *AffineTransform) DimSource() int {
	_, cols := a.forward.Dims()
	if a.inverted() {
		rows, _ := a.forward.Dims()
		return rows - 1
	}
	return cols - 1
}

// DimTarget returns the number of rows minus one.
func (a *AffineTransform) DimTarget() int {
	rows, _ := a.forward.Dims()
	if a.inverted() {
		_, cols := a.forward.Dims()
		return cols - 1
	}
	return rows - 1
}

// IsIdentity returns true for a square identity matrix.
func (a *AffineTransform) IsIdentity() bool {
	rows, cols := a.forward.Dims()
	if rows != cols {
		return false
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			if a.forward.At(i, j) != want {
				return false
			}
		}
	}
	return true
}

// Transform applies the matrix to one point.
func (a *AffineTransform) Transform(p []float64) []float64 {
	m := a.current()
	if m == nil {
		return []float64{}
	}
	rows, cols := m.Dims()
	dimSource := cols - 1
	if len(p) < dimSource {
		return []float64{}
	}
	out := make([]float64, rows-1, rows-1+len(p)-dimSource)
	for i := 0; i < rows-1; i++ {
		v := m.At(i, dimSource)
		for j := 0; j < dimSource; j++ {
			v += m.At(i, j) * p[j]
		}
		out[i] = v
	}
	return append(out, p[dimSource:]...)
}

// TransformList applies the matrix to every point.
func (a *AffineTransform) TransformList(points [][]float64) [][]float64 {
	return TransformAll(a, points)
}

// Inverse returns the transform of the inverse matrix. It fails with
// ErrSingularMatrix when the matrix is not invertible.
func (a *AffineTransform) Inverse() (MathTransform, error) {
	if a.back == nil {
		return nil, fmt.Errorf("affine inverse: %w", domain.ErrSingularMatrix)
	}
	return a.inverse(func(w twin) MathTransform {
		inv := *a
		inv.twin = w
		return &inv
	}), nil
}

// Invert swaps direction. An inverted non-square matrix has no inverse
// to apply, so Transform returns an empty result until it is inverted back.
func (a *AffineTransform) Invert() {
	a.twin.Invert()
}

// Derivative returns the linear part of the matrix, row-major. It is the
// same at every point.
func (a *AffineTransform) Derivative([]float64) ([]float64, error) {
	m := a.current()
	if m == nil {
		return nil, fmt.Errorf("affine derivative: %w", domain.ErrSingularMatrix)
	}
	rows, cols := m.Dims()
	out := make([]float64, 0, (rows-1)*(cols-1))
	for i := 0; i < rows-1; i++ {
		for j := 0; j < cols-1; j++ {
			out = append(out, m.At(i, j))
		}
	}
	return out, nil
}
