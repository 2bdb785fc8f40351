// Package transform implements the math transforms that move coordinates
// between coordinate systems: map projections, geocentric conversion,
// Bursa-Wolf datum shifts, prime meridian shifts and affine corrections.
//
// A point is a []float64 of two or three ordinates. Transforms never mutate
// their input. An empty result means the point is undefined for the
// transform; non-converging solvers yield NaN ordinates instead.
package transform

import (
	"context"
	"math"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/jobrunner/meridian/internal/domain"
)

// MathTransform maps points from a source to a target coordinate space.
type MathTransform interface {
	// DimSource returns the number of ordinates the transform reads.
	DimSource() int
	// DimTarget returns the number of ordinates the transform produces.
	DimTarget() int
	// IsIdentity returns true if the transform leaves every point unchanged.
	IsIdentity() bool
	// Transform maps one point. It returns an empty slice for undefined input.
	Transform(p []float64) []float64
	// TransformList maps each point, with the same per-point result as Transform.
	TransformList(points [][]float64) [][]float64
	// Inverse returns the inverse transform, building it once on first use.
	Inverse() (MathTransform, error)
	// Invert swaps the forward and backward sense in place.
	Invert()
	// Derivative returns the Jacobian at p.
	Derivative(p []float64) ([]float64, error)
	// CodomainConvexHull returns the convex hull of the image of points.
	CodomainConvexHull(points [][]float64) ([][]float64, error)
	// DomainFlags classifies points against the transform domain.
	DomainFlags(points [][]float64) (DomainFlags, error)
}

// DomainFlags describes where a set of points lies relative to a transform domain.
type DomainFlags int

// Domain flags.
const (
	DomainInside        DomainFlags = 1
	DomainOutside       DomainFlags = 2
	DomainDiscontinuous DomainFlags = 4
)

// Unsupported supplies the optional MathTransform queries, none of which
// are implemented by the transforms in this package.
type Unsupported struct{}

// Derivative is not implemented.
func (Unsupported) Derivative([]float64) ([]float64, error) {
	return nil, domain.ErrNotImplemented
}

// CodomainConvexHull is not implemented.
func (Unsupported) CodomainConvexHull([][]float64) ([][]float64, error) {
	return nil, domain.ErrNotImplemented
}

// DomainFlags is not implemented.
func (Unsupported) DomainFlags([][]float64) (DomainFlags, error) {
	return 0, domain.ErrNotImplemented
}

// TransformAll applies t to every point in order.
func TransformAll(t MathTransform, points [][]float64) [][]float64 {
	out := make([][]float64, len(points))
	for i, p := range points {
		out[i] = t.Transform(p)
	}
	return out
}

// batchChunk is the number of points handed to one worker at a time.
const batchChunk = 256

// TransformBatch transforms points concurrently with at most workers
// goroutines. Results are in input order. The direction of t must not be
// toggled while the batch runs.
func TransformBatch(ctx context.Context, t MathTransform, points [][]float64, workers int) ([][]float64, error) {
	if workers <= 1 || len(points) <= batchChunk {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return t.TransformList(points), nil
	}

	out := make([][]float64, len(points))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for start := 0; start < len(points); start += batchChunk {
		end := min(start+batchChunk, len(points))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				out[i] = t.Transform(points[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// TransformChecked transforms p and reports an undefined or non-converged
// result as ErrNoConvergence.
func TransformChecked(t MathTransform, p []float64) ([]float64, error) {
	out := t.Transform(p)
	if IsUndefined(out) {
		return out, domain.ErrNoConvergence
	}
	return out, nil
}

// IsUndefined returns true for the empty result or any NaN ordinate.
func IsUndefined(p []float64) bool {
	if len(p) == 0 {
		return true
	}
	for _, v := range p {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// pair is the state shared by a transform and its inverse: both sides,
// once built, and a single direction flag. Flipping the flag reverses
// both sides at once, so a vended inverse always stays the inverse.
type pair struct {
	mu      sync.Mutex
	flipped atomic.Bool
	sides   [2]MathTransform
}

// twin links one side of a pair. Side 0 is the transform as constructed.
type twin struct {
	p    *pair
	side int
}

func newTwin(self MathTransform) twin {
	p := &pair{}
	p.sides[0] = self
	return twin{p: p}
}

// partner returns the link for the opposite side of the same pair.
func (w twin) partner() twin {
	return twin{p: w.p, side: 1 - w.side}
}

// inverted reports whether this side currently runs backward.
func (w twin) inverted() bool {
	return (w.side == 1) != w.p.flipped.Load()
}

// Invert swaps the direction of this transform and of its inverse.
func (w twin) Invert() {
	w.p.mu.Lock()
	w.p.flipped.Store(!w.p.flipped.Load())
	w.p.mu.Unlock()
}

// inverse returns the opposite side, calling build the first time only.
func (w twin) inverse(build func(twin) MathTransform) MathTransform {
	w.p.mu.Lock()
	defer w.p.mu.Unlock()
	other := 1 - w.side
	if w.p.sides[other] == nil {
		w.p.sides[other] = build(w.partner())
	}
	return w.p.sides[other]
}

func cloneOrdinates(p []float64) []float64 {
	return append([]float64(nil), p...)
}

const (
	d2r = math.Pi / 180
	r2d = 180 / math.Pi
)
