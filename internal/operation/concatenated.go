package operation

import (
	"fmt"
	"slices"
	"sync"

	"github.com/jobrunner/meridian/internal/domain"
	"github.com/jobrunner/meridian/internal/transform"
)

// ConcatenatedTransform applies its stages left to right. An undefined
// result of one stage flows unchanged into the next.
type ConcatenatedTransform struct {
	transform.Unsupported

	mu      *sync.RWMutex // shared with the cached inverse
	stages  []*CoordinateTransformation
	inverse *ConcatenatedTransform
}

// NewConcatenated creates a pipeline over stages.
func NewConcatenated(stages ...*CoordinateTransformation) *ConcatenatedTransform {
	return &ConcatenatedTransform{mu: new(sync.RWMutex), stages: slices.Clone(stages)}
}

// Stages returns the current stage list.
func (c *ConcatenatedTransform) Stages() []*CoordinateTransformation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.stages)
}

// DimSource returns the dimension of the first stage's source.
func (c *ConcatenatedTransform) DimSource() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.stages) == 0 {
		return 0
	}
	first := c.stages[0]
	if first.Source != nil {
		return first.Source.Dimension()
	}
	return first.MathTransform.DimSource()
}

// DimTarget returns the dimension of the last stage's target.
func (c *ConcatenatedTransform) DimTarget() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.stages) == 0 {
		return 0
	}
	last := c.stages[len(c.stages)-1]
	if last.Target != nil {
		return last.Target.Dimension()
	}
	return last.MathTransform.DimTarget()
}

// IsIdentity returns true when every stage is the identity.
func (c *ConcatenatedTransform) IsIdentity() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.stages {
		if !s.MathTransform.IsIdentity() {
			return false
		}
	}
	return true
}

// Transform folds p through every stage.
func (c *ConcatenatedTransform) Transform(p []float64) []float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.stages) == 0 {
		return append([]float64(nil), p...)
	}
	out := p
	for _, s := range c.stages {
		out = s.MathTransform.Transform(out)
	}
	return out
}

// TransformList folds every point through the stages.
func (c *ConcatenatedTransform) TransformList(points [][]float64) [][]float64 {
	return transform.TransformAll(c, points)
}

// Invert reverses the stage order and inverts every stage in place. A
// cached inverse shares the stage transforms, so it is reordered too and
// stays the inverse of the receiver.
func (c *ConcatenatedTransform) Invert() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.stages {
		s.MathTransform.Invert()
	}
	c.reverse()
	if c.inverse != nil {
		c.inverse.reverse()
	}
}

// reverse flips the stage order and the endpoints of every stage record.
func (c *ConcatenatedTransform) reverse() {
	slices.Reverse(c.stages)
	for i, s := range c.stages {
		c.stages[i] = s.reversed(s.MathTransform)
	}
}

// Inverse returns a pipeline of the stage inverses in reverse order,
// built once. The receiver is not changed. It fails with ErrNoInverse
// when any stage has no inverse.
func (c *ConcatenatedTransform) Inverse() (transform.MathTransform, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inverse != nil {
		return c.inverse, nil
	}

	stages := make([]*CoordinateTransformation, len(c.stages))
	for i, s := range c.stages {
		inv, err := s.MathTransform.Inverse()
		if err != nil {
			return nil, fmt.Errorf("%w: stage %d (%s): %w", domain.ErrNoInverse, i, s.Name, err)
		}
		stages[len(c.stages)-1-i] = s.reversed(inv)
	}
	inv := &ConcatenatedTransform{mu: c.mu, stages: stages, inverse: c}
	c.inverse = inv
	return inv, nil
}
