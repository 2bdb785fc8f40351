// Package operation compiles pairs of coordinate systems into executable
// transformation pipelines.
package operation

import (
	"github.com/jobrunner/meridian/internal/crs"
	"github.com/jobrunner/meridian/internal/domain"
	"github.com/jobrunner/meridian/internal/transform"
)

// TransformType classifies a coordinate operation.
type TransformType int

// Operation types.
const (
	TransformOther TransformType = iota
	Conversion
	Transformation
	ConversionAndTransformation
)

func (t TransformType) String() string {
	switch t {
	case Conversion:
		return "conversion"
	case Transformation:
		return "transformation"
	case ConversionAndTransformation:
		return "conversion and transformation"
	default:
		return "other"
	}
}

// CoordinateTransformation is a math transform together with the systems
// it connects. Source and Target are nil for anonymous stages.
type CoordinateTransformation struct {
	domain.Info
	AreaOfUse     string
	Source        crs.CoordinateSystem
	Target        crs.CoordinateSystem
	Type          TransformType
	MathTransform transform.MathTransform
}

// Transform applies the math transform to one point.
func (c *CoordinateTransformation) Transform(p []float64) []float64 {
	return c.MathTransform.Transform(p)
}

// TransformList applies the math transform to every point.
func (c *CoordinateTransformation) TransformList(points [][]float64) [][]float64 {
	return c.MathTransform.TransformList(points)
}

// reversed returns a copy with source and target swapped around mt.
func (c *CoordinateTransformation) reversed(mt transform.MathTransform) *CoordinateTransformation {
	r := *c
	r.Source, r.Target = c.Target, c.Source
	r.MathTransform = mt
	return &r
}

func describe(cs crs.CoordinateSystem) string {
	if cs == nil {
		return ""
	}
	return cs.Description().Key()
}
