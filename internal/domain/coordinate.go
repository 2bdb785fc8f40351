// Package domain contains the core value objects of the CRS model: units,
// ellipsoids, datums, prime meridians, parameters, coordinates and catalogs.
package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coordinate represents a position with optional height. Whether X/Y mean
// lon/lat or easting/northing depends on the CRS it is expressed in.
type Coordinate struct {
	X    float64 // Longitude or Easting
	Y    float64 // Latitude or Northing
	Z    float64 // Height (optional)
	HasZ bool    // Z is meaningful
}

// NewCoordinate creates a 2D coordinate.
func NewCoordinate(x, y float64) Coordinate {
	return Coordinate{X: x, Y: y}
}

// NewCoordinate3D creates a coordinate with height.
func NewCoordinate3D(x, y, z float64) Coordinate {
	return Coordinate{X: x, Y: y, Z: z, HasZ: true}
}

// CoordinateFromOrdinates builds a coordinate from a transform result.
// It returns false for the empty "no result" marker.
func CoordinateFromOrdinates(p []float64) (Coordinate, bool) {
	switch {
	case len(p) >= 3:
		return NewCoordinate3D(p[0], p[1], p[2]), true
	case len(p) == 2:
		return NewCoordinate(p[0], p[1]), true
	default:
		return Coordinate{}, false
	}
}

// Ordinates returns the coordinate as a point slice for a MathTransform.
func (c Coordinate) Ordinates() []float64 {
	if c.HasZ {
		return []float64{c.X, c.Y, c.Z}
	}
	return []float64{c.X, c.Y}
}

// Validate checks that every ordinate is a finite number.
func (c Coordinate) Validate() error {
	for _, o := range []struct {
		field string
		v     float64
	}{{"x", c.X}, {"y", c.Y}, {"z", c.Z}} {
		if math.IsNaN(o.v) || math.IsInf(o.v, 0) {
			return &ValidationError{
				Field:      o.field,
				Value:      o.v,
				Constraint: "finite",
				Message:    o.field + " must be a finite number",
			}
		}
	}
	return nil
}

// ValidateGeographic checks lon/lat ranges in decimal degrees.
func (c Coordinate) ValidateGeographic() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.X < -180 || c.X > 180 {
		return &ValidationError{
			Field:      "longitude",
			Value:      c.X,
			Constraint: "[-180, 180]",
			Message:    "longitude must be between -180 and 180",
		}
	}
	if c.Y < -90 || c.Y > 90 {
		return &ValidationError{
			Field:      "latitude",
			Value:      c.Y,
			Constraint: "[-90, 90]",
			Message:    "latitude must be between -90 and 90",
		}
	}
	return nil
}

// IsUndefined returns true if any ordinate is NaN, which is how
// non-converging projections report failure.
func (c Coordinate) IsUndefined() bool {
	return math.IsNaN(c.X) || math.IsNaN(c.Y) || (c.HasZ && math.IsNaN(c.Z))
}

// String returns a string representation of the coordinate.
func (c Coordinate) String() string {
	if c.HasZ {
		return fmt.Sprintf("POINT Z(%f %f %f)", c.X, c.Y, c.Z)
	}
	return fmt.Sprintf("POINT(%f %f)", c.X, c.Y)
}

// Well-known CRS keys.
const (
	KeyWGS84           = "EPSG:4326"
	KeyWGS84Geocentric = "EPSG:4978"
	KeyWebMercator     = "EPSG:3857"
	KeyUTMNorthBase    = 32600
	KeyUTMSouthBase    = 32700
	DefaultAuthority   = "EPSG"
)

// ParseKey splits "AUTHORITY:CODE" into its parts. A bare number is taken as an EPSG code.
func ParseKey(key string) (string, int64, error) {
	key = strings.TrimSpace(key)
	authority, code, found := strings.Cut(key, ":")
	if !found {
		authority, code = DefaultAuthority, key
	}
	n, err := strconv.ParseInt(strings.TrimSpace(code), 10, 64)
	if err != nil || authority == "" {
		return "", 0, &ValidationError{
			Field:      "crs",
			Value:      key,
			Constraint: "AUTHORITY:CODE",
			Message:    "crs key must look like EPSG:4326",
		}
	}
	return strings.ToUpper(strings.TrimSpace(authority)), n, nil
}

// FormatKey renders "AUTHORITY:CODE".
func FormatKey(authority string, code int64) string {
	return fmt.Sprintf("%s:%d", strings.ToUpper(authority), code)
}

// Extent represents a bounding box.
type Extent struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// EmptyExtent returns an extent that any Expand call will replace.
func EmptyExtent() Extent {
	return Extent{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
}

// Expand grows the extent to include c. Undefined coordinates are skipped.
func (e *Extent) Expand(c Coordinate) {
	if c.IsUndefined() {
		return
	}
	e.MinX = math.Min(e.MinX, c.X)
	e.MinY = math.Min(e.MinY, c.Y)
	e.MaxX = math.Max(e.MaxX, c.X)
	e.MaxY = math.Max(e.MaxY, c.Y)
}

// Contains checks if a coordinate is within the extent.
func (e Extent) Contains(c Coordinate) bool {
	return c.X >= e.MinX && c.X <= e.MaxX && c.Y >= e.MinY && c.Y <= e.MaxY
}

// IsValid checks if the extent has valid dimensions.
func (e Extent) IsValid() bool {
	return e.MinX <= e.MaxX && e.MinY <= e.MaxY
}

// Width returns the width of the extent.
func (e Extent) Width() float64 {
	return math.Abs(e.MaxX - e.MinX)
}

// Height returns the height of the extent.
func (e Extent) Height() float64 {
	return math.Abs(e.MaxY - e.MinY)
}

// Center returns the center coordinate of the extent.
func (e Extent) Center() Coordinate {
	return Coordinate{
		X: (e.MinX + e.MaxX) / 2,
		Y: (e.MinY + e.MaxY) / 2,
	}
}
