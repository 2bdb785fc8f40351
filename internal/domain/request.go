package domain

import "time"

// TransformRequest asks for coordinates to be converted between two CRSs.
// Source and Target are registry keys ("EPSG:4326") or CRS names.
type TransformRequest struct {
	Source      string       // Source CRS key
	Target      string       // Target CRS key
	Coordinates []Coordinate // Input positions
}

// TransformResponse carries the converted coordinates.
type TransformResponse struct {
	Source         string        // Resolved source key
	Target         string        // Resolved target key
	Operation      string        // Name of the compiled operation
	Coordinates    []Coordinate  // Output positions, in input order
	Undefined      []int         // Indices whose result is NaN or empty
	Bounds         Extent        // Extent of the defined outputs
	CacheHit       bool          // Operation came from the cache
	ProcessingTime time.Duration // Total processing time
}

// DefinedCount returns the number of outputs with a usable result.
func (r *TransformResponse) DefinedCount() int {
	return len(r.Coordinates) - len(r.Undefined)
}
