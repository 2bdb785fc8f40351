package output

import "github.com/jobrunner/meridian/internal/operation"

// OperationCache defines the secondary port for caching compiled
// coordinate operations.
type OperationCache interface {
	// Get returns the cached operation for key.
	Get(key string) (*operation.CoordinateTransformation, bool)

	// Set stores an operation under key.
	Set(key string, ct *operation.CoordinateTransformation)

	// Purge drops every cached operation.
	Purge()

	// Len returns the number of cached operations.
	Len() int
}
