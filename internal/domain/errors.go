package domain

import (
	"errors"
	"fmt"
)

// Base error types (sentinel errors).
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnsupported  = errors.New("unsupported operation")
	ErrInternal     = errors.New("internal error")
	ErrUnavailable  = errors.New("service unavailable")
)

// Specific errors.
var (
	ErrParse              = fmt.Errorf("wkt: %w", ErrInvalidInput)
	ErrConfiguration      = fmt.Errorf("configuration: %w", ErrInvalidInput)
	ErrInvalidCoordinate  = fmt.Errorf("coordinate: %w", ErrInvalidInput)
	ErrSingularMatrix     = fmt.Errorf("singular matrix: %w", ErrInvalidInput)
	ErrNotImplemented     = fmt.Errorf("not implemented: %w", ErrUnsupported)
	ErrNoTransformPath    = fmt.Errorf("no transformation path: %w", ErrUnsupported)
	ErrNoInverse          = fmt.Errorf("no inverse transform: %w", ErrUnsupported)
	ErrNoConvergence      = fmt.Errorf("no convergence: %w", ErrInternal)
	ErrDefinitionNotFound = fmt.Errorf("crs definition: %w", ErrNotFound)
	ErrCatalogNotFound    = fmt.Errorf("catalog: %w", ErrNotFound)
	ErrNotReady           = fmt.Errorf("service not ready: %w", ErrUnavailable)
	ErrStorageUnavailable = fmt.Errorf("storage: %w", ErrUnavailable)
)

// ValidationError represents a detailed validation error.
type ValidationError struct {
	Field      string      // Field that failed validation
	Value      interface{} // The invalid value
	Constraint string      // The constraint that was violated
	Message    string      // Human-readable message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v, constraint: %s)",
		e.Field, e.Message, e.Value, e.Constraint)
}

// Unwrap returns the underlying error type.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// ParseError reports a malformed or unsupported WKT definition.
type ParseError struct {
	Line    int    // 1-based line of the offending token
	Column  int    // 1-based column of the offending token
	Token   string // Offending token, if any
	Message string // Human-readable message
	Err     error  // ErrParse or ErrUnsupported
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("wkt parse error at line %d, column %d near %q: %s",
			e.Line, e.Column, e.Token, e.Message)
	}
	return fmt.Sprintf("wkt parse error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	if e.Err == nil {
		return ErrParse
	}
	return e.Err
}

// TransformError represents a failure to build or run a coordinate operation.
type TransformError struct {
	Source string // Source CRS key or name
	Target string // Target CRS key or name
	Err    error  // Underlying error
}

// Error implements the error interface.
func (e *TransformError) Error() string {
	return fmt.Sprintf("transform error from %s to %s: %v", e.Source, e.Target, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransformError) Unwrap() error {
	return e.Err
}

// StorageError represents an error during storage operations.
type StorageError struct {
	Operation string // Operation that failed (download, list, etc.)
	Key       string // Object key
	Err       error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage error during %s for %s: %v",
			e.Operation, e.Key, e.Err)
	}
	return fmt.Sprintf("storage error during %s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// CatalogError represents an error while reading CRS definitions from a catalog.
type CatalogError struct {
	CatalogID  string // Catalog identifier
	Definition string // Definition key, if known
	Err        error  // Underlying error
}

// Error implements the error interface.
func (e *CatalogError) Error() string {
	if e.Definition != "" {
		return fmt.Sprintf("catalog error in %s, definition %s: %v",
			e.CatalogID, e.Definition, e.Err)
	}
	return fmt.Sprintf("catalog error in %s: %v", e.CatalogID, e.Err)
}

// Unwrap returns the underlying error.
func (e *CatalogError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error: a missing projection
// parameter, an invalid constructor argument or a bad setting.
type ConfigError struct {
	Field   string // Configuration field
	Message string // Error message
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error for %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}
