// Package output defines the secondary/driven ports of the application.
package output

import (
	"context"
	"io"
)

// ObjectStorage defines the secondary port for object storage operations.
type ObjectStorage interface {
	// List returns all catalog files (.gpkg, .wkt, .prj) in the storage.
	List(ctx context.Context) ([]StorageObject, error)

	// Download downloads a catalog file to the local filesystem.
	Download(ctx context.Context, key string, dest string) error

	// GetReader returns a reader for the given object.
	GetReader(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists checks if an object exists.
	Exists(ctx context.Context, key string) (bool, error)
}

// StorageObject is a catalog file in storage. Keys use forward slashes
// and are relative to the configured prefix.
type StorageObject struct {
	Key          string // Object key/path
	Size         int64  // Size in bytes
	LastModified int64  // Unix timestamp, 0 if unknown
	ETag         string // Content hash, if the backend has one
}

// StorageType names a storage backend.
type StorageType string

// Storage backends.
const (
	StorageTypeS3    StorageType = "s3"
	StorageTypeAzure StorageType = "azure"
	StorageTypeHTTP  StorageType = "http"
	StorageTypeLocal StorageType = "local"
)

// ParseStorageType validates a configured backend name.
func ParseStorageType(s string) (StorageType, bool) {
	switch t := StorageType(s); t {
	case StorageTypeS3, StorageTypeAzure, StorageTypeHTTP, StorageTypeLocal:
		return t, true
	}
	return "", false
}

// IsRemote reports whether catalogs must be downloaded before loading.
func (t StorageType) IsRemote() bool {
	return t != StorageTypeLocal
}
