package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jobrunner/meridian/internal/domain"
	"github.com/jobrunner/meridian/internal/ports/output"
)

var (
	_ output.ObjectStorage = (*LocalStorage)(nil)
	_ output.ObjectStorage = (*S3Storage)(nil)
	_ output.ObjectStorage = (*AzureStorage)(nil)
	_ output.ObjectStorage = (*HTTPStorage)(nil)
)

// isCatalogKey reports whether key names a file a catalog reader can load.
func isCatalogKey(key string) bool {
	_, ok := domain.FormatForPath(key)
	return ok
}

// relativeKey strips the storage prefix from a remote key.
func relativeKey(prefix, key string) string {
	return strings.TrimPrefix(strings.TrimPrefix(key, prefix), "/")
}

// joinKey prefixes key for the remote store.
func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return strings.TrimSuffix(prefix, "/") + "/" + key
}

// writeFile streams r into dest through a temporary file in the same
// directory, so watchers never see a partially written catalog.
func writeFile(dest string, r io.Reader) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(dest), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, dest)
}

func storageError(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &domain.StorageError{Operation: op, Key: key, Err: err}
}
