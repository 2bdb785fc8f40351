package storage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/jobrunner/meridian/internal/domain"
)

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	files := map[string]string{
		"/index.txt":  "# catalogs\nepsg.gpkg\n\neurope.wkt\nreadme.md\nshapes/roads.prj\n",
		"/europe.wkt": "GEOGCS[]",
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "reader" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, found := files[r.URL.Path]
		if !found {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestHTTPStorage(srv *httptest.Server) *HTTPStorage {
	return NewHTTPStorage(HTTPConfig{BaseURL: srv.URL + "/", Username: "reader", Password: "secret"})
}

func TestHTTPStorageList(t *testing.T) {
	storage := newTestHTTPStorage(newCatalogServer(t))

	objects, err := storage.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := []string{"epsg.gpkg", "europe.wkt", "shapes/roads.prj"}
	if len(objects) != len(want) {
		t.Fatalf("len(objects) = %d, want %d", len(objects), len(want))
	}
	for i, obj := range objects {
		if obj.Key != want[i] {
			t.Errorf("objects[%d].Key = %q, want %q", i, obj.Key, want[i])
		}
	}
}

func TestHTTPStorageListUnauthorized(t *testing.T) {
	srv := newCatalogServer(t)
	storage := NewHTTPStorage(HTTPConfig{BaseURL: srv.URL})

	_, err := storage.List(context.Background())
	var storageErr *domain.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("List() error = %v, want StorageError", err)
	}
}

func TestHTTPStorageDownload(t *testing.T) {
	storage := newTestHTTPStorage(newCatalogServer(t))
	dest := filepath.Join(t.TempDir(), "europe.wkt")

	if err := storage.Download(context.Background(), "europe.wkt", dest); err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "GEOGCS[]" {
		t.Errorf("content = %q, want %q", data, "GEOGCS[]")
	}

	err = storage.Download(context.Background(), "missing.wkt", filepath.Join(t.TempDir(), "missing.wkt"))
	if err == nil {
		t.Error("Download(missing) expected error")
	}
}

func TestHTTPStorageExists(t *testing.T) {
	storage := newTestHTTPStorage(newCatalogServer(t))

	tests := []struct {
		key  string
		want bool
	}{
		{"europe.wkt", true},
		{"missing.wkt", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := storage.Exists(context.Background(), tt.key)
			if err != nil {
				t.Fatalf("Exists() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Exists(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}
