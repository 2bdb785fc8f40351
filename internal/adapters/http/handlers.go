package http //nolint:revive // package name conflicts with stdlib but is acceptable in this context

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/jobrunner/meridian/internal/application"
	"github.com/jobrunner/meridian/internal/domain"
)

// handleHealth returns detailed health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	details := s.health.GetHealthDetails(r.Context())

	status := http.StatusOK
	if !details.Healthy {
		status = http.StatusServiceUnavailable
	}

	s.writeJSON(w, status, map[string]interface{}{
		"status":          boolToStatus(details.Healthy),
		"ready":           details.Ready,
		"catalogs_loaded": details.CatalogsLoaded,
		"catalogs_ready":  details.CatalogsReady,
		"definitions":     details.Definitions,
		"components":      details.Components,
		"catalogs":        s.catalogHealth(r),
	})
}

func (s *Server) catalogHealth(r *http.Request) []map[string]interface{} {
	health := s.health.GetCatalogHealth(r.Context())
	out := make([]map[string]interface{}, len(health))
	for i, h := range health {
		out[i] = map[string]interface{}{
			"id":          h.ID,
			"status":      h.Status,
			"ready":       h.Ready,
			"definitions": h.Definitions,
			"failed":      h.Failed,
		}
	}
	return out
}

// handleLiveness returns liveness status.
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	if s.health.IsHealthy(r.Context()) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	} else {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
	}
}

// handleReadiness returns readiness status.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if s.health.IsReady(r.Context()) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	} else {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
	}
}

// handleListCRS lists resolvable definitions. The optional q parameter
// filters by key or name; limit and offset page through the result.
func (s *Server) handleListCRS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(q.Get("limit"), 100)
	if err != nil || limit < 1 || limit > 1000 {
		s.writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
		return
	}
	offset, err := intParam(q.Get("offset"), 0)
	if err != nil || offset < 0 {
		s.writeError(w, http.StatusBadRequest, "offset must not be negative")
		return
	}

	defs, err := s.registry.ListDefinitions(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	filter := strings.ToLower(strings.TrimSpace(q.Get("q")))
	matched := make([]definitionJSON, 0, min(len(defs), limit))
	total := 0
	for i := range defs {
		d := &defs[i]
		if filter != "" &&
			!strings.Contains(strings.ToLower(d.Key()), filter) &&
			!strings.Contains(strings.ToLower(d.Name), filter) {
			continue
		}
		if total >= offset && len(matched) < limit {
			matched = append(matched, formatDefinition(d))
		}
		total++
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"definitions": matched,
		"count":       len(matched),
		"total":       total,
		"offset":      offset,
	})
}

// handleGetCRS returns one definition with a summary of its coordinate system.
func (s *Server) handleGetCRS(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	def, err := s.registry.GetDefinition(r.Context(), key)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	cs, err := s.registry.Resolve(r.Context(), key)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"definition": formatDefinition(def),
		"wkt":        def.WKT,
		"crs":        formatCRS(cs),
	})
}

// handleListCatalogs returns all registered catalogs.
func (s *Server) handleListCatalogs(w http.ResponseWriter, r *http.Request) {
	catalogs, err := s.registry.ListCatalogs(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	response := make([]catalogJSON, len(catalogs))
	for i := range catalogs {
		response[i] = formatCatalog(&catalogs[i])
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"catalogs": response,
		"count":    len(catalogs),
	})
}

// handleGetCatalog returns a catalog and the keys it defines.
func (s *Server) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	cat, err := s.registry.GetCatalog(r.Context(), mux.Vars(r)["catalogId"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	defs := make([]definitionJSON, len(cat.Definitions))
	for i := range cat.Definitions {
		defs[i] = formatDefinition(&cat.Definitions[i])
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"catalog":     formatCatalog(cat),
		"definitions": defs,
	})
}

// handleSync handles the sync trigger endpoint.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	result, err := s.syncService.TriggerSync(r.Context())
	if err != nil {
		if errors.Is(err, application.ErrRateLimited) {
			w.Header().Set("Retry-After", "30")
			s.writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Try again in 30 seconds.")
			return
		}
		s.logger.Error("sync failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Sync failed")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

// handleOpenAPI returns the OpenAPI specification.
func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	spec, err := getOpenAPIJSON()
	if err != nil {
		s.logger.Error("failed to get OpenAPI spec", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to load OpenAPI specification")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(spec)
}

func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

// statusForError maps service errors onto HTTP status codes.
func statusForError(err error) int {
	var (
		validationErr *domain.ValidationError
		parseErr      *domain.ParseError
		maxBytesErr   *http.MaxBytesError
	)
	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, application.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &validationErr), errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.As(err, &parseErr):
		// Well-formed WKT naming something this reader does not support.
		if errors.Is(err, domain.ErrUnsupported) {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnsupported):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes err with the status statusForError picks.
// Internal errors are logged and their text withheld.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError && status != http.StatusGatewayTimeout {
		s.logger.Error("request failed", "error", err)
		s.writeError(w, status, http.StatusText(status))
		return
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		s.writeJSON(w, status, map[string]interface{}{
			"error":   http.StatusText(status),
			"message": validationErr.Message,
			"field":   validationErr.Field,
		})
		return
	}
	s.writeError(w, status, err.Error())
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func boolToStatus(b bool) string {
	if b {
		return "ok"
	}
	return "unhealthy"
}
