package http //nolint:revive // package name conflicts with stdlib but is acceptable in this context

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/paulmach/orb/geojson"

	"github.com/jobrunner/meridian/internal/domain"
)

type transformRequestJSON struct {
	Source      string      `json:"source"`
	Target      string      `json:"target"`
	Coordinates [][]float64 `json:"coordinates"`
}

// handleTransform converts a list of [x, y] or [x, y, z] positions.
func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	var body transformRequestJSON
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		s.writeBodyError(w, err)
		return
	}

	req := domain.TransformRequest{
		Source:      body.Source,
		Target:      body.Target,
		Coordinates: make([]domain.Coordinate, len(body.Coordinates)),
	}
	for i, p := range body.Coordinates {
		c, ok := domain.CoordinateFromOrdinates(p)
		if !ok {
			s.writeServiceError(w, &domain.ValidationError{
				Field:      fmt.Sprintf("coordinates[%d]", i),
				Value:      len(p),
				Constraint: "len=2|len=3",
				Message:    "a position needs two or three ordinates",
			})
			return
		}
		req.Coordinates[i] = c
	}

	resp, err := s.transform.Transform(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, formatTransformResponse(resp))
}

// handleTransformGeoJSON reprojects a FeatureCollection or a single
// Feature. Source and target come from the query string.
func (s *Server) handleTransformGeoJSON(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeBodyError(w, err)
		return
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		s.writeBodyError(w, err)
		return
	}

	var fc *geojson.FeatureCollection
	single := false
	switch head.Type {
	case "FeatureCollection":
		fc, err = geojson.UnmarshalFeatureCollection(data)
	case "Feature":
		var f *geojson.Feature
		if f, err = geojson.UnmarshalFeature(data); err == nil {
			fc = geojson.NewFeatureCollection().Append(f)
			single = true
		}
	default:
		s.writeError(w, http.StatusBadRequest, "body must be a GeoJSON Feature or FeatureCollection")
		return
	}
	if err != nil {
		s.writeBodyError(w, err)
		return
	}

	q := r.URL.Query()
	out, err := s.transform.TransformFeatures(r.Context(), q.Get("source"), q.Get("target"), fc)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	if single {
		_ = json.NewEncoder(w).Encode(out.Features[0])
		return
	}
	_ = json.NewEncoder(w).Encode(out)
}

// handleParseWKT parses a definition sent either as {"wkt": "..."} or as
// a text/plain body.
func (s *Server) handleParseWKT(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeBodyError(w, err)
		return
	}

	text := string(data)
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt != "text/plain" {
		var body struct {
			WKT string `json:"wkt"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			s.writeBodyError(w, err)
			return
		}
		text = body.WKT
	}

	cs, err := s.transform.ParseWKT(r.Context(), text)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"crs": formatCRS(cs),
		"wkt": strings.TrimSpace(text),
	})
}

// writeBodyError reports a request body that could not be read or decoded.
func (s *Server) writeBodyError(w http.ResponseWriter, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		s.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
}

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Meridian API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = function () {
      SwaggerUIBundle({ url: "/openapi.json", dom_id: "#swagger-ui" });
    };
  </script>
</body>
</html>
`

// handleSwaggerUI serves an interactive view of the OpenAPI document.
func (s *Server) handleSwaggerUI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, swaggerUIHTML)
}
