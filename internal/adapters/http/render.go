package http //nolint:revive // package name conflicts with stdlib but is acceptable in this context

import (
	"math"
	"time"

	"github.com/jobrunner/meridian/internal/crs"
	"github.com/jobrunner/meridian/internal/domain"
)

// number returns nil for NaN and infinities, which JSON cannot carry.
func number(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func milliseconds(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

type definitionJSON struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	Organization string `json:"organization,omitempty"`
	Code         int64  `json:"code,omitempty"`
	Description  string `json:"description,omitempty"`
}

func formatDefinition(d *domain.Definition) definitionJSON {
	return definitionJSON{
		Key:          d.Key(),
		Name:         d.Name,
		Organization: d.Organization,
		Code:         d.Code,
		Description:  d.Description,
	}
}

type boundsJSON struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

type transformResponseJSON struct {
	Source           string       `json:"source"`
	Target           string       `json:"target"`
	Operation        string       `json:"operation"`
	Coordinates      [][]*float64 `json:"coordinates"`
	Undefined        []int        `json:"undefined"`
	Bounds           *boundsJSON  `json:"bounds,omitempty"`
	CacheHit         bool         `json:"cache_hit"`
	ProcessingTimeMS float64      `json:"processing_time_ms"`
}

// formatTransformResponse renders undefined ordinates as null and omits
// the bounds when no output is defined.
func formatTransformResponse(resp *domain.TransformResponse) transformResponseJSON {
	out := transformResponseJSON{
		Source:           resp.Source,
		Target:           resp.Target,
		Operation:        resp.Operation,
		Coordinates:      make([][]*float64, len(resp.Coordinates)),
		Undefined:        resp.Undefined,
		CacheHit:         resp.CacheHit,
		ProcessingTimeMS: milliseconds(resp.ProcessingTime),
	}
	if out.Undefined == nil {
		out.Undefined = []int{}
	}
	for i, c := range resp.Coordinates {
		row := []*float64{number(c.X), number(c.Y)}
		if c.HasZ {
			row = append(row, number(c.Z))
		}
		out.Coordinates[i] = row
	}
	if b := resp.Bounds; b.IsValid() {
		out.Bounds = &boundsJSON{MinX: b.MinX, MinY: b.MinY, MaxX: b.MaxX, MaxY: b.MaxY}
	}
	return out
}

type axisJSON struct {
	Name        string `json:"name"`
	Orientation string `json:"orientation"`
}

type ellipsoidJSON struct {
	Name              string   `json:"name"`
	SemiMajorAxis     *float64 `json:"semi_major_axis"`
	SemiMinorAxis     *float64 `json:"semi_minor_axis"`
	InverseFlattening *float64 `json:"inverse_flattening"`
}

type datumJSON struct {
	Name      string        `json:"name"`
	Ellipsoid ellipsoidJSON `json:"ellipsoid"`
	ToWGS84   []float64     `json:"towgs84,omitempty"`
}

type meridianJSON struct {
	Name      string   `json:"name"`
	Longitude *float64 `json:"longitude"`
}

type projectionJSON struct {
	Name       string              `json:"name,omitempty"`
	ClassName  string              `json:"class_name"`
	Parameters map[string]*float64 `json:"parameters"`
}

// crsJSON summarises a coordinate system for API clients.
type crsJSON struct {
	Kind          string          `json:"kind"`
	Name          string          `json:"name"`
	Authority     string          `json:"authority,omitempty"`
	Code          int64           `json:"code,omitempty"`
	Dimension     int             `json:"dimension"`
	Axes          []axisJSON      `json:"axes"`
	Units         []string        `json:"units"`
	Datum         *datumJSON      `json:"datum,omitempty"`
	PrimeMeridian *meridianJSON   `json:"prime_meridian,omitempty"`
	Projection    *projectionJSON `json:"projection,omitempty"`
	Base          *crsJSON        `json:"base,omitempty"`
}

func formatDatum(d domain.HorizontalDatum) *datumJSON {
	out := &datumJSON{
		Name: d.Name,
		Ellipsoid: ellipsoidJSON{
			Name:              d.Ellipsoid.Name,
			SemiMajorAxis:     number(d.Ellipsoid.SemiMajorAxis),
			SemiMinorAxis:     number(d.Ellipsoid.SemiMinorAxis),
			InverseFlattening: number(d.Ellipsoid.InverseFlattening),
		},
	}
	if w := d.Wgs84; w != nil {
		out.ToWGS84 = []float64{w.Dx, w.Dy, w.Dz, w.Ex, w.Ey, w.Ez, w.Ppm}
	}
	return out
}

func formatMeridian(p domain.PrimeMeridian) *meridianJSON {
	return &meridianJSON{Name: p.Name, Longitude: number(p.Longitude)}
}

func formatCRS(cs crs.CoordinateSystem) *crsJSON {
	if cs == nil {
		return nil
	}
	info := cs.Description()
	out := &crsJSON{
		Name:      info.Name,
		Dimension: cs.Dimension(),
		Axes:      []axisJSON{},
		Units:     []string{},
	}
	if info.HasAuthority() {
		out.Authority = info.Authority
		out.Code = info.AuthorityCode
	}
	for i := range cs.Dimension() {
		a := cs.Axis(i)
		out.Axes = append(out.Axes, axisJSON{Name: a.Name, Orientation: a.Orientation.String()})
		if u := cs.Units(i); u != nil {
			out.Units = append(out.Units, u.Description().Name)
		}
	}

	switch c := cs.(type) {
	case *crs.GeographicCS:
		out.Kind = "geographic"
		out.Datum = formatDatum(c.Datum)
		out.PrimeMeridian = formatMeridian(c.PrimeMeridian)
	case *crs.GeocentricCS:
		out.Kind = "geocentric"
		out.Datum = formatDatum(c.Datum)
		out.PrimeMeridian = formatMeridian(c.PrimeMeridian)
	case *crs.ProjectedCS:
		out.Kind = "projected"
		out.Datum = formatDatum(c.Datum)
		out.Projection = &projectionJSON{
			Name:       c.Projection.Name,
			ClassName:  c.Projection.ClassName,
			Parameters: make(map[string]*float64),
		}
		for _, p := range c.Projection.Parameters.Parameters() {
			out.Projection.Parameters[p.Name] = number(p.Value)
		}
		out.Base = formatCRS(c.Geographic)
	case *crs.FittedCS:
		out.Kind = "fitted"
		out.Base = formatCRS(c.Base)
	}
	return out
}

type catalogJSON struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	Format      string    `json:"format"`
	Size        int64     `json:"size"`
	Status      string    `json:"status"`
	Ready       bool      `json:"ready"`
	Definitions int       `json:"definitions"`
	Failed      int       `json:"failed"`
	LoadedAt    time.Time `json:"loaded_at"`
}

func formatCatalog(c *domain.Catalog) catalogJSON {
	return catalogJSON{
		ID:          c.ID,
		Name:        c.Name,
		Path:        c.Path,
		Format:      string(c.Format),
		Size:        c.Size,
		Status:      string(c.Status),
		Ready:       c.IsReady(),
		Definitions: c.DefinitionCount(),
		Failed:      c.Failed,
		LoadedAt:    c.LoadedAt,
	}
}
