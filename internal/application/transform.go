package application

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/project"

	"github.com/jobrunner/meridian/internal/crs"
	"github.com/jobrunner/meridian/internal/domain"
	"github.com/jobrunner/meridian/internal/operation"
	"github.com/jobrunner/meridian/internal/ports/input"
	"github.com/jobrunner/meridian/internal/ports/output"
	"github.com/jobrunner/meridian/internal/transform"
	"github.com/jobrunner/meridian/internal/wkt"
)

var _ input.TransformService = (*TransformService)(nil)

// TransformService converts coordinates and geometries between CRSs
// resolved through the catalog registry.
type TransformService struct {
	registry      *CatalogRegistry
	factory       *operation.Factory
	cache         output.OperationCache
	metrics       output.MetricsCollector
	logger        *slog.Logger
	defaultSource string
	defaultTarget string
	maxPoints     int
	workers       int
	timeout       time.Duration
}

// TransformServiceConfig holds configuration for the transform service.
type TransformServiceConfig struct {
	DefaultSource string
	DefaultTarget string
	MaxPoints     int
	Workers       int
	Timeout       time.Duration // Per request; 0 means no limit
}

// NewTransformService creates a new transform service. cache may be nil.
func NewTransformService(
	registry *CatalogRegistry,
	factory *operation.Factory,
	cache output.OperationCache,
	metrics output.MetricsCollector,
	logger *slog.Logger,
	cfg TransformServiceConfig,
) *TransformService {
	if cfg.DefaultSource == "" {
		cfg.DefaultSource = domain.KeyWGS84
	}
	if cfg.DefaultTarget == "" {
		cfg.DefaultTarget = domain.KeyWebMercator
	}
	if cfg.MaxPoints == 0 {
		cfg.MaxPoints = 10000
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}

	return &TransformService{
		registry:      registry,
		factory:       factory,
		cache:         cache,
		metrics:       metrics,
		logger:        logger,
		defaultSource: cfg.DefaultSource,
		defaultTarget: cfg.DefaultTarget,
		maxPoints:     cfg.MaxPoints,
		workers:       cfg.Workers,
		timeout:       cfg.Timeout,
	}
}

// withTimeout bounds ctx by the configured request timeout.
func (s *TransformService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Transform converts the request coordinates. Points outside the domain of
// the operation are reported in Undefined and come back as NaN.
func (s *TransformService) Transform(ctx context.Context, req domain.TransformRequest) (*domain.TransformResponse, error) {
	start := time.Now()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	source, target := s.endpoints(req.Source, req.Target)

	if err := s.validate(req.Coordinates); err != nil {
		s.metrics.IncTransformCount(source, target, false)
		return nil, err
	}

	ct, hit, err := s.operation(ctx, source, target)
	if err != nil {
		s.metrics.IncTransformCount(source, target, false)
		return nil, err
	}

	points := make([][]float64, len(req.Coordinates))
	for i, c := range req.Coordinates {
		points[i] = c.Ordinates()
	}

	results, err := transform.TransformBatch(ctx, ct.MathTransform, points, s.workers)
	if err != nil {
		s.metrics.IncTransformCount(source, target, false)
		return nil, err
	}

	resp := &domain.TransformResponse{
		Source:      source,
		Target:      target,
		Operation:   ct.Name,
		Coordinates: make([]domain.Coordinate, len(results)),
		Bounds:      domain.EmptyExtent(),
		CacheHit:    hit,
	}
	for i, p := range results {
		c, ok := domain.CoordinateFromOrdinates(p)
		if !ok || transform.IsUndefined(p) {
			resp.Undefined = append(resp.Undefined, i)
			c = domain.Coordinate{X: math.NaN(), Y: math.NaN(), HasZ: req.Coordinates[i].HasZ}
			if c.HasZ {
				c.Z = math.NaN()
			}
		}
		resp.Coordinates[i] = c
		resp.Bounds.Expand(c)
	}

	resp.ProcessingTime = time.Since(start)
	s.metrics.IncTransformCount(source, target, true)
	s.metrics.ObserveTransformDuration(source, target, resp.ProcessingTime)
	s.metrics.AddTransformedPoints(resp.DefinedCount(), len(resp.Undefined))

	if len(resp.Undefined) > 0 {
		s.logger.Debug("points outside operation domain", "source", source, "target", target, "count", len(resp.Undefined))
	}
	return resp, nil
}

func (s *TransformService) endpoints(source, target string) (string, string) {
	source = strings.TrimSpace(source)
	target = strings.TrimSpace(target)
	if source == "" {
		source = s.defaultSource
	}
	if target == "" {
		target = s.defaultTarget
	}
	return source, target
}

// validate checks the number of coordinates and their values.
func (s *TransformService) validate(coords []domain.Coordinate) error {
	if len(coords) == 0 {
		return &domain.ValidationError{
			Field:      "coordinates",
			Value:      0,
			Constraint: "min=1",
			Message:    "at least one coordinate is required",
		}
	}
	if len(coords) > s.maxPoints {
		return &domain.ValidationError{
			Field:      "coordinates",
			Value:      len(coords),
			Constraint: fmt.Sprintf("max=%d", s.maxPoints),
			Message:    "too many coordinates",
		}
	}
	for i, c := range coords {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("coordinate %d: %w", i, err)
		}
	}
	return nil
}

// operation returns the compiled operation for source and target, from
// the cache when possible. Cache keys carry the registry version so that
// catalog changes never serve a stale pipeline.
func (s *TransformService) operation(ctx context.Context, source, target string) (*operation.CoordinateTransformation, bool, error) {
	key := fmt.Sprintf("%d|%s|%s", s.registry.Version(), source, target)
	if s.cache != nil {
		if ct, ok := s.cache.Get(key); ok {
			s.metrics.IncOperationCache(true)
			return ct, true, nil
		}
		s.metrics.IncOperationCache(false)
	}

	src, err := s.registry.Resolve(ctx, source)
	if err != nil {
		return nil, false, &domain.TransformError{Source: source, Target: target, Err: err}
	}
	dst, err := s.registry.Resolve(ctx, target)
	if err != nil {
		return nil, false, &domain.TransformError{Source: source, Target: target, Err: err}
	}

	ct, err := s.factory.CreateFromCoordinateSystems(src, dst)
	if err != nil {
		return nil, false, &domain.TransformError{Source: source, Target: target, Err: err}
	}

	if s.cache != nil {
		s.cache.Set(key, ct)
	}
	s.logger.Debug("operation compiled", "source", source, "target", target, "operation", ct.Name, "type", ct.Type)
	return ct, false, nil
}

// TransformFeatures reprojects every geometry of fc into a new collection.
// Properties and IDs are kept; bounding boxes are dropped.
func (s *TransformService) TransformFeatures(ctx context.Context, source, target string, fc *geojson.FeatureCollection) (*geojson.FeatureCollection, error) {
	start := time.Now()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	source, target = s.endpoints(source, target)

	if fc == nil || len(fc.Features) == 0 {
		s.metrics.IncTransformCount(source, target, false)
		return nil, &domain.ValidationError{
			Field:      "features",
			Value:      0,
			Constraint: "min=1",
			Message:    "at least one feature is required",
		}
	}

	ct, _, err := s.operation(ctx, source, target)
	if err != nil {
		s.metrics.IncTransformCount(source, target, false)
		return nil, err
	}

	out := geojson.NewFeatureCollection()
	out.ExtraMembers = fc.ExtraMembers
	points := 0
	for i, f := range fc.Features {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		nf := geojson.NewFeature(nil)
		nf.ID = f.ID
		nf.Type = f.Type
		nf.Properties = f.Properties.Clone()

		if f.Geometry != nil {
			g, n, err := reproject(ct.MathTransform, f.Geometry)
			if err != nil {
				s.metrics.IncTransformCount(source, target, false)
				return nil, &domain.ValidationError{
					Field:      fmt.Sprintf("features[%d].geometry", i),
					Value:      f.Geometry.GeoJSONType(),
					Constraint: "domain",
					Message:    err.Error(),
				}
			}
			nf.Geometry = g
			points += n
			if points > s.maxPoints {
				break
			}
		}
		out.Append(nf)
	}

	if points > s.maxPoints {
		s.metrics.IncTransformCount(source, target, false)
		return nil, &domain.ValidationError{
			Field:      "features",
			Value:      points,
			Constraint: fmt.Sprintf("max=%d", s.maxPoints),
			Message:    "too many coordinates",
		}
	}

	elapsed := time.Since(start)
	s.metrics.IncTransformCount(source, target, true)
	s.metrics.ObserveTransformDuration(source, target, elapsed)
	s.metrics.AddTransformedPoints(points, 0)
	return out, nil
}

// reproject applies mt to a copy of g and returns the number of points
// moved. Any undefined point fails the whole geometry.
func reproject(mt transform.MathTransform, g orb.Geometry) (orb.Geometry, int, error) {
	var (
		count     int
		undefined bool
	)
	projected := project.Geometry(orb.Clone(g), func(p orb.Point) orb.Point {
		count++
		out := mt.Transform([]float64{p[0], p[1]})
		if transform.IsUndefined(out) {
			undefined = true
			return orb.Point{math.NaN(), math.NaN()}
		}
		return orb.Point{out[0], out[1]}
	})
	if undefined {
		return nil, count, fmt.Errorf("geometry has points outside the domain of the operation")
	}
	return projected, count, nil
}

// ParseWKT parses a WKT coordinate system definition.
func (s *TransformService) ParseWKT(_ context.Context, text string) (crs.CoordinateSystem, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &domain.ValidationError{
			Field:      "wkt",
			Value:      "",
			Constraint: "required",
			Message:    "wkt definition is required",
		}
	}
	return wkt.ParseCoordinateSystem(text)
}
