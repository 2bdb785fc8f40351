package operation

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jobrunner/meridian/internal/crs"
	"github.com/jobrunner/meridian/internal/domain"
	"github.com/jobrunner/meridian/internal/transform"
)

// Factory compiles a source and target coordinate system into a
// coordinate transformation.
type Factory struct {
	logger *slog.Logger
}

// NewFactory creates a factory. A nil logger discards output.
func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Factory{logger: logger}
}

type csKind int

const (
	kindUnknown csKind = iota
	kindGeographic
	kindGeocentric
	kindProjected
	kindFitted
)

func kindOf(cs crs.CoordinateSystem) csKind {
	switch cs.(type) {
	case *crs.GeographicCS:
		return kindGeographic
	case *crs.GeocentricCS:
		return kindGeocentric
	case *crs.ProjectedCS:
		return kindProjected
	case *crs.FittedCS:
		return kindFitted
	default:
		return kindUnknown
	}
}

type route struct {
	source, target csKind
}

// CreateFromCoordinateSystems returns the transformation from source to
// target. It fails with ErrNoTransformPath when no rule connects the two.
func (f *Factory) CreateFromCoordinateSystems(source, target crs.CoordinateSystem) (*CoordinateTransformation, error) {
	if source == nil || target == nil {
		return nil, &domain.ConfigError{Field: "coordinate_system", Message: "source and target are required"}
	}

	r := route{kindOf(source), kindOf(target)}
	var (
		ct   *CoordinateTransformation
		err  error
		rule string
	)
	switch {
	case r.source == kindFitted:
		rule = "fitted to any"
		ct, err = f.fittedToAny(source.(*crs.FittedCS), target)
	case r.target == kindFitted:
		rule = "any to fitted"
		ct, err = f.anyToFitted(source, target.(*crs.FittedCS))
	case r == (route{kindProjected, kindGeographic}):
		rule = "projected to geographic"
		ct, err = f.projToGeog(source.(*crs.ProjectedCS), target.(*crs.GeographicCS))
	case r == (route{kindGeographic, kindProjected}):
		rule = "geographic to projected"
		ct, err = f.geogToProj(source.(*crs.GeographicCS), target.(*crs.ProjectedCS))
	case r == (route{kindGeographic, kindGeocentric}):
		rule = "geographic to geocentric"
		ct, err = f.geogToGeoc(source.(*crs.GeographicCS), target.(*crs.GeocentricCS))
	case r == (route{kindGeocentric, kindGeographic}):
		rule = "geocentric to geographic"
		ct, err = f.geocToGeog(source.(*crs.GeocentricCS), target.(*crs.GeographicCS))
	case r == (route{kindProjected, kindProjected}):
		rule = "projected to projected"
		ct, err = f.projToProj(source.(*crs.ProjectedCS), target.(*crs.ProjectedCS))
	case r == (route{kindGeocentric, kindGeocentric}):
		rule = "geocentric to geocentric"
		ct, err = f.geocToGeoc(source.(*crs.GeocentricCS), target.(*crs.GeocentricCS))
	case r == (route{kindGeographic, kindGeographic}):
		rule = "geographic to geographic"
		ct, err = f.geogToGeog(source.(*crs.GeographicCS), target.(*crs.GeographicCS))
	default:
		err = fmt.Errorf("%w: %T to %T", domain.ErrNoTransformPath, source, target)
	}
	if err != nil {
		f.logger.Debug("no coordinate operation", "source", describe(source), "target", describe(target), "error", err)
		return nil, err
	}

	f.logger.Debug("compiled coordinate operation", "rule", rule, "source", describe(source), "target", describe(target))
	return ct, nil
}

// CreateProjection instantiates the map projection described by
// projection on ellipsoid. Axes are injected in metres along with the
// projected unit; Mercator variants without a latitude of origin take
// standard_parallel_1 or 0.
func (f *Factory) CreateProjection(projection crs.Projection, ellipsoid domain.Ellipsoid, unit domain.LinearUnit) (*transform.MapProjection, error) {
	kind, ok := transform.KindFromName(projection.ClassName)
	if !ok {
		return nil, fmt.Errorf("%w: projection %q", domain.ErrNoTransformPath, projection.ClassName)
	}

	params := projection.Parameters.Clone()
	if !params.Has("semi_major") {
		params.Set("semi_major", ellipsoid.SemiMajorMeters())
	}
	if !params.Has("semi_minor") {
		params.Set("semi_minor", ellipsoid.SemiMinorMeters())
	}
	if !params.Has("unit") {
		params.Set("unit", unit.MetersPerUnit)
	}
	if (kind == transform.KindMercator || kind == transform.KindPseudoMercator) &&
		!params.Has("latitude_of_origin", "latitude_of_center", "latitude_of_natural_origin") {
		params.Set("latitude_of_origin", params.Optional("standard_parallel_1", 0))
	}
	return transform.NewProjection(kind, params)
}

func single(source, target crs.CoordinateSystem, typ TransformType, mt transform.MathTransform) *CoordinateTransformation {
	return &CoordinateTransformation{
		Info:          domain.Info{Name: describe(source) + " to " + describe(target), AuthorityCode: domain.NoAuthorityCode},
		Source:        source,
		Target:        target,
		Type:          typ,
		MathTransform: mt,
	}
}

// chain collapses a one-stage pipeline to the stage itself.
func chain(source, target crs.CoordinateSystem, stages ...*CoordinateTransformation) *CoordinateTransformation {
	if len(stages) == 1 {
		return stages[0]
	}
	return single(source, target, ConversionAndTransformation, NewConcatenated(stages...))
}

func (f *Factory) projection(cs *crs.ProjectedCS) (*transform.MapProjection, error) {
	return f.CreateProjection(cs.Projection, cs.Geographic.Datum.Ellipsoid, cs.LinearUnit)
}

func (f *Factory) projToGeog(source *crs.ProjectedCS, target *crs.GeographicCS) (*CoordinateTransformation, error) {
	p, err := f.projection(source)
	if err != nil {
		return nil, err
	}
	inv, err := p.Inverse()
	if err != nil {
		return nil, err
	}
	unproject := single(source, source.Geographic, Conversion, inv)
	if source.Geographic.EqualParams(target) {
		unproject.Target = target
		return unproject, nil
	}
	rest, err := f.geogToGeog(source.Geographic, target)
	if err != nil {
		return nil, err
	}
	return chain(source, target, unproject, rest), nil
}

func (f *Factory) geogToProj(source *crs.GeographicCS, target *crs.ProjectedCS) (*CoordinateTransformation, error) {
	p, err := f.projection(target)
	if err != nil {
		return nil, err
	}
	project := single(target.Geographic, target, Conversion, p)
	if target.Geographic.EqualParams(source) {
		project.Source = source
		return project, nil
	}
	first, err := f.geogToGeog(source, target.Geographic)
	if err != nil {
		return nil, err
	}
	return chain(source, target, first, project), nil
}

func (f *Factory) projToProj(source, target *crs.ProjectedCS) (*CoordinateTransformation, error) {
	p, err := f.projection(source)
	if err != nil {
		return nil, err
	}
	inv, err := p.Inverse()
	if err != nil {
		return nil, err
	}
	middle, err := f.geogToGeog(source.Geographic, target.Geographic)
	if err != nil {
		return nil, err
	}
	q, err := f.projection(target)
	if err != nil {
		return nil, err
	}
	return chain(source, target,
		single(source, source.Geographic, Conversion, inv),
		middle,
		single(target.Geographic, target, Conversion, q),
	), nil
}

// geocentricFor returns the Greenwich-based geocentric system of a datum.
func geocentricFor(datum domain.HorizontalDatum) *crs.GeocentricCS {
	cs, _ := crs.NewFactory().CreateGeocentricCS(
		domain.Info{Name: datum.Name + " Geocentric", AuthorityCode: domain.NoAuthorityCode},
		datum, domain.Metre(), domain.Greenwich())
	return cs
}

func (f *Factory) geogToGeog(source, target *crs.GeographicCS) (*CoordinateTransformation, error) {
	if source.Datum.EqualParams(target.Datum) {
		return single(source, target, Conversion, transform.NewGeographicTransform(source.Frame(), target.Frame())), nil
	}

	srcGeoc := geocentricFor(source.Datum)
	tgtGeoc := geocentricFor(target.Datum)
	stages := make([]*CoordinateTransformation, 0, 3)

	toGeoc, err := f.geogToGeoc(source, srcGeoc)
	if err != nil {
		return nil, err
	}
	stages = append(stages, toGeoc)

	shift, err := f.datumShift(srcGeoc, tgtGeoc)
	if err != nil {
		return nil, err
	}
	if shift != nil {
		stages = append(stages, shift)
	}

	fromGeoc, err := f.geocToGeog(tgtGeoc, target)
	if err != nil {
		return nil, err
	}
	stages = append(stages, fromGeoc)

	return chain(source, target, stages...), nil
}

// normalizeGeographic returns the stage that brings geographic ordinates
// into degrees about pm, or nil when none is needed.
func normalizeGeographic(geo *crs.GeographicCS, pm domain.PrimeMeridian) transform.MathTransform {
	if !geo.AngularUnit.EqualParams(domain.Degrees()) {
		return transform.NewGeographicTransform(geo.Frame(),
			transform.GeographicFrame{Unit: domain.Degrees(), PrimeMeridian: pm, Dimension: geo.Dimension()})
	}
	if !geo.PrimeMeridian.EqualParams(pm) {
		return transform.NewPrimeMeridianTransform(geo.PrimeMeridian, pm)
	}
	return nil
}

// denormalizeGeographic is the reverse of normalizeGeographic.
func denormalizeGeographic(geo *crs.GeographicCS, pm domain.PrimeMeridian) transform.MathTransform {
	if !geo.AngularUnit.EqualParams(domain.Degrees()) {
		return transform.NewGeographicTransform(
			transform.GeographicFrame{Unit: domain.Degrees(), PrimeMeridian: pm, Dimension: geo.Dimension()},
			geo.Frame())
	}
	if !geo.PrimeMeridian.EqualParams(pm) {
		return transform.NewPrimeMeridianTransform(pm, geo.PrimeMeridian)
	}
	return nil
}

func (f *Factory) geogToGeoc(source *crs.GeographicCS, target *crs.GeocentricCS) (*CoordinateTransformation, error) {
	if !source.Datum.EqualParams(target.Datum) {
		own := geocentricFor(source.Datum)
		first, err := f.geogToGeoc(source, own)
		if err != nil {
			return nil, err
		}
		shift, err := f.datumShift(own, target)
		if err != nil {
			return nil, err
		}
		if shift == nil {
			return withTarget(first, target), nil
		}
		return chain(source, target, first, shift), nil
	}

	geoc := single(source, target, Conversion, transform.NewGeocentric(target.Datum.Ellipsoid))
	if norm := normalizeGeographic(source, target.PrimeMeridian); norm != nil {
		geoc.Source = nil
		return chain(source, target, single(source, nil, Conversion, norm), geoc), nil
	}
	return geoc, nil
}

func (f *Factory) geocToGeog(source *crs.GeocentricCS, target *crs.GeographicCS) (*CoordinateTransformation, error) {
	if !source.Datum.EqualParams(target.Datum) {
		own := geocentricFor(target.Datum)
		shift, err := f.datumShift(source, own)
		if err != nil {
			return nil, err
		}
		last, err := f.geocToGeog(own, target)
		if err != nil {
			return nil, err
		}
		if shift == nil {
			return withSource(last, source), nil
		}
		return chain(source, target, shift, last), nil
	}

	geoc, err := transform.NewGeocentric(source.Datum.Ellipsoid).Inverse()
	if err != nil {
		return nil, err
	}
	stage := single(source, target, Conversion, geoc)
	if denorm := denormalizeGeographic(target, source.PrimeMeridian); denorm != nil {
		stage.Target = nil
		return chain(source, target, stage, single(nil, target, Conversion, denorm)), nil
	}
	return stage, nil
}

func (f *Factory) geocToGeoc(source, target *crs.GeocentricCS) (*CoordinateTransformation, error) {
	var stages []*CoordinateTransformation
	if source.Datum.HasShift() {
		stages = append(stages, single(source, nil, Transformation, transform.NewDatumTransform(source.Datum.Wgs84)))
	}
	if target.Datum.HasShift() {
		inv, err := transform.NewDatumTransform(target.Datum.Wgs84).Inverse()
		if err != nil {
			return nil, err
		}
		stages = append(stages, single(nil, target, Transformation, inv))
	}
	switch len(stages) {
	case 0:
		return nil, fmt.Errorf("%w: no datum shift between %q and %q", domain.ErrNoTransformPath, source.Datum.Name, target.Datum.Name)
	case 1:
		stages[0].Source, stages[0].Target = source, target
	}
	return chain(source, target, stages...), nil
}

// datumShift returns the Bursa-Wolf stages between two geocentric
// systems, or nil when neither datum carries a shift to WGS 84.
func (f *Factory) datumShift(source, target *crs.GeocentricCS) (*CoordinateTransformation, error) {
	shift, err := f.geocToGeoc(source, target)
	if errors.Is(err, domain.ErrNoTransformPath) {
		return nil, nil
	}
	return shift, err
}

// withTarget replaces the target of a freshly built ct.
func withTarget(ct *CoordinateTransformation, target crs.CoordinateSystem) *CoordinateTransformation {
	ct.Target = target
	return ct
}

// withSource replaces the source of a freshly built ct.
func withSource(ct *CoordinateTransformation, source crs.CoordinateSystem) *CoordinateTransformation {
	ct.Source = source
	return ct
}

func (f *Factory) fittedToAny(source *crs.FittedCS, target crs.CoordinateSystem) (*CoordinateTransformation, error) {
	if source.Base.EqualParams(target) {
		return single(source, target, Transformation, source.ToBase), nil
	}
	rest, err := f.CreateFromCoordinateSystems(source.Base, target)
	if err != nil {
		return nil, err
	}
	return chain(source, target, single(source, source.Base, Conversion, source.ToBase), rest), nil
}

func (f *Factory) anyToFitted(source crs.CoordinateSystem, target *crs.FittedCS) (*CoordinateTransformation, error) {
	fromBase, err := target.ToBase.Inverse()
	if err != nil {
		return nil, fmt.Errorf("%w: fitted system %q: %w", domain.ErrNoTransformPath, target.Name, err)
	}
	if target.Base.EqualParams(source) {
		return single(source, target, Transformation, fromBase), nil
	}
	first, err := f.CreateFromCoordinateSystems(source, target.Base)
	if err != nil {
		return nil, err
	}
	return chain(source, target, first, single(target.Base, target, Conversion, fromBase)), nil
}
