package crs

import (
	"github.com/jobrunner/meridian/internal/domain"
	"github.com/jobrunner/meridian/internal/transform"
)

// Factory builds coordinate systems and their parts from primitive values.
// Every creator rejects an empty name.
type Factory struct{}

// NewFactory creates a factory.
func NewFactory() *Factory {
	return &Factory{}
}

func requireName(field string, info domain.Info) error {
	if info.Name == "" {
		return &domain.ConfigError{Field: field, Message: "name must not be empty"}
	}
	return nil
}

// CreateLinearUnit creates a unit of length.
func (f *Factory) CreateLinearUnit(info domain.Info, metersPerUnit float64) (domain.LinearUnit, error) {
	if err := requireName("linear_unit", info); err != nil {
		return domain.LinearUnit{}, err
	}
	if metersPerUnit <= 0 {
		return domain.LinearUnit{}, &domain.ConfigError{Field: "linear_unit", Message: "metres per unit must be positive"}
	}
	return domain.LinearUnit{Info: info, MetersPerUnit: metersPerUnit}, nil
}

// CreateAngularUnit creates a unit of angle.
func (f *Factory) CreateAngularUnit(info domain.Info, radiansPerUnit float64) (domain.AngularUnit, error) {
	if err := requireName("angular_unit", info); err != nil {
		return domain.AngularUnit{}, err
	}
	if radiansPerUnit <= 0 {
		return domain.AngularUnit{}, &domain.ConfigError{Field: "angular_unit", Message: "radians per unit must be positive"}
	}
	return domain.AngularUnit{Info: info, RadiansPerUnit: radiansPerUnit}, nil
}

// CreateEllipsoid creates an ellipsoid from both semi axes. The inverse
// flattening is derived and not definitive; a sphere gets 0.
func (f *Factory) CreateEllipsoid(info domain.Info, semiMajor, semiMinor float64, unit domain.LinearUnit) (domain.Ellipsoid, error) {
	if err := requireName("ellipsoid", info); err != nil {
		return domain.Ellipsoid{}, err
	}
	if semiMajor <= 0 || semiMinor <= 0 || semiMinor > semiMajor {
		return domain.Ellipsoid{}, &domain.ConfigError{Field: "ellipsoid", Message: "semi axes must be positive with minor <= major"}
	}
	ivf := 0.0
	if semiMajor != semiMinor {
		ivf = semiMajor / (semiMajor - semiMinor)
	}
	return domain.NewEllipsoid(semiMajor, semiMinor, ivf, false, unit, info), nil
}

// CreateFlattenedSphere creates an ellipsoid from the semi-major axis and
// a definitive inverse flattening.
func (f *Factory) CreateFlattenedSphere(info domain.Info, semiMajor, inverseFlattening float64, unit domain.LinearUnit) (domain.Ellipsoid, error) {
	if err := requireName("ellipsoid", info); err != nil {
		return domain.Ellipsoid{}, err
	}
	if semiMajor <= 0 || inverseFlattening < 0 {
		return domain.Ellipsoid{}, &domain.ConfigError{Field: "ellipsoid", Message: "semi-major axis must be positive and inverse flattening non-negative"}
	}
	return domain.NewEllipsoid(semiMajor, semiMajor, inverseFlattening, true, unit, info), nil
}

// CreatePrimeMeridian creates a prime meridian at longitude in unit.
func (f *Factory) CreatePrimeMeridian(info domain.Info, unit domain.AngularUnit, longitude float64) (domain.PrimeMeridian, error) {
	if err := requireName("prime_meridian", info); err != nil {
		return domain.PrimeMeridian{}, err
	}
	return domain.NewPrimeMeridian(longitude, unit, info), nil
}

// CreateHorizontalDatum creates a datum. toWGS84 may be nil.
func (f *Factory) CreateHorizontalDatum(info domain.Info, datumType domain.DatumType, ellipsoid domain.Ellipsoid, toWGS84 *domain.Wgs84ConversionInfo) (domain.HorizontalDatum, error) {
	if err := requireName("datum", info); err != nil {
		return domain.HorizontalDatum{}, err
	}
	if !datumType.IsHorizontal() {
		return domain.HorizontalDatum{}, &domain.ConfigError{Field: "datum", Message: "datum type is not horizontal"}
	}
	return domain.HorizontalDatum{Info: info, Type: datumType, Ellipsoid: ellipsoid, Wgs84: toWGS84}, nil
}

// CreateProjection creates a projection descriptor. Parameters are copied.
func (f *Factory) CreateProjection(info domain.Info, className string, params *domain.ParameterSet) (Projection, error) {
	if err := requireName("projection", info); err != nil {
		return Projection{}, err
	}
	if className == "" {
		return Projection{}, &domain.ConfigError{Field: "projection", Message: "class name must not be empty"}
	}
	return Projection{Info: info, ClassName: className, Parameters: params.Clone()}, nil
}

// CreateGeographicCS creates a geographic system. Without axes it uses
// Lon/East, Lat/North.
func (f *Factory) CreateGeographicCS(info domain.Info, unit domain.AngularUnit, datum domain.HorizontalDatum, pm domain.PrimeMeridian, axes ...domain.AxisInfo) (*GeographicCS, error) {
	if err := requireName("geographic_cs", info); err != nil {
		return nil, err
	}
	if len(axes) == 0 {
		axes = geographicAxes()
	}
	if len(axes) < 2 || len(axes) > 3 {
		return nil, &domain.ConfigError{Field: "geographic_cs", Message: "geographic system needs two or three axes"}
	}
	return &GeographicCS{
		HorizontalCS:  HorizontalCS{Info: info, Datum: datum, Axes: axes},
		AngularUnit:   unit,
		PrimeMeridian: pm,
	}, nil
}

// CreateGeocentricCS creates a geocentric system with X, Y, Z axes.
func (f *Factory) CreateGeocentricCS(info domain.Info, datum domain.HorizontalDatum, unit domain.LinearUnit, pm domain.PrimeMeridian) (*GeocentricCS, error) {
	if err := requireName("geocentric_cs", info); err != nil {
		return nil, err
	}
	return &GeocentricCS{Info: info, Datum: datum, LinearUnit: unit, PrimeMeridian: pm, Axes: geocentricAxes()}, nil
}

// CreateProjectedCS creates a projected system on a geographic base.
// Without axes it uses X/East, Y/North.
func (f *Factory) CreateProjectedCS(info domain.Info, geo *GeographicCS, projection Projection, unit domain.LinearUnit, axes ...domain.AxisInfo) (*ProjectedCS, error) {
	if err := requireName("projected_cs", info); err != nil {
		return nil, err
	}
	if geo == nil {
		return nil, &domain.ConfigError{Field: "projected_cs", Message: "geographic base is required"}
	}
	if len(axes) == 0 {
		axes = projectedAxes()
	}
	if len(axes) != 2 {
		return nil, &domain.ConfigError{Field: "projected_cs", Message: "projected system needs two axes"}
	}
	return &ProjectedCS{
		HorizontalCS: HorizontalCS{Info: info, Datum: geo.Datum, Axes: axes},
		Geographic:   geo,
		LinearUnit:   unit,
		Projection:   projection,
	}, nil
}

// CreateFittedCS creates a fitted system positioned in base by toBase.
func (f *Factory) CreateFittedCS(info domain.Info, base CoordinateSystem, toBase transform.MathTransform) (*FittedCS, error) {
	if err := requireName("fitted_cs", info); err != nil {
		return nil, err
	}
	if base == nil || toBase == nil {
		return nil, &domain.ConfigError{Field: "fitted_cs", Message: "base system and to-base transform are required"}
	}
	return &FittedCS{Info: info, Base: base, ToBase: toBase}, nil
}
