package wkt

import (
	"fmt"
	"math"
	"strings"

	"github.com/jobrunner/meridian/internal/crs"
	"github.com/jobrunner/meridian/internal/domain"
	"github.com/jobrunner/meridian/internal/transform"
)

func (p *parser) readCoordinateSystem(kw string) (crs.CoordinateSystem, error) {
	switch kw {
	case "GEOGCS":
		return system(p.readGeographic())
	case "PROJCS":
		return system(p.readProjected())
	case "FITTED_CS":
		return system(p.readFitted())
	case "COMPD_CS", "VERT_CS", "GEOCCS", "LOCAL_CS":
		return nil, p.unsupportedAt(p.tz.Current(), "%s coordinate systems are not supported", kw)
	default:
		return nil, p.failAt(p.tz.Current(), "%s is not a recognized WKT object", kw)
	}
}

// system keeps a failed read from surfacing as a typed nil.
func system[T crs.CoordinateSystem](cs T, err error) (crs.CoordinateSystem, error) {
	if err != nil {
		return nil, err
	}
	return cs, nil
}

// readGeographic reads a GEOGCS. DATUM, PRIMEM and UNIT are required;
// without AXIS clauses the axes are Lon/East, Lat/North.
func (p *parser) readGeographic() (*crs.GeographicCS, error) {
	start := p.tz.Current()
	name, err := p.header()
	if err != nil {
		return nil, err
	}
	m := newMetadata(name)
	var (
		datum *domain.HorizontalDatum
		pm    *domain.PrimeMeridian
		unit  *domain.AngularUnit
		axes  []domain.AxisInfo
	)
	err = p.clauses(func(kw string) error {
		switch kw {
		case "DATUM":
			d, err := p.readDatum()
			datum = &d
			return err
		case "PRIMEM":
			v, err := p.readPrimeMeridian()
			pm = &v
			return err
		case "UNIT":
			u, err := p.readAngularUnit()
			unit = &u
			return err
		case "AXIS":
			a, err := p.readAxis()
			axes = append(axes, a)
			return err
		case "AUTHORITY":
			return m.authority(p)
		default:
			return p.skip()
		}
	})
	if err != nil {
		return nil, err
	}

	switch {
	case datum == nil:
		return nil, p.failAt(start, "GEOGCS %q has no DATUM", name)
	case pm == nil:
		return nil, p.failAt(start, "GEOGCS %q has no PRIMEM", name)
	case unit == nil:
		return nil, p.failAt(start, "GEOGCS %q has no UNIT", name)
	}
	cs, err := p.factory.CreateGeographicCS(m.Info, *unit, *datum, *pm, axes...)
	if err != nil {
		return nil, p.invalid(err)
	}
	return cs, nil
}

// readProjected reads a PROJCS. GEOGCS, PROJECTION and UNIT are required;
// PARAMETER clauses may appear anywhere after the name.
func (p *parser) readProjected() (*crs.ProjectedCS, error) {
	start := p.tz.Current()
	name, err := p.header()
	if err != nil {
		return nil, err
	}
	m := newMetadata(name)
	var (
		geo       *crs.GeographicCS
		projInfo  *domain.Info
		className string
		params    = domain.NewParameterSet()
		unit      *domain.LinearUnit
		axes      []domain.AxisInfo
	)
	err = p.clauses(func(kw string) error {
		switch kw {
		case "GEOGCS":
			var err error
			geo, err = p.readGeographic()
			return err
		case "PROJECTION":
			info, class, err := p.readProjection()
			projInfo, className = &info, class
			return err
		case "PARAMETER":
			param, err := p.readParameter()
			params.Set(param.Name, param.Value)
			return err
		case "UNIT":
			u, err := p.readLinearUnit()
			unit = &u
			return err
		case "AXIS":
			a, err := p.readAxis()
			axes = append(axes, a)
			return err
		case "AUTHORITY":
			return m.authority(p)
		default:
			return p.skip()
		}
	})
	if err != nil {
		return nil, err
	}

	switch {
	case geo == nil:
		return nil, p.failAt(start, "PROJCS %q has no GEOGCS", name)
	case projInfo == nil:
		return nil, p.failAt(start, "PROJCS %q has no PROJECTION", name)
	case unit == nil:
		return nil, p.failAt(start, "PROJCS %q has no UNIT", name)
	}

	projection, err := p.factory.CreateProjection(*projInfo, className, params)
	if err != nil {
		return nil, p.invalid(err)
	}
	cs, err := p.factory.CreateProjectedCS(m.Info, geo, projection, *unit, axes...)
	if err != nil {
		return nil, p.invalid(err)
	}
	return cs, nil
}

// readFitted reads a FITTED_CS: a PARAM_MT to the base system followed by
// the base system itself.
func (p *parser) readFitted() (*crs.FittedCS, error) {
	start := p.tz.Current()
	name, err := p.header()
	if err != nil {
		return nil, err
	}
	m := newMetadata(name)
	var (
		toBase transform.MathTransform
		base   crs.CoordinateSystem
	)
	err = p.clauses(func(kw string) error {
		var err error
		switch kw {
		case "PARAM_MT":
			toBase, err = p.readMathTransform()
		case "GEOGCS", "PROJCS", "FITTED_CS", "COMPD_CS", "VERT_CS", "GEOCCS", "LOCAL_CS":
			base, err = p.readCoordinateSystem(kw)
		case "AUTHORITY":
			err = m.authority(p)
		default:
			err = p.skip()
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	switch {
	case toBase == nil:
		return nil, p.failAt(start, "FITTED_CS %q has no PARAM_MT", name)
	case base == nil:
		return nil, p.failAt(start, "FITTED_CS %q has no base coordinate system", name)
	}
	cs, err := p.factory.CreateFittedCS(m.Info, base, toBase)
	if err != nil {
		return nil, p.invalid(err)
	}
	return cs, nil
}

// maxAffineIndex bounds the elt_R_C indices an Affine PARAM_MT accepts.
const maxAffineIndex = 3

// readMathTransform reads `["Affine", PARAMETER[...]...]`. num_row and
// num_col are required; elements not given keep their identity value and
// elt_R_C names outside the matrix are ignored.
func (p *parser) readMathTransform() (transform.MathTransform, error) {
	start := p.tz.Current()
	name, err := p.header()
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(name, "affine") {
		return nil, p.unsupportedAt(start, "PARAM_MT %q is not supported", name)
	}

	params := domain.NewParameterSet()
	err = p.clauses(func(kw string) error {
		if kw != "PARAMETER" {
			return p.skip()
		}
		param, err := p.readParameter()
		params.Set(param.Name, param.Value)
		return err
	})
	if err != nil {
		return nil, err
	}

	rows, err := matrixSize(params, "num_row")
	if err != nil {
		return nil, p.invalid(err)
	}
	cols, err := matrixSize(params, "num_col")
	if err != nil {
		return nil, p.invalid(err)
	}

	matrix := make([][]float64, rows)
	for r := range matrix {
		matrix[r] = make([]float64, cols)
		if r < cols {
			matrix[r][r] = 1
		}
	}
	for _, param := range params.Parameters() {
		var r, c int
		if _, err := fmt.Sscanf(domain.NormalizeName(param.Name), "elt_%d_%d", &r, &c); err != nil {
			continue
		}
		if r < 0 || c < 0 || r > maxAffineIndex || c > maxAffineIndex || r >= rows || c >= cols {
			continue
		}
		matrix[r][c] = param.Value
	}

	mt, err := transform.NewAffine(matrix)
	if err != nil {
		return nil, p.invalid(err)
	}
	return mt, nil
}

func matrixSize(params *domain.ParameterSet, name string) (int, error) {
	v, err := params.Value(name)
	if err != nil {
		return 0, err
	}
	if v < 1 || v != math.Trunc(v) {
		return 0, &domain.ConfigError{Field: name, Message: fmt.Sprintf("must be a positive integer, got %v", v)}
	}
	if v > maxAffineIndex+1 {
		return 0, &domain.ConfigError{Field: name, Message: fmt.Sprintf("must not exceed %d, got %v", maxAffineIndex+1, v)}
	}
	return int(v), nil
}
