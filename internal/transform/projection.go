package transform

import (
	"fmt"
	"math"

	"github.com/jobrunner/meridian/internal/domain"
)

// Kind identifies a supported map projection method.
type Kind int

// Supported projection kinds.
const (
	KindMercator Kind = iota + 1
	KindPseudoMercator
	KindTransverseMercator
	KindAlbers
	KindKrovak
	KindPolyconic
	KindLambertConformalConic2SP
	KindCassiniSoldner
	KindHotineObliqueMercator
	KindObliqueMercator
	KindObliqueStereographic
)

// Kinds lists every supported projection kind.
var Kinds = []Kind{
	KindMercator,
	KindPseudoMercator,
	KindTransverseMercator,
	KindAlbers,
	KindKrovak,
	KindPolyconic,
	KindLambertConformalConic2SP,
	KindCassiniSoldner,
	KindHotineObliqueMercator,
	KindObliqueMercator,
	KindObliqueStereographic,
}

var kindNames = map[Kind]string{
	KindMercator:                 "Mercator",
	KindPseudoMercator:           "Pseudo-Mercator",
	KindTransverseMercator:       "Transverse_Mercator",
	KindAlbers:                   "Albers_Conic_Equal_Area",
	KindKrovak:                   "Krovak",
	KindPolyconic:                "Polyconic",
	KindLambertConformalConic2SP: "Lambert_Conformal_Conic_2SP",
	KindCassiniSoldner:           "Cassini_Soldner",
	KindHotineObliqueMercator:    "Hotine_Oblique_Mercator",
	KindObliqueMercator:          "Oblique_Mercator",
	KindObliqueStereographic:     "Oblique_Stereographic",
}

// kindAliases maps normalized WKT projection class names to kinds.
var kindAliases = map[string]Kind{
	"mercator":                              KindMercator,
	"mercator_1sp":                          KindMercator,
	"mercator_2sp":                          KindMercator,
	"pseudo-mercator":                       KindPseudoMercator,
	"popular_visualisation_pseudo-mercator": KindPseudoMercator,
	"popular_visualisation_pseudo_mercator": KindPseudoMercator,
	"google_mercator":                       KindPseudoMercator,
	"transverse_mercator":                   KindTransverseMercator,
	"albers":                                KindAlbers,
	"albers_conic_equal_area":               KindAlbers,
	"krovak":                                KindKrovak,
	"polyconic":                             KindPolyconic,
	"lambert_conformal_conic":               KindLambertConformalConic2SP,
	"lambert_conformal_conic_2sp":           KindLambertConformalConic2SP,
	"lambert_conic_conformal_(2sp)":         KindLambertConformalConic2SP,
	"cassini_soldner":                       KindCassiniSoldner,
	"hotine_oblique_mercator":               KindHotineObliqueMercator,
	"oblique_mercator":                      KindObliqueMercator,
	"oblique_stereographic":                 KindObliqueStereographic,
}

// String returns the canonical WKT class name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// KindFromName resolves a WKT projection class name, ignoring case and
// treating spaces as underscores.
func KindFromName(name string) (Kind, bool) {
	k, ok := kindAliases[domain.NormalizeName(name)]
	return k, ok
}

// projector is the projection-specific math on radians and metres,
// without false origin or unit scaling.
type projector interface {
	forward(lam, phi float64) (x, y float64, ok bool)
	inverse(x, y float64) (lam, phi float64, ok bool)
}

// base holds the ellipsoid and origin constants shared by all projections.
type base struct {
	meridian
	semiMajor     float64
	semiMinor     float64
	e             float64
	scaleFactor   float64
	lon0          float64
	lat0          float64
	metersPerUnit float64
	falseEasting  float64
	falseNorthing float64
}

// Parameter name alternates accepted for the projection origin.
var (
	centralMeridianNames = []string{"longitude_of_center", "longitude_of_natural_origin"}
	latitudeOriginNames  = []string{"latitude_of_center", "latitude_of_natural_origin"}
)

func newBase(params *domain.ParameterSet) (base, error) {
	var b base
	var err error
	if b.semiMajor, err = params.Value("semi_major"); err != nil {
		return b, err
	}
	if b.semiMinor, err = params.Value("semi_minor"); err != nil {
		return b, err
	}
	lon0, err := params.Value("central_meridian", centralMeridianNames...)
	if err != nil {
		return b, err
	}
	lat0, err := params.Value("latitude_of_origin", latitudeOriginNames...)
	if err != nil {
		return b, err
	}
	if b.metersPerUnit, err = params.Value("unit"); err != nil {
		return b, err
	}
	if b.semiMajor <= 0 || b.semiMinor <= 0 || b.metersPerUnit <= 0 {
		return b, &domain.ConfigError{Field: "semi_major", Message: "ellipsoid axes and unit must be positive"}
	}

	b.meridian = newMeridian(eccentricitySquared(b.semiMajor, b.semiMinor))
	b.e = math.Sqrt(b.es)
	b.scaleFactor = params.Optional("scale_factor", 1)
	b.lon0 = lon0 * d2r
	b.lat0 = lat0 * d2r
	b.falseEasting = params.Optional("false_easting", 0) * b.metersPerUnit
	b.falseNorthing = params.Optional("false_northing", 0) * b.metersPerUnit
	return b, nil
}

// degreesParam reads a required angle parameter and returns it in radians.
func degreesParam(params *domain.ParameterSet, name string, alternates ...string) (float64, error) {
	v, err := params.Value(name, alternates...)
	if err != nil {
		return 0, err
	}
	return v * d2r, nil
}

// MapProjection converts geographic degrees to projected coordinates in
// the projection's linear unit, or back when inverted. A third ordinate
// passes through unchanged.
type MapProjection struct {
	twin
	Unsupported

	info   domain.Info
	kind   Kind
	params *domain.ParameterSet
	base   *base
	impl   projector
}

// NewProjection creates a projection of the given kind. params must carry
// semi_major, semi_minor and unit (metres per unit) in addition to the
// method parameters.
func NewProjection(kind Kind, params *domain.ParameterSet) (*MapProjection, error) {
	if kind == KindPseudoMercator {
		params = sphericalParameters(params)
	} else {
		params = params.Clone()
	}

	b, err := newBase(params)
	if err != nil {
		return nil, err
	}

	info := domain.Info{Name: kind.String(), Authority: "EPSG", AuthorityCode: domain.NoAuthorityCode}
	var impl projector
	switch kind {
	case KindMercator:
		m := newMercator(&b, params)
		impl = m
		info.Name, info.AuthorityCode = "Mercator_1SP", 9804
		if m.twoSP {
			info.Name, info.AuthorityCode = "Mercator_2SP", 9805
		}
	case KindPseudoMercator:
		impl = newMercator(&b, params)
		info.AuthorityCode = 1024
	case KindTransverseMercator:
		impl = newTransverseMercator(&b)
		info.AuthorityCode = 9807
	case KindAlbers:
		impl, err = newAlbers(&b, params)
		info.AuthorityCode = 9822
	case KindKrovak:
		impl, err = newKrovak(&b, params)
		info.AuthorityCode = 9819
	case KindPolyconic:
		impl = newPolyconic(&b)
		info.AuthorityCode = 9818
	case KindLambertConformalConic2SP:
		impl, err = newLambertConformalConic(&b, params)
		info.AuthorityCode = 9802
	case KindCassiniSoldner:
		impl = newCassiniSoldner(&b)
		info.AuthorityCode = 9806
	case KindHotineObliqueMercator:
		impl, err = newHotine(&b, params, false)
		info.AuthorityCode = 9812
	case KindObliqueMercator:
		impl, err = newHotine(&b, params, true)
		info.AuthorityCode = 9815
	case KindObliqueStereographic:
		impl = newObliqueStereographic(&b)
		info.AuthorityCode = 9809
	default:
		return nil, fmt.Errorf("projection kind %d: %w", int(kind), domain.ErrNoTransformPath)
	}
	if err != nil {
		return nil, err
	}

	p := &MapProjection{info: info, kind: kind, params: params, base: &b, impl: impl}
	p.twin = newTwin(p)
	return p, nil
}

// sphericalParameters forces a sphere of radius semi_major and unit scale.
func sphericalParameters(params *domain.ParameterSet) *domain.ParameterSet {
	p := params.Clone()
	if a, err := p.Value("semi_major"); err == nil {
		p.Set("semi_minor", a)
	}
	p.Set("scale_factor", 1)
	return p
}

// Description returns the projection method metadata.
func (p *MapProjection) Description() domain.Info {
	return p.info
}

// Kind returns the projection method.
func (p *MapProjection) Kind() Kind {
	return p.kind
}

// Parameters returns a copy of the projection parameters.
func (p *MapProjection) Parameters() *domain.ParameterSet {
	return p.params.Clone()
}

// IsInverse reports whether the projection currently maps projected coordinates to degrees.
func (p *MapProjection) IsInverse() bool {
	return p.inverted()
}

// DimSource returns 2.
func (p *MapProjection) DimSource() int { return 2 }

// DimTarget returns 2.
func (p *MapProjection) DimTarget() int { return 2 }

// IsIdentity returns false.
func (p *MapProjection) IsIdentity() bool { return false }

// Transform projects lon/lat degrees to x/y, or back when inverted.
func (p *MapProjection) Transform(pt []float64) []float64 {
	if len(pt) < 2 {
		return []float64{}
	}
	if p.inverted() {
		return p.metersToDegrees(pt)
	}
	return p.degreesToMeters(pt)
}

// TransformList projects every point.
func (p *MapProjection) TransformList(points [][]float64) [][]float64 {
	return TransformAll(p, points)
}

// TransformChecked projects pt and reports an undefined result as ErrNoConvergence.
func (p *MapProjection) TransformChecked(pt []float64) ([]float64, error) {
	return TransformChecked(p, pt)
}

// Inverse returns the twin projection running the opposite direction.
func (p *MapProjection) Inverse() (MathTransform, error) {
	return p.inverse(func(w twin) MathTransform {
		inv := *p
		inv.twin = w
		return &inv
	}), nil
}

// EqualParams compares parameters and direction.
func (p *MapProjection) EqualParams(other *MapProjection) bool {
	if other == nil {
		return false
	}
	return p.kind == other.kind && p.params.Equal(other.params) && p.inverted() == other.inverted()
}

func (p *MapProjection) degreesToMeters(lonlat []float64) []float64 {
	x, y, ok := p.impl.forward(lonlat[0]*d2r, lonlat[1]*d2r)
	if !ok {
		return []float64{}
	}
	out := []float64{
		(x + p.base.falseEasting) / p.base.metersPerUnit,
		(y + p.base.falseNorthing) / p.base.metersPerUnit,
	}
	if len(lonlat) > 2 {
		out = append(out, lonlat[2]/p.base.metersPerUnit)
	}
	return out
}

func (p *MapProjection) metersToDegrees(xy []float64) []float64 {
	lam, phi, ok := p.impl.inverse(
		xy[0]*p.base.metersPerUnit-p.base.falseEasting,
		xy[1]*p.base.metersPerUnit-p.base.falseNorthing,
	)
	if !ok {
		return []float64{}
	}
	out := []float64{lam * r2d, phi * r2d}
	if len(xy) > 2 {
		out = append(out, xy[2]*p.base.metersPerUnit)
	}
	return out
}
