package wkt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jobrunner/meridian/internal/crs"
	"github.com/jobrunner/meridian/internal/domain"
	"github.com/jobrunner/meridian/internal/transform"
)

// Parse reads one WKT object: UNIT, SPHEROID, DATUM, PRIMEM, GEOGCS,
// PROJCS or FITTED_CS. COMPD_CS, VERT_CS, GEOCCS and LOCAL_CS fail with a
// ParseError wrapping ErrUnsupported; any other keyword with ErrParse.
func Parse(text string) (domain.Described, error) {
	p := newParser(text)
	kw, err := p.keyword()
	if err != nil {
		return nil, err
	}

	var obj domain.Described
	switch kw {
	case "UNIT":
		name, factor, info, err := p.readUnit()
		if err != nil {
			return nil, err
		}
		obj, err = p.unitByName(name, factor, info)
		if err != nil {
			return nil, err
		}
	case "SPHEROID":
		obj, err = p.readSpheroid()
	case "DATUM":
		obj, err = p.readDatum()
	case "PRIMEM":
		obj, err = p.readPrimeMeridian()
	default:
		obj, err = p.readCoordinateSystem(kw)
	}
	if err != nil {
		return nil, err
	}
	if err := p.end(); err != nil {
		return nil, err
	}
	return obj, nil
}

// ParseCoordinateSystem reads a GEOGCS, PROJCS or FITTED_CS definition.
func ParseCoordinateSystem(text string) (crs.CoordinateSystem, error) {
	p := newParser(text)
	kw, err := p.keyword()
	if err != nil {
		return nil, err
	}
	cs, err := p.readCoordinateSystem(kw)
	if err != nil {
		return nil, err
	}
	if err := p.end(); err != nil {
		return nil, err
	}
	return cs, nil
}

// ParseMathTransform reads a PARAM_MT definition. Only the Affine
// transform is supported.
func ParseMathTransform(text string) (transform.MathTransform, error) {
	p := newParser(text)
	kw, err := p.keyword()
	if err != nil {
		return nil, err
	}
	if kw != "PARAM_MT" {
		return nil, p.failAt(p.tz.Current(), "expected PARAM_MT")
	}
	mt, err := p.readMathTransform()
	if err != nil {
		return nil, err
	}
	if err := p.end(); err != nil {
		return nil, err
	}
	return mt, nil
}

// Split cuts text holding several definitions into one string per
// top-level object. Text between objects is dropped.
func Split(text string) []string {
	tz := NewTokenizer(text)
	var (
		out   []string
		depth int
		start = -1
	)
	for {
		before := tz.pos
		tok := tz.Next()
		switch {
		case tok.Type == TokenEOF:
			if depth > 0 && start >= 0 {
				out = append(out, strings.TrimSpace(string(tz.src[start:])))
			}
			return out
		case tok.Text == `"`:
			tz.readQuoted()
		case tok.Type == TokenWord && depth == 0:
			start = before + leadingSpace(tz.src[before:])
		case isOpen(tok):
			depth++
		case isClose(tok) && depth > 0:
			depth--
			if depth == 0 && start >= 0 {
				out = append(out, string(tz.src[start:tz.pos]))
				start = -1
			}
		}
	}
}

func leadingSpace(src []rune) int {
	n := 0
	for n < len(src) && classify(src[n]) != TokenWord {
		n++
	}
	return n
}

type parser struct {
	tz      *Tokenizer
	factory *crs.Factory
}

func newParser(text string) *parser {
	return &parser{tz: NewTokenizer(text), factory: crs.NewFactory()}
}

func isOpen(tok Token) bool {
	return tok.Type == TokenSymbol && (tok.Text == "[" || tok.Text == "(")
}

func isClose(tok Token) bool {
	return tok.Type == TokenSymbol && (tok.Text == "]" || tok.Text == ")")
}

func (p *parser) failAt(tok Token, format string, args ...any) error {
	text := tok.Text
	if tok.Type == TokenEOF {
		text = ""
	}
	return &domain.ParseError{
		Line:    tok.Line,
		Column:  tok.Column,
		Token:   text,
		Message: fmt.Sprintf(format, args...),
		Err:     domain.ErrParse,
	}
}

func (p *parser) unsupportedAt(tok Token, format string, args ...any) error {
	err := p.failAt(tok, format, args...).(*domain.ParseError)
	err.Err = domain.ErrUnsupported
	return err
}

// invalid turns a constructor failure into a parse error at the current token.
func (p *parser) invalid(err error) error {
	var pe *domain.ParseError
	if errors.As(err, &pe) {
		return err
	}
	return p.failAt(p.tz.Current(), "%v", err)
}

func (p *parser) keyword() (string, error) {
	tok := p.tz.Next()
	if tok.Type == TokenEOF {
		return "", p.failAt(tok, "empty definition")
	}
	if tok.Type != TokenWord {
		return "", p.failAt(tok, "expected a keyword")
	}
	return strings.ToUpper(tok.Text), nil
}

func (p *parser) end() error {
	if tok := p.tz.Next(); tok.Type != TokenEOF {
		return p.failAt(tok, "unexpected text after definition")
	}
	return nil
}

func (p *parser) open() error {
	if tok := p.tz.Next(); !isOpen(tok) {
		return p.failAt(tok, "expected '['")
	}
	return nil
}

func (p *parser) comma() error {
	if tok := p.tz.Next(); tok.Text != "," {
		return p.failAt(tok, "expected ','")
	}
	return nil
}

func (p *parser) quoted() (string, error) {
	tok := p.tz.Next()
	if tok.Text != `"` {
		return "", p.failAt(tok, "expected a quoted string")
	}
	s, ok := p.tz.readQuoted()
	if !ok {
		return "", p.failAt(tok, "unterminated quoted string")
	}
	return s, nil
}

func (p *parser) number() (float64, error) {
	tok := p.tz.Next()
	v, ok := tok.Number()
	if !ok {
		return 0, p.failAt(tok, "expected a number")
	}
	return v, nil
}

// header reads `[ "name"` and a `, number` for each value.
func (p *parser) header(values ...*float64) (string, error) {
	if err := p.open(); err != nil {
		return "", err
	}
	name, err := p.quoted()
	if err != nil {
		return "", err
	}
	for _, v := range values {
		if err := p.comma(); err != nil {
			return "", err
		}
		if *v, err = p.number(); err != nil {
			return "", err
		}
	}
	return name, nil
}

// clauses reads `, KEYWORD[...]` items up to the closing bracket and hands
// each keyword to fn. A trailing comma before the bracket is accepted.
func (p *parser) clauses(fn func(kw string) error) error {
	for {
		tok := p.tz.Next()
		switch {
		case isClose(tok):
			return nil
		case tok.Text != ",":
			return p.failAt(tok, "expected ',' or ']'")
		}

		tok = p.tz.Next()
		if isClose(tok) {
			return nil
		}
		if tok.Type != TokenWord {
			return p.failAt(tok, "expected a keyword")
		}
		if err := fn(strings.ToUpper(tok.Text)); err != nil {
			return err
		}
	}
}

// skip consumes a clause this reader does not interpret, such as EXTENSION.
func (p *parser) skip() error {
	if err := p.open(); err != nil {
		return err
	}
	for depth := 1; depth > 0; {
		tok := p.tz.Next()
		switch {
		case tok.Type == TokenEOF:
			return p.failAt(tok, "unbalanced brackets")
		case tok.Text == `"`:
			if _, ok := p.tz.readQuoted(); !ok {
				return p.failAt(tok, "unterminated quoted string")
			}
		case isOpen(tok):
			depth++
		case isClose(tok):
			depth--
		}
	}
	return nil
}

// readAuthority reads `["EPSG","4326"]`; the code may also be a bare number.
func (p *parser) readAuthority() (string, int64, error) {
	if err := p.open(); err != nil {
		return "", 0, err
	}
	authority, err := p.quoted()
	if err != nil {
		return "", 0, err
	}
	if err := p.comma(); err != nil {
		return "", 0, err
	}

	tok := p.tz.Next()
	var text string
	switch {
	case tok.Type == TokenNumber:
		text = tok.Text
	case tok.Text == `"`:
		s, ok := p.tz.readQuoted()
		if !ok {
			return "", 0, p.failAt(tok, "unterminated quoted string")
		}
		text = strings.TrimSpace(s)
	default:
		return "", 0, p.failAt(tok, "expected an authority code")
	}
	code, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return "", 0, p.failAt(tok, "authority code %q is not an integer", text)
	}

	if tok := p.tz.Next(); !isClose(tok) {
		return "", 0, p.failAt(tok, "expected ']'")
	}
	return authority, code, nil
}

// metadata collects the name and AUTHORITY of the object being read.
type metadata struct {
	domain.Info
}

func newMetadata(name string) metadata {
	return metadata{domain.Info{Name: name, AuthorityCode: domain.NoAuthorityCode}}
}

func (m *metadata) authority(p *parser) error {
	var err error
	m.Authority, m.AuthorityCode, err = p.readAuthority()
	return err
}

// simple reads the trailing clauses of a leaf object: AUTHORITY only.
func (p *parser) simple(m *metadata) error {
	return p.clauses(func(kw string) error {
		if kw == "AUTHORITY" {
			return m.authority(p)
		}
		return p.skip()
	})
}

func (p *parser) readUnit() (string, float64, domain.Info, error) {
	var factor float64
	name, err := p.header(&factor)
	if err != nil {
		return "", 0, domain.Info{}, err
	}
	m := newMetadata(name)
	if err := p.simple(&m); err != nil {
		return "", 0, domain.Info{}, err
	}
	return name, factor, m.Info, nil
}

func (p *parser) readAngularUnit() (domain.AngularUnit, error) {
	_, factor, info, err := p.readUnit()
	if err != nil {
		return domain.AngularUnit{}, err
	}
	u, err := p.factory.CreateAngularUnit(info, factor)
	if err != nil {
		return domain.AngularUnit{}, p.invalid(err)
	}
	return u, nil
}

func (p *parser) readLinearUnit() (domain.LinearUnit, error) {
	_, factor, info, err := p.readUnit()
	if err != nil {
		return domain.LinearUnit{}, err
	}
	u, err := p.factory.CreateLinearUnit(info, factor)
	if err != nil {
		return domain.LinearUnit{}, p.invalid(err)
	}
	return u, nil
}

// angularUnitNames lists the unit names a standalone UNIT treats as angles.
var angularUnitNames = map[string]bool{
	"degree": true, "degrees": true, "radian": true, "radians": true,
	"grad": true, "gon": true, "arc-second": true, "arc-minute": true,
	"microradian": true, "degree_(supplier_to_define_representation)": true,
}

// unitByName decides the kind of a standalone UNIT, which WKT does not
// state, from its name.
func (p *parser) unitByName(name string, factor float64, info domain.Info) (domain.Unit, error) {
	if angularUnitNames[domain.NormalizeName(name)] {
		u, err := p.factory.CreateAngularUnit(info, factor)
		if err != nil {
			return nil, p.invalid(err)
		}
		return u, nil
	}
	u, err := p.factory.CreateLinearUnit(info, factor)
	if err != nil {
		return nil, p.invalid(err)
	}
	return u, nil
}

// readSpheroid reads `["name", a, ivf]` in metres. An inverse flattening
// of 0 describes a sphere.
func (p *parser) readSpheroid() (domain.Ellipsoid, error) {
	var a, ivf float64
	name, err := p.header(&a, &ivf)
	if err != nil {
		return domain.Ellipsoid{}, err
	}
	m := newMetadata(name)
	if err := p.simple(&m); err != nil {
		return domain.Ellipsoid{}, err
	}

	var e domain.Ellipsoid
	if ivf == 0 {
		e, err = p.factory.CreateEllipsoid(m.Info, a, a, domain.Metre())
	} else {
		e, err = p.factory.CreateFlattenedSphere(m.Info, a, ivf, domain.Metre())
	}
	if err != nil {
		return domain.Ellipsoid{}, p.invalid(err)
	}
	return e, nil
}

// readToWGS84 reads 3, 6 or 7 Bursa-Wolf values.
func (p *parser) readToWGS84() (*domain.Wgs84ConversionInfo, error) {
	if err := p.open(); err != nil {
		return nil, err
	}
	start := p.tz.Current()
	var values []float64
	for {
		v, err := p.number()
		if err != nil {
			return nil, err
		}
		values = append(values, v)

		tok := p.tz.Next()
		if isClose(tok) {
			break
		}
		if tok.Text != "," {
			return nil, p.failAt(tok, "expected ',' or ']'")
		}
	}

	var v [7]float64
	switch len(values) {
	case 3, 6, 7:
		copy(v[:], values)
	default:
		return nil, p.failAt(start, "TOWGS84 takes 3, 6 or 7 values, got %d", len(values))
	}
	return domain.NewWgs84ConversionInfo(v[0], v[1], v[2], v[3], v[4], v[5], v[6]), nil
}

// readDatum reads a horizontal datum. WKT does not carry the datum type;
// geocentric is assumed.
func (p *parser) readDatum() (domain.HorizontalDatum, error) {
	name, err := p.header()
	if err != nil {
		return domain.HorizontalDatum{}, err
	}
	m := newMetadata(name)
	var (
		ellipsoid *domain.Ellipsoid
		toWGS84   *domain.Wgs84ConversionInfo
	)
	err = p.clauses(func(kw string) error {
		switch kw {
		case "SPHEROID":
			e, err := p.readSpheroid()
			ellipsoid = &e
			return err
		case "TOWGS84":
			var err error
			toWGS84, err = p.readToWGS84()
			return err
		case "AUTHORITY":
			return m.authority(p)
		default:
			return p.skip()
		}
	})
	if err != nil {
		return domain.HorizontalDatum{}, err
	}
	if ellipsoid == nil {
		return domain.HorizontalDatum{}, p.failAt(p.tz.Current(), "DATUM %q has no SPHEROID", name)
	}

	d, err := p.factory.CreateHorizontalDatum(m.Info, domain.DatumGeocentric, *ellipsoid, toWGS84)
	if err != nil {
		return domain.HorizontalDatum{}, p.invalid(err)
	}
	return d, nil
}

// readPrimeMeridian reads `["name", longitude]` with the longitude in degrees.
func (p *parser) readPrimeMeridian() (domain.PrimeMeridian, error) {
	var lon float64
	name, err := p.header(&lon)
	if err != nil {
		return domain.PrimeMeridian{}, err
	}
	m := newMetadata(name)
	if err := p.simple(&m); err != nil {
		return domain.PrimeMeridian{}, err
	}
	pm, err := p.factory.CreatePrimeMeridian(m.Info, domain.Degrees(), lon)
	if err != nil {
		return domain.PrimeMeridian{}, p.invalid(err)
	}
	return pm, nil
}

// readAxis reads `["name", EAST]`; the orientation may also be quoted.
func (p *parser) readAxis() (domain.AxisInfo, error) {
	name, err := p.header()
	if err != nil {
		return domain.AxisInfo{}, err
	}
	if err := p.comma(); err != nil {
		return domain.AxisInfo{}, err
	}

	tok := p.tz.Next()
	word := tok.Text
	switch {
	case tok.Type == TokenWord:
	case tok.Text == `"`:
		s, ok := p.tz.readQuoted()
		if !ok {
			return domain.AxisInfo{}, p.failAt(tok, "unterminated quoted string")
		}
		word = s
	default:
		return domain.AxisInfo{}, p.failAt(tok, "expected an axis orientation")
	}
	orientation, ok := domain.ParseAxisOrientation(word)
	if !ok {
		return domain.AxisInfo{}, p.failAt(tok, "invalid axis orientation %q", word)
	}

	if tok := p.tz.Next(); !isClose(tok) {
		return domain.AxisInfo{}, p.failAt(tok, "expected ']'")
	}
	return domain.AxisInfo{Name: name, Orientation: orientation}, nil
}

func (p *parser) readParameter() (domain.Parameter, error) {
	var v float64
	name, err := p.header(&v)
	if err != nil {
		return domain.Parameter{}, err
	}
	if tok := p.tz.Next(); !isClose(tok) {
		return domain.Parameter{}, p.failAt(tok, "expected ']'")
	}
	return domain.Parameter{Name: name, Value: v}, nil
}

func (p *parser) readProjection() (domain.Info, string, error) {
	name, err := p.header()
	if err != nil {
		return domain.Info{}, "", err
	}
	m := newMetadata(name)
	if err := p.simple(&m); err != nil {
		return domain.Info{}, "", err
	}
	return m.Info, name, nil
}
