package wkt

import (
	"errors"
	"math"
	"testing"

	"github.com/jobrunner/meridian/internal/crs"
	"github.com/jobrunner/meridian/internal/domain"
	"github.com/jobrunner/meridian/internal/operation"
	"github.com/jobrunner/meridian/internal/transform"
)

const wgs84WKT = `GEOGCS["WGS 84",
    DATUM["WGS_1984",
        SPHEROID["WGS 84",6378137,298.257223563,AUTHORITY["EPSG","7030"]],
        AUTHORITY["EPSG","6326"]],
    PRIMEM["Greenwich",0,AUTHORITY["EPSG","8901"]],
    UNIT["degree",0.0174532925199433,AUTHORITY["EPSG","9122"]],
    AUTHORITY["EPSG","4326"]]`

const utm32WKT = `PROJCS["WGS 84 / UTM zone 32N",
    GEOGCS["WGS 84",
        DATUM["WGS_1984",
            SPHEROID["WGS 84",6378137,298.257223563,AUTHORITY["EPSG","7030"]],
            AUTHORITY["EPSG","6326"]],
        PRIMEM["Greenwich",0,AUTHORITY["EPSG","8901"]],
        UNIT["degree",0.0174532925199433,AUTHORITY["EPSG","9122"]],
        AUTHORITY["EPSG","4326"]],
    PROJECTION["Transverse_Mercator"],
    PARAMETER["latitude_of_origin",0],
    PARAMETER["central_meridian",9],
    PARAMETER["scale_factor",0.9996],
    PARAMETER["false_easting",500000],
    PARAMETER["false_northing",0],
    UNIT["metre",1,AUTHORITY["EPSG","9001"]],
    AXIS["Easting",EAST],
    AXIS["Northing",NORTH],
    AUTHORITY["EPSG","32632"]]`

// esriPRJ is laid out the way ESRI writes .prj sidecar files.
const esriPRJ = `PROJCS["ETRS_1989_UTM_Zone_33N",GEOGCS["GCS_ETRS_1989",DATUM["D_ETRS_1989",SPHEROID["GRS_1980",6378137.0,298.257222101]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]],PROJECTION["Transverse_Mercator"],PARAMETER["False_Easting",500000.0],PARAMETER["False_Northing",0.0],PARAMETER["Central_Meridian",15.0],PARAMETER["Scale_Factor",0.9996],PARAMETER["Latitude_Of_Origin",0.0],UNIT["Meter",1.0]]`

const fittedWKT = `FITTED_CS["Local coordinate system MNAU (based on Gauss-Krueger)",
    PARAM_MT["Affine",
        PARAMETER["num_row",3],
        PARAMETER["num_col",3],
        PARAMETER["elt_0_0", 0.883485346527455],
        PARAMETER["elt_0_1", -0.468458794848877],
        PARAMETER["elt_0_2", 3455869.17937689],
        PARAMETER["elt_1_0", 0.468458794848877],
        PARAMETER["elt_1_1", 0.883485346527455],
        PARAMETER["elt_1_2", 5478710.88035753],
        PARAMETER["elt_2_2", 1],
        ],
    PROJCS["DHDN / Gauss-Kruger zone 3", GEOGCS["DHDN", DATUM["Deutsches_Hauptdreiecksnetz", SPHEROID["Bessel 1841", 6377397.155, 299.1528128, AUTHORITY["EPSG", "7004"]], TOWGS84[612.4, 77, 440.2, -0.054, 0.057, -2.797, 0.525975255930096], AUTHORITY["EPSG", "6314"]], PRIMEM["Greenwich", 0, AUTHORITY["EPSG", "8901"]], UNIT["degree", 0.0174532925199433, AUTHORITY["EPSG", "9122"]], AUTHORITY["EPSG", "4314"]], UNIT["metre", 1, AUTHORITY["EPSG", "9001"]], PROJECTION["Transverse_Mercator"], PARAMETER["latitude_of_origin", 0], PARAMETER["central_meridian", 9], PARAMETER["scale_factor", 1], PARAMETER["false_easting", 3500000], PARAMETER["false_northing", 0], AUTHORITY["EPSG", "31467"]],
    AUTHORITY["CUSTOM","12345"]]`

func TestParseWGS84(t *testing.T) {
	obj, err := Parse(wgs84WKT)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	geo, ok := obj.(*crs.GeographicCS)
	if !ok {
		t.Fatalf("Parse() = %T, want *crs.GeographicCS", obj)
	}

	if got := geo.Datum.Ellipsoid.SemiMajorAxis; got != 6378137 {
		t.Errorf("semi-major axis = %v, want 6378137", got)
	}
	if got := geo.Datum.AuthorityCode; got != 6326 {
		t.Errorf("datum code = %d, want 6326", got)
	}
	if got := geo.Key(); got != "EPSG:4326" {
		t.Errorf("Key() = %q", got)
	}
	if geo.Dimension() != 2 || geo.Axis(0).Orientation != domain.AxisEast {
		t.Errorf("axes = %v, want default Lon/Lat", geo.Axes)
	}
	if !geo.EqualParams(crs.WGS84()) {
		t.Error("parsed WGS 84 does not match the built-in definition")
	}
}

func TestParseProjected(t *testing.T) {
	cs, err := ParseCoordinateSystem(utm32WKT)
	if err != nil {
		t.Fatalf("ParseCoordinateSystem() error = %v", err)
	}
	proj, ok := cs.(*crs.ProjectedCS)
	if !ok {
		t.Fatalf("got %T, want *crs.ProjectedCS", cs)
	}
	if proj.Projection.ClassName != "Transverse_Mercator" {
		t.Errorf("class = %q", proj.Projection.ClassName)
	}
	if k, _ := proj.Projection.Parameters.Value("scale_factor"); k != 0.9996 {
		t.Errorf("scale_factor = %v", k)
	}
	if first, _ := proj.Projection.Parameters.At(0); first.Name != "latitude_of_origin" {
		t.Errorf("first parameter = %q, want WKT order", first.Name)
	}
	if proj.LinearUnit.MetersPerUnit != 1 || proj.AuthorityCode != 32632 {
		t.Errorf("unit = %v, code = %d", proj.LinearUnit, proj.AuthorityCode)
	}

	ct, err := operation.NewFactory(nil).CreateFromCoordinateSystems(crs.WGS84(), proj)
	if err != nil {
		t.Fatal(err)
	}
	got := ct.Transform([]float64{9, 0})
	if math.Abs(got[0]-500000) > 1e-6 || math.Abs(got[1]) > 1e-6 {
		t.Errorf("Transform(9, 0) = %v, want (500000, 0)", got)
	}

	builtin, _ := crs.WGS84UTM(32, true)
	if !proj.EqualParams(builtin) {
		t.Error("parsed zone 32N does not match the built-in definition")
	}
}

func TestParseESRIPrj(t *testing.T) {
	cs, err := ParseCoordinateSystem(esriPRJ)
	if err != nil {
		t.Fatalf("ParseCoordinateSystem() error = %v", err)
	}
	proj := cs.(*crs.ProjectedCS)
	if proj.HasAuthority() {
		t.Errorf("authority = %q:%d, want none", proj.Authority, proj.AuthorityCode)
	}
	if lon0, err := proj.Projection.Parameters.Value("central_meridian"); err != nil || lon0 != 15 {
		t.Errorf("central_meridian = %v, %v", lon0, err)
	}
	if proj.Geographic.Datum.Wgs84 != nil {
		t.Error("datum without TOWGS84 has a shift")
	}
}

func TestParseFitted(t *testing.T) {
	cs, err := ParseCoordinateSystem(fittedWKT)
	if err != nil {
		t.Fatalf("ParseCoordinateSystem() error = %v", err)
	}
	fitted, ok := cs.(*crs.FittedCS)
	if !ok {
		t.Fatalf("got %T, want *crs.FittedCS", cs)
	}
	if fitted.Key() != "CUSTOM:12345" {
		t.Errorf("Key() = %q", fitted.Key())
	}

	base, ok := fitted.Base.(*crs.ProjectedCS)
	if !ok {
		t.Fatalf("base = %T, want *crs.ProjectedCS", fitted.Base)
	}
	shift := base.Geographic.Datum.Wgs84
	if shift == nil || shift.Dx != 612.4 || shift.Ez != -2.797 || shift.Ppm != 0.525975255930096 {
		t.Errorf("TOWGS84 = %+v", shift)
	}

	affine, ok := fitted.ToBase.(*transform.AffineTransform)
	if !ok {
		t.Fatalf("ToBase = %T, want *transform.AffineTransform", fitted.ToBase)
	}
	got := affine.Transform([]float64{0, 0})
	if math.Abs(got[0]-3455869.17937689) > 1e-6 || math.Abs(got[1]-5478710.88035753) > 1e-6 {
		t.Errorf("ToBase(0, 0) = %v", got)
	}
}

func TestParseLeafObjects(t *testing.T) {
	t.Run("angular unit", func(t *testing.T) {
		obj, err := Parse(`UNIT["degree",0.0174532925199433,AUTHORITY["EPSG","9122"]]`)
		if err != nil {
			t.Fatal(err)
		}
		u, ok := obj.(domain.AngularUnit)
		if !ok || u.AuthorityCode != 9122 {
			t.Errorf("Parse() = %#v", obj)
		}
	})

	t.Run("linear unit", func(t *testing.T) {
		obj, err := Parse(`UNIT["US survey foot",0.304800609601219]`)
		if err != nil {
			t.Fatal(err)
		}
		if u, ok := obj.(domain.LinearUnit); !ok || u.MetersPerUnit != 0.304800609601219 {
			t.Errorf("Parse() = %#v", obj)
		}
	})

	t.Run("sphere", func(t *testing.T) {
		obj, err := Parse(`SPHEROID["Sphere",6371000,0]`)
		if err != nil {
			t.Fatal(err)
		}
		e := obj.(domain.Ellipsoid)
		if e.SemiMinorAxis != 6371000 || e.InverseFlattening != 0 {
			t.Errorf("sphere = %+v", e)
		}
	})

	t.Run("datum with three parameter shift", func(t *testing.T) {
		obj, err := Parse(`DATUM["European_Datum_1950",SPHEROID["International 1924",6378388,297],TOWGS84[-87,-98,-121],AUTHORITY["EPSG","6230"]]`)
		if err != nil {
			t.Fatal(err)
		}
		d := obj.(domain.HorizontalDatum)
		if !d.Wgs84.Equal(domain.NewWgs84ConversionInfo(-87, -98, -121, 0, 0, 0, 0)) {
			t.Errorf("TOWGS84 = %v", d.Wgs84)
		}
		if d.Type != domain.DatumGeocentric || d.AuthorityCode != 6230 {
			t.Errorf("datum = %+v", d)
		}
	})

	t.Run("prime meridian in degrees", func(t *testing.T) {
		obj, err := Parse(`PRIMEM["Paris",2.33722917,AUTHORITY["EPSG","8903"]]`)
		if err != nil {
			t.Fatal(err)
		}
		pm := obj.(domain.PrimeMeridian)
		if math.Abs(pm.Degrees()-domain.Paris().Degrees()) > 1e-9 {
			t.Errorf("Paris = %v degrees", pm.Degrees())
		}
	})
}

func TestParseAxes(t *testing.T) {
	cs, err := ParseCoordinateSystem(`GEOGCS["lat first",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563]],PRIMEM["Greenwich",0],UNIT["degree",0.0174532925199433],AXIS["Lat","NORTH"],AXIS["Lon",EAST]]`)
	if err != nil {
		t.Fatal(err)
	}
	if cs.Axis(0).Orientation != domain.AxisNorth || cs.Axis(1).Orientation != domain.AxisEast {
		t.Errorf("axes = %v, %v", cs.Axis(0), cs.Axis(1))
	}
	if cs.EqualParams(crs.WGS84()) {
		t.Error("latitude-first system compares equal to WGS 84")
	}
}

func TestParseSkipsExtensions(t *testing.T) {
	text := `PROJCS["WGS 84 / Pseudo-Mercator",GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563]],PRIMEM["Greenwich",0],UNIT["degree",0.0174532925199433]],PROJECTION["Mercator_1SP"],PARAMETER["central_meridian",0],PARAMETER["scale_factor",1],PARAMETER["false_easting",0],PARAMETER["false_northing",0],UNIT["metre",1],EXTENSION["PROJ4","+proj=merc +a=6378137 +b=6378137 [nadgrids=@null]"],AUTHORITY["EPSG","3857"]]`
	cs, err := ParseCoordinateSystem(text)
	if err != nil {
		t.Fatalf("ParseCoordinateSystem() error = %v", err)
	}
	if cs.Description().AuthorityCode != 3857 {
		t.Errorf("code = %d", cs.Description().AuthorityCode)
	}
}

func TestParseMathTransform(t *testing.T) {
	mt, err := ParseMathTransform(`PARAM_MT["Affine",PARAMETER["num_row",3],PARAMETER["num_col",3],PARAMETER["elt_0_2",10],PARAMETER["elt_1_2",-5],PARAMETER["elt_7_7",99]]`)
	if err != nil {
		t.Fatalf("ParseMathTransform() error = %v", err)
	}
	affine := mt.(*transform.AffineTransform)
	want := [][]float64{{1, 0, 10}, {0, 1, -5}, {0, 0, 1}}
	got := affine.Matrix()
	for r := range want {
		for c := range want[r] {
			if got[r][c] != want[r][c] {
				t.Fatalf("Matrix() = %v, want %v", got, want)
			}
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		unsupported bool
	}{
		{"empty", "", false},
		{"unknown keyword", `FOO["x"]`, false},
		{"compound", `COMPD_CS["x",GEOGCS["y"]]`, true},
		{"vertical", `VERT_CS["x"]`, true},
		{"geocentric", `GEOCCS["x"]`, true},
		{"local", `LOCAL_CS["x"]`, true},
		{"missing projection", `PROJCS["x",GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563]],PRIMEM["Greenwich",0],UNIT["degree",0.0174532925199433]],UNIT["metre",1]]`, false},
		{"missing spheroid", `DATUM["x",AUTHORITY["EPSG","1"]]`, false},
		{"bad towgs84 count", `DATUM["x",SPHEROID["s",6378137,298],TOWGS84[1,2,3,4,5]]`, false},
		{"bad axis", `GEOGCS["x",DATUM["d",SPHEROID["s",6378137,298]],PRIMEM["p",0],UNIT["degree",0.0174532925199433],AXIS["Lat",SIDEWAYS]]`, false},
		{"unterminated string", `UNIT["metre,1]`, false},
		{"missing bracket", `UNIT["metre",1`, false},
		{"trailing text", `UNIT["metre",1] UNIT["foot",0.3048]`, false},
		{"non numeric authority", `UNIT["metre",1,AUTHORITY["EPSG","abc"]]`, false},
		{"zero unit", `UNIT["metre",0]`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			var pe *domain.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Parse() error = %v, want *domain.ParseError", err)
			}
			if pe.Line < 1 || pe.Column < 1 {
				t.Errorf("position = %d:%d", pe.Line, pe.Column)
			}
			if got := errors.Is(err, domain.ErrUnsupported); got != tt.unsupported {
				t.Errorf("errors.Is(ErrUnsupported) = %v, want %v", got, tt.unsupported)
			}
			if !tt.unsupported && !errors.Is(err, domain.ErrParse) {
				t.Errorf("error %v does not wrap ErrParse", err)
			}
		})
	}
}

func TestParseMathTransformErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		is    error
	}{
		{"not a transform", `UNIT["metre",1]`, domain.ErrParse},
		{"unsupported method", `PARAM_MT["Exponential",PARAMETER["base",2]]`, domain.ErrUnsupported},
		{"missing size", `PARAM_MT["Affine",PARAMETER["num_row",3]]`, domain.ErrParse},
		{"fractional size", `PARAM_MT["Affine",PARAMETER["num_row",2.5],PARAMETER["num_col",3]]`, domain.ErrParse},
		{"oversized rows", `PARAM_MT["Affine",PARAMETER["num_row",1500],PARAMETER["num_col",1500]]`, domain.ErrParse},
		{"five columns", `PARAM_MT["Affine",PARAMETER["num_row",4],PARAMETER["num_col",5]]`, domain.ErrParse},
		{"singular matrix", `PARAM_MT["Affine",PARAMETER["num_row",3],PARAMETER["num_col",3],PARAMETER["elt_1_1",0]]`, domain.ErrParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseMathTransform(tt.input); !errors.Is(err, tt.is) {
				t.Errorf("ParseMathTransform() error = %v, want %v", err, tt.is)
			}
		})
	}
}

func TestSplit(t *testing.T) {
	text := "# two definitions\n" + wgs84WKT + "\n\n" + `UNIT["a ]bracket",1]` + "\n"
	parts := Split(text)
	if len(parts) != 2 {
		t.Fatalf("Split() = %d parts: %q", len(parts), parts)
	}
	if parts[0] != wgs84WKT {
		t.Errorf("first part = %q", parts[0])
	}
	if parts[1] != `UNIT["a ]bracket",1]` {
		t.Errorf("second part = %q", parts[1])
	}
	for _, part := range parts {
		if _, err := Parse(part); err != nil {
			t.Errorf("Parse(%q) error = %v", part, err)
		}
	}
}
