package domain

// PrimeMeridian is the zero longitude of a geographic coordinate system,
// expressed as a longitude relative to Greenwich in its own angular unit.
type PrimeMeridian struct {
	Info
	Longitude   float64
	AngularUnit AngularUnit
}

// NewPrimeMeridian creates a prime meridian.
func NewPrimeMeridian(longitude float64, unit AngularUnit, info Info) PrimeMeridian {
	return PrimeMeridian{Info: info, Longitude: longitude, AngularUnit: unit}
}

// Radians returns the meridian longitude in radians.
func (p PrimeMeridian) Radians() float64 {
	return p.AngularUnit.ToRadians(p.Longitude)
}

// Degrees returns the meridian longitude in decimal degrees.
func (p PrimeMeridian) Degrees() float64 {
	return Degrees().FromRadians(p.Radians())
}

// EqualParams compares longitude and unit.
func (p PrimeMeridian) EqualParams(other PrimeMeridian) bool {
	return p.AngularUnit.EqualParams(other.AngularUnit) && p.Longitude == other.Longitude
}

func meridian(name string, code int64, degrees float64) PrimeMeridian {
	return NewPrimeMeridian(degrees, Degrees(), Info{Name: name, Authority: "EPSG", AuthorityCode: code})
}

// Greenwich returns the Greenwich meridian (EPSG:8901).
func Greenwich() PrimeMeridian { return meridian("Greenwich", 8901, 0) }

// Lisbon returns the Lisbon meridian (EPSG:8902).
func Lisbon() PrimeMeridian { return meridian("Lisbon", 8902, -9.0754862) }

// Paris returns the Paris meridian (EPSG:8903), defined in grads.
func Paris() PrimeMeridian {
	return NewPrimeMeridian(2.5969213, Grad(), Info{Name: "Paris", Authority: "EPSG", AuthorityCode: 8903})
}

// Bogota returns the Bogota meridian (EPSG:8904).
func Bogota() PrimeMeridian { return meridian("Bogota", 8904, -74.04513) }

// Madrid returns the Madrid meridian (EPSG:8905).
func Madrid() PrimeMeridian { return meridian("Madrid", 8905, -3.411658) }

// Rome returns the Rome meridian (EPSG:8906).
func Rome() PrimeMeridian { return meridian("Rome", 8906, 12.27084) }

// Bern returns the Bern meridian (EPSG:8907).
func Bern() PrimeMeridian { return meridian("Bern", 8907, 7.26225) }

// Jakarta returns the Jakarta meridian (EPSG:8908).
func Jakarta() PrimeMeridian { return meridian("Jakarta", 8908, 106.482779) }

// Ferro returns the Ferro meridian (EPSG:8909).
func Ferro() PrimeMeridian { return meridian("Ferro", 8909, -17.66666666666667) }

// Brussels returns the Brussels meridian (EPSG:8910).
func Brussels() PrimeMeridian { return meridian("Brussels", 8910, 4.220471) }

// Stockholm returns the Stockholm meridian (EPSG:8911).
func Stockholm() PrimeMeridian { return meridian("Stockholm", 8911, 18.03298) }

// Athens returns the Athens meridian (EPSG:8912).
func Athens() PrimeMeridian { return meridian("Athens", 8912, 23.4258815) }

// Oslo returns the Oslo meridian (EPSG:8913).
func Oslo() PrimeMeridian { return meridian("Oslo", 8913, 10.43225) }
