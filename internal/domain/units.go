package domain

import "math"

// angularTolerance is the absolute tolerance used when comparing radians-per-unit factors.
const angularTolerance = 2.0e-17

// Unit is implemented by LinearUnit and AngularUnit.
type Unit interface {
	Described
	unit()
}

// LinearUnit is a unit of length.
type LinearUnit struct {
	Info
	MetersPerUnit float64
}

func (LinearUnit) unit() {}

// EqualParams compares the conversion factor only.
func (u LinearUnit) EqualParams(other LinearUnit) bool {
	return u.MetersPerUnit == other.MetersPerUnit
}

// AngularUnit is a unit of angle.
type AngularUnit struct {
	Info
	RadiansPerUnit float64
}

func (AngularUnit) unit() {}

// EqualParams compares the conversion factor within a tiny tolerance.
func (u AngularUnit) EqualParams(other AngularUnit) bool {
	return math.Abs(u.RadiansPerUnit-other.RadiansPerUnit) < angularTolerance
}

// ToRadians converts a value in this unit to radians.
func (u AngularUnit) ToRadians(v float64) float64 {
	return v * u.RadiansPerUnit
}

// FromRadians converts radians to this unit.
func (u AngularUnit) FromRadians(v float64) float64 {
	return v / u.RadiansPerUnit
}

// Metre returns the SI metre (EPSG:9001).
func Metre() LinearUnit {
	return LinearUnit{Info: unitInfo("metre", 9001, "m"), MetersPerUnit: 1}
}

// Foot returns the international foot (EPSG:9002).
func Foot() LinearUnit {
	return LinearUnit{Info: unitInfo("foot", 9002, "ft"), MetersPerUnit: 0.3048}
}

// USSurveyFoot returns the US survey foot (EPSG:9003).
func USSurveyFoot() LinearUnit {
	return LinearUnit{Info: unitInfo("US survey foot", 9003, "American foot"), MetersPerUnit: 0.304800609601219}
}

// NauticalMile returns the international nautical mile (EPSG:9030).
func NauticalMile() LinearUnit {
	return LinearUnit{Info: unitInfo("nautical mile", 9030, "NM"), MetersPerUnit: 1852}
}

// ClarkesFoot returns Clarke's foot (EPSG:9005).
func ClarkesFoot() LinearUnit {
	return LinearUnit{Info: unitInfo("Clarke's foot", 9005, "ClarkeFt"), MetersPerUnit: 0.3047972654}
}

// Degrees returns the decimal degree (EPSG:9102).
func Degrees() AngularUnit {
	return AngularUnit{Info: unitInfo("degree", 9102, "deg"), RadiansPerUnit: 0.017453292519943295769236907684886}
}

// Radian returns the SI radian (EPSG:9101).
func Radian() AngularUnit {
	return AngularUnit{Info: unitInfo("radian", 9101, "rad"), RadiansPerUnit: 1}
}

// Grad returns the grad (EPSG:9105).
func Grad() AngularUnit {
	return AngularUnit{Info: unitInfo("grad", 9105, "gr"), RadiansPerUnit: 0.015707963267948966192313216916398}
}

// Gon returns the gon (EPSG:9106).
func Gon() AngularUnit {
	return AngularUnit{Info: unitInfo("gon", 9106, "g"), RadiansPerUnit: 0.015707963267948966192313216916398}
}

func unitInfo(name string, code int64, abbreviation string) Info {
	return Info{Name: name, Authority: "EPSG", AuthorityCode: code, Abbreviation: abbreviation}
}
