package domain

import "strings"

// AxisOrientation is the direction in which an ordinate increases.
type AxisOrientation int

// Axis orientations.
const (
	AxisOther AxisOrientation = iota
	AxisNorth
	AxisSouth
	AxisEast
	AxisWest
	AxisUp
	AxisDown
)

var orientationNames = [...]string{"OTHER", "NORTH", "SOUTH", "EAST", "WEST", "UP", "DOWN"}

// String returns the WKT spelling of the orientation.
func (o AxisOrientation) String() string {
	if int(o) < 0 || int(o) >= len(orientationNames) {
		return "OTHER"
	}
	return orientationNames[o]
}

// ParseAxisOrientation maps a WKT orientation keyword to its value.
func ParseAxisOrientation(s string) (AxisOrientation, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range orientationNames {
		if name == s {
			return AxisOrientation(i), true
		}
	}
	return AxisOther, false
}

// AxisInfo names one axis of a coordinate system.
type AxisInfo struct {
	Name        string
	Orientation AxisOrientation
}
