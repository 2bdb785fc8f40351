package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// NormalizeName folds case and maps spaces to underscores so that
// "Latitude Of Origin", "LATITUDE_OF_ORIGIN" and "latitude_of_origin" compare equal.
func NormalizeName(name string) string {
	return strings.ReplaceAll(cases.Fold().String(strings.TrimSpace(name)), " ", "_")
}

// Parameter is a named numeric value.
type Parameter struct {
	Name  string
	Value float64
}

// ParameterSet is a case-insensitive collection of projection parameters that
// keeps the original spelling and insertion order of every name.
// The zero value is an empty set ready to use.
type ParameterSet struct {
	values   map[string]float64
	original map[string]string
	order    []string
}

// NewParameterSet creates a set from parameters. A repeated name overwrites the earlier value.
func NewParameterSet(params ...Parameter) *ParameterSet {
	s := &ParameterSet{}
	for _, p := range params {
		s.Set(p.Name, p.Value)
	}
	return s
}

// Set adds or overwrites a parameter. Overwriting keeps the original name and position.
func (s *ParameterSet) Set(name string, value float64) {
	if s.values == nil {
		s.values = make(map[string]float64)
		s.original = make(map[string]string)
	}
	key := NormalizeName(name)
	if _, ok := s.values[key]; !ok {
		s.order = append(s.order, key)
		s.original[key] = name
	}
	s.values[key] = value
}

// Has returns true if the parameter, or any alternate name, is present.
func (s *ParameterSet) Has(name string, alternates ...string) bool {
	_, ok := s.lookup(name, alternates)
	return ok
}

// Value returns a required parameter, trying alternate names in order when the
// primary name is absent.
func (s *ParameterSet) Value(name string, alternates ...string) (float64, error) {
	v, ok := s.lookup(name, alternates)
	if !ok {
		return 0, &ConfigError{Field: name, Message: "required projection parameter missing"}
	}
	return v, nil
}

// Optional returns a parameter or def when neither the name nor any alternate is present.
func (s *ParameterSet) Optional(name string, def float64, alternates ...string) float64 {
	if v, ok := s.lookup(name, alternates); ok {
		return v
	}
	return def
}

func (s *ParameterSet) lookup(name string, alternates []string) (float64, bool) {
	if s == nil || s.values == nil {
		return 0, false
	}
	if v, ok := s.values[NormalizeName(name)]; ok {
		return v, true
	}
	for _, alt := range alternates {
		if v, ok := s.values[NormalizeName(alt)]; ok {
			return v, true
		}
	}
	return 0, false
}

// Find returns the parameter with its original name.
func (s *ParameterSet) Find(name string) (Parameter, bool) {
	if s == nil || s.values == nil {
		return Parameter{}, false
	}
	key := NormalizeName(name)
	v, ok := s.values[key]
	if !ok {
		return Parameter{}, false
	}
	return Parameter{Name: s.original[key], Value: v}, true
}

// At returns the parameter at an insertion index.
func (s *ParameterSet) At(index int) (Parameter, bool) {
	if s == nil || index < 0 || index >= len(s.order) {
		return Parameter{}, false
	}
	key := s.order[index]
	return Parameter{Name: s.original[key], Value: s.values[key]}, true
}

// Len returns the number of distinct parameters.
func (s *ParameterSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Parameters returns all parameters in insertion order.
func (s *ParameterSet) Parameters() []Parameter {
	out := make([]Parameter, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		p, _ := s.At(i)
		out = append(out, p)
	}
	return out
}

// Clone returns an independent copy.
func (s *ParameterSet) Clone() *ParameterSet {
	return NewParameterSet(s.Parameters()...)
}

// Equal compares names and values, ignoring order and spelling.
func (s *ParameterSet) Equal(other *ParameterSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	if s.Len() == 0 {
		return true
	}
	for key, v := range s.values {
		ov, ok := other.values[key]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// String lists the parameters in insertion order.
func (s *ParameterSet) String() string {
	var b strings.Builder
	for i, p := range s.Parameters() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%g", p.Name, p.Value)
	}
	return b.String()
}
