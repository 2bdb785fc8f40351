package domain

import "fmt"

// NoAuthorityCode marks an object without an authority code.
const NoAuthorityCode int64 = -1

// Info carries the descriptive metadata shared by every CRS entity.
// It never takes part in EqualParams comparisons.
type Info struct {
	Name          string // Display name
	Authority     string // Authority name, e.g. "EPSG"
	AuthorityCode int64  // Code within the authority, NoAuthorityCode if unset
	Alias         string // Alternative name
	Abbreviation  string // Short name
	Remarks       string // Free text remarks
}

// NewInfo creates metadata with a name and an optional authority code.
func NewInfo(name, authority string, code int64) Info {
	return Info{Name: name, Authority: authority, AuthorityCode: code}
}

// Description returns the metadata itself so that Info satisfies Described.
func (i Info) Description() Info {
	return i
}

// HasAuthority returns true if an authority and code are set.
func (i Info) HasAuthority() bool {
	return i.Authority != "" && i.AuthorityCode != NoAuthorityCode
}

// Key returns "AUTHORITY:CODE" or the name when no authority is set.
func (i Info) Key() string {
	if i.HasAuthority() {
		return fmt.Sprintf("%s:%d", i.Authority, i.AuthorityCode)
	}
	return i.Name
}

// Described is implemented by every object a WKT definition can produce.
type Described interface {
	Description() Info
}
