// Package icon implements the icon resolution pipeline: classifying user
// references, gating candidate sources on format and minimum resolution,
// searching icon-theme directories, and normalizing accepted raster icons
// into the canonical vector format on disk.
package icon

import (
	"net/url"
	"path/filepath"
	"strings"
)

// Minimum pixel dimensions an icon must have to qualify, per call site.
const (
	// MinThemeSize applies to icon-theme directory searches.
	MinThemeSize = 64
	// MinDirectSize applies to direct network or local-file acquisition.
	MinDirectSize = 96
)

// RefKind classifies a user-supplied icon reference.
type RefKind int

// Reference kinds.
const (
	RefRemote RefKind = iota
	RefLocal
)

// Classify decides whether a reference is a remote locator or a local
// filesystem path. A reference is remote iff it parses as an absolute URL
// with a host; everything else is treated as a local path.
func Classify(ref string) RefKind {
	u, err := url.Parse(ref)
	if err == nil && u.Scheme != "" && u.Host != "" {
		return RefRemote
	}
	return RefLocal
}

// IsVectorPath reports whether a local path denotes an SVG source by
// extension. The match is case-sensitive: icon themes ship lowercase
// extensions, and a mislabeled file still has to pass content decoding.
// Remote references are never vector-by-path; their format is decided by
// parsing the fetched bytes.
func IsVectorPath(ref string) bool {
	if Classify(ref) == RefRemote {
		return false
	}
	return filepath.Ext(ref) == ".svg"
}

// NameFromURL derives a theme-search fragment from a page URL: the label
// left of the public suffix, so "https://app.example.com" yields "example".
// Returns "" for references that are not remote.
func NameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	parts := strings.Split(u.Hostname(), ".")
	if len(parts) < 2 {
		return parts[0]
	}
	return parts[len(parts)-2]
}

// Kind tags the two icon representations.
type Kind int

// Icon kinds.
const (
	KindVector Kind = iota
	KindRaster
)

// String returns the kind's display name.
func (k Kind) String() string {
	if k == KindVector {
		return "vector"
	}
	return "raster"
}

// Icon is a fully resolved icon, owned by the caller that requested it.
type Icon struct {
	Kind      Kind
	Source    string // the reference that produced it
	Data      []byte
	Width     int
	Height    int
	IsFavicon bool // came through favicon extraction rather than direct fetch or theme search
}

// Candidate is one entry in a search-style resolution result. The order of
// candidates is a priority hint (favicon-derived first, then user theme,
// then system theme), not a quality guarantee.
type Candidate struct {
	Path      string
	IsFavicon bool
}
