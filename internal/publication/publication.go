// Package publication defines the core domain record for resolved documents.
package publication

import "strconv"

// UnknownYear is the sentinel used when no valid publication year is known.
const UnknownYear = "Unknown"

// Accepted publication year range. Values outside it are treated as absent.
const (
	MinYear = 1900
	MaxYear = 2024
)

// Publication is the bibliographic record produced by one extraction
// strategy for one document. It is a value record: construct it once and
// pass it by value; derive a new one instead of patching fields in place.
type Publication struct {
	Title       string   `json:"title" yaml:"title"`
	Authors     []string `json:"authors" yaml:"authors"`
	Year        string   `json:"year" yaml:"year"`
	DOI         string   `json:"doi,omitempty" yaml:"doi,omitempty"`
	ISBN        string   `json:"isbn,omitempty" yaml:"isbn,omitempty"`
	Publisher   string   `json:"publisher,omitempty" yaml:"publisher,omitempty"`
	Abstract    string   `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	ContentHash string   `json:"content_hash,omitempty" yaml:"-"`
}

// New constructs a Publication with the year invariant enforced: anything
// that is not a 4-digit year in [MinYear, MaxYear] becomes UnknownYear.
// The authors slice is copied so callers cannot alias into the record.
func New(title string, authors []string, year string) Publication {
	var as []string
	if len(authors) > 0 {
		as = make([]string, len(authors))
		copy(as, authors)
	}
	return Publication{
		Title:   title,
		Authors: as,
		Year:    NormalizeYear(year),
	}
}

// WithContentHash returns a copy of p with the content hash set.
func (p Publication) WithContentHash(hash string) Publication {
	p.ContentHash = hash
	return p
}

// PrimaryAuthor returns the first author, or "" when there are none.
// The first entry is the one used for filing and directory placement.
func (p Publication) PrimaryAuthor() string {
	if len(p.Authors) == 0 {
		return ""
	}
	return p.Authors[0]
}

// ValidYear reports whether s is a 4-digit year within the accepted range.
func ValidYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return false
	}
	return n >= MinYear && n <= MaxYear
}

// NormalizeYear returns s when it is a valid year, UnknownYear otherwise.
func NormalizeYear(s string) string {
	if ValidYear(s) {
		return s
	}
	return UnknownYear
}
