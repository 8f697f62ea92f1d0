// Package identity normalizes resolved metadata into canonical slug keys
// used for both the destination path and duplicate detection.
package identity

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pdfshelf/shelf/internal/publication"
)

// Key is the normalized (year, author, title) identity of a document.
type Key struct {
	Year   string `json:"year"`
	Author string `json:"author"`
	Title  string `json:"title"`
}

// Scheme selects the directory layout under the output root. A deployment
// picks one scheme and keeps it for the whole batch; schemes are never
// mixed mid-batch.
type Scheme string

const (
	// SchemeYear files under {output}/{year}/.
	SchemeYear Scheme = "year"

	// SchemeAuthor files under {output}/{author}/.
	SchemeAuthor Scheme = "author"
)

// ParseScheme validates a scheme name.
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(s) {
	case SchemeYear, SchemeAuthor:
		return Scheme(s), nil
	}
	return "", fmt.Errorf("invalid scheme %q (valid: %s, %s)", s, SchemeYear, SchemeAuthor)
}

// maxKeyLen caps each slug component so composed filenames stay portable.
const maxKeyLen = 100

var (
	// Academic titles stripped from the front of author names.
	academicTitle = regexp.MustCompile(`^(?:dr|prof|professor|phd|dott|ing|mr|mrs|ms)\.?\s+`)

	nonAlnum  = regexp.MustCompile(`[^a-z0-9]+`)
	allDigits = regexp.MustCompile(`^[0-9]+$`)
)

// Stopwords dropped from long titles.
var titleStopwords = map[string]bool{
	"proceedings":   true,
	"conference":    true,
	"journal":       true,
	"international": true,
	"workshop":      true,
	"symposium":     true,
	"volume":        true,
	"vol":           true,
	"part":          true,
}

// Normalize derives the identity key for a resolved publication.
func Normalize(p publication.Publication) Key {
	return Key{
		Year:   YearKey(p.Year),
		Author: AuthorKey(p.PrimaryAuthor()),
		Title:  TitleKey(p.Title),
	}
}

// AuthorKey slugs the primary author name. Both "Lastname, Firstname" and
// "Firstname Lastname" normalize to "lastname-firstname". Empty input maps
// to "unknown".
func AuthorKey(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "" {
		return "unknown"
	}

	for {
		stripped := academicTitle.ReplaceAllString(s, "")
		if stripped == s {
			break
		}
		s = stripped
	}

	// Multi-author strings keep only the first author.
	if i := strings.Index(s, ";"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, " and "); i >= 0 {
		s = s[:i]
	}

	var last, first string
	if i := strings.Index(s, ","); i >= 0 {
		last, first = s[:i], s[i+1:]
		// A second comma means a comma-separated author list; the first
		// Last, First pair is the primary author.
		if j := strings.Index(first, ","); j >= 0 {
			first = first[:j]
		}
	} else if fields := strings.Fields(s); len(fields) > 1 {
		last = fields[len(fields)-1]
		first = strings.Join(fields[:len(fields)-1], " ")
	} else {
		last = s
	}

	key := slug(last)
	if f := slug(first); f != "" {
		if key != "" {
			key += "-"
		}
		key += f
	}

	key = capLength(key)
	if key == "" {
		return "unknown"
	}
	return key
}

// TitleKey slugs a title. Purely numeric titles become "doc-<digits>" with
// the digits grouped by four; long titles lose stopwords, consecutive
// duplicate words, and their middle (first four and last four words kept,
// joined by an ellipsis marker). Empty input maps to "unknown".
func TitleKey(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	if s == "" {
		return "unknown"
	}

	words := strings.Fields(nonAlnum.ReplaceAllString(s, " "))
	if len(words) == 0 {
		return "unknown"
	}

	if digits := strings.Join(words, ""); allDigits.MatchString(digits) {
		return "doc-" + groupDigits(digits, 4)
	}

	if len(words) > 4 {
		kept := words[:0]
		for _, w := range words {
			if !titleStopwords[w] {
				kept = append(kept, w)
			}
		}
		if len(kept) > 0 {
			words = kept
		}
	}

	words = collapseRuns(words)

	var key string
	if len(words) > 8 {
		key = strings.Join(words[:4], "-") + "..." + strings.Join(words[len(words)-4:], "-")
	} else {
		key = strings.Join(words, "-")
	}

	key = capLength(key)
	if key == "" {
		return "unknown"
	}
	return key
}

// YearKey returns the year verbatim when it is all digits, else "Unknown".
func YearKey(year string) string {
	if allDigits.MatchString(year) {
		return year
	}
	return publication.UnknownYear
}

// Filename composes the canonical filename for a key.
func Filename(k Key) string {
	return fmt.Sprintf("%s-%s-%s.pdf", k.Year, k.Author, k.Title)
}

// PathFor computes the destination path for a key under the output root.
func PathFor(outputRoot string, scheme Scheme, k Key) string {
	dir := k.Year
	if scheme == SchemeAuthor {
		dir = k.Author
	}
	return filepath.Join(outputRoot, dir, Filename(k))
}

// slug collapses non-alphanumeric runs to single hyphens and trims.
func slug(s string) string {
	return strings.Trim(nonAlnum.ReplaceAllString(s, "-"), "-")
}

// collapseRuns drops consecutive duplicate words.
func collapseRuns(words []string) []string {
	out := words[:0]
	for i, w := range words {
		if i > 0 && w == words[i-1] {
			continue
		}
		out = append(out, w)
	}
	return out
}

// groupDigits joins n-sized digit groups with hyphens.
func groupDigits(digits string, n int) string {
	var groups []string
	for len(digits) > n {
		groups = append(groups, digits[:n])
		digits = digits[n:]
	}
	groups = append(groups, digits)
	return strings.Join(groups, "-")
}

func capLength(key string) string {
	if len(key) > maxKeyLen {
		key = strings.Trim(key[:maxKeyLen], "-")
	}
	return key
}
