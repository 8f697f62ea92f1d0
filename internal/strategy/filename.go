package strategy

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pdfshelf/shelf/internal/pdfdoc"
	"github.com/pdfshelf/shelf/internal/publication"
)

// filenamePattern pairs a compiled pattern with its capture-group roles.
// A zero group index means the pattern does not capture that field.
type filenamePattern struct {
	re     *regexp.Regexp
	author int
	title  int
	year   int
}

// Patterns are tried in priority order; the first match wins. There is no
// scoring across filename patterns.
var filenamePatterns = []filenamePattern{
	// AUTHOR - TITLE (YEAR)
	{re: regexp.MustCompile(`^(.+?)\s*-\s*(.+?)\s*\((\d{4})\)\s*$`), author: 1, title: 2, year: 3},
	// AUTHOR - TITLE [ocr] [YEAR]
	{re: regexp.MustCompile(`(?i)^(.+?)\s*-\s*(.+?)\s*\[ocr\]\s*\[(\d{4})\]\s*$`), author: 1, title: 2, year: 3},
	// TITLE_traduz_AUTHOR
	{re: regexp.MustCompile(`^(.+?)_traduz_(.+?)\s*$`), author: 2, title: 1},
}

// bracketedYear finds a 4-digit year wrapped in brackets or parentheses
// anywhere in the stem, used when the matched pattern omitted the year.
var bracketedYear = regexp.MustCompile(`[\[(](\d{4})[\])]`)

// Filename derives candidate metadata from structured filename conventions.
type Filename struct{}

func (Filename) Name() string { return "filename" }

func (Filename) Attempt(_ context.Context, doc pdfdoc.Document) (publication.Publication, error) {
	stem := strings.TrimSuffix(filepath.Base(doc.Path), filepath.Ext(doc.Path))

	for _, p := range filenamePatterns {
		m := p.re.FindStringSubmatch(stem)
		if m == nil {
			continue
		}

		year := publication.UnknownYear
		if p.year > 0 {
			year = publication.NormalizeYear(m[p.year])
		}
		if year == publication.UnknownYear {
			if ym := bracketedYear.FindStringSubmatch(stem); ym != nil {
				year = publication.NormalizeYear(ym[1])
			}
		}

		title := cleanSegment(m[p.title])
		author := cleanSegment(m[p.author])
		return publication.New(title, []string{author}, year), nil
	}

	return publication.Publication{}, ErrNoMatch
}

// cleanSegment turns a filename fragment into readable text.
func cleanSegment(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}
