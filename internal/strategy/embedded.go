package strategy

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pdfshelf/shelf/internal/pdfdoc"
	"github.com/pdfshelf/shelf/internal/publication"
)

var (
	// Author-introduction patterns over the text sample, in priority order.
	authorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bauthors?\s*:\s*([^\n]+)`),
		regexp.MustCompile(`(?i)\bby\s+([A-Z][\w.'-]*(?:\s+[A-Z][\w.'-]*)+)`),
		regexp.MustCompile(`(?m)^([A-Z][a-z]+,\s*[A-Z][\w. '-]*)$`),
	}

	// Year patterns over the text sample, in priority order.
	yearPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:©|\(c\)|copyright)\s*(\d{4})`),
		regexp.MustCompile(`(?i)\bpublished\s*:?\s*(\d{4})`),
		regexp.MustCompile(`\((\d{4})\)`),
		regexp.MustCompile(`[_-](\d{4})[_-]`),
	}

	// DOI patterns: a DOI: label wins over a bare token.
	labeledDOI = regexp.MustCompile(`(?i)\bdoi\s*:?\s*(10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+)`)
	bareDOI    = regexp.MustCompile(`\b10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

	// CreationDate fields look like "D:YYYYMMDDHHmmSS...".
	creationYear = regexp.MustCompile(`D:(\d{4})`)

	// Filename-stem cleanup for the title fallback.
	parentheticalYear = regexp.MustCompile(`\(\d{4}\)`)
	leadingNumber     = regexp.MustCompile(`^\d+[-_]`)
)

// Embedded derives candidate metadata from the document's native property
// fields and a bounded text sample. It always produces a candidate: when the
// document is unreadable it degrades to an all-unknown Publication rather
// than failing the resolver.
type Embedded struct {
	// PageCap bounds the text sample; 0 means pdfdoc.DefaultPageCap.
	PageCap int
}

func (Embedded) Name() string { return "embedded" }

func (s Embedded) Attempt(_ context.Context, doc pdfdoc.Document) (publication.Publication, error) {
	props, propErr := doc.Properties()
	sample := doc.SampleText(s.PageCap)

	var pub publication.Publication
	if propErr != nil && sample == "" {
		// Source unreadable: every field degrades to unknown.
		pub = publication.New("Unknown", nil, publication.UnknownYear)
	} else {
		pub = publication.New(
			extractTitle(props.Title, doc.Path),
			extractAuthors(props.Author, sample),
			extractYear(props.CreationDate, sample),
		)
		pub.DOI = extractDOI(sample)
		pub.Publisher = props.Publisher
	}

	if hash, err := doc.ContentHash(); err == nil {
		pub = pub.WithContentHash(hash)
	}
	return pub, nil
}

// extractTitle prefers the native Title property when it carries more than
// three characters, falling back to the filename stem with the
// year-parenthetical and any leading numeric prefix stripped.
func extractTitle(nativeTitle, path string) string {
	if title := strings.TrimSpace(nativeTitle); len(title) > 3 {
		return title
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	stem = parentheticalYear.ReplaceAllString(stem, "")
	stem = leadingNumber.ReplaceAllString(stem, "")
	return strings.TrimSpace(stem)
}

// extractAuthors prefers the native Author property split on ";", then the
// ordered text patterns; the first pattern with a non-empty match wins.
// With no signal at all the author list defaults to ["unknown"].
func extractAuthors(nativeAuthor, sample string) []string {
	if authors := splitAuthors(nativeAuthor); len(authors) > 0 {
		return authors
	}

	for _, re := range authorPatterns {
		m := re.FindStringSubmatch(sample)
		if m == nil {
			continue
		}
		if authors := splitAuthors(m[1]); len(authors) > 0 {
			return authors
		}
	}

	return []string{"unknown"}
}

func splitAuthors(s string) []string {
	var authors []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			authors = append(authors, part)
		}
	}
	return authors
}

// extractYear prefers the 4-digit year embedded in a native D:YYYY creation
// date, then the ordered text patterns. Every source is range-checked;
// out-of-range years are treated as absent.
func extractYear(creationDate, sample string) string {
	if m := creationYear.FindStringSubmatch(creationDate); m != nil {
		if publication.ValidYear(m[1]) {
			return m[1]
		}
	}

	for _, re := range yearPatterns {
		if m := re.FindStringSubmatch(sample); m != nil {
			if publication.ValidYear(m[1]) {
				return m[1]
			}
		}
	}

	return publication.UnknownYear
}

// extractDOI finds the first DOI-shaped token in the sample, preferring one
// introduced by a DOI: label.
func extractDOI(sample string) string {
	if m := labeledDOI.FindStringSubmatch(sample); m != nil {
		return trimDOI(m[1])
	}
	if m := bareDOI.FindString(sample); m != "" {
		return trimDOI(m)
	}
	return ""
}

func trimDOI(doi string) string {
	return strings.TrimRight(doi, ".,;:)")
}
