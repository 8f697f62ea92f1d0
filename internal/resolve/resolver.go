// Package resolve selects the single best metadata candidate for a document.
//
// Local strategies run first, in order. Network lookups are consulted only
// when the best local candidate scores below the quality threshold, and a
// network candidate replaces a local one only on a strictly higher score.
// Candidates are selected wholesale; fields are never merged across them.
package resolve

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/pdfshelf/shelf/internal/pdfdoc"
	"github.com/pdfshelf/shelf/internal/publication"
	"github.com/pdfshelf/shelf/internal/strategy"
)

// ErrNoCandidate indicates that no strategy, local or network, produced a
// candidate for the document.
var ErrNoCandidate = errors.New("no strategy produced a candidate")

// DefaultThreshold is the local quality score below which network lookups
// are consulted.
const DefaultThreshold = 0.5

// FanMode selects how the external lookup client is driven.
type FanMode string

const (
	// ModeFanOut queries all services and lets scoring pick the best.
	// Default, because source unreliability makes first-success brittle.
	ModeFanOut FanMode = "fanout"

	// ModeFirst stops at the first service that answers.
	ModeFirst FanMode = "first"
)

// Searcher is the external lookup surface consumed by the resolver.
type Searcher interface {
	FanOut(ctx context.Context, query string) []publication.Publication
	First(ctx context.Context, query string) (publication.Publication, error)
}

// Resolver orchestrates strategies and lookups for one document at a time.
type Resolver struct {
	local     []strategy.Strategy
	lookups   Searcher
	threshold float64
	mode      FanMode
	pageCap   int
	logger    *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithThreshold overrides the lookup quality threshold.
func WithThreshold(t float64) Option {
	return func(r *Resolver) {
		r.threshold = t
	}
}

// WithMode selects the lookup fan-out policy.
func WithMode(m FanMode) Option {
	return func(r *Resolver) {
		r.mode = m
	}
}

// WithPageCap bounds the text sample used as the lookup query.
func WithPageCap(n int) Option {
	return func(r *Resolver) {
		r.pageCap = n
	}
}

// WithLogger sets the resolver's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// New creates a Resolver. lookups may be nil to disable network lookups.
func New(local []strategy.Strategy, lookups Searcher, opts ...Option) *Resolver {
	r := &Resolver{
		local:     local,
		lookups:   lookups,
		threshold: DefaultThreshold,
		mode:      ModeFanOut,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Quality scores a candidate in [0, 1]. The bonuses are independent and
// additive; their maxima sum to exactly 1.0.
func Quality(p publication.Publication) float64 {
	var score float64

	if len(strings.TrimSpace(p.Title)) > 5 {
		score += 0.3
	}

	switch {
	case hasStructuredAuthor(p.Authors):
		// "Lastname, Firstname" is the higher-confidence form.
		score += 0.3
	case hasAuthor(p.Authors):
		score += 0.2
	}

	if publication.ValidYear(p.Year) {
		score += 0.2
	}
	if p.DOI != "" {
		score += 0.1
	}
	if p.Publisher != "" {
		score += 0.1
	}
	return score
}

func hasAuthor(authors []string) bool {
	for _, a := range authors {
		if strings.TrimSpace(a) != "" {
			return true
		}
	}
	return false
}

func hasStructuredAuthor(authors []string) bool {
	for _, a := range authors {
		if strings.Contains(a, ",") {
			return true
		}
	}
	return false
}

// Resolve selects the best candidate for doc. Ties keep the earlier (higher
// priority) candidate, so local sources beat network sources at equal score.
func (r *Resolver) Resolve(ctx context.Context, doc pdfdoc.Document) (publication.Publication, error) {
	var best publication.Publication
	bestScore := -1.0

	for _, s := range r.local {
		pub, err := s.Attempt(ctx, doc)
		if err != nil {
			if errors.Is(err, strategy.ErrNoMatch) {
				r.logger.Debug("no candidate", "strategy", s.Name(), "path", doc.Path)
			} else {
				r.logger.Warn("strategy failed", "strategy", s.Name(), "path", doc.Path, "error", err)
			}
			continue
		}

		score := Quality(pub)
		r.logger.Debug("candidate", "strategy", s.Name(), "path", doc.Path, "score", score)
		if score > bestScore {
			best, bestScore = pub, score
		}
	}

	if bestScore >= r.threshold {
		return best, nil
	}

	if r.lookups != nil {
		for _, pub := range r.networkCandidates(ctx, doc) {
			if score := Quality(pub); score > bestScore {
				best, bestScore = pub, score
			}
		}
	}

	if bestScore < 0 {
		return publication.Publication{}, ErrNoCandidate
	}
	return best, nil
}

func (r *Resolver) networkCandidates(ctx context.Context, doc pdfdoc.Document) []publication.Publication {
	query := doc.SampleText(r.pageCap)
	if query == "" {
		// Scanned documents carry no text layer; the filename is still
		// a usable query.
		query = stemQuery(doc.Path)
	}
	if query == "" {
		return nil
	}

	if r.mode == ModeFirst {
		pub, err := r.lookups.First(ctx, query)
		if err != nil {
			r.logger.Debug("lookup produced no candidate", "path", doc.Path, "error", err)
			return nil
		}
		return []publication.Publication{pub}
	}
	return r.lookups.FanOut(ctx, query)
}

func stemQuery(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	stem = strings.NewReplacer("_", " ", "-", " ").Replace(stem)
	return strings.Join(strings.Fields(stem), " ")
}
