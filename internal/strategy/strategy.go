// Package strategy implements the local metadata extraction strategies.
//
// A strategy derives candidate metadata for one document from one signal
// source. Strategies never fail the caller: an internal problem either
// degrades to a partially-populated candidate or surfaces as ErrNoMatch so
// the resolver can move on to the next source.
package strategy

import (
	"context"
	"errors"

	"github.com/pdfshelf/shelf/internal/pdfdoc"
	"github.com/pdfshelf/shelf/internal/publication"
)

// ErrNoMatch indicates a strategy produced no candidate for the document.
var ErrNoMatch = errors.New("no metadata match")

// Strategy derives candidate metadata from one signal source.
type Strategy interface {
	// Name identifies the strategy in logs.
	Name() string

	// Attempt returns a candidate Publication or ErrNoMatch.
	Attempt(ctx context.Context, doc pdfdoc.Document) (publication.Publication, error)
}
