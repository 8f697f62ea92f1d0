package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/pdfshelf/shelf/internal/pdfdoc"
	"github.com/pdfshelf/shelf/internal/publication"
	"github.com/pdfshelf/shelf/internal/strategy"
)

type stubStrategy struct {
	name string
	pub  publication.Publication
	err  error
}

func (s stubStrategy) Name() string { return s.name }

func (s stubStrategy) Attempt(ctx context.Context, doc pdfdoc.Document) (publication.Publication, error) {
	return s.pub, s.err
}

// stubSearcher records how it was driven and replays canned candidates.
type stubSearcher struct {
	fanOutCalls int
	firstCalls  int
	lastQuery   string

	fanOutResults []publication.Publication
	firstPub      publication.Publication
	firstErr      error
}

func (s *stubSearcher) FanOut(ctx context.Context, query string) []publication.Publication {
	s.fanOutCalls++
	s.lastQuery = query
	return s.fanOutResults
}

func (s *stubSearcher) First(ctx context.Context, query string) (publication.Publication, error) {
	s.firstCalls++
	s.lastQuery = query
	return s.firstPub, s.firstErr
}

func TestQuality(t *testing.T) {
	tests := []struct {
		name string
		pub  publication.Publication
		want float64
	}{
		{
			name: "empty",
			pub:  publication.Publication{},
			want: 0,
		},
		{
			name: "title only",
			pub:  publication.Publication{Title: "Theory of Widgets"},
			want: 0.3,
		},
		{
			name: "short title scores nothing",
			pub:  publication.Publication{Title: "abc"},
			want: 0,
		},
		{
			name: "unstructured author",
			pub:  publication.Publication{Authors: []string{"John Smith"}},
			want: 0.2,
		},
		{
			name: "structured author",
			pub:  publication.Publication{Authors: []string{"Smith, John"}},
			want: 0.3,
		},
		{
			name: "blank author scores nothing",
			pub:  publication.Publication{Authors: []string{"   "}},
			want: 0,
		},
		{
			name: "valid year",
			pub:  publication.Publication{Year: "2003"},
			want: 0.2,
		},
		{
			name: "sentinel year scores nothing",
			pub:  publication.Publication{Year: publication.UnknownYear},
			want: 0,
		},
		{
			name: "everything",
			pub: publication.Publication{
				Title:     "Theory of Widgets",
				Authors:   []string{"Smith, John"},
				Year:      "2003",
				DOI:       "10.1234/x",
				Publisher: "Widget Press",
			},
			want: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Quality(tt.pub)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Quality = %v, want %v", got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("Quality = %v, outside [0, 1]", got)
			}
		})
	}
}

func TestResolveSkipsLookupsAboveThreshold(t *testing.T) {
	strong := publication.New("Theory of Widgets", []string{"Smith, John"}, "2003")
	searcher := &stubSearcher{}
	r := New([]strategy.Strategy{stubStrategy{name: "local", pub: strong}}, searcher)

	got, err := r.Resolve(context.Background(), pdfdoc.Document{Path: "/in/doc.pdf"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Title != strong.Title {
		t.Errorf("Title = %q, want %q", got.Title, strong.Title)
	}
	if searcher.fanOutCalls != 0 || searcher.firstCalls != 0 {
		t.Errorf("lookups consulted despite score above threshold (fanout=%d first=%d)",
			searcher.fanOutCalls, searcher.firstCalls)
	}
}

func TestResolveNetworkReplacesWeakLocal(t *testing.T) {
	weak := publication.Publication{Title: "Some Scan"} // 0.3
	network := publication.New("Theory of Widgets", []string{"Smith, John"}, "2003")
	searcher := &stubSearcher{fanOutResults: []publication.Publication{network}}
	r := New([]strategy.Strategy{stubStrategy{name: "local", pub: weak}}, searcher)

	got, err := r.Resolve(context.Background(), pdfdoc.Document{Path: "/in/some_scan.pdf"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Title != network.Title {
		t.Errorf("Title = %q, want network candidate %q", got.Title, network.Title)
	}
	if searcher.fanOutCalls != 1 {
		t.Errorf("fanOutCalls = %d, want 1", searcher.fanOutCalls)
	}
	if searcher.lastQuery != "some scan" {
		t.Errorf("query = %q, want filename-derived %q", searcher.lastQuery, "some scan")
	}
}

func TestResolveTieKeepsLocal(t *testing.T) {
	local := publication.Publication{Title: "Local Candidate", Year: "2001"}     // 0.5
	network := publication.Publication{Title: "Network Candidate", Year: "1999"} // 0.5
	searcher := &stubSearcher{fanOutResults: []publication.Publication{network}}
	r := New([]strategy.Strategy{stubStrategy{name: "local", pub: local}}, searcher,
		WithThreshold(0.9))

	got, err := r.Resolve(context.Background(), pdfdoc.Document{Path: "/in/doc.pdf"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Title != local.Title {
		t.Errorf("Title = %q, equal-score network candidate displaced local", got.Title)
	}
}

func TestResolveStrategyOrderBreaksTies(t *testing.T) {
	first := publication.Publication{Title: "First Candidate", Year: "2001"}
	second := publication.Publication{Title: "Second Candidate", Year: "1999"}
	r := New([]strategy.Strategy{
		stubStrategy{name: "a", pub: first},
		stubStrategy{name: "b", pub: second},
	}, nil)

	got, err := r.Resolve(context.Background(), pdfdoc.Document{Path: "/in/doc.pdf"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Title != first.Title {
		t.Errorf("Title = %q, want earlier strategy's %q", got.Title, first.Title)
	}
}

func TestResolveModeFirst(t *testing.T) {
	network := publication.New("Theory of Widgets", []string{"Smith, John"}, "2003")
	searcher := &stubSearcher{firstPub: network}
	r := New([]strategy.Strategy{stubStrategy{name: "local", err: strategy.ErrNoMatch}}, searcher,
		WithMode(ModeFirst))

	got, err := r.Resolve(context.Background(), pdfdoc.Document{Path: "/in/doc.pdf"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Title != network.Title {
		t.Errorf("Title = %q, want %q", got.Title, network.Title)
	}
	if searcher.firstCalls != 1 || searcher.fanOutCalls != 0 {
		t.Errorf("mode first drove fanout (first=%d fanout=%d)", searcher.firstCalls, searcher.fanOutCalls)
	}
}

func TestResolveNoCandidate(t *testing.T) {
	r := New([]strategy.Strategy{
		stubStrategy{name: "a", err: strategy.ErrNoMatch},
		stubStrategy{name: "b", err: errors.New("boom")},
	}, nil)

	_, err := r.Resolve(context.Background(), pdfdoc.Document{Path: "/in/doc.pdf"})
	if !errors.Is(err, ErrNoCandidate) {
		t.Fatalf("err = %v, want ErrNoCandidate", err)
	}
}

func TestResolveFailedLookupKeepsWeakLocal(t *testing.T) {
	weak := publication.Publication{Title: "Some Scan"}
	searcher := &stubSearcher{} // no results
	r := New([]strategy.Strategy{stubStrategy{name: "local", pub: weak}}, searcher)

	got, err := r.Resolve(context.Background(), pdfdoc.Document{Path: "/in/doc.pdf"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Title != weak.Title {
		t.Errorf("Title = %q, want weak local %q", got.Title, weak.Title)
	}
}
