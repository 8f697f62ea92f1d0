package lookup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func crossrefServer(t *testing.T, handler http.HandlerFunc) *Crossref {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	svc := NewCrossref(srv.Client(), "tester@example.org")
	svc.BaseURL = srv.URL
	return svc
}

func TestCrossrefSearch(t *testing.T) {
	svc := crossrefServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query.bibliographic"); got != "widget theory" {
			t.Errorf("query.bibliographic = %q", got)
		}
		if got := r.URL.Query().Get("mailto"); got != "tester@example.org" {
			t.Errorf("mailto = %q", got)
		}
		fmt.Fprint(w, `{"message":{"items":[{
			"title":["Theory of Widgets"],
			"author":[{"given":"John","family":"Smith"},{"family":"Doe"}],
			"issued":{"date-parts":[[2003,5]]},
			"DOI":"10.1234/widget",
			"ISBN":["978-0-000-00000-0"],
			"publisher":"Widget Press"
		}]}}`)
	})

	pub, err := svc.Search(context.Background(), "widget theory")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if pub.Title != "Theory of Widgets" {
		t.Errorf("Title = %q", pub.Title)
	}
	if len(pub.Authors) != 2 || pub.Authors[0] != "Smith, John" || pub.Authors[1] != "Doe" {
		t.Errorf("Authors = %v", pub.Authors)
	}
	if pub.Year != "2003" {
		t.Errorf("Year = %q", pub.Year)
	}
	if pub.DOI != "10.1234/widget" {
		t.Errorf("DOI = %q", pub.DOI)
	}
	if pub.ISBN != "978-0-000-00000-0" {
		t.Errorf("ISBN = %q", pub.ISBN)
	}
	if pub.Publisher != "Widget Press" {
		t.Errorf("Publisher = %q", pub.Publisher)
	}
}

func TestCrossrefNotFound(t *testing.T) {
	svc := crossrefServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"message":{"items":[]}}`)
	})

	_, err := svc.Search(context.Background(), "nothing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCrossrefServerError(t *testing.T) {
	svc := crossrefServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := svc.Search(context.Background(), "anything")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError || apiErr.Service != "crossref" {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestSemanticScholarSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "sekrit" {
			t.Errorf("x-api-key = %q", got)
		}
		fmt.Fprint(w, `{"data":[{
			"title":"Theory of Widgets",
			"year":2003,
			"authors":[{"name":"John Smith"}],
			"abstract":"Widgets, considered.",
			"externalIds":{"DOI":"10.1234/widget"}
		}]}`)
	}))
	t.Cleanup(srv.Close)

	svc := NewSemanticScholar(srv.Client(), "sekrit")
	svc.BaseURL = srv.URL

	pub, err := svc.Search(context.Background(), "widget theory")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if pub.Title != "Theory of Widgets" || pub.Year != "2003" || pub.DOI != "10.1234/widget" {
		t.Errorf("pub = %+v", pub)
	}
	if len(pub.Authors) != 1 || pub.Authors[0] != "John Smith" {
		t.Errorf("Authors = %v", pub.Authors)
	}
	if pub.Abstract != "Widgets, considered." {
		t.Errorf("Abstract = %q", pub.Abstract)
	}
}

func TestGoogleBooksSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[{"volumeInfo":{
			"title":"The Widget Book",
			"authors":["John Smith"],
			"publishedDate":"2003-05-01",
			"publisher":"Widget Press",
			"industryIdentifiers":[
				{"type":"ISBN_10","identifier":"0000000000"},
				{"type":"ISBN_13","identifier":"9780000000000"}
			]
		}}]}`)
	}))
	t.Cleanup(srv.Close)

	svc := NewGoogleBooks(srv.Client())
	svc.BaseURL = srv.URL

	pub, err := svc.Search(context.Background(), "widget book")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if pub.Year != "2003" {
		t.Errorf("Year = %q, want truncated 2003", pub.Year)
	}
	if pub.ISBN != "9780000000000" {
		t.Errorf("ISBN = %q, want the ISBN_13", pub.ISBN)
	}
	if pub.Publisher != "Widget Press" {
		t.Errorf("Publisher = %q", pub.Publisher)
	}
}

func TestFanOutSurvivesFailingService(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"message":{"items":[{"title":["Theory of Widgets"],"issued":{"date-parts":[[2003]]}}]}}`)
	}))
	t.Cleanup(good.Close)
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(bad.Close)

	failing := NewSemanticScholar(bad.Client(), "")
	failing.BaseURL = bad.URL
	working := NewCrossref(good.Client(), "")
	working.BaseURL = good.URL

	c := New([]Service{failing, working}, WithInterval(time.Millisecond))

	results := c.FanOut(context.Background(), "widget theory")
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].Title != "Theory of Widgets" {
		t.Errorf("Title = %q", results[0].Title)
	}
}

func TestFirstStopsAtFirstSuccess(t *testing.T) {
	var secondCalled bool

	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"message":{"items":[{"title":["Theory of Widgets"]}]}}`)
	}))
	t.Cleanup(first.Close)
	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secondCalled = true
		fmt.Fprint(w, `{"data":[]}`)
	}))
	t.Cleanup(second.Close)

	a := NewCrossref(first.Client(), "")
	a.BaseURL = first.URL
	b := NewSemanticScholar(second.Client(), "")
	b.BaseURL = second.URL

	c := New([]Service{a, b}, WithInterval(time.Millisecond))

	pub, err := c.First(context.Background(), "widget theory")
	if err != nil {
		t.Fatalf("First: %v", err)
	}
	if pub.Title != "Theory of Widgets" {
		t.Errorf("Title = %q", pub.Title)
	}
	if secondCalled {
		t.Error("lower-priority service called after a success")
	}
}

func TestFirstExhaustedReturnsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"message":{"items":[]}}`)
	}))
	t.Cleanup(srv.Close)

	svc := NewCrossref(srv.Client(), "")
	svc.BaseURL = srv.URL

	c := New([]Service{svc}, WithInterval(time.Millisecond))
	_, err := c.First(context.Background(), "nothing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRateGateSpacesRequests(t *testing.T) {
	var times []time.Time
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		times = append(times, time.Now())
		fmt.Fprint(w, `{"message":{"items":[]}}`)
	}))
	t.Cleanup(srv.Close)

	svc := NewCrossref(srv.Client(), "")
	svc.BaseURL = srv.URL

	const interval = 50 * time.Millisecond
	c := New([]Service{svc}, WithInterval(interval))

	ctx := context.Background()
	c.First(ctx, "one")
	c.First(ctx, "two")

	if len(times) != 2 {
		t.Fatalf("requests = %d, want 2", len(times))
	}
	if gap := times[1].Sub(times[0]); gap < interval/2 {
		t.Errorf("request gap = %v, want at least ~%v", gap, interval)
	}
}

func TestTrimQuery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "collapses whitespace", input: "  widget \n theory  ", want: "widget theory"},
		{name: "empty", input: "   ", want: ""},
		{name: "short passes through", input: "widget", want: "widget"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := trimQuery(tt.input); got != tt.want {
				t.Errorf("trimQuery(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	t.Run("caps long queries at a word boundary", func(t *testing.T) {
		long := strings.Repeat("widget ", 100)
		got := trimQuery(long)
		if len(got) > maxQueryLen {
			t.Errorf("len = %d, want <= %d", len(got), maxQueryLen)
		}
		if strings.HasSuffix(got, " ") || !strings.HasSuffix(got, "widget") {
			t.Errorf("cap did not land on a word boundary: %q", got[len(got)-12:])
		}
	})
}
