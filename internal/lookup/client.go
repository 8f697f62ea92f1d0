// Package lookup queries external bibliographic services under a shared
// rate limit.
//
// All services issue requests through one rate gate: no two requests leave
// the client closer together than the configured interval, regardless of
// which service they belong to. This is courtesy backpressure toward the
// third-party APIs, not fairness between services.
package lookup

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdfshelf/shelf/internal/publication"
)

const (
	// DefaultInterval is the minimum time between any two requests.
	DefaultInterval = time.Second

	// DefaultTimeout bounds each individual service call. A timed-out
	// service is treated like a failed one: it contributes no candidate.
	DefaultTimeout = 20 * time.Second

	// maxQueryLen caps the free-text query sent to services.
	maxQueryLen = 300
)

// Service is one external bibliographic source. Search returns the single
// best match for a free-text query, or ErrNotFound.
type Service interface {
	Name() string
	Search(ctx context.Context, query string) (publication.Publication, error)
}

// Client fans a query out to its services, serializing request issuance
// through a shared rate limiter.
type Client struct {
	services []Service
	limiter  *rate.Limiter
	timeout  time.Duration
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithInterval sets the minimum inter-request interval shared by all services.
func WithInterval(d time.Duration) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for per-service failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a client over the given services, in priority order.
func New(services []Service, opts ...Option) *Client {
	c := &Client{
		services: services,
		limiter:  rate.NewLimiter(rate.Every(DefaultInterval), 1),
		timeout:  DefaultTimeout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultServices assembles the standard three services. mailto identifies
// the caller to Crossref; s2APIKey authenticates Semantic Scholar requests.
// Either may be empty.
func DefaultServices(hc *http.Client, mailto, s2APIKey string) []Service {
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	return []Service{
		NewCrossref(hc, mailto),
		NewSemanticScholar(hc, s2APIKey),
		NewGoogleBooks(hc),
	}
}

// FanOut queries every service concurrently, waits for all of them to
// settle, and returns each successful candidate in service priority order.
// A failing service contributes nothing and never aborts its siblings.
func (c *Client) FanOut(ctx context.Context, query string) []publication.Publication {
	query = trimQuery(query)
	if query == "" {
		return nil
	}

	results := make([]*publication.Publication, len(c.services))
	var wg sync.WaitGroup
	for i, svc := range c.services {
		wg.Add(1)
		go func(i int, svc Service) {
			defer wg.Done()
			pub, err := c.search(ctx, svc, query)
			if err != nil {
				c.logger.Debug("lookup failed", "service", svc.Name(), "error", err)
				return
			}
			results[i] = &pub
		}(i, svc)
	}
	wg.Wait()

	var out []publication.Publication
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// First probes services in priority order and stops at the first success.
// It is the cost-saving alternative to FanOut.
func (c *Client) First(ctx context.Context, query string) (publication.Publication, error) {
	query = trimQuery(query)
	if query == "" {
		return publication.Publication{}, ErrNotFound
	}

	for _, svc := range c.services {
		pub, err := c.search(ctx, svc, query)
		if err != nil {
			c.logger.Debug("lookup failed", "service", svc.Name(), "error", err)
			continue
		}
		return pub, nil
	}
	return publication.Publication{}, ErrNotFound
}

// search blocks on the shared rate gate, then issues one bounded call.
func (c *Client) search(ctx context.Context, svc Service, query string) (publication.Publication, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return publication.Publication{}, fmt.Errorf("rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return svc.Search(ctx, query)
}

// trimQuery collapses whitespace and caps the query length.
func trimQuery(q string) string {
	q = strings.Join(strings.Fields(q), " ")
	if len(q) <= maxQueryLen {
		return q
	}
	cut := q[:maxQueryLen]
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut
}
