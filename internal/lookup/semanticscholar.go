package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdfshelf/shelf/internal/publication"
)

// SemanticScholarBaseURL is the Semantic Scholar Graph API base URL.
const SemanticScholarBaseURL = "https://api.semanticscholar.org/graph/v1"

const s2PaperFields = "title,abstract,authors,year,externalIds,venue"

// SemanticScholar queries the Graph API paper search endpoint.
type SemanticScholar struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
}

// NewSemanticScholar creates a Semantic Scholar service. The API key is
// optional; without one requests run against the public quota.
func NewSemanticScholar(hc *http.Client, apiKey string) *SemanticScholar {
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	return &SemanticScholar{HTTPClient: hc, BaseURL: SemanticScholarBaseURL, APIKey: apiKey}
}

func (s *SemanticScholar) Name() string { return "semantic_scholar" }

func (s *SemanticScholar) Search(ctx context.Context, query string) (publication.Publication, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", "1")
	params.Set("fields", s2PaperFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/paper/search?"+params.Encode(), nil)
	if err != nil {
		return publication.Publication{}, fmt.Errorf("creating request: %w", err)
	}
	if s.APIKey != "" {
		req.Header.Set("x-api-key", s.APIKey)
	}

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return publication.Publication{}, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(s.Name(), resp.StatusCode); err != nil {
		return publication.Publication{}, err
	}

	var payload struct {
		Data []s2Paper `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return publication.Publication{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if len(payload.Data) == 0 {
		return publication.Publication{}, ErrNotFound
	}
	return mapS2Paper(payload.Data[0])
}

type s2Paper struct {
	Title   string `json:"title"`
	Year    int    `json:"year"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
	Abstract    string `json:"abstract"`
	ExternalIDs struct {
		DOI string `json:"DOI"`
	} `json:"externalIds"`
}

func mapS2Paper(p s2Paper) (publication.Publication, error) {
	if p.Title == "" {
		return publication.Publication{}, ErrNotFound
	}

	var authors []string
	for _, a := range p.Authors {
		if a.Name != "" {
			authors = append(authors, a.Name)
		}
	}

	year := ""
	if p.Year > 0 {
		year = strconv.Itoa(p.Year)
	}

	pub := publication.New(p.Title, authors, year)
	pub.DOI = p.ExternalIDs.DOI
	pub.Abstract = p.Abstract
	return pub, nil
}
