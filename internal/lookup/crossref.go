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

// CrossrefBaseURL is the Crossref REST API base URL.
const CrossrefBaseURL = "https://api.crossref.org"

// Crossref queries the Crossref works endpoint for the best bibliographic
// match. A mailto parameter routes requests into Crossref's polite pool.
type Crossref struct {
	HTTPClient *http.Client
	BaseURL    string
	Mailto     string
}

// NewCrossref creates a Crossref service.
func NewCrossref(hc *http.Client, mailto string) *Crossref {
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	return &Crossref{HTTPClient: hc, BaseURL: CrossrefBaseURL, Mailto: mailto}
}

func (s *Crossref) Name() string { return "crossref" }

func (s *Crossref) Search(ctx context.Context, query string) (publication.Publication, error) {
	params := url.Values{}
	params.Set("query.bibliographic", query)
	params.Set("rows", "1")
	if s.Mailto != "" {
		params.Set("mailto", s.Mailto)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/works?"+params.Encode(), nil)
	if err != nil {
		return publication.Publication{}, fmt.Errorf("creating request: %w", err)
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
		Message struct {
			Items []crossrefWork `json:"items"`
		} `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return publication.Publication{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if len(payload.Message.Items) == 0 {
		return publication.Publication{}, ErrNotFound
	}
	return mapCrossrefWork(payload.Message.Items[0])
}

type crossrefWork struct {
	Title  []string `json:"title"`
	Author []struct {
		Given  string `json:"given"`
		Family string `json:"family"`
	} `json:"author"`
	Issued struct {
		DateParts [][]int `json:"date-parts"`
	} `json:"issued"`
	DOI       string   `json:"DOI"`
	ISBN      []string `json:"ISBN"`
	Publisher string   `json:"publisher"`
	Abstract  string   `json:"abstract"`
}

func mapCrossrefWork(w crossrefWork) (publication.Publication, error) {
	if len(w.Title) == 0 || w.Title[0] == "" {
		return publication.Publication{}, ErrNotFound
	}

	// Crossref names are structured; keep the "Family, Given" form.
	var authors []string
	for _, a := range w.Author {
		switch {
		case a.Family != "" && a.Given != "":
			authors = append(authors, a.Family+", "+a.Given)
		case a.Family != "":
			authors = append(authors, a.Family)
		case a.Given != "":
			authors = append(authors, a.Given)
		}
	}

	year := ""
	if len(w.Issued.DateParts) > 0 && len(w.Issued.DateParts[0]) > 0 {
		year = strconv.Itoa(w.Issued.DateParts[0][0])
	}

	pub := publication.New(w.Title[0], authors, year)
	pub.DOI = w.DOI
	pub.Publisher = w.Publisher
	pub.Abstract = w.Abstract
	if len(w.ISBN) > 0 {
		pub.ISBN = w.ISBN[0]
	}
	return pub, nil
}
