package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdfshelf/shelf/internal/publication"
)

// GoogleBooksBaseURL is the Google Books volumes API base URL.
const GoogleBooksBaseURL = "https://www.googleapis.com/books/v1"

// GoogleBooks queries the volumes endpoint. It is the book-shaped
// counterpart to the two paper-oriented services and the main source of
// ISBN and publisher fields.
type GoogleBooks struct {
	HTTPClient *http.Client
	BaseURL    string
}

// NewGoogleBooks creates a Google Books service.
func NewGoogleBooks(hc *http.Client) *GoogleBooks {
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	return &GoogleBooks{HTTPClient: hc, BaseURL: GoogleBooksBaseURL}
}

func (s *GoogleBooks) Name() string { return "google_books" }

func (s *GoogleBooks) Search(ctx context.Context, query string) (publication.Publication, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/volumes?"+params.Encode(), nil)
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
		Items []struct {
			VolumeInfo gbVolumeInfo `json:"volumeInfo"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return publication.Publication{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if len(payload.Items) == 0 {
		return publication.Publication{}, ErrNotFound
	}
	return mapGoogleBooksVolume(payload.Items[0].VolumeInfo)
}

type gbVolumeInfo struct {
	Title               string   `json:"title"`
	Authors             []string `json:"authors"`
	PublishedDate       string   `json:"publishedDate"`
	Publisher           string   `json:"publisher"`
	Description         string   `json:"description"`
	IndustryIdentifiers []struct {
		Type       string `json:"type"`
		Identifier string `json:"identifier"`
	} `json:"industryIdentifiers"`
}

func mapGoogleBooksVolume(v gbVolumeInfo) (publication.Publication, error) {
	if v.Title == "" {
		return publication.Publication{}, ErrNotFound
	}

	// publishedDate is "YYYY", "YYYY-MM", or "YYYY-MM-DD".
	year := v.PublishedDate
	if len(year) > 4 {
		year = year[:4]
	}

	pub := publication.New(v.Title, v.Authors, year)
	pub.Publisher = v.Publisher
	pub.Abstract = v.Description
	pub.ISBN = pickISBN(v)
	return pub, nil
}

// pickISBN prefers ISBN_13 over ISBN_10.
func pickISBN(v gbVolumeInfo) string {
	var isbn10 string
	for _, id := range v.IndustryIdentifiers {
		switch id.Type {
		case "ISBN_13":
			return id.Identifier
		case "ISBN_10":
			isbn10 = id.Identifier
		}
	}
	return isbn10
}
