// Package sidecar reads and writes the YAML metadata record stored next to
// each filed document.
package sidecar

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pdfshelf/shelf/internal/publication"
)

// Extension is the sidecar file extension.
const Extension = ".yaml"

// Record is the persisted metadata schema. Field order matters for human
// readers, so the struct is written as-is rather than through a map.
type Record struct {
	Title     string   `yaml:"title"`
	Authors   []string `yaml:"authors"`
	Year      string   `yaml:"year"`
	DOI       string   `yaml:"doi,omitempty"`
	ISBN      string   `yaml:"isbn,omitempty"`
	Publisher string   `yaml:"publisher,omitempty"`
	Abstract  string   `yaml:"abstract,omitempty"`
}

// FromPublication maps a resolved publication to its sidecar record.
func FromPublication(p publication.Publication) Record {
	return Record{
		Title:     p.Title,
		Authors:   p.Authors,
		Year:      p.Year,
		DOI:       p.DOI,
		ISBN:      p.ISBN,
		Publisher: p.Publisher,
		Abstract:  p.Abstract,
	}
}

// PathFor returns the sidecar path adjacent to a PDF path.
func PathFor(pdfPath string) string {
	return strings.TrimSuffix(pdfPath, ".pdf") + Extension
}

// Write places the sidecar record next to pdfPath.
func Write(pdfPath string, p publication.Publication) error {
	data, err := yaml.Marshal(FromPublication(p))
	if err != nil {
		return fmt.Errorf("encoding sidecar: %w", err)
	}
	if err := os.WriteFile(PathFor(pdfPath), data, 0o644); err != nil {
		return fmt.Errorf("writing sidecar: %w", err)
	}
	return nil
}

// Read parses a sidecar file.
func Read(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("reading sidecar: %w", err)
	}
	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("parsing sidecar %s: %w", path, err)
	}
	return rec, nil
}
