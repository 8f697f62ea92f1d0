// Package pdfdoc provides read access to PDF documents: bounded text
// sampling, native document properties, and content hashing.
package pdfdoc

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DefaultPageCap bounds how many pages the text sampler reads.
// Bibliographic front matter is almost always on the first page.
const DefaultPageCap = 3

// Document is a handle to one PDF on disk.
type Document struct {
	Path string
}

// Properties holds the native Info-dictionary fields of a PDF.
// Absent fields are empty strings.
type Properties struct {
	Title        string
	Author       string
	CreationDate string
	ModDate      string
	Publisher    string
}

var spaceRun = regexp.MustCompile(`[ \t\r\f\v]+`)

// SampleText extracts whitespace-normalized text from the first maxPages
// pages (DefaultPageCap when maxPages <= 0). A page that cannot be decoded
// contributes nothing; a document that cannot be opened at all yields "".
// Callers must treat an empty sample as "no signal", not as an error.
func (d Document) SampleText(maxPages int) (sample string) {
	// The underlying parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			sample = ""
		}
	}()

	if maxPages <= 0 {
		maxPages = DefaultPageCap
	}

	f, r, err := pdf.Open(d.Path)
	if err != nil {
		return ""
	}
	defer f.Close()

	if r.NumPage() < maxPages {
		maxPages = r.NumPage()
	}

	var builder strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	return NormalizeWhitespace(builder.String())
}

// NormalizeWhitespace collapses runs of spaces within lines and drops blank
// lines. Line breaks are preserved so that line-anchored heuristics (for
// example "Lastname, Firstname" at line start) keep working.
func NormalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// Properties reads the native Info dictionary. A document without an Info
// dictionary yields zero Properties and no error; an unreadable document
// yields an error.
func (d Document) Properties() (props Properties, err error) {
	defer func() {
		if r := recover(); r != nil {
			props = Properties{}
			err = fmt.Errorf("reading properties of %s: %v", d.Path, r)
		}
	}()

	f, r, err := pdf.Open(d.Path)
	if err != nil {
		return Properties{}, fmt.Errorf("opening %s: %w", d.Path, err)
	}
	defer f.Close()

	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return Properties{}, nil
	}

	props.Title = textField(info, "Title")
	props.Author = textField(info, "Author")
	props.CreationDate = textField(info, "CreationDate")
	props.ModDate = textField(info, "ModDate")
	props.Publisher = textField(info, "Publisher")
	return props, nil
}

// ContentHash returns the SHA-256 digest of the raw document bytes,
// hex-encoded. It is independent of any parsing: a file the PDF parser
// rejects still hashes fine.
func (d Document) ContentHash() (string, error) {
	f, err := os.Open(d.Path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", d.Path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", d.Path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func textField(info pdf.Value, key string) string {
	v := info.Key(key)
	if v.Kind() != pdf.String {
		return ""
	}
	return strings.TrimSpace(v.Text())
}
