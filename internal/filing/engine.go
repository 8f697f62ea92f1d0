// Package filing drives a batch organize run: walk, resolve, normalize,
// copy, tally.
package filing

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pdfshelf/shelf/internal/identity"
	"github.com/pdfshelf/shelf/internal/pdfdoc"
	"github.com/pdfshelf/shelf/internal/publication"
)

// Resolver produces the authoritative metadata for one document.
type Resolver interface {
	Resolve(ctx context.Context, doc pdfdoc.Document) (publication.Publication, error)
}

// Filed records one successfully placed document.
type Filed struct {
	Source      string                  `json:"source"`
	Destination string                  `json:"destination"`
	Publication publication.Publication `json:"publication"`
}

// Result is the outcome of one batch run.
type Result struct {
	Succeeded int     `json:"succeeded"`
	Failed    int     `json:"failed"`
	Skipped   int     `json:"skipped"`
	Filed     []Filed `json:"filed,omitempty"`
}

// Engine processes documents strictly one at a time in sorted path order.
// The suppression set and the lookup rate gate both depend on that serial
// ordering.
type Engine struct {
	resolver Resolver
	scheme   identity.Scheme
	logger   *slog.Logger
}

// New creates an Engine. A nil logger falls back to slog.Default.
func New(r Resolver, scheme identity.Scheme, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{resolver: r, scheme: scheme, logger: logger}
}

var variantSuffix = regexp.MustCompile(`-\d+$`)

// SuppressionKey derives the duplicate-variant key from an input path:
// the filename stem with a trailing numeric variant suffix stripped, so
// "report-2.pdf" collides with "report.pdf".
func SuppressionKey(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return variantSuffix.ReplaceAllString(stem, "")
}

// Process runs one batch. A missing input directory fails the batch;
// everything else is contained at the document boundary.
func (e *Engine) Process(ctx context.Context, inputDir, outputDir string) (*Result, error) {
	paths, err := listPDFs(inputDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	res := &Result{}
	seenKeys := make(map[string]bool)
	seenHashes := make(map[string]bool)

	for _, path := range paths {
		key := SuppressionKey(path)
		if seenKeys[key] {
			e.logger.Info("skipping duplicate variant", "path", path)
			res.Skipped++
			continue
		}

		e.logger.Info("processing document", "path", path)
		doc := pdfdoc.Document{Path: path}

		pub, err := e.resolver.Resolve(ctx, doc)
		if err != nil {
			e.logger.Warn("resolution failed", "path", path, "error", err)
			res.Failed++
			continue
		}

		if pub.ContentHash == "" {
			if hash, err := doc.ContentHash(); err == nil {
				pub = pub.WithContentHash(hash)
			}
		}
		if pub.ContentHash != "" && seenHashes[pub.ContentHash] {
			e.logger.Info("skipping exact duplicate", "path", path, "content_hash", pub.ContentHash)
			res.Skipped++
			seenKeys[key] = true
			continue
		}

		dest := identity.PathFor(outputDir, e.scheme, identity.Normalize(pub))
		if err := copyFile(path, dest); err != nil {
			e.logger.Error("filing failed", "path", path, "dest", dest, "error", err)
			res.Failed++
			continue
		}

		e.logger.Info("filed", "path", path, "dest", dest)
		res.Succeeded++
		seenKeys[key] = true
		if pub.ContentHash != "" {
			seenHashes[pub.ContentHash] = true
		}
		res.Filed = append(res.Filed, Filed{Source: path, Destination: dest, Publication: pub})
	}

	e.logger.Info("batch complete",
		"succeeded", res.Succeeded, "failed", res.Failed, "skipped", res.Skipped)
	return res, nil
}

// listPDFs walks inputDir and returns all PDF paths in sorted order.
// Dotfiles and AppleDouble "._" files are skipped.
func listPDFs(inputDir string) ([]string, error) {
	info, err := os.Stat(inputDir)
	if err != nil {
		return nil, fmt.Errorf("input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path is not a directory: %s", inputDir)
	}

	var paths []string
	err = filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") {
			return nil
		}
		if strings.EqualFold(filepath.Ext(name), ".pdf") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking input directory: %w", err)
	}

	sort.Strings(paths)
	return paths, nil
}

// copyFile copies src to dst atomically: the bytes land in a temp file in
// the destination directory and are renamed into place, so dst either
// exists complete or not at all.
func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating destination directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp-")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("copying: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("placing destination: %w", err)
	}
	return nil
}
