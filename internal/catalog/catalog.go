// Package catalog persists the ledger of filed documents in SQLite.
//
// The catalog lives in the output root and survives across batch runs; it
// answers "what has been filed where" without re-reading sidecars.
package catalog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pdfshelf/shelf/internal/publication"
)

// FileName is the catalog database filename under the output root.
const FileName = "catalog.db"

// DB wraps the catalog database connection.
type DB struct {
	db *sql.DB
}

// Entry is one catalog row.
type Entry struct {
	SourcePath  string                  `json:"source_path"`
	DestPath    string                  `json:"dest_path"`
	Publication publication.Publication `json:"publication"`
	FiledAt     time.Time               `json:"filed_at"`
}

// Open opens or creates the catalog at the given path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	// SQLite doesn't support concurrent writes.
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating catalog schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS documents (
			dest_path TEXT PRIMARY KEY,
			source_path TEXT NOT NULL,
			content_hash TEXT,
			title TEXT NOT NULL,
			authors_json TEXT NOT NULL,
			year TEXT NOT NULL,
			doi TEXT,
			isbn TEXT,
			publisher TEXT,
			filed_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_documents_hash
			ON documents(content_hash) WHERE content_hash IS NOT NULL AND content_hash != '';
		CREATE INDEX IF NOT EXISTS idx_documents_year ON documents(year);
	`
	_, err := db.Exec(schema)
	return err
}

// Record upserts one filed document. Refiling the same destination
// replaces the previous row, matching the engine's overwrite semantics.
func (d *DB) Record(sourcePath, destPath string, p publication.Publication) error {
	authorsJSON, err := json.Marshal(p.Authors)
	if err != nil {
		return fmt.Errorf("encoding authors: %w", err)
	}

	_, err = d.db.Exec(`
		INSERT OR REPLACE INTO documents (
			dest_path, source_path, content_hash,
			title, authors_json, year, doi, isbn, publisher, filed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		destPath, sourcePath, p.ContentHash,
		p.Title, string(authorsJSON), p.Year, p.DOI, p.ISBN, p.Publisher,
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("recording document: %w", err)
	}
	return nil
}

// ByHash returns the entry with the given content hash, or nil.
func (d *DB) ByHash(hash string) (*Entry, error) {
	if hash == "" {
		return nil, nil
	}
	row := d.db.QueryRow(selectFields+` FROM documents WHERE content_hash = ? LIMIT 1`, hash)
	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying by hash: %w", err)
	}
	return entry, nil
}

// List returns all entries, newest first.
func (d *DB) List() ([]Entry, error) {
	rows, err := d.db.Query(selectFields + ` FROM documents ORDER BY filed_at DESC, dest_path`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

const selectFields = `SELECT dest_path, source_path, content_hash,
	title, authors_json, year, doi, isbn, publisher, filed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var (
		entry       Entry
		authorsJSON string
		filedAt     int64
	)
	err := row.Scan(
		&entry.DestPath, &entry.SourcePath, &entry.Publication.ContentHash,
		&entry.Publication.Title, &authorsJSON, &entry.Publication.Year,
		&entry.Publication.DOI, &entry.Publication.ISBN, &entry.Publication.Publisher,
		&filedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(authorsJSON), &entry.Publication.Authors); err != nil {
		return nil, fmt.Errorf("decoding authors: %w", err)
	}
	entry.FiledAt = time.Unix(filedAt, 0)
	return &entry, nil
}
