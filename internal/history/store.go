// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a local index of fetched articles under the cache
// directory: a SQLite database (index.db) plus one YAML metadata record
// per article (meta/<slug>.yaml). History is a convenience; failures here
// never fail a run.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/marxiv/internal/arxiv"
	"github.com/pdiddy/marxiv/pkg/types"
)

const (
	dbFile  = "index.db"
	metaDir = "meta"
)

// DefaultCacheDir returns the platform cache directory for marxiv
// (e.g. ~/.cache/marxiv on Linux).
func DefaultCacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolving user cache directory: %w", err)
	}
	return filepath.Join(base, "marxiv"), nil
}

// Store manages the fetch-history SQLite database.
type Store struct {
	db       *sql.DB
	cacheDir string
}

// Open opens or creates the history database at cacheDir/index.db,
// creating the cache directory and schema as needed.
func Open(cacheDir string) (*Store, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(cacheDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, cacheDir: cacheDir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT,
			authors TEXT,
			date TEXT,
			abstract TEXT,
			source_url TEXT,
			main_file TEXT,
			format TEXT,
			output_file TEXT,
			fetched_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_fetched_at ON papers(fetched_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record upserts the paper into the index and writes its YAML metadata
// record. Refetching an article overwrites the previous entry.
func (s *Store) Record(paper types.Paper) error {
	authors, err := json.Marshal(paper.Authors)
	if err != nil {
		return fmt.Errorf("marshaling authors: %w", err)
	}

	_, err = s.db.Exec(`INSERT INTO papers
		(id, title, authors, date, abstract, source_url, main_file, format, output_file, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, authors=excluded.authors, date=excluded.date,
			abstract=excluded.abstract, source_url=excluded.source_url,
			main_file=excluded.main_file, format=excluded.format,
			output_file=excluded.output_file, fetched_at=excluded.fetched_at`,
		paper.ID, paper.Title, string(authors), paper.Date.Format(time.RFC3339),
		paper.Abstract, paper.SourceURL, paper.MainFile, paper.Format,
		paper.OutputFile, paper.FetchedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("recording %s: %w", paper.ID, err)
	}

	return s.writeMetadata(paper)
}

// List returns the most recently fetched papers, newest first.
func (s *Store) List(limit int) ([]types.Paper, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`SELECT id, title, authors, date, abstract,
		source_url, main_file, format, output_file, fetched_at
		FROM papers ORDER BY fetched_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var papers []types.Paper
	for rows.Next() {
		var p types.Paper
		var authors, date, fetchedAt string
		if err := rows.Scan(&p.ID, &p.Title, &authors, &date, &p.Abstract,
			&p.SourceURL, &p.MainFile, &p.Format, &p.OutputFile, &fetchedAt); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		if authors != "" {
			if err := json.Unmarshal([]byte(authors), &p.Authors); err != nil {
				return nil, fmt.Errorf("decoding authors for %s: %w", p.ID, err)
			}
		}
		if t, parseErr := time.Parse(time.RFC3339, date); parseErr == nil {
			p.Date = t
		}
		if t, parseErr := time.Parse(time.RFC3339, fetchedAt); parseErr == nil {
			p.FetchedAt = t
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

// writeMetadata writes the paper's YAML record to meta/<slug>.yaml.
func (s *Store) writeMetadata(paper types.Paper) error {
	dir := filepath.Join(s.cacheDir, metaDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating metadata directory: %w", err)
	}

	data, err := yaml.Marshal(paper)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}

	path := filepath.Join(dir, arxiv.Slug(paper.ID)+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	return nil
}
