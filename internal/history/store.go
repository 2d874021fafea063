// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records submission runs in a SQLite database so that a
// student can see what was packaged and when.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/course-submit/pkg/types"
)

const (
	appDir = "course-submit"
	dbFile = "history.db"

	// DefaultLimit bounds Recent when no limit is given.
	DefaultLimit = 20

	// timeLayout is fixed-width so started_at sorts lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

// Run is one recorded submission run.
type Run struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	Dir       string
	Name      string
	ZipPath   string
	ZipSize   int64
	Added     []string
	Missing   []string
	PDFPath   string
	PDFParts  int
	Merged    bool
}

// FromResult builds a Run from a finished submission.
func FromResult(dir, name string, r types.Result) Run {
	return Run{
		ID:        r.RunID,
		StartedAt: r.StartedAt,
		Duration:  r.Duration,
		Dir:       dir,
		Name:      name,
		ZipPath:   r.ZipPath,
		ZipSize:   r.Archive.Size,
		Added:     r.Archive.Added,
		Missing:   r.Archive.Missing,
		PDFPath:   r.PDFPath,
		PDFParts:  len(r.Inline.Parts),
		Merged:    r.Inline.Merged,
	}
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// DefaultPath returns the history database under the XDG data directory.
func DefaultPath() string {
	return filepath.Join(xdg.DataHome, appDir, dbFile)
}

// Store manages the history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
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
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			dir TEXT NOT NULL,
			name TEXT NOT NULL,
			zip_path TEXT NOT NULL,
			zip_size INTEGER NOT NULL,
			added TEXT,
			missing TEXT,
			pdf_path TEXT,
			pdf_parts INTEGER NOT NULL,
			merged INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts run. A run without an ID is given one.
func (s *Store) Record(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = NewRunID()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, duration_ms, dir, name, zip_path, zip_size,
			added, missing, pdf_path, pdf_parts, merged)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(timeLayout),
		run.Duration.Milliseconds(),
		run.Dir,
		run.Name,
		run.ZipPath,
		run.ZipSize,
		joinNames(run.Added),
		joinNames(run.Missing),
		run.PDFPath,
		run.PDFParts,
		run.Merged,
	)
	if err != nil {
		return "", fmt.Errorf("recording run %s: %w", run.ID, err)
	}
	return run.ID, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, duration_ms, dir, name, zip_path, zip_size,
			added, missing, pdf_path, pdf_parts, merged
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r          Run
			startedAt  string
			durationMS int64
			added      sql.NullString
			missing    sql.NullString
			pdfPath    sql.NullString
		)
		if err := rows.Scan(&r.ID, &startedAt, &durationMS, &r.Dir, &r.Name, &r.ZipPath, &r.ZipSize,
			&added, &missing, &pdfPath, &r.PDFParts, &r.Merged); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, err = time.Parse(timeLayout, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing started_at of run %s: %w", r.ID, err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.Added = splitNames(added.String)
		r.Missing = splitNames(missing.String)
		r.PDFPath = pdfPath.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// File names never contain newlines in a valid manifest, so they serve as
// the list separator.
func joinNames(names []string) string {
	return strings.Join(names, "\n")
}

func splitNames(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
