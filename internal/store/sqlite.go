// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/compliance-engine/internal/errs"
	"github.com/pdiddy/compliance-engine/pkg/types"
)

// SQLite stores records in a local SQLite database.
type SQLite struct {
	db         *sql.DB
	maxResults int
}

// OpenSQLite opens or creates the database at path and its schema.
func OpenSQLite(path string, maxResults int) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLite{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id TEXT PRIMARY KEY,
			file_path TEXT,
			status TEXT NOT NULL,
			confidence REAL,
			details TEXT NOT NULL,
			content TEXT,
			search_text TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_status ON analyses(status)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save inserts or replaces a record.
func (s *SQLite) Save(ctx context.Context, rec types.Record) error {
	rec, err := normalize(rec)
	if err != nil {
		return err
	}
	details, err := json.Marshal(rec.Details)
	if err != nil {
		return fmt.Errorf("encoding details: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, file_path, status, confidence, details, content, search_text, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			file_path = excluded.file_path,
			status = excluded.status,
			confidence = excluded.confidence,
			details = excluded.details,
			content = excluded.content,
			search_text = excluded.search_text,
			created_at = excluded.created_at`,
		rec.ID, rec.FilePath, string(rec.Status), rec.Details.Confidence, string(details),
		rec.Content, searchText(rec), rec.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("saving record %s: %w", rec.ID, err)
	}
	return nil
}

// Get returns the full record.
func (s *SQLite) Get(ctx context.Context, id string) (types.Record, error) {
	var (
		rec       types.Record
		status    string
		details   string
		createdAt string
		filePath  sql.NullString
		content   sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, file_path, status, details, content, created_at FROM analyses WHERE id = ?`, id,
	).Scan(&rec.ID, &filePath, &status, &details, &content, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Record{}, fmt.Errorf("record %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return types.Record{}, fmt.Errorf("loading record %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(details), &rec.Details); err != nil {
		return types.Record{}, fmt.Errorf("decoding record %s: %w", id, err)
	}
	rec.FilePath = filePath.String
	rec.Content = content.String
	rec.Status = types.Status(status)
	rec.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return rec, nil
}

// History lists records newest first.
func (s *SQLite) History(ctx context.Context, limit, offset int) (Page, error) {
	return s.Search(ctx, SearchOptions{Limit: limit, Offset: offset})
}

// Search filters records by status and text, newest first.
func (s *SQLite) Search(ctx context.Context, opts SearchOptions) (Page, error) {
	limit, offset := pageBounds(opts.Limit, opts.Offset, s.maxResults)
	where, args := filter(opts, func(int) string { return "?" })

	var page Page
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM analyses`+where, args...).Scan(&page.Total); err != nil {
		return Page{}, fmt.Errorf("counting records: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file_path, status, confidence, created_at FROM analyses`+where+
			` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		append(args, limit, offset)...,
	)
	if err != nil {
		return Page{}, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	page.Records = []types.RecordSummary{}
	for rows.Next() {
		var (
			r          types.RecordSummary
			filePath   sql.NullString
			status     string
			confidence sql.NullFloat64
			createdAt  string
		)
		if err := rows.Scan(&r.ID, &filePath, &status, &confidence, &createdAt); err != nil {
			return Page{}, fmt.Errorf("scanning record: %w", err)
		}
		r.FilePath = filePath.String
		r.Status = types.Status(status)
		r.Confidence = confidence.Float64
		r.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		page.Records = append(page.Records, r)
	}
	return page, rows.Err()
}

// Delete removes a record.
func (s *SQLite) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting record %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting record %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("record %s: %w", id, errs.ErrNotFound)
	}
	return nil
}
