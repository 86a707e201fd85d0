// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pdiddy/compliance-engine/internal/errs"
	"github.com/pdiddy/compliance-engine/pkg/types"
)

// Postgres stores records in PostgreSQL with details as JSONB.
type Postgres struct {
	pool       *pgxpool.Pool
	maxResults int
}

// OpenPostgres connects to databaseURL, verifies the connection and
// creates the schema.
func OpenPostgres(ctx context.Context, databaseURL string, maxResults int) (*Postgres, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("%w: database URL not set", errs.ErrStoreUnavailable)
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}

	p := &Postgres{pool: pool, maxResults: maxResults}
	if err := p.createSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return p, nil
}

// Close releases the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) createSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id TEXT PRIMARY KEY,
			file_path TEXT,
			status TEXT NOT NULL,
			confidence DOUBLE PRECISION,
			details JSONB NOT NULL,
			content TEXT,
			search_text TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_status ON analyses(status)`,
	}
	for _, stmt := range statements {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save inserts or replaces a record.
func (p *Postgres) Save(ctx context.Context, rec types.Record) error {
	rec, err := normalize(rec)
	if err != nil {
		return err
	}
	details, err := json.Marshal(rec.Details)
	if err != nil {
		return fmt.Errorf("encoding details: %w", err)
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO analyses (id, file_path, status, confidence, details, content, search_text, created_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			file_path = EXCLUDED.file_path,
			status = EXCLUDED.status,
			confidence = EXCLUDED.confidence,
			details = EXCLUDED.details,
			content = EXCLUDED.content,
			search_text = EXCLUDED.search_text,
			created_at = EXCLUDED.created_at`,
		rec.ID, rec.FilePath, string(rec.Status), rec.Details.Confidence, string(details),
		rec.Content, searchText(rec), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving record %s: %w", rec.ID, err)
	}
	return nil
}

// Get returns the full record.
func (p *Postgres) Get(ctx context.Context, id string) (types.Record, error) {
	var (
		rec      types.Record
		status   string
		details  string
		filePath *string
		content  *string
	)
	err := p.pool.QueryRow(ctx,
		`SELECT id, file_path, status, details::text, content, created_at FROM analyses WHERE id = $1`, id,
	).Scan(&rec.ID, &filePath, &status, &details, &content, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Record{}, fmt.Errorf("record %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return types.Record{}, fmt.Errorf("loading record %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(details), &rec.Details); err != nil {
		return types.Record{}, fmt.Errorf("decoding record %s: %w", id, err)
	}
	if filePath != nil {
		rec.FilePath = *filePath
	}
	if content != nil {
		rec.Content = *content
	}
	rec.Status = types.Status(status)
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, nil
}

// History lists records newest first.
func (p *Postgres) History(ctx context.Context, limit, offset int) (Page, error) {
	return p.Search(ctx, SearchOptions{Limit: limit, Offset: offset})
}

// Search filters records by status and text, newest first.
func (p *Postgres) Search(ctx context.Context, opts SearchOptions) (Page, error) {
	limit, offset := pageBounds(opts.Limit, opts.Offset, p.maxResults)
	where, args := filter(opts, func(n int) string { return "$" + strconv.Itoa(n) })

	var page Page
	if err := p.pool.QueryRow(ctx, `SELECT count(*) FROM analyses`+where, args...).Scan(&page.Total); err != nil {
		return Page{}, fmt.Errorf("counting records: %w", err)
	}

	n := len(args)
	rows, err := p.pool.Query(ctx,
		`SELECT id, file_path, status, confidence, created_at FROM analyses`+where+
			` ORDER BY created_at DESC, id LIMIT $`+strconv.Itoa(n+1)+` OFFSET $`+strconv.Itoa(n+2),
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
			filePath   *string
			status     string
			confidence *float64
		)
		if err := rows.Scan(&r.ID, &filePath, &status, &confidence, &r.CreatedAt); err != nil {
			return Page{}, fmt.Errorf("scanning record: %w", err)
		}
		if filePath != nil {
			r.FilePath = *filePath
		}
		if confidence != nil {
			r.Confidence = *confidence
		}
		r.Status = types.Status(status)
		r.CreatedAt = r.CreatedAt.UTC()
		page.Records = append(page.Records, r)
	}
	return page, rows.Err()
}

// Delete removes a record.
func (p *Postgres) Delete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM analyses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting record %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("record %s: %w", id, errs.ErrNotFound)
	}
	return nil
}
