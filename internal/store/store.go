// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists analysis records. Backends share the Store
// interface: SQLite (default), Postgres, and a directory of JSON files
// that also serves as the fallback when the primary backend is down.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/compliance-engine/internal/errs"
	"github.com/pdiddy/compliance-engine/pkg/types"
)

// DefaultMaxResults is the page size used when none is given.
const DefaultMaxResults = 20

// timeLayout sorts lexicographically in UTC.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SearchOptions filters and paginates records.
type SearchOptions struct {
	// Query is matched case-insensitively against the analyzed content and
	// the finding texts and contexts.
	Query string

	// Status keeps only records with this status when set.
	Status types.Status

	Limit  int
	Offset int
}

// Page is one page of record summaries, newest first, with the total
// number of matching records.
type Page struct {
	Records []types.RecordSummary `json:"records" yaml:"records"`
	Total   int                   `json:"total" yaml:"total"`
}

// Store persists analysis records keyed by a caller-generated id. Get and
// Delete return errs.ErrNotFound for unknown ids.
type Store interface {
	Save(ctx context.Context, rec types.Record) error
	Get(ctx context.Context, id string) (types.Record, error)
	History(ctx context.Context, limit, offset int) (Page, error)
	Search(ctx context.Context, opts SearchOptions) (Page, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// searchText is the lowercased text a record is searched by.
func searchText(rec types.Record) string {
	var b strings.Builder
	b.WriteString(rec.Content)
	for _, f := range rec.Details.KeyFindings {
		b.WriteString("\n")
		b.WriteString(f.Finding)
		b.WriteString("\n")
		b.WriteString(f.Context)
	}
	return strings.ToLower(b.String())
}

// likePattern escapes LIKE wildcards in q and wraps it in %...%.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(q)) + "%"
}

// filter builds the WHERE clause shared by the SQL backends. placeholder
// renders the n-th (1-based) bind parameter.
func filter(opts SearchOptions, placeholder func(n int) string) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if opts.Status != "" {
		args = append(args, string(opts.Status))
		conds = append(conds, "status = "+placeholder(len(args)))
	}
	if q := strings.TrimSpace(opts.Query); q != "" {
		args = append(args, likePattern(q))
		conds = append(conds, "search_text LIKE "+placeholder(len(args))+` ESCAPE '\'`)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func pageBounds(limit, offset, def int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit <= 0 {
		limit = DefaultMaxResults
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func normalize(rec types.Record) (types.Record, error) {
	if strings.TrimSpace(rec.ID) == "" {
		return rec, fmt.Errorf("%w: record id is required", errs.ErrInvalidInput)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	if rec.Status == "" {
		rec.Status = rec.Details.Status
	}
	return rec, nil
}
