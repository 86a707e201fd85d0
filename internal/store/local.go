// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pdiddy/compliance-engine/internal/errs"
	"github.com/pdiddy/compliance-engine/pkg/types"
)

// Local stores one JSON file per record in a directory.
type Local struct {
	dir        string
	maxResults int
	mu         sync.RWMutex
}

// NewLocal creates dir if needed and returns a Local store.
func NewLocal(dir string, maxResults int) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating local store directory: %w", err)
	}
	return &Local{dir: dir, maxResults: maxResults}, nil
}

// Close is a no-op.
func (l *Local) Close() error { return nil }

func (l *Local) path(id string) (string, error) {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("%w: record id %q", errs.ErrInvalidInput, id)
	}
	return filepath.Join(l.dir, id+".json"), nil
}

// Save writes the record, replacing any previous version.
func (l *Local) Save(_ context.Context, rec types.Record) error {
	rec, err := normalize(rec)
	if err != nil {
		return err
	}
	path, err := l.path(rec.ID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding record %s: %w", rec.ID, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing record %s: %w", rec.ID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("writing record %s: %w", rec.ID, err)
	}
	return nil
}

// Get reads a record.
func (l *Local) Get(_ context.Context, id string) (types.Record, error) {
	path, err := l.path(id)
	if err != nil {
		return types.Record{}, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return readRecord(path)
}

func readRecord(path string) (types.Record, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return types.Record{}, fmt.Errorf("record %s: %w", strings.TrimSuffix(filepath.Base(path), ".json"), errs.ErrNotFound)
	}
	if err != nil {
		return types.Record{}, fmt.Errorf("reading %s: %w", path, err)
	}
	var rec types.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return types.Record{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	return rec, nil
}

// History lists records newest first.
func (l *Local) History(ctx context.Context, limit, offset int) (Page, error) {
	return l.Search(ctx, SearchOptions{Limit: limit, Offset: offset})
}

// Search scans every record file. Unreadable files are skipped.
func (l *Local) Search(_ context.Context, opts SearchOptions) (Page, error) {
	limit, offset := pageBounds(opts.Limit, opts.Offset, l.maxResults)
	query := strings.ToLower(strings.TrimSpace(opts.Query))

	l.mu.RLock()
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		l.mu.RUnlock()
		return Page{}, fmt.Errorf("reading local store: %w", err)
	}
	var recs []types.Record
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		rec, err := readRecord(filepath.Join(l.dir, e.Name()))
		if err != nil {
			continue
		}
		if opts.Status != "" && rec.Status != opts.Status {
			continue
		}
		if query != "" && !strings.Contains(searchText(rec), query) {
			continue
		}
		recs = append(recs, rec)
	}
	l.mu.RUnlock()

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].ID < recs[j].ID
		}
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})

	page := Page{Total: len(recs), Records: []types.RecordSummary{}}
	for i := offset; i < len(recs) && i < offset+limit; i++ {
		page.Records = append(page.Records, recs[i].Summarize())
	}
	return page, nil
}

// Delete removes a record file.
func (l *Local) Delete(_ context.Context, id string) error {
	path, err := l.path(id)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("record %s: %w", id, errs.ErrNotFound)
		}
		return fmt.Errorf("deleting record %s: %w", id, err)
	}
	return nil
}
