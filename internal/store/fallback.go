// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pdiddy/compliance-engine/internal/errs"
	"github.com/pdiddy/compliance-engine/pkg/types"
)

// SaveOutcome reports where a record ended up.
type SaveOutcome string

const (
	// Stored means the primary backend accepted the record.
	Stored SaveOutcome = "stored"
	// FellBack means the primary failed and the record went to local files.
	FellBack SaveOutcome = "fallback"
	// Failed means neither backend accepted the record.
	Failed SaveOutcome = "failed"
)

// Fallback pairs a primary backend with local JSON files. Save reports
// the branch taken as a SaveOutcome; reads try the primary first and then
// the local directory.
type Fallback struct {
	Primary Store
	Local   *Local
	Log     zerolog.Logger
}

// NewFallback returns a Fallback. primary may be nil, in which case the
// local directory is the only backend and saves report Stored.
func NewFallback(primary Store, local *Local, log zerolog.Logger) *Fallback {
	return &Fallback{Primary: primary, Local: local, Log: log}
}

// Save persists rec and reports which backend took it.
func (f *Fallback) Save(ctx context.Context, rec types.Record) (SaveOutcome, error) {
	rec, err := normalize(rec)
	if err != nil {
		return Failed, err
	}
	if f.Primary == nil {
		if err := f.Local.Save(ctx, rec); err != nil {
			return Failed, err
		}
		return Stored, nil
	}

	primaryErr := f.Primary.Save(ctx, rec)
	if primaryErr == nil {
		return Stored, nil
	}
	f.Log.Warn().Err(primaryErr).Str("id", rec.ID).Msg("primary store unavailable, saving locally")

	if err := f.Local.Save(ctx, rec); err != nil {
		return Failed, fmt.Errorf("%w: primary: %v; local: %v", errs.ErrStoreUnavailable, primaryErr, err)
	}
	return FellBack, nil
}

// Get reads from the primary, then from local files.
func (f *Fallback) Get(ctx context.Context, id string) (types.Record, error) {
	if f.Primary != nil {
		rec, err := f.Primary.Get(ctx, id)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, errs.ErrNotFound) {
			f.Log.Warn().Err(err).Str("id", id).Msg("primary store read failed")
		}
	}
	return f.Local.Get(ctx, id)
}

// History lists from the primary, or from local files when the primary
// fails or is absent.
func (f *Fallback) History(ctx context.Context, limit, offset int) (Page, error) {
	if f.Primary != nil {
		page, err := f.Primary.History(ctx, limit, offset)
		if err == nil {
			return page, nil
		}
		f.Log.Warn().Err(err).Msg("primary store history failed, listing local records")
	}
	return f.Local.History(ctx, limit, offset)
}

// Search queries the primary, or local files when the primary fails or is
// absent.
func (f *Fallback) Search(ctx context.Context, opts SearchOptions) (Page, error) {
	if f.Primary != nil {
		page, err := f.Primary.Search(ctx, opts)
		if err == nil {
			return page, nil
		}
		f.Log.Warn().Err(err).Msg("primary store search failed, searching local records")
	}
	return f.Local.Search(ctx, opts)
}

// Delete removes the record from both backends. It returns ErrNotFound
// only when neither had it.
func (f *Fallback) Delete(ctx context.Context, id string) error {
	found := false
	if f.Primary != nil {
		err := f.Primary.Delete(ctx, id)
		switch {
		case err == nil:
			found = true
		case !errors.Is(err, errs.ErrNotFound):
			return err
		}
	}
	err := f.Local.Delete(ctx, id)
	switch {
	case err == nil:
		found = true
	case !errors.Is(err, errs.ErrNotFound):
		return err
	}
	if !found {
		return fmt.Errorf("record %s: %w", id, errs.ErrNotFound)
	}
	return nil
}

// Close closes both backends.
func (f *Fallback) Close() error {
	var err error
	if f.Primary != nil {
		err = f.Primary.Close()
	}
	return errors.Join(err, f.Local.Close())
}
