// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/compliance-engine/internal/errs"
	"github.com/pdiddy/compliance-engine/pkg/types"
)

var errDown = errors.New("connection refused")

// downStore fails every call.
type downStore struct{}

func (downStore) Save(context.Context, types.Record) error { return errDown }
func (downStore) Get(context.Context, string) (types.Record, error) {
	return types.Record{}, errDown
}
func (downStore) History(context.Context, int, int) (Page, error)    { return Page{}, errDown }
func (downStore) Search(context.Context, SearchOptions) (Page, error) { return Page{}, errDown }
func (downStore) Delete(context.Context, string) error                { return errDown }
func (downStore) Close() error                                        { return nil }

func newLocal(t *testing.T) *Local {
	t.Helper()
	l, err := NewLocal(t.TempDir(), 0)
	require.NoError(t, err)
	return l
}

func TestFallbackStoresInPrimary(t *testing.T) {
	primary, err := OpenSQLite(filepath.Join(t.TempDir(), "c.db"), 0)
	require.NoError(t, err)
	local := newLocal(t)
	f := NewFallback(primary, local, zerolog.Nop())
	t.Cleanup(func() { f.Close() })
	ctx := context.Background()

	outcome, err := f.Save(ctx, record("p", types.StatusCompliant, "text", 0))
	require.NoError(t, err)
	assert.Equal(t, Stored, outcome)

	_, err = local.Get(ctx, "p")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	got, err := f.Get(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "text", got.Content)
}

func TestFallbackSavesLocallyWhenPrimaryDown(t *testing.T) {
	var buf bytes.Buffer
	local := newLocal(t)
	f := NewFallback(downStore{}, local, zerolog.New(&buf))
	ctx := context.Background()

	outcome, err := f.Save(ctx, record("q", types.StatusNonCompliant, "text", 0))
	require.NoError(t, err)
	assert.Equal(t, FellBack, outcome)
	assert.Contains(t, buf.String(), "primary store unavailable")

	got, err := f.Get(ctx, "q")
	require.NoError(t, err)
	assert.Equal(t, types.StatusNonCompliant, got.Status)

	page, err := f.History(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"q"}, ids(page))

	page, err = f.Search(ctx, SearchOptions{Query: "TEXT"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func TestFallbackFailedOutcome(t *testing.T) {
	f := NewFallback(downStore{}, newLocal(t), zerolog.Nop())

	outcome, err := f.Save(context.Background(), record("", types.StatusCompliant, "x", 0))
	assert.Equal(t, Failed, outcome)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestFallbackReadsLocalAfterPrimaryMiss(t *testing.T) {
	primary, err := OpenSQLite(filepath.Join(t.TempDir(), "c.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { primary.Close() })
	local := newLocal(t)
	ctx := context.Background()

	require.NoError(t, local.Save(ctx, record("old", types.StatusCompliant, "saved during outage", time.Hour)))
	f := NewFallback(primary, local, zerolog.Nop())

	got, err := f.Get(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, "saved during outage", got.Content)
}

func TestFallbackDelete(t *testing.T) {
	primary, err := OpenSQLite(filepath.Join(t.TempDir(), "c.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { primary.Close() })
	local := newLocal(t)
	f := NewFallback(primary, local, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, primary.Save(ctx, record("both", types.StatusCompliant, "x", 0)))
	require.NoError(t, local.Save(ctx, record("both", types.StatusCompliant, "x", 0)))
	require.NoError(t, local.Save(ctx, record("local-only", types.StatusCompliant, "x", 0)))

	require.NoError(t, f.Delete(ctx, "both"))
	_, err = primary.Get(ctx, "both")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	_, err = local.Get(ctx, "both")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, f.Delete(ctx, "local-only"))
	assert.ErrorIs(t, f.Delete(ctx, "never"), errs.ErrNotFound)
}

func TestFallbackWithoutPrimary(t *testing.T) {
	f := NewFallback(nil, newLocal(t), zerolog.Nop())
	outcome, err := f.Save(context.Background(), record("solo", types.StatusCompliant, "x", 0))
	require.NoError(t, err)
	assert.Equal(t, Stored, outcome)
}
