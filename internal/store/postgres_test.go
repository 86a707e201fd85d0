// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/compliance-engine/internal/errs"
)

func TestPostgres(t *testing.T) {
	url := os.Getenv("COMPLIANCE_ENGINE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("COMPLIANCE_ENGINE_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	p, err := OpenPostgres(ctx, url, 0)
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })

	_, err = p.pool.Exec(ctx, `TRUNCATE analyses`)
	require.NoError(t, err)

	exerciseStore(t, p)
}

func TestOpenPostgresWithoutURL(t *testing.T) {
	_, err := OpenPostgres(context.Background(), "", 0)
	assert.ErrorIs(t, err, errs.ErrStoreUnavailable)
}
