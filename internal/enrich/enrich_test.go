// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/compliance-engine/internal/errs"
	"github.com/pdiddy/compliance-engine/pkg/types"
)

type stubValidator struct {
	calls int
	err   error
}

func (s *stubValidator) Validate(context.Context, string, []types.SourceMatch) ([]Verdict, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []Verdict{{Source: "A", Relevant: true}}, nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestBreaker(v Validator) (*Breaker, *clock) {
	c := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := NewBreaker(v, 2, time.Minute)
	b.now = c.now
	return b, c
}

func TestBreakerPassesThrough(t *testing.T) {
	stub := &stubValidator{}
	b, _ := newTestBreaker(stub)

	got, err := b.Validate(context.Background(), "x", nil)
	require.NoError(t, err)
	assert.Equal(t, []Verdict{{Source: "A", Relevant: true}}, got)
	assert.False(t, b.Open())
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	stub := &stubValidator{err: errors.New("quota exceeded")}
	b, clk := newTestBreaker(stub)
	ctx := context.Background()

	_, err := b.Validate(ctx, "x", nil)
	assert.ErrorIs(t, err, errs.ErrEnrichmentUnavailable)
	assert.False(t, b.Open())

	_, err = b.Validate(ctx, "x", nil)
	assert.ErrorIs(t, err, errs.ErrEnrichmentUnavailable)
	assert.True(t, b.Open())

	_, err = b.Validate(ctx, "x", nil)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, stub.calls, "open circuit must not call through")

	// Trial call after cooldown fails and reopens immediately.
	clk.t = clk.t.Add(2 * time.Minute)
	_, err = b.Validate(ctx, "x", nil)
	assert.NotErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 3, stub.calls)
	assert.True(t, b.Open())

	// Recovery closes it.
	clk.t = clk.t.Add(2 * time.Minute)
	stub.err = nil
	_, err = b.Validate(ctx, "x", nil)
	require.NoError(t, err)
	assert.False(t, b.Open())
}

func TestBreakerResetsOnSuccess(t *testing.T) {
	stub := &stubValidator{err: errors.New("boom")}
	b, _ := newTestBreaker(stub)
	ctx := context.Background()

	_, _ = b.Validate(ctx, "x", nil)
	stub.err = nil
	_, err := b.Validate(ctx, "x", nil)
	require.NoError(t, err)
	stub.err = errors.New("boom")
	_, _ = b.Validate(ctx, "x", nil)
	assert.False(t, b.Open(), "failures are counted consecutively")
}

func TestParseVerdicts(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []Verdict
	}{
		{"envelope", `{"verdicts":[{"source":"GDPR","relevant":true,"note":"personal data"}]}`,
			[]Verdict{{Source: "GDPR", Relevant: true, Note: "personal data"}}},
		{"bare array", `[{"source":"SOX","relevant":false}]`,
			[]Verdict{{Source: "SOX", Relevant: false}}},
		{"code fence", "```json\n{\"verdicts\":[{\"source\":\"HIPAA\",\"relevant\":true}]}\n```",
			[]Verdict{{Source: "HIPAA", Relevant: true}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVerdicts(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := parseVerdicts("")
	assert.Error(t, err)
	_, err = parseVerdicts("not json")
	assert.Error(t, err)
}

func TestGeminiValidateUsesPrompt(t *testing.T) {
	var prompt string
	g := &Gemini{generate: func(_ context.Context, p string) (string, error) {
		prompt = p
		return `{"verdicts":[{"source":"PCI DSS","relevant":true}]}`, nil
	}}
	matches := []types.SourceMatch{{SourceName: "PCI DSS", SourceDescription: "card security"}}

	got, err := g.Validate(context.Background(), "cardholder data is stored", matches)
	require.NoError(t, err)
	assert.Equal(t, []Verdict{{Source: "PCI DSS", Relevant: true}}, got)
	assert.Contains(t, prompt, "- PCI DSS: card security")
	assert.Contains(t, prompt, "cardholder data is stored")
}

func TestGeminiValidateErrors(t *testing.T) {
	g := &Gemini{generate: func(context.Context, string) (string, error) {
		return "", errors.New("429")
	}}
	_, err := g.Validate(context.Background(), "x", []types.SourceMatch{{SourceName: "A"}})
	assert.Error(t, err)

	got, err := g.Validate(context.Background(), "x", nil)
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, g.Close())
}

func TestNewGeminiRequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), types.EnrichmentConfig{})
	assert.ErrorIs(t, err, errs.ErrEnrichmentUnavailable)
}
