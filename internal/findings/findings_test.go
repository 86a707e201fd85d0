// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package findings

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/compliance-engine/pkg/types"
)

func keywords(fs []types.RiskFinding) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Keyword
	}
	return out
}

func TestExtractPrivacyBreachNotice(t *testing.T) {
	text := "This document describes a data privacy breach penalty under GDPR."
	got := New(0, 0).Extract(text)

	require.Len(t, got, 2)
	assert.Equal(t, []string{"breach", "penalty"}, keywords(got))
	for _, f := range got {
		assert.Equal(t, types.RiskHigh, f.RiskLevel)
	}
	assert.Equal(t, "Contains reference to 'breach'", got[0].Finding)
}

func TestExtractCapsAtTen(t *testing.T) {
	var all []string
	for _, tier := range Vocabulary {
		all = append(all, tier.Keywords...)
	}
	text := strings.Join(all, " ")

	got := New(0, 0).Extract(text)
	assert.Len(t, got, DefaultMaxFindings)
	// Truncation keeps the first-declared terms, not a sample.
	assert.Equal(t, Vocabulary[0].Keywords, keywords(got))
}

func TestExtractTierOrder(t *testing.T) {
	text := "You may follow this policy, otherwise a violation occurs."
	got := New(0, 0).Extract(text)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"violation", "policy", "may"}, keywords(got))
	assert.Equal(t, []types.RiskLevel{types.RiskHigh, types.RiskMedium, types.RiskLow},
		[]types.RiskLevel{got[0].RiskLevel, got[1].RiskLevel, got[2].RiskLevel})
}

func TestExtractOverlappingTerms(t *testing.T) {
	got := New(0, 0).Extract("Reported NON-COMPLIANCE.")
	assert.Equal(t, []string{"non-compliance", "compliance"}, keywords(got))
}

func TestExtractDeterministic(t *testing.T) {
	text := "A lawsuit about a fine, the standard and a rule; a suggestion might help."
	e := New(0, 0)
	assert.Equal(t, e.Extract(text), e.Extract(text))
}

func TestExtractEmpty(t *testing.T) {
	assert.Empty(t, New(0, 0).Extract(""))
}

func TestContextClipping(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		keyword string
		size    int
		want    string
	}{
		{"whole text fits", "a breach here", "breach", 50, "a breach here"},
		{"clipped both sides", "0123456789breach0123456789", "breach", 3, "...789breach012..."},
		{"clipped right only", "breach0123456789", "breach", 3, "breach012..."},
		{"clipped left only", "0123456789breach", "breach", 3, "...789breach"},
		{"case insensitive", "The BREACH was minor", "breach", 4, "The BREACH was..."},
		{"missing", "nothing to see", "breach", 5, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Context(tt.text, tt.keyword, tt.size))
		})
	}
}

func TestContextUsesFirstOccurrence(t *testing.T) {
	text := "first breach " + strings.Repeat("x", 200) + " second breach"
	got := Context(text, "breach", 6)
	assert.Equal(t, "first breach xxxxx...", got)
}
