// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package findings scans document text for a fixed vocabulary of
// compliance terms grouped by risk tier and reports each hit with the
// text surrounding its first occurrence.
package findings

import (
	"fmt"
	"unicode"

	"github.com/pdiddy/compliance-engine/pkg/types"
)

const (
	// DefaultContextSize is the number of runes kept on each side of a keyword.
	DefaultContextSize = 50

	// DefaultMaxFindings caps the findings reported for one document.
	DefaultMaxFindings = 10

	ellipsis = "..."
)

// Tier is one risk level and its ordered vocabulary.
type Tier struct {
	Level    types.RiskLevel
	Keywords []string
}

// Vocabulary lists the tiers in scan order: high, medium, low. Keywords are
// lowercase and scanned in declaration order.
var Vocabulary = []Tier{
	{
		Level: types.RiskHigh,
		Keywords: []string{
			"violation", "non-compliance", "breach", "illegal", "prohibited",
			"penalty", "fine", "lawsuit", "litigation", "criminal",
		},
	},
	{
		Level: types.RiskMedium,
		Keywords: []string{
			"requirement", "regulation", "policy", "standard", "guideline",
			"law", "rule", "compliance", "mandatory", "obligation",
		},
	},
	{
		Level: types.RiskLow,
		Keywords: []string{
			"recommendation", "best practice", "suggestion", "advisory",
			"optional", "consideration", "may", "might", "could",
		},
	},
}

// Extractor finds risk keywords in text.
type Extractor struct {
	tiers       []Tier
	contextSize int
	maxFindings int
}

// New returns an Extractor over Vocabulary. Non-positive arguments select
// the defaults.
func New(contextSize, maxFindings int) *Extractor {
	if contextSize <= 0 {
		contextSize = DefaultContextSize
	}
	if maxFindings <= 0 {
		maxFindings = DefaultMaxFindings
	}
	return &Extractor{tiers: Vocabulary, contextSize: contextSize, maxFindings: maxFindings}
}

// Extract emits one finding per vocabulary term present anywhere in text
// (case-insensitive substring), in tier order then keyword order, and
// truncates the list to the configured maximum. Overlapping terms such as
// "compliance" inside "non-compliance" each produce their own finding.
func (e *Extractor) Extract(text string) []types.RiskFinding {
	runes := []rune(text)
	lower := lowerRunes(runes)

	var out []types.RiskFinding
	for _, tier := range e.tiers {
		for _, kw := range tier.Keywords {
			pos := indexRunes(lower, []rune(kw))
			if pos < 0 {
				continue
			}
			out = append(out, types.RiskFinding{
				Finding:   fmt.Sprintf("Contains reference to '%s'", kw),
				Keyword:   kw,
				RiskLevel: tier.Level,
				Context:   window(runes, pos, len([]rune(kw)), e.contextSize),
			})
			if len(out) == e.maxFindings {
				return out
			}
		}
	}
	return out
}

// Context returns the excerpt around the first case-insensitive occurrence
// of keyword, or "" when keyword does not occur.
func Context(text, keyword string, contextSize int) string {
	runes := []rune(text)
	kw := lowerRunes([]rune(keyword))
	pos := indexRunes(lowerRunes(runes), kw)
	if pos < 0 {
		return ""
	}
	return window(runes, pos, len(kw), contextSize)
}

// window cuts contextSize runes on each side of [pos, pos+n), clamped to the
// text, and marks each clipped side with an ellipsis.
func window(runes []rune, pos, n, contextSize int) string {
	start := max(0, pos-contextSize)
	end := min(len(runes), pos+n+contextSize)
	s := string(runes[start:end])
	if start > 0 {
		s = ellipsis + s
	}
	if end < len(runes) {
		s += ellipsis
	}
	return s
}

// lowerRunes lowercases rune by rune so that indexes stay aligned with the
// original text.
func lowerRunes(runes []rune) []rune {
	out := make([]rune, len(runes))
	for i, r := range runes {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 {
		return 0
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j, r := range needle {
			if haystack[i+j] != r {
				continue outer
			}
		}
		return i
	}
	return -1
}
