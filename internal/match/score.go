// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"math"
	"strings"

	"github.com/pdiddy/compliance-engine/pkg/types"
)

// Signal weights of the keyword relevance score.
const (
	KeywordWeight  = 0.5
	CategoryWeight = 0.3
	TitleWeight    = 0.4
	RelatedWeight  = 0.2
)

// Score computes the keyword relevance of src for a lowercased document.
// The keyword, the title and each category (once with underscores read as
// spaces, once raw) add their weights independently; any related term adds
// RelatedWeight once. The result is clamped to [0, 1]. Matched categories
// are returned once each in catalog order.
func Score(src types.RegulatorySource, related []string, lower string) (float64, []string) {
	score := 0.0
	if kw := strings.ToLower(src.Keyword); kw != "" && strings.Contains(lower, kw) {
		score += KeywordWeight
	}

	matched := []string{}
	for _, cat := range src.Categories {
		raw := strings.ToLower(cat)
		if raw == "" {
			continue
		}
		hit := false
		if strings.Contains(lower, strings.ReplaceAll(raw, "_", " ")) {
			score += CategoryWeight
			hit = true
		}
		if strings.Contains(lower, raw) {
			score += CategoryWeight
			hit = true
		}
		if hit && !contains(matched, cat) {
			matched = append(matched, cat)
		}
	}

	if title := strings.ToLower(src.Title); title != "" && strings.Contains(lower, title) {
		score += TitleWeight
	}

	for _, term := range related {
		if term != "" && strings.Contains(lower, strings.ToLower(term)) {
			score += RelatedWeight
			break
		}
	}

	return clamp(score), matched
}

func clamp(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
