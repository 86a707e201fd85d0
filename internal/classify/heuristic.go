// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"context"
	"slices"
	"strings"

	"github.com/pdiddy/compliance-engine/internal/findings"
	"github.com/pdiddy/compliance-engine/pkg/types"
)

// Term weights for the heuristic non-compliance signal.
const (
	highWeight   = 3.0
	mediumWeight = 1.0
	// saturation is the weighted hit count at which non-compliance reaches 0.5.
	saturation = 6.0
)

// Heuristic is an offline classifier. For the compliance label pair it
// derives a non-compliance score from counted risk-vocabulary occurrences:
// w/(w+saturation) where w weighs high-tier hits 3 and medium-tier hits 1.
// Any other label set receives a uniform distribution.
type Heuristic struct{}

// Classify implements Classifier.
func (Heuristic) Classify(ctx context.Context, text string, labels []string, _ string) (Result, error) {
	if err := checkLabels(labels); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if !isComplianceSet(labels) {
		scores := make([]float64, len(labels))
		for i := range scores {
			scores[i] = 1 / float64(len(labels))
		}
		return newResult(labels, scores)
	}

	nc := nonCompliance(strings.ToLower(text))
	scores := make([]float64, len(labels))
	for i, l := range labels {
		if l == ComplianceLabels[1] {
			scores[i] = nc
		} else {
			scores[i] = 1 - nc
		}
	}
	return newResult(labels, scores)
}

func isComplianceSet(labels []string) bool {
	return len(labels) == 2 &&
		slices.Contains(labels, ComplianceLabels[0]) &&
		slices.Contains(labels, ComplianceLabels[1])
}

func nonCompliance(lower string) float64 {
	var w float64
	for _, tier := range findings.Vocabulary {
		var weight float64
		switch tier.Level {
		case types.RiskHigh:
			weight = highWeight
		case types.RiskMedium:
			weight = mediumWeight
		default:
			continue
		}
		for _, kw := range tier.Keywords {
			w += weight * float64(strings.Count(lower, kw))
		}
	}
	return w / (w + saturation)
}
