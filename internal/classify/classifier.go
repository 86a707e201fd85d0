// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify defines the zero-shot classification boundary used by
// the pipeline and provides two implementations: a remote inference client
// and an offline keyword heuristic. It also runs per-section classification
// with bounded fan-out.
package classify

import (
	"context"
	"fmt"
	"sort"

	"github.com/pdiddy/compliance-engine/internal/errs"
	"github.com/pdiddy/compliance-engine/pkg/types"
)

// Label sets used by the pipeline.
var (
	ComplianceLabels = []string{"compliant", "non-compliant"}
	RelevanceLabels  = []string{"relevant", "not relevant"}
)

// DefaultHypothesis is the zero-shot template; "{}" is replaced by each label.
const DefaultHypothesis = "This text is {}."

// Result is a classifier prediction. Labels and Scores are parallel and
// ordered by descending score, so Labels[0] is the top prediction.
type Result struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// Top returns the highest-scoring label, or "" for an empty result.
func (r Result) Top() (string, float64) {
	if len(r.Labels) == 0 || len(r.Scores) == 0 {
		return "", 0
	}
	return r.Labels[0], r.Scores[0]
}

// Score returns the score of label, or 0 when absent.
func (r Result) Score(label string) float64 {
	for i, l := range r.Labels {
		if l == label && i < len(r.Scores) {
			return r.Scores[i]
		}
	}
	return 0
}

// Map returns label → score.
func (r Result) Map() map[string]float64 {
	m := make(map[string]float64, len(r.Labels))
	for i, l := range r.Labels {
		if i < len(r.Scores) {
			m[l] = r.Scores[i]
		}
	}
	return m
}

// Classifier scores text against candidate labels. Implementations are
// remote and failure-prone; callers wrap every call with a timeout.
type Classifier interface {
	Classify(ctx context.Context, text string, labels []string, hypothesis string) (Result, error)
}

// newResult pairs labels with scores and orders them by descending score.
// Ties keep the order of labels.
func newResult(labels []string, scores []float64) (Result, error) {
	if len(labels) != len(scores) {
		return Result{}, fmt.Errorf("%w: %d labels but %d scores", errs.ErrClassifier, len(labels), len(scores))
	}
	if len(labels) == 0 {
		return Result{}, fmt.Errorf("%w: empty prediction", errs.ErrClassifier)
	}
	idx := make([]int, len(labels))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})
	r := Result{Labels: make([]string, len(labels)), Scores: make([]float64, len(labels))}
	for i, j := range idx {
		r.Labels[i] = labels[j]
		r.Scores[i] = scores[j]
	}
	return r, nil
}

func checkLabels(labels []string) error {
	if len(labels) < 2 {
		return fmt.Errorf("%w: at least two candidate labels required", errs.ErrInvalidInput)
	}
	return nil
}

// New returns the classifier selected by cfg.Backend.
func New(cfg types.ClassifierConfig) (Classifier, error) {
	switch cfg.Backend {
	case types.ClassifierHeuristic, "":
		return Heuristic{}, nil
	case types.ClassifierHTTP:
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("%w: classifier endpoint required for the http backend", errs.ErrInvalidInput)
		}
		return NewHTTPClient(cfg), nil
	default:
		return nil, fmt.Errorf("%w: unknown classifier backend %q", errs.ErrInvalidInput, cfg.Backend)
	}
}
