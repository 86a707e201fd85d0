// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pdiddy/compliance-engine/internal/preview"
	"github.com/pdiddy/compliance-engine/internal/segment"
	"github.com/pdiddy/compliance-engine/pkg/types"
)

// ClassifySections cuts the un-truncated text into at most cfg.MaxSections
// sections, classifies each against ComplianceLabels with at most
// cfg.Concurrency calls in flight, and returns the results in section
// order. A failed or timed-out call marks only its own section as
// StatusError.
func ClassifySections(ctx context.Context, c Classifier, text string, cfg types.AnalysisConfig, log zerolog.Logger) []types.SectionResult {
	chunks := segment.Sections(text, cfg.SectionSize, cfg.MaxSections, cfg.MaxSectionSize)
	results := make([]types.SectionResult, len(chunks))
	if len(chunks) == 0 {
		return results
	}

	workers := cfg.Concurrency
	if workers <= 0 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = classifySection(ctx, c, i+1, chunk, cfg)
			if results[i].Status == types.StatusError {
				log.Warn().Int("section", i+1).Str("err", results[i].Error).Msg("section classification failed")
			}
		}(i, chunk)
	}
	wg.Wait()
	return results
}

func classifySection(ctx context.Context, c Classifier, n int, chunk string, cfg types.AnalysisConfig) types.SectionResult {
	res := types.SectionResult{
		SectionNumber: n,
		SectionText:   preview.Clean(chunk, cfg.PreviewLength),
	}

	callCtx := ctx
	if cfg.ClassifierTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, cfg.ClassifierTimeout)
		defer cancel()
	}

	out, err := c.Classify(callCtx, chunk, ComplianceLabels, DefaultHypothesis)
	if err != nil {
		res.Status = types.StatusError
		res.Error = err.Error()
		return res
	}
	status, conf, err := Verdict(out)
	if err != nil {
		res.Status = types.StatusError
		res.Error = err.Error()
		return res
	}
	res.Status = status
	res.Confidence = conf
	return res
}

// Verdict maps the top label of a compliance prediction to a Status.
func Verdict(r Result) (types.Status, float64, error) {
	label, score := r.Top()
	switch label {
	case ComplianceLabels[0]:
		return types.StatusCompliant, score, nil
	case ComplianceLabels[1]:
		return types.StatusNonCompliant, score, nil
	default:
		return types.StatusError, 0, fmt.Errorf("unexpected label %q", label)
	}
}
