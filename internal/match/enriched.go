// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/compliance-engine/internal/catalog"
	"github.com/pdiddy/compliance-engine/internal/classify"
	"github.com/pdiddy/compliance-engine/internal/enrich"
	"github.com/pdiddy/compliance-engine/pkg/types"
)

// Fusion weights: combined = 0.3*keyword + 0.7*relevant.
const (
	FusionKeywordWeight    = 0.3
	FusionClassifierWeight = 0.7
)

// Enriched pre-filters sources by keyword score, asks the classifier
// whether a bounded prefix of the document is relevant to each candidate,
// and keeps candidates whose fused score reaches FusionThreshold. Fusion
// only changes RelevanceScore; categories and keyword bookkeeping stay as
// the keyword pass produced them.
type Enriched struct {
	Catalog            *catalog.Catalog
	Classifier         classify.Classifier
	Validator          enrich.Validator
	CandidateThreshold float64
	FusionThreshold    float64
	Prefix             int
	Timeout            time.Duration
	ValidateTimeout    time.Duration
	Concurrency        int
	Log                zerolog.Logger
}

// Match implements Matcher.
func (e *Enriched) Match(ctx context.Context, text string) []types.SourceMatch {
	candidates := scoreCatalog(e.Catalog, text, e.CandidateThreshold)
	if len(candidates) == 0 {
		return nil
	}
	prefix := runePrefix(text, e.Prefix)

	workers := e.Concurrency
	if workers <= 0 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := range candidates {
		wg.Add(1)
		go func(m *types.SourceMatch) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			e.fuse(ctx, prefix, m)
		}(&candidates[i])
	}
	wg.Wait()

	var out []types.SourceMatch
	for _, m := range candidates {
		if m.RelevanceScore >= e.FusionThreshold {
			out = append(out, m)
		}
	}
	sortByScore(out)

	if e.Validator != nil && len(out) > 0 {
		e.annotate(ctx, prefix, out)
	}
	return out
}

// fuse re-weights one candidate. A classifier failure leaves the keyword
// score in place.
func (e *Enriched) fuse(ctx context.Context, prefix string, m *types.SourceMatch) {
	callCtx := ctx
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	hypothesis := "This document is {} to " + m.SourceName + "."
	res, err := e.Classifier.Classify(callCtx, prefix, classify.RelevanceLabels, hypothesis)
	if err != nil {
		e.Log.Warn().Err(err).Str("source", m.SourceName).Msg("relevance fusion failed, keeping keyword score")
		return
	}
	rel := res.Score(classify.RelevanceLabels[0])
	m.ClassifierScore = &rel
	m.RelevanceScore = clamp(FusionKeywordWeight*m.KeywordScore + FusionClassifierWeight*rel)
}

// annotate attaches validator verdicts by source name. Validation never
// removes or re-scores a match, and a call that outlives ValidateTimeout
// leaves the matches unannotated.
func (e *Enriched) annotate(ctx context.Context, prefix string, ms []types.SourceMatch) {
	if e.ValidateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.ValidateTimeout)
		defer cancel()
	}
	verdicts, err := e.Validator.Validate(ctx, prefix, ms)
	if err != nil {
		e.Log.Warn().Err(err).Msg("source validation unavailable")
		return
	}
	byName := make(map[string]enrich.Verdict, len(verdicts))
	for _, v := range verdicts {
		byName[v.Source] = v
	}
	for i := range ms {
		if v, ok := byName[ms[i].SourceName]; ok {
			ms[i].Validation = &types.Validation{Relevant: v.Relevant, Note: v.Note}
		}
	}
}

func runePrefix(text string, n int) string {
	if n <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
