// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match scores regulatory catalog entries against a document. The
// Baseline matcher uses keyword signals only; the Enriched matcher re-weights
// keyword candidates with a zero-shot classifier and can annotate the
// survivors through an LLM validator. The variant is chosen once at
// construction.
package match

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/compliance-engine/internal/catalog"
	"github.com/pdiddy/compliance-engine/internal/classify"
	"github.com/pdiddy/compliance-engine/internal/enrich"
	"github.com/pdiddy/compliance-engine/pkg/types"
)

// Matcher returns the regulatory sources relevant to text, sorted by
// descending relevance with ties kept in catalog order. Matching never
// fails; degraded collaborators fall back to keyword scores.
type Matcher interface {
	Match(ctx context.Context, text string) []types.SourceMatch
}

// New selects the matcher variant from cfg.Enrichment.Mode. The enriched
// variant needs a classifier; without one the baseline is used. validator
// may be nil.
func New(cfg types.Config, cat *catalog.Catalog, c classify.Classifier, v enrich.Validator, log zerolog.Logger) Matcher {
	if cfg.Enrichment.Mode != types.MatcherEnriched {
		return NewBaseline(cat, cfg.Analysis.MatchThreshold)
	}
	if c == nil {
		log.Warn().Msg("enriched matching requested without a classifier, using keyword matching")
		return NewBaseline(cat, cfg.Analysis.MatchThreshold)
	}
	return &Enriched{
		Catalog:            cat,
		Classifier:         c,
		Validator:          v,
		CandidateThreshold: cfg.Enrichment.CandidateThreshold,
		FusionThreshold:    cfg.Enrichment.FusionThreshold,
		Prefix:             cfg.Enrichment.FusionPrefix,
		Timeout:            cfg.Analysis.ClassifierTimeout,
		ValidateTimeout:    cfg.Enrichment.ValidationTimeout,
		Concurrency:        cfg.Analysis.Concurrency,
		Log:                log,
	}
}

// Baseline scores every catalog entry with Score and keeps those at or
// above Threshold.
type Baseline struct {
	Catalog   *catalog.Catalog
	Threshold float64
}

// NewBaseline returns a keyword-only matcher.
func NewBaseline(cat *catalog.Catalog, threshold float64) *Baseline {
	return &Baseline{Catalog: cat, Threshold: threshold}
}

// Match implements Matcher.
func (b *Baseline) Match(_ context.Context, text string) []types.SourceMatch {
	out := scoreCatalog(b.Catalog, text, b.Threshold)
	sortByScore(out)
	return out
}

// scoreCatalog returns the matches at or above threshold in catalog order.
func scoreCatalog(cat *catalog.Catalog, text string, threshold float64) []types.SourceMatch {
	if cat == nil {
		return nil
	}
	lower := strings.ToLower(text)
	var out []types.SourceMatch
	for _, src := range cat.Sources() {
		score, cats := Score(src, cat.RelatedTerms(src.Keyword), lower)
		if score < threshold {
			continue
		}
		out = append(out, newMatch(src, score, cats))
	}
	return out
}

func newMatch(src types.RegulatorySource, score float64, cats []string) types.SourceMatch {
	return types.SourceMatch{
		SourceName:        src.Title,
		SourceURL:         src.URL,
		SourceDescription: src.Description,
		RelevanceScore:    score,
		KeywordScore:      score,
		MatchedCategories: cats,
		Organization:      src.Organization,
		PublicationDate:   src.PublicationDate,
		Type:              src.Type,
		SectionURLs:       src.SectionURLs,
	}
}

func sortByScore(ms []types.SourceMatch) {
	sort.SliceStable(ms, func(i, j int) bool {
		return ms[i].RelevanceScore > ms[j].RelevanceScore
	})
}
