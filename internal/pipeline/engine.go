// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs a complete compliance analysis of one document:
// truncation, document-level classification, risk findings, source
// matching, citations, section classification and the summary. An Engine
// is built once with its collaborators and is safe for concurrent use.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/pdiddy/compliance-engine/internal/citation"
	"github.com/pdiddy/compliance-engine/internal/classify"
	"github.com/pdiddy/compliance-engine/internal/errs"
	"github.com/pdiddy/compliance-engine/internal/findings"
	"github.com/pdiddy/compliance-engine/internal/match"
	"github.com/pdiddy/compliance-engine/internal/segment"
	"github.com/pdiddy/compliance-engine/internal/summary"
	"github.com/pdiddy/compliance-engine/pkg/types"
)

// Engine holds the read-only collaborators of an analysis.
type Engine struct {
	cfg        types.AnalysisConfig
	classifier classify.Classifier
	matcher    match.Matcher
	extractor  *findings.Extractor
	log        zerolog.Logger

	// now is replaced in tests.
	now func() time.Time
}

// New returns an Engine. Zero-valued fields of cfg take their defaults.
func New(cfg types.AnalysisConfig, c classify.Classifier, m match.Matcher, log zerolog.Logger) *Engine {
	cfg = withDefaults(cfg)
	return &Engine{
		cfg:        cfg,
		classifier: c,
		matcher:    m,
		extractor:  findings.New(cfg.ContextSize, cfg.MaxFindings),
		log:        log,
		now:        time.Now,
	}
}

// Analyze assesses text and always returns a result. Empty input and a
// failed document-level classification produce a StatusError result with
// ErrorMessage set; every other failure degrades a single section or
// source without failing the analysis.
func (e *Engine) Analyze(ctx context.Context, text string) types.AnalysisResult {
	start := e.now()
	original := utf8.RuneCountInString(text)

	if strings.TrimSpace(text) == "" {
		return failed(errs.ErrEmptyInput, original, start)
	}

	processed, truncated := segment.Truncate(text, e.cfg.MaxLength)
	log := e.log.With().Int("length", original).Bool("truncated", truncated).Logger()

	var (
		wg       sync.WaitGroup
		doc      classify.Result
		docErr   error
		matches  []types.SourceMatch
		sections []types.SectionResult
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		doc, docErr = e.classifyDocument(ctx, processed)
	}()
	go func() {
		defer wg.Done()
		matches = e.matcher.Match(ctx, processed)
	}()
	go func() {
		defer wg.Done()
		sections = classify.ClassifySections(ctx, e.classifier, text, e.cfg, log)
	}()
	keyFindings := e.extractor.Extract(processed)
	wg.Wait()

	if docErr != nil {
		log.Error().Err(docErr).Msg("document classification failed")
		return failed(docErr, original, start)
	}
	status, confidence, err := classify.Verdict(doc)
	if err != nil {
		log.Error().Err(err).Msg("document classification failed")
		return failed(fmt.Errorf("%w: %v", errs.ErrClassifier, err), original, start)
	}

	sum := summary.Summarize(sections, keyFindings, matches, e.cfg.ProblematicConfidence)
	result := types.AnalysisResult{
		Status:             status,
		Confidence:         confidence,
		AllScores:          doc.Map(),
		AnalyzedTextLength: utf8.RuneCountInString(processed),
		OriginalLength:     original,
		Truncated:          truncated,
		KeyFindings:        keyFindings,
		PublicDataChecks:   matches,
		Citations:          citation.Format(matches, start),
		SectionAnalysis:    sections,
		DetailedSummary:    &sum,
		AnalysisTimestamp:  start,
	}
	if truncated {
		result.Warning = truncationWarning(original, e.cfg.MaxLength)
	}

	log.Debug().
		Str("status", string(status)).
		Float64("confidence", confidence).
		Int("findings", len(keyFindings)).
		Int("matches", len(matches)).
		Int("sections", len(sections)).
		Dur("elapsed", e.now().Sub(start)).
		Msg("analysis complete")
	return result
}

func (e *Engine) classifyDocument(ctx context.Context, text string) (classify.Result, error) {
	if e.cfg.ClassifierTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.ClassifierTimeout)
		defer cancel()
	}
	res, err := e.classifier.Classify(ctx, text, classify.ComplianceLabels, classify.DefaultHypothesis)
	if err != nil {
		return classify.Result{}, fmt.Errorf("classifying document: %w", err)
	}
	return res, nil
}

func failed(err error, original int, at time.Time) types.AnalysisResult {
	return types.AnalysisResult{
		Status:            types.StatusError,
		ErrorMessage:      err.Error(),
		OriginalLength:    original,
		AnalysisTimestamp: at,
	}
}

func truncationWarning(original, maxLength int) string {
	head, tail := segment.Split(maxLength)
	return fmt.Sprintf("Document was truncated from %d to %d characters for analysis; the first %d and last %d characters were analyzed.",
		original, head+tail, head, tail)
}

func withDefaults(cfg types.AnalysisConfig) types.AnalysisConfig {
	def := types.DefaultAnalysisConfig()
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = def.MaxLength
	}
	if cfg.SectionSize <= 0 {
		cfg.SectionSize = def.SectionSize
	}
	if cfg.MaxSections <= 0 {
		cfg.MaxSections = def.MaxSections
	}
	if cfg.MaxSectionSize <= 0 {
		cfg.MaxSectionSize = def.MaxSectionSize
	}
	if cfg.PreviewLength <= 0 {
		cfg.PreviewLength = def.PreviewLength
	}
	if cfg.ProblematicConfidence <= 0 {
		cfg.ProblematicConfidence = def.ProblematicConfidence
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	return cfg
}
