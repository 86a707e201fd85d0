// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summary aggregates section verdicts, findings and source matches
// into the analysis overview and synthesizes recommendations.
package summary

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/pdiddy/compliance-engine/pkg/types"
)

const (
	// DefaultProblematicConfidence is the confidence a non-compliant section
	// must strictly exceed to be reported.
	DefaultProblematicConfidence = 0.7

	// TopFrameworks is the number of matches reported as key frameworks.
	TopFrameworks = 3

	maxKeywordAdvisories = 3
	focusThreshold       = 3
	reviewThreshold      = 5
)

// Recommendation texts.
const (
	HighRiskAdvisory      = "High-risk compliance issues detected. Immediate review by legal or compliance team is recommended."
	keywordAdvisory       = "Address the reference to '%s' flagged as high risk."
	problematicAdvisory   = "%d section(s) flagged as non-compliant with high confidence. Review these sections carefully."
	FocusAdvisory         = "Focus on the sections with the highest non-compliance confidence first."
	ComprehensiveAdvisory = "Multiple compliance-related references found. A comprehensive compliance review is recommended."
	ReviewReminder        = "Review the identified compliance references to confirm they meet applicable requirements."
	NoIssues              = "No significant compliance issues detected. Continue regular compliance reviews."
)

// Summarize derives the overview. threshold is the problematic-section
// confidence; a non-positive value selects DefaultProblematicConfidence.
func Summarize(sections []types.SectionResult, findings []types.RiskFinding, matches []types.SourceMatch, threshold float64) types.Summary {
	if threshold <= 0 {
		threshold = DefaultProblematicConfidence
	}
	problematic := lo.Filter(sections, func(s types.SectionResult, _ int) bool {
		return s.Status == types.StatusNonCompliant && s.Confidence > threshold
	})
	return types.Summary{
		ComplianceMetrics:       Metrics(sections, findings),
		KeyRegulatoryFrameworks: topMatches(matches, TopFrameworks),
		ProblematicSections:     problematic,
		Recommendations:         Recommend(findings, len(problematic)),
	}
}

// Metrics counts section verdicts and findings per tier. Error sections
// count toward the total but not toward the percentage denominator; with
// no classified sections the percentage is 0.
func Metrics(sections []types.SectionResult, findings []types.RiskFinding) types.ComplianceMetrics {
	byStatus := lo.CountValuesBy(sections, func(s types.SectionResult) types.Status { return s.Status })
	byTier := lo.CountValuesBy(findings, func(f types.RiskFinding) types.RiskLevel { return f.RiskLevel })

	m := types.ComplianceMetrics{
		TotalSections:        len(sections),
		CompliantSections:    byStatus[types.StatusCompliant],
		NonCompliantSections: byStatus[types.StatusNonCompliant],
		ErrorSections:        byStatus[types.StatusError],
		RiskDistribution: types.RiskDistribution{
			High:   byTier[types.RiskHigh],
			Medium: byTier[types.RiskMedium],
			Low:    byTier[types.RiskLow],
		},
	}
	if classified := m.CompliantSections + m.NonCompliantSections; classified > 0 {
		m.CompliancePercentage = float64(m.CompliantSections) / float64(classified) * 100
	}
	return m
}

// Recommend applies the recommendation rules in order: high-risk findings,
// problematic sections, many findings, then a single fallback when none of
// those fired.
func Recommend(findings []types.RiskFinding, problematic int) []string {
	var recs []string

	high := lo.Filter(findings, func(f types.RiskFinding, _ int) bool { return f.RiskLevel == types.RiskHigh })
	if len(high) > 0 {
		recs = append(recs, HighRiskAdvisory)
		for _, f := range lo.Slice(high, 0, maxKeywordAdvisories) {
			recs = append(recs, fmt.Sprintf(keywordAdvisory, f.Keyword))
		}
	}

	if problematic > 0 {
		recs = append(recs, fmt.Sprintf(problematicAdvisory, problematic))
		if problematic > focusThreshold {
			recs = append(recs, FocusAdvisory)
		}
	}

	if len(findings) > reviewThreshold {
		recs = append(recs, ComprehensiveAdvisory)
	}

	if len(recs) == 0 {
		if len(findings) > 0 {
			return []string{ReviewReminder}
		}
		return []string{NoIssues}
	}
	return recs
}

// topMatches returns the n highest-scoring matches, ties in input order.
func topMatches(matches []types.SourceMatch, n int) []types.SourceMatch {
	sorted := append([]types.SourceMatch{}, matches...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RelevanceScore > sorted[j].RelevanceScore
	})
	return lo.Slice(sorted, 0, n)
}
