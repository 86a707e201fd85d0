// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the compliance-engine
// pipeline: the analysis result returned to callers, its component records
// (findings, source matches, citations, sections, summary), the regulatory
// catalog entries, and the configuration structs for each stage.
package types

import "time"

// Status is the compliance verdict for a document or a section.
type Status string

const (
	StatusCompliant    Status = "compliant"
	StatusNonCompliant Status = "non-compliant"
	StatusError        Status = "error"
)

// RiskLevel is the severity tier of a keyword-derived finding.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
)

// RiskFinding is a single keyword hit with its surrounding context.
type RiskFinding struct {
	// Finding is the human-readable description, e.g. "Contains reference to 'breach'".
	Finding string `json:"finding" yaml:"finding"`

	// Keyword is the vocabulary term that produced the finding.
	Keyword string `json:"keyword" yaml:"keyword"`

	// RiskLevel is the tier the keyword belongs to.
	RiskLevel RiskLevel `json:"risk_level" yaml:"risk_level"`

	// Context is an excerpt around the first occurrence of the keyword.
	// Ellipsis markers indicate that the window was clipped.
	Context string `json:"context" yaml:"context"`
}

// Validation is an optional annotation added by LLM-based source validation.
type Validation struct {
	Relevant bool   `json:"relevant" yaml:"relevant"`
	Note     string `json:"note,omitempty" yaml:"note,omitempty"`
}

// SourceMatch is a regulatory source scored against one document. Matches
// live for a single analysis and are ordered by descending RelevanceScore.
type SourceMatch struct {
	SourceName        string   `json:"source_name" yaml:"source_name"`
	SourceURL         string   `json:"source_url" yaml:"source_url"`
	SourceDescription string   `json:"source_description" yaml:"source_description"`
	RelevanceScore    float64  `json:"relevance_score" yaml:"relevance_score"`
	MatchedCategories []string `json:"matched_categories" yaml:"matched_categories"`

	// KeywordScore is the pure keyword score. It equals RelevanceScore unless
	// classifier fusion re-weighted the match.
	KeywordScore float64 `json:"keyword_score" yaml:"keyword_score"`

	// ClassifierScore is the classifier's "relevant" score, set by fusion only.
	ClassifierScore *float64 `json:"classifier_score,omitempty" yaml:"classifier_score,omitempty"`

	// Explicit citation metadata copied from the catalog entry when present.
	Organization    string            `json:"organization,omitempty" yaml:"organization,omitempty"`
	PublicationDate string            `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`
	Type            string            `json:"type,omitempty" yaml:"type,omitempty"`
	MatchedSections []string          `json:"matched_sections,omitempty" yaml:"matched_sections,omitempty"`
	SectionURLs     map[string]string `json:"section_urls,omitempty" yaml:"section_urls,omitempty"`

	Validation *Validation `json:"validation,omitempty" yaml:"validation,omitempty"`
}

// ReferenceInfo holds the derived bibliographic metadata of a citation.
type ReferenceInfo struct {
	Title            string            `json:"title" yaml:"title"`
	URL              string            `json:"url" yaml:"url"`
	Description      string            `json:"description" yaml:"description"`
	Organization     string            `json:"organization" yaml:"organization"`
	PublicationDate  string            `json:"publication_date" yaml:"publication_date"`
	AccessDate       string            `json:"access_date" yaml:"access_date"`
	Categories       []string          `json:"categories" yaml:"categories"`
	RelevantSections []string          `json:"relevant_sections" yaml:"relevant_sections"`
	Type             string            `json:"type" yaml:"type"`
	SectionURLs      map[string]string `json:"section_urls,omitempty" yaml:"section_urls,omitempty"`
}

// Citation is a numbered, formatted reference to a matched source.
type Citation struct {
	CitationNumber    int           `json:"citation_number" yaml:"citation_number"`
	SourceName        string        `json:"source_name" yaml:"source_name"`
	SourceURL         string        `json:"source_url" yaml:"source_url"`
	SourceDescription string        `json:"source_description" yaml:"source_description"`
	RelevanceScore    float64       `json:"relevance_score" yaml:"relevance_score"`
	MatchedCategories []string      `json:"matched_categories" yaml:"matched_categories"`
	CitationText      string        `json:"citation_text" yaml:"citation_text"`
	ReferenceInfo     ReferenceInfo `json:"reference_info" yaml:"reference_info"`
}

// SectionResult is the classification of one fixed-size slice of the document.
type SectionResult struct {
	SectionNumber int     `json:"section_number" yaml:"section_number"`
	SectionText   string  `json:"section_text" yaml:"section_text"`
	Status        Status  `json:"status" yaml:"status"`
	Confidence    float64 `json:"confidence" yaml:"confidence"`
	Error         string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// RiskDistribution counts findings per tier.
type RiskDistribution struct {
	High   int `json:"high" yaml:"high"`
	Medium int `json:"medium" yaml:"medium"`
	Low    int `json:"low" yaml:"low"`
}

// ComplianceMetrics aggregates section verdicts. Error sections are
// excluded from CompliancePercentage.
type ComplianceMetrics struct {
	TotalSections        int              `json:"total_sections" yaml:"total_sections"`
	CompliantSections    int              `json:"compliant_sections" yaml:"compliant_sections"`
	NonCompliantSections int              `json:"non_compliant_sections" yaml:"non_compliant_sections"`
	ErrorSections        int              `json:"error_sections" yaml:"error_sections"`
	CompliancePercentage float64          `json:"compliance_percentage" yaml:"compliance_percentage"`
	RiskDistribution     RiskDistribution `json:"risk_distribution" yaml:"risk_distribution"`
}

// Summary is the synthesized overview attached to a successful analysis.
type Summary struct {
	ComplianceMetrics       ComplianceMetrics `json:"compliance_metrics" yaml:"compliance_metrics"`
	KeyRegulatoryFrameworks []SourceMatch     `json:"key_regulatory_frameworks" yaml:"key_regulatory_frameworks"`
	ProblematicSections     []SectionResult   `json:"problematic_sections" yaml:"problematic_sections"`
	Recommendations         []string          `json:"recommendations" yaml:"recommendations"`
}

// AnalysisResult is the complete assessment of one document. An error
// result carries only Status, ErrorMessage, Confidence, OriginalLength and
// AnalysisTimestamp.
type AnalysisResult struct {
	Status       Status `json:"status" yaml:"status"`
	ErrorMessage string `json:"error_message,omitempty" yaml:"error_message,omitempty"`

	Confidence float64            `json:"confidence" yaml:"confidence"`
	AllScores  map[string]float64 `json:"all_scores,omitempty" yaml:"all_scores,omitempty"`

	AnalyzedTextLength int    `json:"analyzed_text_length" yaml:"analyzed_text_length"`
	OriginalLength     int    `json:"original_length" yaml:"original_length"`
	Truncated          bool   `json:"truncated" yaml:"truncated"`
	Warning            string `json:"warning,omitempty" yaml:"warning,omitempty"`

	KeyFindings      []RiskFinding   `json:"key_findings,omitempty" yaml:"key_findings,omitempty"`
	PublicDataChecks []SourceMatch   `json:"public_data_checks,omitempty" yaml:"public_data_checks,omitempty"`
	Citations        []Citation      `json:"citations,omitempty" yaml:"citations,omitempty"`
	SectionAnalysis  []SectionResult `json:"section_analysis,omitempty" yaml:"section_analysis,omitempty"`
	DetailedSummary  *Summary        `json:"detailed_summary,omitempty" yaml:"detailed_summary,omitempty"`

	AnalysisTimestamp time.Time `json:"analysis_timestamp" yaml:"analysis_timestamp"`
}

// Failed reports whether the analysis ended in a top-level error.
func (r AnalysisResult) Failed() bool {
	return r.Status == StatusError
}
