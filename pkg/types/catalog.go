// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RegulatorySource is one entry of the static regulatory catalog. Title is
// the identity of a source. Keyword, Title and URL are required; the
// remaining fields are optional citation metadata.
type RegulatorySource struct {
	Keyword     string   `json:"keyword" yaml:"keyword"`
	Title       string   `json:"title" yaml:"title"`
	URL         string   `json:"url" yaml:"url"`
	Description string   `json:"description" yaml:"description"`
	Categories  []string `json:"categories" yaml:"categories"`

	// RelatedTerms are synonyms merged into the catalog's related-term table
	// under this source's keyword.
	RelatedTerms []string `json:"related_terms,omitempty" yaml:"related_terms,omitempty"`

	Organization    string            `json:"organization,omitempty" yaml:"organization,omitempty"`
	PublicationDate string            `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`
	Type            string            `json:"type,omitempty" yaml:"type,omitempty"`
	SectionURLs     map[string]string `json:"section_urls,omitempty" yaml:"section_urls,omitempty"`
}

// Record is a persisted analysis keyed by a caller-generated identifier.
type Record struct {
	ID        string         `json:"id" yaml:"id"`
	FilePath  string         `json:"file_path,omitempty" yaml:"file_path,omitempty"`
	Status    Status         `json:"status" yaml:"status"`
	Details   AnalysisResult `json:"details" yaml:"details"`
	Content   string         `json:"content,omitempty" yaml:"content,omitempty"`
	CreatedAt time.Time      `json:"created_at" yaml:"created_at"`
}

// RecordSummary is the lightweight listing form of a Record used by
// history and search.
type RecordSummary struct {
	ID         string    `json:"id" yaml:"id"`
	Status     Status    `json:"status" yaml:"status"`
	FilePath   string    `json:"file_path,omitempty" yaml:"file_path,omitempty"`
	Confidence float64   `json:"confidence" yaml:"confidence"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
}

// Summarize returns the listing form of r.
func (r Record) Summarize() RecordSummary {
	return RecordSummary{
		ID:         r.ID,
		Status:     r.Status,
		FilePath:   r.FilePath,
		Confidence: r.Details.Confidence,
		CreatedAt:  r.CreatedAt,
	}
}
