// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/compliance-engine/pkg/types"
)

func sampleResult() types.AnalysisResult {
	return types.AnalysisResult{
		Status:             types.StatusNonCompliant,
		Confidence:         0.82,
		AnalyzedTextLength: 64,
		OriginalLength:     64,
		KeyFindings: []types.RiskFinding{{
			Finding: "Contains reference to 'breach'", Keyword: "breach",
			RiskLevel: types.RiskHigh, Context: "a data privacy breach penalty",
		}},
		PublicDataChecks: []types.SourceMatch{{
			SourceName: "General Data Protection Regulation (GDPR)", RelevanceScore: 1,
			MatchedCategories: []string{"data_privacy"},
			Validation:        &types.Validation{Relevant: true, Note: "personal data"},
		}},
		Citations: []types.Citation{{CitationNumber: 1, CitationText: "European Union. GDPR."}},
		SectionAnalysis: []types.SectionResult{
			{SectionNumber: 1, SectionText: "This document", Status: types.StatusNonCompliant, Confidence: 0.82},
			{SectionNumber: 2, Status: types.StatusError, Error: "classifier timeout"},
		},
		DetailedSummary: &types.Summary{
			ComplianceMetrics: types.ComplianceMetrics{TotalSections: 2, NonCompliantSections: 1, ErrorSections: 1},
			Recommendations:   []string{"Review high-risk findings."},
		},
	}
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	Text(sampleResult(), &buf)
	out := buf.String()

	assert.Contains(t, out, "non-compliant (confidence 0.82)")
	assert.Contains(t, out, "[high  ] Contains reference to 'breach'")
	assert.Contains(t, out, "General Data Protection Regulation (GDPR)")
	assert.Contains(t, out, "validation: relevant personal data")
	assert.Contains(t, out, "[1] European Union. GDPR.")
	assert.Contains(t, out, "classifier timeout")
	assert.Contains(t, out, "- Review high-risk findings.")
}

func TestTextFailed(t *testing.T) {
	var buf bytes.Buffer
	Text(types.AnalysisResult{Status: types.StatusError, ErrorMessage: "empty document content"}, &buf)
	assert.Contains(t, buf.String(), "Error:   empty document content")
	assert.NotContains(t, buf.String(), "Key findings")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(sampleResult(), &buf))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "non-compliant", got["status"])
}

func TestRecords(t *testing.T) {
	var buf bytes.Buffer
	Records(nil, 0, &buf)
	assert.Equal(t, "No analyses found.\n", buf.String())

	buf.Reset()
	Records([]types.RecordSummary{{
		ID: "5d1c", Status: types.StatusCompliant, Confidence: 0.9,
		FilePath: "policy.txt", CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}}, 4, &buf)
	assert.Contains(t, buf.String(), "2026-03-01 09:30:00")
	assert.Contains(t, buf.String(), "policy.txt")
	assert.Contains(t, buf.String(), "1 of 4 analyses")
}

func TestCatalog(t *testing.T) {
	var buf bytes.Buffer
	Catalog([]types.RegulatorySource{{Keyword: "hipaa", Title: "Health Insurance Portability and Accountability Act (HIPAA) of 1996 as amended", Categories: []string{"healthcare"}}}, &buf)
	assert.Contains(t, buf.String(), "hipaa")
	assert.Contains(t, buf.String(), "...")
	assert.Contains(t, buf.String(), "1 sources")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "ab...", truncate("abcdefgh", 5))
}
