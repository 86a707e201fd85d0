// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders analysis results, record listings and the
// regulatory catalog for the terminal.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/compliance-engine/pkg/types"
)

const rule = 100

// JSON writes v as indented JSON.
func JSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Text writes a human-readable analysis report.
func Text(r types.AnalysisResult, w io.Writer) {
	if r.Failed() {
		fmt.Fprintf(w, "Status:  error\nError:   %s\nLength:  %d characters\n", r.ErrorMessage, r.OriginalLength)
		return
	}

	fmt.Fprintf(w, "Status:      %s (confidence %.2f)\n", r.Status, r.Confidence)
	fmt.Fprintf(w, "Analyzed:    %d of %d characters\n", r.AnalyzedTextLength, r.OriginalLength)
	if r.Warning != "" {
		fmt.Fprintf(w, "Warning:     %s\n", r.Warning)
	}

	if r.DetailedSummary != nil {
		m := r.DetailedSummary.ComplianceMetrics
		fmt.Fprintf(w, "Sections:    %d total, %d compliant, %d non-compliant, %d error (%.1f%% compliant)\n",
			m.TotalSections, m.CompliantSections, m.NonCompliantSections, m.ErrorSections, m.CompliancePercentage)
		fmt.Fprintf(w, "Risk:        %d high, %d medium, %d low\n",
			m.RiskDistribution.High, m.RiskDistribution.Medium, m.RiskDistribution.Low)
	}

	section(w, "Key findings")
	if len(r.KeyFindings) == 0 {
		fmt.Fprintln(w, "None.")
	}
	for _, f := range r.KeyFindings {
		fmt.Fprintf(w, "[%-6s] %s\n         %s\n", f.RiskLevel, f.Finding, f.Context)
	}

	section(w, "Regulatory sources")
	if len(r.PublicDataChecks) == 0 {
		fmt.Fprintln(w, "None matched.")
	}
	for _, m := range r.PublicDataChecks {
		fmt.Fprintf(w, "%-5.2f  %-55s  %s\n", m.RelevanceScore, truncate(m.SourceName, 55), strings.Join(m.MatchedCategories, ", "))
		if m.Validation != nil {
			verdict := "not relevant"
			if m.Validation.Relevant {
				verdict = "relevant"
			}
			fmt.Fprintf(w, "       validation: %s %s\n", verdict, m.Validation.Note)
		}
	}

	if len(r.Citations) > 0 {
		section(w, "Citations")
		for _, c := range r.Citations {
			fmt.Fprintf(w, "[%d] %s\n", c.CitationNumber, c.CitationText)
		}
	}

	section(w, "Sections")
	for _, s := range r.SectionAnalysis {
		if s.Status == types.StatusError {
			fmt.Fprintf(w, "%3d  %-13s  %s\n", s.SectionNumber, s.Status, s.Error)
			continue
		}
		fmt.Fprintf(w, "%3d  %-13s  %.2f  %s\n", s.SectionNumber, s.Status, s.Confidence, s.SectionText)
	}

	if r.DetailedSummary != nil && len(r.DetailedSummary.Recommendations) > 0 {
		section(w, "Recommendations")
		for _, rec := range r.DetailedSummary.Recommendations {
			fmt.Fprintf(w, "- %s\n", rec)
		}
	}
}

// Records writes a page of record summaries as a table.
func Records(records []types.RecordSummary, total int, w io.Writer) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No analyses found.")
		return
	}

	fmt.Fprintf(w, "%-36s  %-13s  %-5s  %-20s  %s\n", "ID", "Status", "Conf", "Created", "File")
	fmt.Fprintln(w, strings.Repeat("-", rule))
	for _, r := range records {
		fmt.Fprintf(w, "%-36s  %-13s  %-5.2f  %-20s  %s\n",
			r.ID, r.Status, r.Confidence, r.CreatedAt.Format("2006-01-02 15:04:05"), r.FilePath)
	}
	fmt.Fprintf(w, "\n%d of %d analyses\n", len(records), total)
}

// Catalog writes the regulatory sources as a table.
func Catalog(sources []types.RegulatorySource, w io.Writer) {
	fmt.Fprintf(w, "%-18s  %-50s  %s\n", "Keyword", "Title", "Categories")
	fmt.Fprintln(w, strings.Repeat("-", rule))
	for _, s := range sources {
		fmt.Fprintf(w, "%-18s  %-50s  %s\n", s.Keyword, truncate(s.Title, 50), strings.Join(s.Categories, ", "))
	}
	fmt.Fprintf(w, "\n%d sources\n", len(sources))
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n%s\n", title, strings.Repeat("-", len(title)))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
