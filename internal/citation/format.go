// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citation turns ranked source matches into numbered citations
// with derived bibliographic metadata, and exports them as CSL-YAML.
package citation

import (
	"fmt"
	"maps"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/pdiddy/compliance-engine/pkg/types"
)

// DefaultType is the reference type used when a source declares none.
const DefaultType = "Regulatory Document"

const dateLayout = "2006-01-02"

var (
	acronymRe = regexp.MustCompile(`\((.*?)\)`)
	domainRe  = regexp.MustCompile(`https?://(?:www\.)?([^/]+)`)
	yearRe    = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// Format numbers matches 1..N in the given order and builds each
// citation's text and reference info. now supplies the access date.
func Format(matches []types.SourceMatch, now time.Time) []types.Citation {
	accessed := now.Format(dateLayout)
	out := make([]types.Citation, len(matches))
	for i, m := range matches {
		out[i] = format(i+1, m, accessed)
	}
	return out
}

func format(n int, m types.SourceMatch, accessed string) types.Citation {
	org := Organization(m)
	published := PublicationDate(m)

	var b strings.Builder
	fmt.Fprintf(&b, "[%d] %s. ", n, m.SourceName)
	if org != "" {
		fmt.Fprintf(&b, "%s. ", org)
	}
	if published != "" {
		fmt.Fprintf(&b, "Published %s. ", published)
	}
	fmt.Fprintf(&b, "Retrieved from %s on %s.", m.SourceURL, accessed)

	refType := m.Type
	if refType == "" {
		refType = DefaultType
	}

	cats := append([]string{}, m.MatchedCategories...)
	return types.Citation{
		CitationNumber:    n,
		SourceName:        m.SourceName,
		SourceURL:         m.SourceURL,
		SourceDescription: m.SourceDescription,
		RelevanceScore:    m.RelevanceScore,
		MatchedCategories: cats,
		CitationText:      b.String(),
		ReferenceInfo: types.ReferenceInfo{
			Title:            m.SourceName,
			URL:              m.SourceURL,
			Description:      m.SourceDescription,
			Organization:     org,
			PublicationDate:  published,
			AccessDate:       accessed,
			Categories:       cats,
			RelevantSections: relevantSections(m),
			Type:             refType,
			SectionURLs:      sectionURLs(m),
		},
	}
}

// Organization prefers the explicit field, then a parenthesized acronym in
// the title, then the URL's domain in title case ("gdpr-info.eu" becomes
// "Gdpr Info Eu").
func Organization(m types.SourceMatch) string {
	if m.Organization != "" {
		return m.Organization
	}
	if g := acronymRe.FindStringSubmatch(m.SourceName); g != nil && g[1] != "" {
		return g[1]
	}
	if g := domainRe.FindStringSubmatch(m.SourceURL); g != nil {
		domain := strings.NewReplacer(".", " ", "-", " ").Replace(g[1])
		return titleCase(domain)
	}
	return ""
}

// PublicationDate prefers the explicit field, else the first year between
// 1900 and 2099 in the title and description.
func PublicationDate(m types.SourceMatch) string {
	if m.PublicationDate != "" {
		return m.PublicationDate
	}
	return yearRe.FindString(m.SourceName + " " + m.SourceDescription)
}

func relevantSections(m types.SourceMatch) []string {
	if len(m.MatchedSections) > 0 {
		return append([]string{}, m.MatchedSections...)
	}
	out := make([]string, 0, len(m.MatchedCategories))
	for _, c := range m.MatchedCategories {
		out = append(out, titleCase(strings.ReplaceAll(c, "_", " ")))
	}
	return out
}

// sectionURLs returns the explicit deep links or synthesizes a search URL
// per matched category under the source URL.
func sectionURLs(m types.SourceMatch) map[string]string {
	if len(m.SectionURLs) > 0 {
		return maps.Clone(m.SectionURLs)
	}
	if len(m.MatchedCategories) == 0 {
		return nil
	}
	base := strings.TrimRight(m.SourceURL, "/") + "/"
	urls := make(map[string]string, len(m.MatchedCategories))
	for _, c := range m.MatchedCategories {
		urls[c] = base + "search?q=" + strings.ReplaceAll(c, "_", "+")
	}
	return urls
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// year extracts a leading four-digit year from a publication date.
func year(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}
