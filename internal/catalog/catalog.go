// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog loads the regulatory source catalog and its related-term
// table. A Catalog is built once at startup and is read-only afterwards, so
// it can be shared by concurrent analyses without locking.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/compliance-engine/internal/errs"
	"github.com/pdiddy/compliance-engine/pkg/types"
)

//go:embed default.yaml
var defaultYAML []byte

// File is the on-disk YAML layout of a catalog.
type File struct {
	Sources      []types.RegulatorySource `yaml:"sources"`
	RelatedTerms map[string][]string      `yaml:"related_terms"`
}

// Catalog is the immutable set of regulatory sources in declaration order
// plus the related-term table keyed by lowercased source keyword.
type Catalog struct {
	sources []types.RegulatorySource
	related map[string][]string
}

// New validates sources and builds a Catalog. Entries missing a keyword,
// title or URL are skipped and logged; they never prevent the remaining
// entries from loading. Per-source RelatedTerms are merged into related.
func New(sources []types.RegulatorySource, related map[string][]string, log zerolog.Logger) *Catalog {
	c := &Catalog{related: make(map[string][]string)}

	for k, terms := range related {
		key := strings.ToLower(strings.TrimSpace(k))
		c.related[key] = normalizeTerms(append(c.related[key], terms...))
	}

	for i, src := range sources {
		if err := validate(src); err != nil {
			log.Warn().Err(err).Int("index", i).Str("title", src.Title).Msg("skipping catalog entry")
			continue
		}
		src = clone(src)
		src.Keyword = strings.ToLower(strings.TrimSpace(src.Keyword))
		if len(src.RelatedTerms) > 0 {
			c.related[src.Keyword] = normalizeTerms(append(c.related[src.Keyword], src.RelatedTerms...))
		}
		c.sources = append(c.sources, src)
	}
	return c
}

// Default returns the built-in catalog.
func Default(log zerolog.Logger) (*Catalog, error) {
	return Parse(defaultYAML, log)
}

// Load reads a catalog from a YAML file.
func Load(path string, log zerolog.Logger) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	return Parse(data, log)
}

// Parse decodes a catalog from YAML bytes.
func Parse(data []byte, log zerolog.Logger) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return New(f.Sources, f.RelatedTerms, log), nil
}

// Sources returns a copy of the catalog entries in declaration order.
func (c *Catalog) Sources() []types.RegulatorySource {
	out := make([]types.RegulatorySource, len(c.sources))
	for i, s := range c.sources {
		out[i] = clone(s)
	}
	return out
}

// Len returns the number of valid entries.
func (c *Catalog) Len() int {
	return len(c.sources)
}

// RelatedTerms returns a copy of the related terms for a source keyword.
func (c *Catalog) RelatedTerms(keyword string) []string {
	terms := c.related[strings.ToLower(keyword)]
	return append([]string(nil), terms...)
}

// Export returns the catalog in its file layout, e.g. for YAML output.
func (c *Catalog) Export() File {
	related := make(map[string][]string, len(c.related))
	for k, v := range c.related {
		related[k] = append([]string(nil), v...)
	}
	return File{Sources: c.Sources(), RelatedTerms: related}
}

func validate(src types.RegulatorySource) error {
	var missing []string
	if strings.TrimSpace(src.Keyword) == "" {
		missing = append(missing, "keyword")
	}
	if strings.TrimSpace(src.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(src.URL) == "" {
		missing = append(missing, "url")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", errs.ErrMalformedEntry, strings.Join(missing, ", "))
	}
	return nil
}

func normalizeTerms(terms []string) []string {
	out := lo.Map(terms, func(t string, _ int) string {
		return strings.ToLower(strings.TrimSpace(t))
	})
	return lo.Uniq(lo.Compact(out))
}

func clone(s types.RegulatorySource) types.RegulatorySource {
	s.Categories = append([]string(nil), s.Categories...)
	s.RelatedTerms = append([]string(nil), s.RelatedTerms...)
	if s.SectionURLs != nil {
		urls := make(map[string]string, len(s.SectionURLs))
		for k, v := range s.SectionURLs {
			urls[k] = v
		}
		s.SectionURLs = urls
	}
	return s
}
