package citation

import (
	"fmt"
	"io"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/compliance-engine/pkg/types"
)

// CSLItem is a bibliographic entry in CSL (Citation Style Language)
// format, consumable by Pandoc and reference managers.
type CSLItem struct {
	ID        string   `yaml:"id"`
	Type      string   `yaml:"type"`
	Title     string   `yaml:"title"`
	URL       string   `yaml:"URL,omitempty"`
	Publisher string   `yaml:"publisher,omitempty"`
	Abstract  string   `yaml:"abstract,omitempty"`
	Keyword   string   `yaml:"keyword,omitempty"`
	Issued    *CSLDate `yaml:"issued,omitempty"`
	Accessed  *CSLDate `yaml:"accessed,omitempty"`
}

// CSLDate is a date in CSL date-parts form.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// WriteCSL writes citations as a CSL-YAML list to w.
func WriteCSL(citations []types.Citation, w io.Writer) error {
	items := make([]CSLItem, len(citations))
	for i, c := range citations {
		items[i] = toCSLItem(c)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("encoding CSL: %w", err)
	}
	return nil
}

func toCSLItem(c types.Citation) CSLItem {
	ref := c.ReferenceInfo
	item := CSLItem{
		ID:        fmt.Sprintf("source-%d", c.CitationNumber),
		Type:      "legislation",
		Title:     c.SourceName,
		URL:       c.SourceURL,
		Publisher: ref.Organization,
		Abstract:  c.SourceDescription,
	}
	if len(ref.RelevantSections) > 0 {
		item.Keyword = strings.Join(ref.RelevantSections, ", ")
	}
	if y := year(ref.PublicationDate); y > 0 {
		item.Issued = &CSLDate{DateParts: [][]int{{y}}}
	}
	if t, err := time.Parse(dateLayout, ref.AccessDate); err == nil {
		item.Accessed = &CSLDate{DateParts: [][]int{{t.Year(), int(t.Month()), t.Day()}}}
	}
	return item
}
