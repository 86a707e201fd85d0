// Package preview turns raw section text into a short, printable preview.
// Sections may carry binary remnants from upstream text extraction, so the
// cleaner recognizes a few common shapes (PDF headers, markup, binary
// blobs) and labels them instead of echoing garbage.
package preview

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// DefaultMaxLength is the preview length used when none is given.
const DefaultMaxLength = 100

// Placeholders and labels emitted by Clean.
const (
	EmptyPlaceholder   = "[Binary or non-text content]"
	PDFPlaceholder     = "PDF Document [binary content]"
	BinaryPlaceholder  = "[Binary content]"
	PDFObjectLabel     = "PDF Object Structure [technical content]"
	PDFStreamLabel     = "PDF Stream Data [technical content]"
	Base64Label        = "Base64 Encoded Data [technical content]"
	EscapedBinaryLabel = "Escaped Binary Data [technical content]"

	ellipsis = "..."

	// binaryRatio is the share of non-printable runes above which text is
	// treated as binary.
	binaryRatio = 0.3
)

var (
	pdfMetaRe   = regexp.MustCompile(`Title\(([^)]+)\)|Author\(([^)]+)\)|Subject\(([^)]+)\)`)
	markupRe    = regexp.MustCompile(`<\w+[^>]*>.*?</\w+>`)
	fragmentRe  = regexp.MustCompile(`[A-Za-z]{3,}`)
	spaceRunRe  = regexp.MustCompile(`\s+`)
	pdfObjectRe = regexp.MustCompile(`obj\s+<<.*>>\s+endobj`)
	pdfStreamRe = regexp.MustCompile(`stream.*endstream`)
	base64Re    = regexp.MustCompile(`base64,`)
	hexEscRe    = regexp.MustCompile(`\\x[0-9a-fA-F]{2}`)
)

// Clean returns a printable preview of text that is never empty, never
// longer than maxLength+3 runes and free of control characters. The first
// matching case wins: blank text, a PDF header, markup, mostly-binary text,
// then general cleanup with labels for known binary substructures.
func Clean(text string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return finish(clean(text, maxLength), maxLength)
}

func clean(text string, maxLength int) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return EmptyPlaceholder
	}

	if strings.HasPrefix(trimmed, "%PDF") {
		return pdfSummary(text)
	}

	if markupRe.MatchString(text) {
		return markupPreview(text, maxLength)
	}

	runes := []rune(text)
	nonPrintable := 0
	for _, r := range runes {
		if !printable(r) {
			nonPrintable++
		}
	}
	if float64(nonPrintable) > float64(len(runes))*binaryRatio {
		words := fragmentRe.FindAllString(text, 5)
		if len(words) > 0 {
			return "Binary content with text fragments: " + strings.Join(words, " ") + ellipsis
		}
		return BinaryPlaceholder
	}

	if nonPrintable > 0 {
		text = strings.Map(func(r rune) rune {
			if printable(r) {
				return r
			}
			return ' '
		}, text)
	}
	text = spaceRunRe.ReplaceAllString(text, " ")

	switch {
	case pdfObjectRe.MatchString(text):
		return PDFObjectLabel
	case pdfStreamRe.MatchString(text):
		return PDFStreamLabel
	case base64Re.MatchString(text):
		return Base64Label
	case hexEscRe.MatchString(text):
		return EscapedBinaryLabel
	}

	return strings.TrimSpace(truncateAtSpace(text, maxLength))
}

// pdfSummary lists the Title, Author and Subject tokens of a PDF header.
func pdfSummary(text string) string {
	var info []string
	for _, m := range pdfMetaRe.FindAllStringSubmatch(text, -1) {
		for _, g := range m[1:] {
			if g != "" {
				info = append(info, g)
			}
		}
	}
	if len(info) == 0 {
		return PDFPlaceholder
	}
	return "PDF Document: " + strings.Join(info, ", ")
}

// markupPreview keeps short markup as-is and summarizes longer markup by
// its text content.
func markupPreview(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return strings.Map(func(r rune) rune {
			if printable(r) {
				return r
			}
			return ' '
		}, text)
	}

	if content := markupText(text); content != "" {
		keep := max(maxLength-20, 0)
		c := []rune(content)
		if len(c) > keep {
			c = c[:keep]
		}
		return "XML/HTML content: " + string(c) + ellipsis
	}
	return string(runes[:maxLength]) + ellipsis
}

// markupText joins the text nodes of a markup fragment.
func markupText(text string) string {
	z := html.NewTokenizer(strings.NewReader(text))
	var parts []string
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(parts, " ")
		case html.TextToken:
			if t := strings.TrimSpace(string(z.Text())); t != "" {
				parts = append(parts, t)
			}
		}
	}
}

// truncateAtSpace cuts text to maxLength runes, backing up to the last
// space when there is one, and appends an ellipsis.
func truncateAtSpace(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	head := runes[:maxLength]
	for i := len(head) - 1; i > 0; i-- {
		if head[i] == ' ' {
			return string(head[:i]) + ellipsis
		}
	}
	return string(head) + ellipsis
}

// finish replaces control characters with spaces, falls back to the empty
// placeholder and enforces the maxLength+3 bound on every branch.
func finish(s string, maxLength int) string {
	s = strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s))
	if s == "" {
		s = EmptyPlaceholder
	}
	runes := []rune(s)
	if len(runes) > maxLength+len(ellipsis) {
		s = string(runes[:maxLength]) + ellipsis
	}
	return s
}

func printable(r rune) bool {
	return unicode.IsPrint(r) || unicode.IsSpace(r)
}
