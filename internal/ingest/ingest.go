// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest validates uploaded documents and turns them into the plain
// text the pipeline analyzes.
package ingest

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/pdiddy/compliance-engine/internal/errs"
)

// DefaultMaxSize is the upload limit in bytes.
const DefaultMaxSize int64 = 10 * 1024 * 1024

// AllowedExtensions lists the accepted file extensions.
var AllowedExtensions = []string{".txt", ".pdf", ".doc", ".docx", ".rtf", ".md", ".html", ".htm"}

// Allowed reports whether filename has an accepted extension.
func Allowed(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, a := range AllowedExtensions {
		if ext == a {
			return true
		}
	}
	return false
}

// Validate checks the extension and size of an upload. A non-positive
// maxSize selects DefaultMaxSize.
func Validate(filename string, size, maxSize int64) error {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if !Allowed(filename) {
		return fmt.Errorf("%w: file type %q not allowed", errs.ErrInvalidInput, filepath.Ext(filename))
	}
	if size > maxSize {
		return fmt.Errorf("%w: file exceeds %d bytes", errs.ErrInvalidInput, maxSize)
	}
	return nil
}

// ReadLimited reads r up to maxSize bytes and fails when more remain.
func ReadLimited(r io.Reader, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", errs.ErrInvalidInput, maxSize)
	}
	return data, nil
}

// Extract returns the analyzable text of a document. HTML files yield their
// visible text; everything else is decoded as UTF-8 with invalid sequences
// replaced, so binary formats reach the pipeline as-is.
func Extract(filename string, data []byte) (string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return "", errs.ErrEmptyInput
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".html", ".htm":
		return HTMLText(data), nil
	default:
		return strings.ToValidUTF8(string(data), "�"), nil
	}
}

// HTMLText returns the text content of an HTML document with script and
// style bodies removed and whitespace collapsed.
func HTMLText(data []byte) string {
	z := html.NewTokenizer(bytes.NewReader(data))
	var (
		parts []string
		skip  int
	)
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(parts, " ")
		case html.StartTagToken:
			if hidden(z) {
				skip++
			}
		case html.EndTagToken:
			if hidden(z) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			if t := strings.Join(strings.Fields(string(z.Text())), " "); t != "" {
				parts = append(parts, t)
			}
		}
	}
}

func hidden(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "script", "style", "head", "noscript":
		return true
	}
	return false
}
