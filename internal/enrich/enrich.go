// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich provides optional LLM validation of matched regulatory
// sources. Validation only annotates matches; when the validator is
// missing or failing the matcher carries on with keyword results.
package enrich

import (
	"context"

	"github.com/pdiddy/compliance-engine/pkg/types"
)

// Verdict is the validator's judgment for one matched source.
type Verdict struct {
	Source   string `json:"source"`
	Relevant bool   `json:"relevant"`
	Note     string `json:"note,omitempty"`
}

// Validator judges whether matched sources actually apply to a document.
type Validator interface {
	Validate(ctx context.Context, text string, matches []types.SourceMatch) ([]Verdict, error)
}
