// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/pdiddy/compliance-engine/internal/errs"
	"github.com/pdiddy/compliance-engine/pkg/types"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-1.5-flash"

// Gemini validates matches by asking a Gemini model for JSON verdicts.
type Gemini struct {
	client   *genai.Client
	generate func(ctx context.Context, prompt string) (string, error)
}

// NewGemini creates a Gemini validator. The caller must Close it.
func NewGemini(ctx context.Context, cfg types.EnrichmentConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key not set", errs.ErrEnrichmentUnavailable)
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	name := cfg.Model
	if name == "" {
		name = DefaultModel
	}
	model := client.GenerativeModel(name)
	model.SetTemperature(0)
	model.ResponseMIMEType = "application/json"

	g := &Gemini{client: client}
	g.generate = func(ctx context.Context, prompt string) (string, error) {
		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return "", err
		}
		return responseText(resp), nil
	}
	return g, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// Validate implements Validator.
func (g *Gemini) Validate(ctx context.Context, text string, matches []types.SourceMatch) ([]Verdict, error) {
	if len(matches) == 0 {
		return nil, nil
	}
	out, err := g.generate(ctx, buildPrompt(text, matches))
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}
	return parseVerdicts(out)
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

func buildPrompt(text string, matches []types.SourceMatch) string {
	var b strings.Builder
	b.WriteString("You review automated compliance analysis. For each regulatory source below, ")
	b.WriteString("decide whether it genuinely applies to the document excerpt.\n\n")
	b.WriteString("Sources:\n")
	for _, m := range matches {
		fmt.Fprintf(&b, "- %s: %s\n", m.SourceName, m.SourceDescription)
	}
	b.WriteString("\nDocument excerpt:\n\"\"\"\n")
	b.WriteString(text)
	b.WriteString("\n\"\"\"\n\n")
	b.WriteString(`Respond with JSON only: {"verdicts": [{"source": "<source name exactly as listed>", "relevant": true|false, "note": "<one sentence>"}]}`)
	return b.String()
}

type verdictEnvelope struct {
	Verdicts []Verdict `json:"verdicts"`
}

// parseVerdicts accepts the requested envelope or a bare array, optionally
// wrapped in a markdown code fence.
func parseVerdicts(raw string) ([]Verdict, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty validator response")
	}

	if strings.HasPrefix(s, "[") {
		var vs []Verdict
		if err := json.Unmarshal([]byte(s), &vs); err != nil {
			return nil, fmt.Errorf("parsing validator response: %w", err)
		}
		return vs, nil
	}
	var env verdictEnvelope
	if err := json.Unmarshal([]byte(s), &env); err != nil {
		return nil, fmt.Errorf("parsing validator response: %w", err)
	}
	return env.Verdicts, nil
}
