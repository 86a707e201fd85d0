// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/compliance-engine/internal/errs"
	"github.com/pdiddy/compliance-engine/internal/httputil"
	"github.com/pdiddy/compliance-engine/pkg/types"
)

// HTTPClient calls a zero-shot inference endpoint that accepts
// {"inputs", "parameters": {"candidate_labels", "hypothesis_template"}}.
// Rate-limited responses are retried with backoff.
type HTTPClient struct {
	Client     *http.Client
	Endpoint   string
	APIKey     string
	UserAgent  string
	MaxRetries int
}

// NewHTTPClient builds an HTTPClient from configuration.
func NewHTTPClient(cfg types.ClassifierConfig) *HTTPClient {
	return &HTTPClient{
		Client:     &http.Client{Timeout: cfg.Timeout},
		Endpoint:   cfg.Endpoint,
		APIKey:     cfg.APIKey,
		UserAgent:  cfg.UserAgent,
		MaxRetries: cfg.MaxRetries,
	}
}

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	CandidateLabels    []string `json:"candidate_labels"`
	HypothesisTemplate string   `json:"hypothesis_template,omitempty"`
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify implements Classifier.
func (c *HTTPClient) Classify(ctx context.Context, text string, labels []string, hypothesis string) (Result, error) {
	if err := checkLabels(labels); err != nil {
		return Result{}, err
	}
	if c.Endpoint == "" {
		return Result{}, fmt.Errorf("%w: no endpoint configured", errs.ErrClassifier)
	}

	body, err := json.Marshal(inferenceRequest{
		Inputs: text,
		Parameters: inferenceParameters{
			CandidateLabels:    labels,
			HypothesisTemplate: hypothesis,
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("encoding classifier request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, c.MaxRetries)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", errs.ErrClassifier, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("%w: reading response: %v", errs.ErrClassifier, err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("%w: endpoint returned HTTP %d", errs.ErrClassifier, resp.StatusCode)
	}
	return decodeResult(data)
}

// decodeResult accepts either {"labels": [...], "scores": [...]} or a list
// of {"label", "score"} pairs.
func decodeResult(data []byte) (Result, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var pairs []labelScore
		if err := json.Unmarshal(trimmed, &pairs); err != nil {
			return Result{}, fmt.Errorf("%w: parsing response: %v", errs.ErrClassifier, err)
		}
		labels := make([]string, len(pairs))
		scores := make([]float64, len(pairs))
		for i, p := range pairs {
			labels[i] = p.Label
			scores[i] = p.Score
		}
		return newResult(labels, scores)
	}

	var r Result
	if err := json.Unmarshal(trimmed, &r); err != nil {
		return Result{}, fmt.Errorf("%w: parsing response: %v", errs.ErrClassifier, err)
	}
	return newResult(r.Labels, r.Scores)
}
