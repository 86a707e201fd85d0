// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/compliance-engine/internal/errs"
	"github.com/pdiddy/compliance-engine/internal/httputil"
	"github.com/pdiddy/compliance-engine/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

// classifierFunc adapts a function to Classifier.
type classifierFunc func(ctx context.Context, text string, labels []string, hypothesis string) (Result, error)

func (f classifierFunc) Classify(ctx context.Context, text string, labels []string, hypothesis string) (Result, error) {
	return f(ctx, text, labels, hypothesis)
}

// --- Result ---

func TestNewResultSortsDescending(t *testing.T) {
	r, err := newResult([]string{"a", "b", "c"}, []float64{0.2, 0.5, 0.2})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, r.Labels)
	assert.Equal(t, []float64{0.5, 0.2, 0.2}, r.Scores)

	label, score := r.Top()
	assert.Equal(t, "b", label)
	assert.Equal(t, 0.5, score)
	assert.Equal(t, 0.2, r.Score("c"))
	assert.Equal(t, 0.0, r.Score("missing"))
	assert.Equal(t, map[string]float64{"a": 0.2, "b": 0.5, "c": 0.2}, r.Map())
}

func TestNewResultRejectsMismatch(t *testing.T) {
	_, err := newResult([]string{"a"}, []float64{0.1, 0.2})
	assert.ErrorIs(t, err, errs.ErrClassifier)

	_, err = newResult(nil, nil)
	assert.ErrorIs(t, err, errs.ErrClassifier)
}

// --- Heuristic ---

func TestHeuristicCompliance(t *testing.T) {
	h := Heuristic{}
	ctx := context.Background()

	risky, err := h.Classify(ctx, "A breach and a violation and a penalty.", ComplianceLabels, DefaultHypothesis)
	require.NoError(t, err)
	label, score := risky.Top()
	assert.Equal(t, "non-compliant", label)
	assert.InDelta(t, 0.6, score, 1e-9)

	calm, err := h.Classify(ctx, "The policy is documented.", ComplianceLabels, DefaultHypothesis)
	require.NoError(t, err)
	label, score = calm.Top()
	assert.Equal(t, "compliant", label)
	assert.InDelta(t, 6.0/7.0, score, 1e-9)
}

func TestHeuristicLabelOrderIndependent(t *testing.T) {
	text := "A breach was reported."
	a, err := Heuristic{}.Classify(context.Background(), text, []string{"compliant", "non-compliant"}, "")
	require.NoError(t, err)
	b, err := Heuristic{}.Classify(context.Background(), text, []string{"non-compliant", "compliant"}, "")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestHeuristicUniformForOtherLabels(t *testing.T) {
	r, err := Heuristic{}.Classify(context.Background(), "anything", RelevanceLabels, "This document is {}.")
	require.NoError(t, err)
	assert.Equal(t, RelevanceLabels, r.Labels)
	assert.Equal(t, []float64{0.5, 0.5}, r.Scores)
}

func TestHeuristicNeedsTwoLabels(t *testing.T) {
	_, err := Heuristic{}.Classify(context.Background(), "x", []string{"compliant"}, "")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

// --- HTTPClient ---

func TestHTTPClientObjectResponse(t *testing.T) {
	var got inferenceRequest
	var auth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"sequence":"x","labels":["compliant","non-compliant"],"scores":[0.8,0.2]}`)
	}))
	defer ts.Close()

	c := &HTTPClient{Client: ts.Client(), Endpoint: ts.URL, APIKey: "secret"}
	r, err := c.Classify(context.Background(), "some text", ComplianceLabels, DefaultHypothesis)
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "some text", got.Inputs)
	assert.Equal(t, ComplianceLabels, got.Parameters.CandidateLabels)
	assert.Equal(t, DefaultHypothesis, got.Parameters.HypothesisTemplate)
	label, score := r.Top()
	assert.Equal(t, "compliant", label)
	assert.Equal(t, 0.8, score)
}

func TestHTTPClientListResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[{"label":"relevant","score":0.3},{"label":"not relevant","score":0.7}]`)
	}))
	defer ts.Close()

	c := &HTTPClient{Client: ts.Client(), Endpoint: ts.URL}
	r, err := c.Classify(context.Background(), "x", RelevanceLabels, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"not relevant", "relevant"}, r.Labels)
	assert.Equal(t, 0.3, r.Score("relevant"))
}

func TestHTTPClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, `{}`, errs.ErrClassifier},
		{"malformed json", http.StatusOK, `{"labels":`, errs.ErrClassifier},
		{"length mismatch", http.StatusOK, `{"labels":["a","b"],"scores":[1]}`, errs.ErrClassifier},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()

			c := &HTTPClient{Client: ts.Client(), Endpoint: ts.URL}
			_, err := c.Classify(context.Background(), "x", ComplianceLabels, "")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHTTPClientRetriesLoadingModel(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req inferenceRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"labels":["non-compliant","compliant"],"scores":[0.9,0.1]}`)
	}))
	defer ts.Close()

	c := &HTTPClient{Client: ts.Client(), Endpoint: ts.URL, MaxRetries: 2}
	r, err := c.Classify(context.Background(), "x", ComplianceLabels, "")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, 0.9, r.Score("non-compliant"))
}

func TestHTTPClientNoEndpoint(t *testing.T) {
	_, err := (&HTTPClient{}).Classify(context.Background(), "x", ComplianceLabels, "")
	assert.ErrorIs(t, err, errs.ErrClassifier)
}

// --- ClassifySections ---

func testCfg() types.AnalysisConfig {
	cfg := types.DefaultAnalysisConfig()
	cfg.ClassifierTimeout = time.Second
	return cfg
}

func TestClassifySectionsOrderAndVerdicts(t *testing.T) {
	text := strings.Repeat("a", 500) + strings.Repeat("b", 500) + strings.Repeat("c", 200)
	c := classifierFunc(func(_ context.Context, text string, labels []string, _ string) (Result, error) {
		if strings.HasPrefix(text, "b") {
			return newResult(labels, []float64{0.1, 0.9})
		}
		return newResult(labels, []float64{0.75, 0.25})
	})

	got := ClassifySections(context.Background(), c, text, testCfg(), zerolog.Nop())
	require.Len(t, got, 3)
	for i, s := range got {
		assert.Equal(t, i+1, s.SectionNumber)
		assert.NotEmpty(t, s.SectionText)
	}
	assert.Equal(t, types.StatusCompliant, got[0].Status)
	assert.Equal(t, 0.75, got[0].Confidence)
	assert.Equal(t, types.StatusNonCompliant, got[1].Status)
	assert.Equal(t, 0.9, got[1].Confidence)
	assert.Equal(t, types.StatusCompliant, got[2].Status)
}

func TestClassifySectionsIsolatesFailures(t *testing.T) {
	text := strings.Repeat("a", 500) + strings.Repeat("b", 500) + strings.Repeat("c", 500)
	c := classifierFunc(func(_ context.Context, text string, labels []string, _ string) (Result, error) {
		if strings.HasPrefix(text, "b") {
			return Result{}, errors.New("model unavailable")
		}
		return newResult(labels, []float64{0.9, 0.1})
	})

	got := ClassifySections(context.Background(), c, text, testCfg(), zerolog.Nop())
	require.Len(t, got, 3)
	assert.Equal(t, types.StatusCompliant, got[0].Status)
	assert.Equal(t, types.StatusError, got[1].Status)
	assert.Equal(t, "model unavailable", got[1].Error)
	assert.Equal(t, 0.0, got[1].Confidence)
	assert.Equal(t, types.StatusCompliant, got[2].Status)
}

func TestClassifySectionsTimeout(t *testing.T) {
	cfg := testCfg()
	cfg.ClassifierTimeout = 10 * time.Millisecond
	c := classifierFunc(func(ctx context.Context, _ string, _ []string, _ string) (Result, error) {
		<-ctx.Done()
		return Result{}, ctx.Err()
	})

	got := ClassifySections(context.Background(), c, "short text", cfg, zerolog.Nop())
	require.Len(t, got, 1)
	assert.Equal(t, types.StatusError, got[0].Status)
	assert.Contains(t, got[0].Error, "deadline exceeded")
}

func TestClassifySectionsBoundsConcurrency(t *testing.T) {
	cfg := testCfg()
	cfg.Concurrency = 2
	var inFlight, peak int32
	c := classifierFunc(func(_ context.Context, _ string, labels []string, _ string) (Result, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return newResult(labels, []float64{0.6, 0.4})
	})

	got := ClassifySections(context.Background(), c, strings.Repeat("x", 5000), cfg, zerolog.Nop())
	assert.Len(t, got, 10)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestClassifySectionsEmpty(t *testing.T) {
	got := ClassifySections(context.Background(), Heuristic{}, "", testCfg(), zerolog.Nop())
	assert.Empty(t, got)
}

func TestVerdictUnknownLabel(t *testing.T) {
	r, err := newResult([]string{"maybe", "compliant"}, []float64{0.9, 0.1})
	require.NoError(t, err)
	status, _, err := Verdict(r)
	assert.Error(t, err)
	assert.Equal(t, types.StatusError, status)
}

func TestNewSelectsBackend(t *testing.T) {
	c, err := New(types.ClassifierConfig{Backend: types.ClassifierHeuristic})
	require.NoError(t, err)
	assert.IsType(t, Heuristic{}, c)

	c, err = New(types.ClassifierConfig{Backend: types.ClassifierHTTP, Endpoint: "http://localhost:9/classify"})
	require.NoError(t, err)
	assert.IsType(t, &HTTPClient{}, c)

	_, err = New(types.ClassifierConfig{Backend: types.ClassifierHTTP})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = New(types.ClassifierConfig{Backend: "quantum"})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}
