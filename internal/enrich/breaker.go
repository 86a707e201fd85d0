// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pdiddy/compliance-engine/internal/errs"
	"github.com/pdiddy/compliance-engine/pkg/types"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = fmt.Errorf("%w: circuit open", errs.ErrEnrichmentUnavailable)

type breakerState int

const (
	closed breakerState = iota
	open
	halfOpen
)

// Breaker wraps a Validator. After Threshold consecutive failures it opens
// and rejects calls with ErrCircuitOpen for Cooldown. The first call after
// the cooldown is a trial: success closes the circuit, failure reopens it.
type Breaker struct {
	next      Validator
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu        sync.Mutex
	state     breakerState
	failures  int
	openUntil time.Time
}

// NewBreaker returns a Breaker around next. A non-positive threshold
// defaults to 3 and a non-positive cooldown to one minute.
func NewBreaker(next Validator, threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 3
	}
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return &Breaker{next: next, threshold: threshold, cooldown: cooldown, now: time.Now}
}

// Validate implements Validator.
func (b *Breaker) Validate(ctx context.Context, text string, matches []types.SourceMatch) ([]Verdict, error) {
	if !b.allow() {
		return nil, ErrCircuitOpen
	}
	verdicts, err := b.next.Validate(ctx, text, matches)
	b.record(err)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrEnrichmentUnavailable, err)
	}
	return verdicts, nil
}

// Open reports whether the breaker is currently rejecting calls.
func (b *Breaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state == open && b.now().Before(b.openUntil)
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case open:
		if b.now().Before(b.openUntil) {
			return false
		}
		b.state = halfOpen
		return true
	case halfOpen:
		// One trial call at a time.
		return false
	default:
		return true
	}
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		b.state = closed
		b.failures = 0
		return
	}
	b.failures++
	if b.state == halfOpen || b.failures >= b.threshold {
		b.state = open
		b.openUntil = b.now().Add(b.cooldown)
		b.failures = 0
	}
}
