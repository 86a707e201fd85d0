// Package errs defines the sentinel errors shared across pipeline stages.
// Callers match them with errors.Is; stages wrap them with context.
package errs

import "errors"

var (
	ErrEmptyInput            = errors.New("empty document content")
	ErrClassifier            = errors.New("classifier failure")
	ErrEnrichmentUnavailable = errors.New("enrichment unavailable")
	ErrMalformedEntry        = errors.New("malformed catalog entry")
	ErrNotFound              = errors.New("not found")
	ErrInvalidInput          = errors.New("invalid input")
	ErrStoreUnavailable      = errors.New("store unavailable")
)
