package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrEmptyCorpus      = errors.New("empty corpus")

	// ErrInvariant marks a broken internal invariant. It indicates a bug in
	// aggregation, never bad user input.
	ErrInvariant = errors.New("internal invariant violated")
)
