package model

import "errors"

// Sentinel error kinds shared across layers. Adapters wrap them with %w so
// callers can branch with errors.Is.
var (
	// ErrNoCorpusAvailable means the content feed is exhausted or returned nothing playable.
	ErrNoCorpusAvailable = errors.New("no corpus available")
	// ErrStoreUnavailable means a persistence operation failed.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrFeedUnavailable means the content feed could not be reached.
	ErrFeedUnavailable = errors.New("content feed unavailable")
)
