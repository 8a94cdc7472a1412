package ranking

import "errors"

// Sentinel error kinds for ranking.
var (
	// ErrInvariant marks an internal invariant violation. It aborts the run
	// rather than guessing a position for the affected driver.
	ErrInvariant      = errors.New("ranking invariant violated")
	ErrInvalidSortKey = errors.New("invalid sort key")
	ErrInvalidOrder   = errors.New("invalid sort order")
)
