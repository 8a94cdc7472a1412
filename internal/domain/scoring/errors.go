package scoring

import "errors"

// ErrInvalidRank is returned for a rank outside [1, cohortSize].
var ErrInvalidRank = errors.New("invalid rank")
