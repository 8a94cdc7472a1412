package quality

import "errors"

// Sentinel error kinds for classification.
var (
	ErrUnclassified = errors.New("record matches no quality group")
	ErrIneligible   = errors.New("cannot classify an ineligible record")
)
