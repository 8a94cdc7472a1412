package model

import "errors"

// Sentinel error kinds for this package.
var (
	// ErrStructural marks a caller contract violation such as a cohort that
	// is not a JSON array or a record that is not an object.
	ErrStructural = errors.New("structural input error")
	// ErrInvalidCohort marks a malformed cohort key.
	ErrInvalidCohort = errors.New("invalid cohort key")
)
