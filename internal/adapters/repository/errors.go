package repository

import (
	"errors"
	"fmt"

	"github.com/dspboard/driverrank/internal/domain/model"
)

// Sentinel kinds for repository errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidLimit = errors.New("invalid ranking limit")
	ErrIneligible   = errors.New("driver is not ranked")
)

// IneligibleError reports a driver that is present in the cohort but was
// excluded from ranking.
type IneligibleError struct {
	Entry model.Ineligible
}

func (e *IneligibleError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", ErrIneligible, e.Entry.DriverID, e.Entry.Reason)
}

func (e *IneligibleError) Unwrap() error {
	return ErrIneligible
}
