package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrCohortTooLarge = errors.New("cohort has too many records")
	ErrBackpressure   = errors.New("ranking queue is full, retry later")
	ErrJobNotFound    = errors.New("job not found")
	ErrNotStarted     = errors.New("service not started")
	ErrStopped        = errors.New("service stopped before the job ran")
)
