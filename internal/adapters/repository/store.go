// Package repository keeps the latest ranking result for each cohort.
package repository

import (
	"context"
	"time"

	"github.com/dspboard/driverrank/internal/domain/model"
)

// CohortSummary describes one stored ranking without its driver rows.
type CohortSummary struct {
	Cohort     model.CohortKey `json:"cohort"`
	RunID      string          `json:"runId"`
	Ranked     int             `json:"ranked"`
	Ineligible int             `json:"ineligible"`
	RankedAt   time.Time       `json:"rankedAt"`
}

// Store provides read/write access to ranking results.
type Store interface {
	// Put replaces the stored result for res.Cohort. A cohort is always
	// replaced whole, so readers never observe a partial ranking.
	Put(ctx context.Context, res model.Result) error

	// Get returns the stored result for a cohort, or ErrNotFound.
	Get(ctx context.Context, key model.CohortKey) (model.Result, error)

	// TopN returns the stored result with only its first n ranked drivers.
	// n == 0 keeps all of them.
	TopN(ctx context.Context, key model.CohortKey, n int) (model.Result, error)

	// Driver returns one ranked driver. A driver excluded from the ranking
	// yields an *IneligibleError; an unknown one yields ErrNotFound.
	Driver(ctx context.Context, key model.CohortKey, driverID string) (model.RankedDriver, error)

	// Cohorts lists stored cohorts, newest week first.
	Cohorts(ctx context.Context) []CohortSummary

	// Count returns the number of stored cohorts.
	Count(ctx context.Context) int
}
