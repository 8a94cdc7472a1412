// Package types contains the request and response shapes shared by the
// service and the HTTP API.
package types

import (
	"time"

	"github.com/dspboard/driverrank/internal/domain/model"
	"github.com/dspboard/driverrank/internal/domain/ranking"
)

// JobStatus is the lifecycle state of an asynchronous submission.
type JobStatus string

const (
	JobQueued JobStatus = "queued"
	JobDone   JobStatus = "done"
	JobFailed JobStatus = "failed"
)

// Terminal reports whether the job will not change again.
func (s JobStatus) Terminal() bool {
	return s == JobDone || s == JobFailed
}

// Job describes one asynchronous submission.
type Job struct {
	ID          string          `json:"jobId"`
	Cohort      model.CohortKey `json:"cohort"`
	Status      JobStatus       `json:"status"`
	RunID       string          `json:"runId,omitempty"`
	Error       string          `json:"error,omitempty"`
	SubmittedAt time.Time       `json:"submittedAt"`
	FinishedAt  *time.Time      `json:"finishedAt,omitempty"`
}

// SubmitAck acknowledges an asynchronous submission.
type SubmitAck struct {
	JobID     string `json:"jobId"`
	Duplicate bool   `json:"duplicate"`
}

// RankingQuery selects and orders the ranked drivers of a stored cohort.
// Limit 0 means no limit.
type RankingQuery struct {
	Limit int
	Sort  ranking.SortKey
	Order ranking.Order
}
