package service

import (
	"sync"
	"time"

	"github.com/dspboard/driverrank/internal/domain/types"
)

// jobTable keeps the most recent jobs. Once full, the oldest finished job
// is dropped to make room.
type jobTable struct {
	mu    sync.RWMutex
	jobs  map[string]*types.Job
	keys  map[string]string // job id -> submission id
	order []string
	max   int
}

func newJobTable(maxJobs int) *jobTable {
	return &jobTable{jobs: make(map[string]*types.Job), keys: make(map[string]string), max: maxJobs}
}

func (t *jobTable) add(j types.Job, submissionID string) { //nolint:gocritic // hugeParam: copied into the table
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.order) >= t.max {
		t.evictFinished()
	}
	t.jobs[j.ID] = &j
	t.keys[j.ID] = submissionID
	t.order = append(t.order, j.ID)
}

// evictFinished must be called with t.mu held.
func (t *jobTable) evictFinished() {
	for i, id := range t.order {
		if j := t.jobs[id]; j == nil || j.Status.Terminal() {
			delete(t.jobs, id)
			delete(t.keys, id)
			t.order = append(t.order[:i], t.order[i+1:]...)
			return
		}
	}
}

func (t *jobTable) remove(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.jobs, id)
	delete(t.keys, id)
	for i, o := range t.order {
		if o == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			return
		}
	}
}

// finish moves a queued job to a terminal status. A job that already
// finished keeps its first outcome.
func (t *jobTable) finish(id string, status types.JobStatus, runID, errText string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	j, ok := t.jobs[id]
	if !ok || j.Status.Terminal() {
		return false
	}
	now := time.Now().UTC()
	j.Status = status
	j.RunID = runID
	j.Error = errText
	j.FinishedAt = &now
	return true
}

// abandon fails every job that is still queued and returns the submission
// ids that queued them.
func (t *jobTable) abandon(reason string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now().UTC()
	var keys []string
	for _, id := range t.order {
		j := t.jobs[id]
		if j == nil || j.Status.Terminal() {
			continue
		}
		j.Status = types.JobFailed
		j.Error = reason
		j.FinishedAt = &now
		keys = append(keys, t.keys[id])
	}
	return keys
}

func (t *jobTable) get(id string) (types.Job, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	j, ok := t.jobs[id]
	if !ok {
		return types.Job{}, false
	}
	return *j, true
}

func (t *jobTable) counts() map[types.JobStatus]int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := map[types.JobStatus]int{types.JobQueued: 0, types.JobDone: 0, types.JobFailed: 0}
	for _, j := range t.jobs {
		out[j.Status]++
	}
	return out
}
