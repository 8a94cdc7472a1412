package api

import (
	"context"
	"net/http"

	"github.com/dspboard/driverrank/internal/domain/types"
)

// JobDependencies defines the interface for job lookups.
type JobDependencies interface {
	Job(ctx context.Context, jobID string) (types.Job, error)
}

// JobHandler handles job status requests.
type JobHandler struct {
	deps JobDependencies
}

// NewJobHandler creates a new job handler.
func NewJobHandler(deps JobDependencies) *JobHandler {
	return &JobHandler{deps: deps}
}

// HandleGetJob handles GET /jobs/{id} requests.
func (h *JobHandler) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.deps.Job(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}
