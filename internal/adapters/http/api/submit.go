// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dspboard/driverrank/internal/domain/model"
	"github.com/dspboard/driverrank/internal/domain/types"
)

// SubmitDependencies defines the interface for asynchronous submissions.
type SubmitDependencies interface {
	// Submit queues a cohort. Resubmitting a known submission id returns
	// the original job with Duplicate set.
	Submit(ctx context.Context, submissionID string, in model.CohortInput) (types.SubmitAck, error)
}

// SubmitHandler handles cohort submissions.
type SubmitHandler struct {
	deps         SubmitDependencies
	maxBodyBytes int64
}

// NewSubmitHandler creates a new submit handler.
func NewSubmitHandler(deps SubmitDependencies, maxBodyBytes int64) *SubmitHandler {
	return &SubmitHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandleSubmit handles POST /cohorts requests.
func (h *SubmitHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r, h.maxBodyBytes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var req cohortRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	records, err := model.DecodeRecords(req.Records)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	ack, err := h.deps.Submit(r.Context(), req.SubmissionID, model.CohortInput{Cohort: req.Cohort, Records: records})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, newAck(ack))
}
