// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dspboard/driverrank/internal/adapters/repository"
	service "github.com/dspboard/driverrank/internal/app"
	"github.com/dspboard/driverrank/internal/domain/model"
	"github.com/dspboard/driverrank/internal/domain/ranking"
)

// RankDependencies defines the interface for synchronous ranking.
type RankDependencies interface {
	RankCohort(ctx context.Context, in model.CohortInput) (model.Result, error)
}

// RankHandler handles rank requests.
type RankHandler struct {
	deps         RankDependencies
	maxBodyBytes int64
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps RankDependencies, maxBodyBytes int64) *RankHandler {
	return &RankHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandleRank handles POST /rank requests. The body is either a bare array
// of records or {"cohort": {...}, "records": [...]}.
func (h *RankHandler) HandleRank(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r, h.maxBodyBytes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	in, err := model.DecodeCohort(body)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	res, err := h.deps.RankCohort(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrPayloadTooLarge, tooLarge.Limit)
		}
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return body, nil
}

// writeServiceError maps domain and service errors to HTTP responses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPayloadTooLarge), errors.Is(err, service.ErrCohortTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", err)
	case errors.Is(err, model.ErrStructural), errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, model.ErrInvalidCohort):
		writeError(w, http.StatusBadRequest, "invalid_cohort", err)
	case errors.Is(err, repository.ErrInvalidLimit),
		errors.Is(err, ranking.ErrInvalidSortKey),
		errors.Is(err, ranking.ErrInvalidOrder):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", fmt.Errorf("%w: %w", ErrBackpressure, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	case isNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, ranking.ErrInvariant):
		writeError(w, http.StatusInternalServerError, "invariant_violation", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
