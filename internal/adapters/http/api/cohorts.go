// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dspboard/driverrank/internal/adapters/repository"
	"github.com/dspboard/driverrank/internal/domain/model"
	"github.com/dspboard/driverrank/internal/domain/ranking"
	"github.com/dspboard/driverrank/internal/domain/types"
)

// CohortDependencies defines the interface for ranking reads.
type CohortDependencies interface {
	Cohorts(ctx context.Context) []repository.CohortSummary
	Ranking(ctx context.Context, key model.CohortKey, q types.RankingQuery) (model.Result, error)
	DriverRank(ctx context.Context, key model.CohortKey, driverID string) (model.RankedDriver, error)
}

// CohortHandler handles cohort and driver ranking reads.
type CohortHandler struct {
	deps     CohortDependencies
	maxLimit int
}

// NewCohortHandler creates a new cohort handler.
func NewCohortHandler(deps CohortDependencies, maxLimit int) *CohortHandler {
	return &CohortHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleListCohorts handles GET /cohorts requests.
func (h *CohortHandler) HandleListCohorts(w http.ResponseWriter, r *http.Request) {
	cohorts := h.deps.Cohorts(r.Context())
	if cohorts == nil {
		cohorts = []repository.CohortSummary{}
	}
	writeJSON(w, http.StatusOK, cohorts)
}

// HandleGetRanking handles GET /cohorts/{dsp}/{station}/{week}?limit=N&sort=K&order=O
// requests. Without a limit every ranked driver is returned, capped at the
// configured maximum.
func (h *CohortHandler) HandleGetRanking(w http.ResponseWriter, r *http.Request) {
	key := cohortKey(r)
	if err := key.Validate(); err != nil {
		writeServiceError(w, err)
		return
	}
	q, err := h.parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	res, err := h.deps.Ranking(r.Context(), key, q)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *CohortHandler) parseQuery(r *http.Request) (types.RankingQuery, error) {
	values := r.URL.Query()
	q := types.RankingQuery{Limit: h.maxLimit}

	if s := values.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return q, fmt.Errorf("%w: limit must be a positive integer", ErrBadRequest)
		}
		if n > h.maxLimit {
			return q, fmt.Errorf("%w: limit exceeds %d", ErrBadRequest, h.maxLimit)
		}
		q.Limit = n
	}

	sort, err := ranking.ParseSortKey(values.Get("sort"))
	if err != nil {
		return q, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	order, err := ranking.ParseOrder(values.Get("order"))
	if err != nil {
		return q, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	q.Sort, q.Order = sort, order
	return q, nil
}

// HandleGetDriver handles GET /cohorts/{dsp}/{station}/{week}/drivers/{driverId}
// requests. A driver excluded from the ranking is a 404 whose body carries
// the ineligible reason.
func (h *CohortHandler) HandleGetDriver(w http.ResponseWriter, r *http.Request) {
	key := cohortKey(r)
	if err := key.Validate(); err != nil {
		writeServiceError(w, err)
		return
	}
	driver, err := h.deps.DriverRank(r.Context(), key, r.PathValue("driverId"))
	if err != nil {
		var inErr *repository.IneligibleError
		if errors.As(err, &inErr) {
			writeJSON(w, http.StatusNotFound, ineligibleResponse{
				errorResponse: errorResponse{Code: "ineligible", Message: err.Error()},
				Ineligible:    inErr.Entry,
			})
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, driver)
}
