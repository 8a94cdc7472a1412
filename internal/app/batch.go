package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dspboard/driverrank/internal/domain/model"
	"github.com/dspboard/driverrank/pkg/logger"
	"github.com/dspboard/driverrank/pkg/metrics"
)

// BatchItem is the outcome of ranking one cohort of a batch.
type BatchItem struct {
	Cohort model.CohortKey `json:"cohort"`
	Result *model.Result   `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
	err    error
}

// Err returns the error that failed this item, if any.
func (b BatchItem) Err() error { //nolint:gocritic // hugeParam: value receiver mirrors the JSON shape
	return b.err
}

// RankBatch ranks several cohorts concurrently, at most one per worker at a
// time. Items are returned in input order. A failing cohort is reported on
// its own item and does not stop the others; only ctx cancellation aborts
// the remaining work.
func (s *Service) RankBatch(ctx context.Context, inputs []model.CohortInput) ([]BatchItem, error) {
	items := make([]BatchItem, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workerCount)
	for i := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			in := inputs[i]
			items[i].Cohort = in.Cohort
			res, err := s.RankCohort(gctx, in)
			if err != nil {
				items[i].err = err
				items[i].Error = err.Error()
				metrics.RecordBatchItem("failed")
				return nil
			}
			items[i].Result = &res
			metrics.RecordBatchItem("ok")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return items, err
	}

	failed := 0
	for _, it := range items {
		if it.err != nil {
			failed++
		}
	}
	s.logger.Info(ctx, "batch ranked",
		logger.Int("cohorts", len(inputs)),
		logger.Int("failed", failed),
	)
	return items, nil
}
