package ranking

import (
	"context"
	"fmt"
	"slices"

	"github.com/dspboard/driverrank/internal/domain/model"
	"github.com/dspboard/driverrank/internal/domain/normalize"
	"github.com/dspboard/driverrank/internal/domain/quality"
	"github.com/dspboard/driverrank/internal/domain/scoring"
	"github.com/dspboard/driverrank/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets the logger used for warnings and invariant violations.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithScorer replaces the default linear scorer.
func WithScorer(s scoring.Scorer) Option {
	return func(e *Engine) {
		if s != nil {
			e.scorer = s
		}
	}
}

// Engine ranks one cohort at a time. It holds no state between calls and is
// safe for concurrent use across cohorts.
type Engine struct {
	logger logger.Logger
	scorer scoring.Scorer
}

// New creates an Engine with configuration options.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger: logger.Nop(),
		scorer: scoring.NewLinear(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rank normalizes, classifies, orders and scores records. Data-quality
// problems never fail the call: affected drivers are returned in Ineligible.
// An error is returned only for an internal invariant violation.
//
// Only eligible drivers count toward the cohort size used for scoring.
func (e *Engine) Rank(ctx context.Context, records []model.RawRecord) (model.Result, error) {
	res := model.Result{
		Ranked:     make([]model.RankedDriver, 0, len(records)),
		Ineligible: make([]model.Ineligible, 0),
	}

	eligible := make([]model.DriverMetricRecord, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for i := range records {
		rec, diags := normalize.Normalize(i, records[i])
		if rec.Eligible {
			if _, dup := seen[rec.DriverID]; dup {
				diags = append(diags, duplicateDiagnostic(rec))
				rec = markDuplicate(rec)
			} else {
				seen[rec.DriverID] = struct{}{}
			}
		}
		res.Diagnostics = append(res.Diagnostics, diags...)
		e.logWarnings(ctx, diags)

		if !rec.Eligible {
			res.Ineligible = append(res.Ineligible, model.Ineligible{
				DriverID: rec.DriverID,
				Reason:   rec.Reason,
				Field:    rec.Field,
				Detail:   rec.Detail,
				Index:    rec.Index,
			})
			continue
		}
		eligible = append(eligible, rec)
	}

	classified := make([]model.ClassifiedDriver, 0, len(eligible))
	for _, rec := range eligible {
		group, err := quality.Classify(rec)
		if err != nil {
			e.logger.Error(ctx, "quality classification invariant violated",
				logger.String("driverId", rec.DriverID),
				logger.Int("index", rec.Index),
				logger.Error(err),
			)
			return model.Result{}, fmt.Errorf("%w: %w", ErrInvariant, err)
		}
		classified = append(classified, model.ClassifiedDriver{Record: rec, Group: group})
	}

	slices.SortStableFunc(classified, Compare)

	cohortSize := len(classified)
	for i, c := range classified {
		rank := i + 1
		score, err := e.scorer.Score(rank, cohortSize)
		if err != nil {
			return model.Result{}, fmt.Errorf("%w: %w", ErrInvariant, err)
		}
		res.Ranked = append(res.Ranked, model.RankedDriver{
			DriverID:     c.Record.DriverID,
			Tier:         c.Record.Tier,
			QualityGroup: c.Group,
			Rank:         rank,
			Score:        score,
		})
	}

	e.logger.Debug(ctx, "cohort ranked",
		logger.Int("records", len(records)),
		logger.Int("ranked", len(res.Ranked)),
		logger.Int("ineligible", len(res.Ineligible)),
	)
	return res, nil
}

// The first eligible occurrence of a driver id keeps it; later eligible ones
// are excluded. Ineligible records never claim an id.
func markDuplicate(rec model.DriverMetricRecord) model.DriverMetricRecord {
	rec.Eligible = false
	rec.Reason = model.ReasonDuplicateDriverID
	rec.Field = normalize.FieldDriverID
	rec.Detail = duplicateMessage(rec.DriverID)
	return rec
}

func duplicateDiagnostic(rec model.DriverMetricRecord) model.Diagnostic {
	return model.Diagnostic{
		DriverID: rec.DriverID,
		Index:    rec.Index,
		Field:    normalize.FieldDriverID,
		Code:     model.ReasonDuplicateDriverID,
		Severity: model.SeverityError,
		Message:  duplicateMessage(rec.DriverID),
	}
}

func duplicateMessage(id string) string {
	return fmt.Sprintf("driver id %q is already ranked earlier in the cohort", id)
}

func (e *Engine) logWarnings(ctx context.Context, diags []model.Diagnostic) {
	for _, d := range diags {
		if d.Severity != model.SeverityWarning {
			continue
		}
		e.logger.Warn(ctx, d.Message,
			logger.String("driverId", d.DriverID),
			logger.String("field", d.Field),
			logger.String("code", string(d.Code)),
		)
	}
}
