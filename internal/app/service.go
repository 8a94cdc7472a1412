// Package service wires the ranking engine to storage, the job queue and the
// worker pool, and implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dspboard/driverrank/internal/adapters/mq/queue"
	"github.com/dspboard/driverrank/internal/adapters/mq/worker"
	"github.com/dspboard/driverrank/internal/adapters/repository"
	"github.com/dspboard/driverrank/internal/domain/dedupe"
	"github.com/dspboard/driverrank/internal/domain/model"
	"github.com/dspboard/driverrank/internal/domain/ranking"
	"github.com/dspboard/driverrank/internal/domain/types"
	"github.com/dspboard/driverrank/internal/tracing"
	"github.com/dspboard/driverrank/pkg/logger"
	"github.com/dspboard/driverrank/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize     = 1024
	defaultDedupeSize    = 10_000
	defaultMaxCohortSize = 5_000
)

// Service implements the API dependencies for the ranking system.
type Service struct {
	mu sync.RWMutex

	engine  *ranking.Engine
	store   repository.Store
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	pool    *worker.Pool
	jobs    *jobTable

	workerCount   int
	queueSize     int
	dedupeSize    int
	maxCohortSize int

	started    bool
	cancelPool context.CancelFunc
	logger     logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of ranking workers. It also bounds how many
// cohorts of a batch are ranked concurrently.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued submissions.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many submission ids and jobs are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxCohortSize caps the number of records in one cohort.
func WithMaxCohortSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.maxCohortSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore replaces the in-memory result store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// New constructs a Service. Synchronous ranking works immediately; Start is
// only needed for asynchronous submissions.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   runtime.NumCPU(),
		queueSize:     defaultQueueSize,
		dedupeSize:    defaultDedupeSize,
		maxCohortSize: defaultMaxCohortSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	s.engine = ranking.New(ranking.WithLogger(s.logger.Named("engine")))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.jobs = newJobTable(s.dedupeSize)
	return s
}

// Start creates the job queue and starts the worker pool. Workers are not
// bound to ctx: they keep draining the queue until Stop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s, s, worker.WithLogger(s.logger.Named("worker")))
	poolCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelPool = cancel
	s.pool.Start(poolCtx)

	s.started = true
	s.logger.Info(ctx, "ranking service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop closes the queue and waits until ctx ends for queued submissions to
// finish. Jobs still queued after that are failed and their submission ids
// released, so they can be submitted again.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping ranking service...")
	err := s.pool.Shutdown(ctx)
	s.cancelPool()

	keys := s.jobs.abandon(ErrStopped.Error())
	for _, key := range keys {
		s.deduper.Release(ctx, key)
		metrics.RecordJob(string(types.JobFailed))
	}
	if len(keys) > 0 {
		s.logger.Warn(ctx, "queued jobs abandoned on stop", logger.Int("jobs", len(keys)))
	}

	s.started = false
	s.logger.Info(ctx, "ranking service stopped")
	return err
}

// RankCohort ranks one cohort, stores the result and returns it.
func (s *Service) RankCohort(ctx context.Context, in model.CohortInput) (res model.Result, err error) {
	if err := in.Cohort.Validate(); err != nil {
		return model.Result{}, err
	}
	if len(in.Records) > s.maxCohortSize {
		return model.Result{}, fmt.Errorf("%w: %d records, limit %d", ErrCohortTooLarge, len(in.Records), s.maxCohortSize)
	}

	ctx, end := tracing.StartSpan(ctx, "ranking.rank_cohort",
		attribute.String("cohort.dsp", in.Cohort.DSP),
		attribute.String("cohort.station", in.Cohort.Station),
		attribute.String("cohort.week", in.Cohort.Week),
		attribute.Int("cohort.records", len(in.Records)),
	)
	defer func() { end(err) }()

	start := time.Now()
	res, err = s.engine.Rank(ctx, in.Records)
	if err != nil {
		if errors.Is(err, ranking.ErrInvariant) {
			metrics.RecordInvariantViolation()
		}
		metrics.RecordErrorByComponent("service", "ranking")
		return model.Result{}, fmt.Errorf("rank cohort %s: %w", in.Cohort, err)
	}
	res.Cohort = in.Cohort
	res.RunID = uuid.NewString()

	if err = s.store.Put(ctx, res); err != nil {
		metrics.RecordErrorByComponent("service", "store")
		return model.Result{}, fmt.Errorf("store cohort %s: %w", in.Cohort, err)
	}

	elapsed := time.Since(start)
	s.record(res, len(in.Records), elapsed)
	tracing.SetAttributes(ctx,
		attribute.String("ranking.run_id", res.RunID),
		attribute.Int("ranking.ranked", len(res.Ranked)),
		attribute.Int("ranking.ineligible", len(res.Ineligible)),
	)
	s.logger.Info(ctx, "cohort ranked",
		logger.String("cohort", in.Cohort.String()),
		logger.String("runId", res.RunID),
		logger.Int("ranked", len(res.Ranked)),
		logger.Int("ineligible", len(res.Ineligible)),
		logger.Duration("took", elapsed),
	)
	return res, nil
}

func (s *Service) record(res model.Result, records int, elapsed time.Duration) {
	metrics.RecordCohortRanked(records, len(res.Ranked), float64(elapsed.Microseconds())/1000)
	for _, in := range res.Ineligible {
		metrics.RecordIneligible(string(in.Reason))
	}
	for _, d := range res.Diagnostics {
		if d.Severity == model.SeverityWarning {
			metrics.RecordWarning(string(d.Code))
		}
	}
}

// Submit queues a cohort for asynchronous ranking. Submitting the same
// submission id again returns the original job without queueing new work.
// An empty submission id is derived from the cohort and its records.
func (s *Service) Submit(ctx context.Context, submissionID string, in model.CohortInput) (types.SubmitAck, error) {
	if err := in.Cohort.Validate(); err != nil {
		return types.SubmitAck{}, err
	}
	if len(in.Records) > s.maxCohortSize {
		return types.SubmitAck{}, fmt.Errorf("%w: %d records, limit %d", ErrCohortTooLarge, len(in.Records), s.maxCohortSize)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return types.SubmitAck{}, ErrNotStarted
	}

	if submissionID == "" {
		id, err := contentID(in)
		if err != nil {
			return types.SubmitAck{}, err
		}
		submissionID = id
	}

	jobID, seen := s.deduper.Claim(ctx, submissionID, uuid.NewString())
	if seen {
		metrics.RecordSubmissionDuplicate()
		s.logger.Debug(ctx, "duplicate submission",
			logger.String("submissionId", submissionID),
			logger.String("jobId", jobID),
		)
		return types.SubmitAck{JobID: jobID, Duplicate: true}, nil
	}

	now := time.Now().UTC()
	s.jobs.add(types.Job{ID: jobID, Cohort: in.Cohort, Status: types.JobQueued, SubmittedAt: now}, submissionID)
	err := s.queue.Enqueue(ctx, queue.Job{ID: jobID, SubmissionKey: submissionID, Input: in, EnqueuedAt: now})
	if err != nil {
		s.deduper.Release(ctx, submissionID)
		s.jobs.remove(jobID)
		if errors.Is(err, queue.ErrFull) || errors.Is(err, queue.ErrClosed) {
			return types.SubmitAck{}, fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		return types.SubmitAck{}, err
	}

	metrics.RecordSubmission()
	return types.SubmitAck{JobID: jobID}, nil
}

// contentID derives a stable submission id from the cohort and its records.
func contentID(in model.CohortInput) (string, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("derive submission id: %w", err)
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, body).String(), nil
}

// Complete records the outcome of a queued job. It is called by workers.
func (s *Service) Complete(ctx context.Context, job queue.Job, res model.Result, err error) { //nolint:gocritic // hugeParam: jobs travel by value
	if err != nil {
		if s.jobs.finish(job.ID, types.JobFailed, "", err.Error()) {
			metrics.RecordJob(string(types.JobFailed))
		}
		return
	}
	if !s.jobs.finish(job.ID, types.JobDone, res.RunID, "") {
		return
	}
	metrics.RecordJob(string(types.JobDone))
	s.logger.Debug(ctx, "job finished", logger.String("jobId", job.ID), logger.String("runId", res.RunID))
}

// Job returns the status of a submission.
func (s *Service) Job(_ context.Context, jobID string) (types.Job, error) {
	j, ok := s.jobs.get(jobID)
	if !ok {
		return types.Job{}, fmt.Errorf("job %s: %w", jobID, ErrJobNotFound)
	}
	return j, nil
}

// Ranking returns the stored result for a cohort. Ranked drivers are
// re-ordered for display by q.Sort and then truncated to q.Limit; ranks and
// scores are never changed. q.Limit == 0 returns every driver.
func (s *Service) Ranking(ctx context.Context, key model.CohortKey, q types.RankingQuery) (model.Result, error) {
	if q.Limit < 0 {
		return model.Result{}, fmt.Errorf("%w: %d", repository.ErrInvalidLimit, q.Limit)
	}
	if q.Sort == "" {
		q.Sort = ranking.SortByRank
	}
	if q.Order == "" {
		q.Order = ranking.Asc
	}
	if q.Sort == ranking.SortByRank && q.Order == ranking.Asc {
		return s.store.TopN(ctx, key, q.Limit)
	}

	res, err := s.store.Get(ctx, key)
	if err != nil {
		return model.Result{}, err
	}
	ranked := ranking.SortBy(res.Ranked, q.Sort, q.Order)
	if q.Limit > 0 && q.Limit < len(ranked) {
		ranked = ranked[:q.Limit]
	}
	res.Ranked = ranked
	return res, nil
}

// DriverRank returns one driver's ranking in a cohort. An excluded driver
// yields a *repository.IneligibleError carrying the reason.
func (s *Service) DriverRank(ctx context.Context, key model.CohortKey, driverID string) (model.RankedDriver, error) {
	return s.store.Driver(ctx, key, driverID)
}

// Cohorts lists stored cohorts.
func (s *Service) Cohorts(ctx context.Context) []repository.CohortSummary {
	return s.store.Cohorts(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":       s.started,
		"workerCount":   s.workerCount,
		"queueSize":     s.queueSize,
		"dedupeSize":    s.dedupeSize,
		"maxCohortSize": s.maxCohortSize,
		"cohorts":       s.store.Count(ctx),
		"submissions":   s.deduper.Size(),
		"jobs":          s.jobs.counts(),
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
	}
	return stats
}
