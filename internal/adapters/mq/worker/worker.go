// Package worker runs queued cohort ranking jobs.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/dspboard/driverrank/internal/adapters/mq/queue"
	"github.com/dspboard/driverrank/internal/domain/model"
	"github.com/dspboard/driverrank/pkg/logger"
	"github.com/dspboard/driverrank/pkg/metrics"
)

// Ranker ranks one cohort.
type Ranker interface {
	RankCohort(ctx context.Context, in model.CohortInput) (model.Result, error)
}

// Reporter receives the outcome of every job a worker runs.
type Reporter interface {
	Complete(ctx context.Context, job queue.Job, res model.Result, err error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// InMemoryWorker pulls jobs from a queue until the queue closes.
type InMemoryWorker struct {
	queue    Queue
	ranker   Ranker
	reporter Reporter
	name     string
	logger   logger.Logger

	done chan struct{}
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, ranker Ranker, reporter Reporter, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		ranker:   ranker,
		reporter: reporter,
		name:     "worker",
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run processes jobs until the queue is closed and drained or ctx ends.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

func (w *InMemoryWorker) process(ctx context.Context, job queue.Job) { //nolint:gocritic // hugeParam: jobs travel by value
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	res, err := w.ranker.RankCohort(ctx, job.Input)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "ranking_error")
		w.logger.Error(ctx, "ranking job failed",
			logger.String("jobId", job.ID),
			logger.String("cohort", job.Input.Cohort.String()),
			logger.Error(err),
		)
		err = fmt.Errorf("job %s: %w", job.ID, err)
	} else {
		w.logger.Debug(ctx, "ranking job done",
			logger.String("jobId", job.ID),
			logger.String("runId", res.RunID),
			logger.Duration("waited", start.Sub(job.EnqueuedAt)),
		)
	}
	w.reporter.Complete(ctx, job, res, err)
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
	once    sync.Once
}

// NewPool creates workerCount workers. workerCount < 1 means one per CPU.
func NewPool(workerCount int, q Queue, ranker Ranker, reporter Reporter, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(q, ranker, reporter, wopts...)
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	var err error
	p.once.Do(func() {
		if closer, ok := p.queue.(interface{ Close() error }); ok {
			if cerr := closer.Close(); cerr != nil {
				p.logger.Error(ctx, "error closing queue", logger.Error(cerr))
			}
		}
		for i, w := range p.workers {
			select {
			case <-w.Done():
			case <-ctx.Done():
				p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
				err = fmt.Errorf("shutdown timed out: %w", ctx.Err())
				return
			}
		}
		metrics.UpdateWorkerCount(0)
	})
	return err
}
