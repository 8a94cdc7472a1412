package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dspboard/driverrank/internal/adapters/mq/queue"
	"github.com/dspboard/driverrank/internal/adapters/mq/worker"
	"github.com/dspboard/driverrank/internal/domain/model"
	"github.com/dspboard/driverrank/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var errBoom = errors.New("boom")

type stubRanker struct{}

func (stubRanker) RankCohort(_ context.Context, in model.CohortInput) (model.Result, error) {
	if in.Cohort.DSP == "FAIL" {
		return model.Result{}, errBoom
	}
	return model.Result{Cohort: in.Cohort, RunID: "run-" + in.Cohort.Week}, nil
}

type recorder struct {
	mu      sync.Mutex
	results map[string]model.Result
	errs    map[string]error
}

func newRecorder() *recorder {
	return &recorder{results: map[string]model.Result{}, errs: map[string]error{}}
}

func (r *recorder) Complete(_ context.Context, job queue.Job, res model.Result, err error) { //nolint:gocritic // test stub
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.errs[job.ID] = err
		return
	}
	r.results[job.ID] = res
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.results) + len(r.errs)
}

func cohortJob(id, dsp string) queue.Job {
	return queue.Job{
		ID:         id,
		Input:      model.CohortInput{Cohort: model.CohortKey{DSP: dsp, Station: "S", Week: "2024-W0" + id}},
		EnqueuedAt: time.Now(),
	}
}

func TestPool(t *testing.T) {
	Convey("Given a pool of workers on a queue", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		rec := newRecorder()
		pool := worker.NewPool(3, q, stubRanker{}, rec, worker.WithLogger(logger.Nop()))
		So(pool.Size(), ShouldEqual, 3)
		pool.Start(ctx)

		Convey("When jobs are enqueued and the pool shuts down", func() {
			So(q.Enqueue(ctx, cohortJob("1", "OK")), ShouldBeNil)
			So(q.Enqueue(ctx, cohortJob("2", "FAIL")), ShouldBeNil)
			So(q.Enqueue(ctx, cohortJob("3", "OK")), ShouldBeNil)

			sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			So(pool.Shutdown(sctx), ShouldBeNil)

			Convey("Then every queued job is reported", func() {
				So(rec.count(), ShouldEqual, 3)
				So(rec.results["1"].RunID, ShouldEqual, "run-2024-W01")
				So(errors.Is(rec.errs["2"], errBoom), ShouldBeTrue)
			})

			Convey("And a second shutdown is a no-op", func() {
				So(pool.Shutdown(sctx), ShouldBeNil)
			})
		})
	})

	Convey("Given a pool with no explicit size", t, func() {
		q := queue.NewInMemoryQueue()
		pool := worker.NewPool(0, q, stubRanker{}, newRecorder())
		So(pool.Size(), ShouldBeGreaterThan, 0)
		pool.Start(context.Background())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		So(pool.Shutdown(ctx), ShouldBeNil)
	})
}
