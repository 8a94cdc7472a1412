package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	app "github.com/dspboard/driverrank/internal/app"
	"github.com/dspboard/driverrank/internal/cohortgen"
	"github.com/dspboard/driverrank/internal/config"
	"github.com/dspboard/driverrank/internal/domain/model"
	"github.com/dspboard/driverrank/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	_ = logger.SetLevelString("error")
}

var week = model.CohortKey{DSP: "DSPX", Station: "DAB1", Week: "2024-W10"}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("DRIVERRANK_ADDR", ":8080")
			_ = os.Setenv("DRIVERRANK_QUEUE_SIZE", "1000")
			_ = os.Setenv("DRIVERRANK_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("DRIVERRANK_ADDR")
				_ = os.Unsetenv("DRIVERRANK_QUEUE_SIZE")
				_ = os.Unsetenv("DRIVERRANK_WORKER_COUNT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When tracing is disabled", func() {
			cfg := config.New(context.Background())

			convey.Convey("Then a no-op provider is installed", func() {
				tp, err := setupTracing(cfg)
				convey.So(err, convey.ShouldBeNil)
				convey.So(tp.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the sample rate is invalid", func() {
			cfg := config.New(context.Background())
			cfg.TraceEnabled = true
			cfg.TraceSampleRate = 3

			convey.Convey("Then tracing setup fails", func() {
				_, err := setupTracing(cfg)
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("When testing service metrics update", func() {
			svc := app.New()
			convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
			defer func() { _ = svc.Stop(context.Background()) }()

			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given the assembled HTTP handler", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cfg := config.New(ctx)
		cfg.WorkerCount = 2
		svc := newService(cfg, logger.Get())
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		handler := newHandler(ctx, cfg, svc)
		in := cohortgen.Generate(cohortgen.Config{Cohort: week, Drivers: 25, Ineligible: 3, Seed: 11})
		body, err := json.Marshal(in)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When a cohort is ranked synchronously", func() {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/rank", bytes.NewReader(body)))

			convey.Convey("Then the ranking is returned and stored", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				var res model.Result
				convey.So(json.Unmarshal(w.Body.Bytes(), &res), convey.ShouldBeNil)
				convey.So(len(res.Ranked), convey.ShouldEqual, 22)
				convey.So(len(res.Ineligible), convey.ShouldEqual, 3)
				convey.So(res.Ranked[0].Score, convey.ShouldEqual, 100)

				get := httptest.NewRecorder()
				handler.ServeHTTP(get, httptest.NewRequest(http.MethodGet, "/cohorts/DSPX/DAB1/2024-W10?limit=5", nil))
				convey.So(get.Code, convey.ShouldEqual, http.StatusOK)
				var stored model.Result
				convey.So(json.Unmarshal(get.Body.Bytes(), &stored), convey.ShouldBeNil)
				convey.So(stored.RunID, convey.ShouldEqual, res.RunID)
				convey.So(len(stored.Ranked), convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When a cohort is submitted asynchronously", func() {
			payload, _ := json.Marshal(map[string]any{
				"submissionId": "upload-1",
				"cohort":       in.Cohort,
				"records":      in.Records,
			})
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/cohorts", bytes.NewReader(payload)))

			convey.Convey("Then the job finishes", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusAccepted)
				var ack struct {
					JobID string `json:"jobId"`
				}
				convey.So(json.Unmarshal(w.Body.Bytes(), &ack), convey.ShouldBeNil)

				var status string
				for deadline := time.Now().Add(5 * time.Second); time.Now().Before(deadline); time.Sleep(10 * time.Millisecond) {
					jw := httptest.NewRecorder()
					handler.ServeHTTP(jw, httptest.NewRequest(http.MethodGet, "/jobs/"+ack.JobID, nil))
					var job struct {
						Status string `json:"status"`
					}
					_ = json.Unmarshal(jw.Body.Bytes(), &job)
					if status = job.Status; status != "queued" {
						break
					}
				}
				convey.So(status, convey.ShouldEqual, "done")
			})
		})

		convey.Convey("Then the OpenAPI document is served", func() {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given invalid configuration", t, func() {
		_ = os.Setenv("DRIVERRANK_ADDR", "")
		defer func() { _ = os.Unsetenv("DRIVERRANK_ADDR") }()

		convey.Convey("Then configuration loading should fail", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}
