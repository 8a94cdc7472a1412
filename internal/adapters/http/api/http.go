// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dspboard/driverrank/internal/adapters/repository"
	service "github.com/dspboard/driverrank/internal/app"
	"github.com/dspboard/driverrank/internal/domain/model"
	"github.com/dspboard/driverrank/internal/domain/types"
)

// DefaultMaxBodyBytes bounds the size of a cohort request body.
const DefaultMaxBodyBytes = 8 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RankDependencies
	SubmitDependencies
	JobDependencies
	CohortDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	rankHandler   *RankHandler
	submitHandler *SubmitHandler
	jobHandler    *JobHandler
	cohortHandler *CohortHandler
	serviceName   string
}

// Option configures a Server.
type Option func(*serverConfig)

type serverConfig struct {
	maxRankingLimit int
	maxBodyBytes    int64
	serviceName     string
}

// WithMaxRankingLimit caps the limit query parameter of ranking reads.
func WithMaxRankingLimit(n int) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxRankingLimit = n
		}
	}
}

// WithMaxBodyBytes bounds request bodies of POST /rank and POST /cohorts.
func WithMaxBodyBytes(n int64) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxBodyBytes = n
		}
	}
}

// WithServiceName sets the operation name used for request spans.
func WithServiceName(name string) Option {
	return func(c *serverConfig) {
		if name != "" {
			c.serviceName = name
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	cfg := serverConfig{maxRankingLimit: 500, maxBodyBytes: DefaultMaxBodyBytes, serviceName: "driverrank"}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(deps),
		rankHandler:   NewRankHandler(deps, cfg.maxBodyBytes),
		submitHandler: NewSubmitHandler(deps, cfg.maxBodyBytes),
		jobHandler:    NewJobHandler(deps),
		cohortHandler: NewCohortHandler(deps, cfg.maxRankingLimit),
		serviceName:   cfg.serviceName,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.Handle("GET /metrics", MetricsHandler())
	mux.HandleFunc("POST /rank", MetricsMiddleware(s.rankHandler.HandleRank, "rank"))
	mux.HandleFunc("POST /cohorts", MetricsMiddleware(s.submitHandler.HandleSubmit, "submit"))
	mux.HandleFunc("GET /jobs/{id}", MetricsMiddleware(s.jobHandler.HandleGetJob, "job"))
	mux.HandleFunc("GET /cohorts", MetricsMiddleware(s.cohortHandler.HandleListCohorts, "cohorts"))
	mux.HandleFunc("GET /cohorts/{dsp}/{station}/{week}",
		MetricsMiddleware(s.cohortHandler.HandleGetRanking, "ranking"))
	mux.HandleFunc("GET /cohorts/{dsp}/{station}/{week}/drivers/{driverId}",
		MetricsMiddleware(s.cohortHandler.HandleGetDriver, "driver"))
}

// Handler returns mux wrapped with request tracing.
func (s *Server) Handler(mux *http.ServeMux) http.Handler {
	return TracingMiddleware(mux, s.serviceName)
}

// cohortRequest is the body of POST /cohorts.
type cohortRequest struct {
	SubmissionID string          `json:"submissionId"`
	Cohort       model.CohortKey `json:"cohort"`
	Records      json.RawMessage `json:"records"`
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
	JobID     string `json:"jobId"`
}

func newAck(ack types.SubmitAck) ackResponse {
	status := "accepted"
	if ack.Duplicate {
		status = "duplicate"
	}
	return ackResponse{Status: status, Duplicate: ack.Duplicate, JobID: ack.JobID}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ineligibleResponse is the 404 body for a driver that was excluded.
type ineligibleResponse struct {
	errorResponse
	Ineligible model.Ineligible `json:"ineligible"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound translates store and job lookups that found nothing.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound) || errors.Is(err, service.ErrJobNotFound)
}

// cohortKey reads the cohort key from the path of a matched route.
func cohortKey(r *http.Request) model.CohortKey {
	return model.CohortKey{
		DSP:     r.PathValue("dsp"),
		Station: r.PathValue("station"),
		Week:    r.PathValue("week"),
	}
}
