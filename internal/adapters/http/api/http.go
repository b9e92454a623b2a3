// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/types"
)

// MatchDependencies ranks candidates synchronously.
type MatchDependencies interface {
	Rank(ctx context.Context, req model.MatchRequest, candidates []model.Candidate) (model.RankedList, error)
}

// JobDependencies submits and reads asynchronous ranking jobs.
type JobDependencies interface {
	// Submit queues a job. Repeated ids are acknowledged as duplicates.
	Submit(ctx context.Context, job model.Job) (types.SubmitResponse, error)
	Job(ctx context.Context, id string) (types.JobStatus, error)
}

// SkillDependencies exposes the relevance table.
type SkillDependencies interface {
	Related(ctx context.Context, skill string) types.RelatedSkills
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	MatchDependencies
	JobDependencies
	SkillDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	maxCandidates int
	maxBodyBytes  int64

	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	matchHandler  *MatchHandler
	jobsHandler   *JobsHandler
	skillsHandler *SkillsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		maxCandidates: defaultMaxCandidates,
		maxBodyBytes:  defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	lim := limits{maxCandidates: s.maxCandidates, maxBodyBytes: s.maxBodyBytes}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.matchHandler = NewMatchHandler(deps, lim)
	s.jobsHandler = NewJobsHandler(deps, lim)
	s.skillsHandler = NewSkillsHandler(deps)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /v1/match", MetricsMiddleware(s.matchHandler.HandleMatch, "match"))
	mux.HandleFunc("POST /v1/jobs", MetricsMiddleware(s.jobsHandler.HandleSubmit, "jobs_submit"))
	mux.HandleFunc("GET /v1/jobs/{id}", MetricsMiddleware(s.jobsHandler.HandleGet, "jobs_get"))
	mux.HandleFunc("GET /v1/skills/{name}/related", MetricsMiddleware(s.skillsHandler.HandleRelated, "skills_related"))
}

type limits struct {
	maxCandidates int
	maxBodyBytes  int64
}

// decodeMatchRequest reads and bounds a match request body.
func (l limits) decodeMatchRequest(op string, w http.ResponseWriter, r *http.Request) (types.MatchRequest, error) {
	var req types.MatchRequest
	body := http.MaxBytesReader(w, r.Body, l.maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, WrapKind(op, ErrBodyTooLarge, err)
		}
		return req, WrapKind(op, ErrBadRequest, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return req, WrapKind(op, ErrBadRequest, errors.New("unexpected data after request body"))
	}
	if n := len(req.Candidates); n > l.maxCandidates {
		return req, WrapKind(op, ErrTooManyCandidates, fmt.Errorf("%d candidates, limit %d", n, l.maxCandidates))
	}
	return req, nil
}

type errorResponse struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	CandidateID string `json:"candidate_id,omitempty"`
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

// writeKindError maps an API kind to its status code.
func writeKindError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBodyTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", err)
	case errors.Is(err, ErrTooManyCandidates):
		writeError(w, http.StatusRequestEntityTooLarge, "too_many_candidates", err)
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, ErrTimeout):
		writeError(w, http.StatusGatewayTimeout, "timeout", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
