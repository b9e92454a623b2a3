package api

import (
	"errors"
	"net/http"

	"github.com/okian/skillmatch/internal/adapters/mq/queue"
	"github.com/okian/skillmatch/internal/adapters/repository"
	"github.com/okian/skillmatch/internal/domain/model"
)

// JobsHandler handles asynchronous ranking jobs.
type JobsHandler struct {
	deps   JobDependencies
	limits limits
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(deps JobDependencies, lim limits) *JobsHandler {
	return &JobsHandler{deps: deps, limits: lim}
}

// HandleSubmit handles POST /v1/jobs requests. The request_id, when present,
// is the job id and makes the submission idempotent.
func (h *JobsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_job"
	in, err := h.limits.decodeMatchRequest(op, w, r)
	if err != nil {
		writeKindError(w, err)
		return
	}

	req, candidates := in.ToDomain()
	ack, err := h.deps.Submit(r.Context(), model.Job{
		ID:         in.RequestID,
		Request:    req,
		Candidates: candidates,
	})
	switch {
	case err == nil:
	case errors.Is(err, model.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	case errors.Is(err, queue.ErrFull):
		writeKindError(w, WrapKind(op, ErrBackpressure, err))
		return
	case errors.Is(err, queue.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
		return
	default:
		writeKindError(w, Wrap(op, err))
		return
	}

	if ack.Duplicate {
		writeJSON(w, http.StatusOK, ack)
		return
	}
	writeJSON(w, http.StatusAccepted, ack)
}

// HandleGet handles GET /v1/jobs/{id} requests.
func (h *JobsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_job"
	id := r.PathValue("id")
	if id == "" {
		writeKindError(w, NewKind(op, ErrBadRequest))
		return
	}
	status, err := h.deps.Job(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeKindError(w, WrapKind(op, ErrNotFound, err))
			return
		}
		writeKindError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, status)
}
