package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/ranking"
	"github.com/okian/skillmatch/internal/domain/types"
)

// MatchHandler handles synchronous ranking requests.
type MatchHandler struct {
	deps   MatchDependencies
	limits limits
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(deps MatchDependencies, lim limits) *MatchHandler {
	return &MatchHandler{deps: deps, limits: lim}
}

// HandleMatch handles POST /v1/match requests.
func (h *MatchHandler) HandleMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.match"
	in, err := h.limits.decodeMatchRequest(op, w, r)
	if err != nil {
		writeKindError(w, err)
		return
	}

	req, candidates := in.ToDomain()
	list, err := h.deps.Rank(r.Context(), req, candidates)
	if err != nil {
		writeRankError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, types.FromRankedList(list))
}

// writeRankError maps ranking failures: invalid requests are the client's
// fault, an aborting candidate is unprocessable, a deadline is a timeout.
func writeRankError(w http.ResponseWriter, op string, err error) {
	var cerr *ranking.CandidateError
	switch {
	case errors.As(err, &cerr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Code:        types.ErrorCode(cerr.Err),
			Message:     err.Error(),
			CandidateID: cerr.CandidateID,
		})
	case errors.Is(err, model.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, types.ErrorCode(err), err)
	case errors.Is(err, context.DeadlineExceeded):
		writeKindError(w, WrapKind(op, ErrTimeout, err))
	default:
		writeKindError(w, Wrap(op, err))
	}
}
