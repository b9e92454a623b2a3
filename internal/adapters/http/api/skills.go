package api

import (
	"net/http"
	"strings"
)

// SkillsHandler serves the relevance table.
type SkillsHandler struct {
	deps SkillDependencies
}

// NewSkillsHandler creates a new skills handler.
func NewSkillsHandler(deps SkillDependencies) *SkillsHandler {
	return &SkillsHandler{deps: deps}
}

// HandleRelated handles GET /v1/skills/{name}/related requests. A skill
// without relations yields an empty list.
func (h *SkillsHandler) HandleRelated(w http.ResponseWriter, r *http.Request) {
	const op = "api.related_skills"
	name := r.PathValue("name")
	if strings.TrimSpace(name) == "" {
		writeKindError(w, NewKind(op, ErrBadRequest))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Related(r.Context(), name))
}
