package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/impact/internal/domain/engine"
)

// latestPass is the path segment addressing the most recent pass.
const latestPass = "latest"

// PassDependencies defines the pass history lookup.
type PassDependencies interface {
	// Pass returns the pass with id, or the latest one for an empty id.
	Pass(ctx context.Context, id string) (engine.Pass, error)
}

// PassHandler serves stored scoring passes.
type PassHandler struct {
	deps PassDependencies
}

// NewPassHandler creates a new pass handler.
func NewPassHandler(deps PassDependencies) *PassHandler {
	return &PassHandler{deps: deps}
}

// HandleGetPass handles GET /passes/{id} and GET /passes/latest requests.
func (h *PassHandler) HandleGetPass(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_pass"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/passes/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if id == latestPass {
		id = ""
	}
	pass, err := h.deps.Pass(r.Context(), id)
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, pass)
}
