package api

import (
	"context"
	"net/http"

	"github.com/okian/impact/internal/domain/learner"
	"github.com/okian/impact/internal/domain/model"
)

// WeightsDependencies defines the weight store and learner operations.
type WeightsDependencies interface {
	Weights() model.WeightTable
	Learn(ctx context.Context) (learner.Outcome, error)
}

// WeightsHandler handles category weight requests.
type WeightsHandler struct {
	deps WeightsDependencies
}

// NewWeightsHandler creates a new weights handler.
func NewWeightsHandler(deps WeightsDependencies) *WeightsHandler {
	return &WeightsHandler{deps: deps}
}

// HandleGetWeights handles GET /weights requests.
func (h *WeightsHandler) HandleGetWeights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Weights())
}

// HandleLearn handles POST /learn requests. A run that changes nothing is
// still a success; the outcome says why.
func (h *WeightsHandler) HandleLearn(w http.ResponseWriter, r *http.Request) {
	const op = "api.learn"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	out, err := h.deps.Learn(r.Context())
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
