package api

import (
	"context"
	"net/http"

	"github.com/okian/impact/internal/domain/engine"
	"github.com/okian/impact/internal/domain/model"
)

// AnalyzeDependencies defines the scoring operations.
type AnalyzeDependencies interface {
	Analyze(ctx context.Context, observations []model.Observation) (engine.Pass, error)
	Collect(ctx context.Context) (engine.Pass, []error, error)
}

// AnalyzeHandler handles scoring requests.
type AnalyzeHandler struct {
	deps AnalyzeDependencies
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(deps AnalyzeDependencies) *AnalyzeHandler {
	return &AnalyzeHandler{deps: deps}
}

type analyzeRequest struct {
	Observations []model.Observation `json:"observations"`
}

type collectResponse struct {
	engine.Pass
	FeedErrors []string `json:"feed_errors,omitempty"`
}

// HandleAnalyze handles POST /analyze requests. Malformed observations are
// dropped by the engine rather than rejected here.
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req analyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	pass, err := h.deps.Analyze(r.Context(), req.Observations)
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, pass)
}

// HandleCollect handles POST /collect requests.
func (h *AnalyzeHandler) HandleCollect(w http.ResponseWriter, r *http.Request) {
	const op = "api.collect"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	pass, feedErrs, err := h.deps.Collect(r.Context())
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}

	resp := collectResponse{Pass: pass}
	for _, e := range feedErrs {
		resp.FeedErrors = append(resp.FeedErrors, e.Error())
	}
	writeJSON(w, http.StatusOK, resp)
}
