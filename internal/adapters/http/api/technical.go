package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/impact/internal/domain/technical"
)

// TechnicalDependencies defines the price signal evaluation.
type TechnicalDependencies interface {
	Technical(ctx context.Context, closes []float64) (technical.Signal, error)
}

// TechnicalHandler evaluates secondary price signals.
type TechnicalHandler struct {
	deps TechnicalDependencies
}

// NewTechnicalHandler creates a new technical signal handler.
func NewTechnicalHandler(deps TechnicalDependencies) *TechnicalHandler {
	return &TechnicalHandler{deps: deps}
}

type technicalRequest struct {
	Closes []float64 `json:"closes"`
}

// HandleTechnical handles POST /signals/technical requests.
func (h *TechnicalHandler) HandleTechnical(w http.ResponseWriter, r *http.Request) {
	const op = "api.technical"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req technicalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(req.Closes) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing closes")))
		return
	}
	signal, err := h.deps.Technical(r.Context(), req.Closes)
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, signal)
}
