package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/okian/impact/internal/domain/model"
)

// ResolveDependencies defines the performance log feedback operation.
type ResolveDependencies interface {
	Resolve(ctx context.Context, stock, date string, actual float64) (int, error)
}

// ResolveHandler fills actual outcomes of past predictions.
type ResolveHandler struct {
	deps ResolveDependencies
}

// NewResolveHandler creates a new resolve handler.
func NewResolveHandler(deps ResolveDependencies) *ResolveHandler {
	return &ResolveHandler{deps: deps}
}

type resolveRequest struct {
	Stock  string   `json:"stock"`
	Date   string   `json:"date"`
	Actual *float64 `json:"actual"`
}

func (r resolveRequest) validate() error {
	switch {
	case strings.TrimSpace(r.Stock) == "":
		return errors.New("missing stock")
	case r.Actual == nil:
		return errors.New("missing actual")
	}
	if _, err := time.Parse(model.DateLayout, r.Date); err != nil {
		return errors.New("invalid date; must be YYYY-MM-DD")
	}
	return nil
}

type resolveResponse struct {
	Resolved int `json:"resolved"`
}

// HandleResolve handles POST /performance/resolve requests.
func (h *ResolveHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	const op = "api.resolve"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req resolveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	n, err := h.deps.Resolve(r.Context(), req.Stock, req.Date, *req.Actual)
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, resolveResponse{Resolved: n})
}
