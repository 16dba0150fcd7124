// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/impact/internal/adapters/feed"
	"github.com/okian/impact/internal/adapters/repository"
	"github.com/okian/impact/internal/domain/technical"
	"github.com/okian/impact/internal/domain/types"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers.
type Dependencies interface {
	AnalyzeDependencies
	LeaderboardDependencies
	RankDependencies
	WeightsDependencies
	ResolveDependencies
	TechnicalDependencies
	PassDependencies
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	analyzeHandler     *AnalyzeHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
	passHandler        *PassHandler
	weightsHandler     *WeightsHandler
	resolveHandler     *ResolveHandler
	technicalHandler   *TechnicalHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLeaderboardLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		analyzeHandler:     NewAnalyzeHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLeaderboardLimit),
		rankHandler:        NewRankHandler(deps),
		passHandler:        NewPassHandler(deps),
		weightsHandler:     NewWeightsHandler(deps),
		resolveHandler:     NewResolveHandler(deps),
		technicalHandler:   NewTechnicalHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/analyze", MetricsMiddleware(s.analyzeHandler.HandleAnalyze, "analyze"))
	mux.HandleFunc("/collect", MetricsMiddleware(s.analyzeHandler.HandleCollect, "collect"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/rank/", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
	mux.HandleFunc("/passes/", MetricsMiddleware(s.passHandler.HandleGetPass, "passes"))
	mux.HandleFunc("/weights", MetricsMiddleware(s.weightsHandler.HandleGetWeights, "weights"))
	mux.HandleFunc("/learn", MetricsMiddleware(s.weightsHandler.HandleLearn, "learn"))
	mux.HandleFunc("/performance/resolve", MetricsMiddleware(s.resolveHandler.HandleResolve, "performance_resolve"))
	mux.HandleFunc("/signals/technical", MetricsMiddleware(s.technicalHandler.HandleTechnical, "signals_technical"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
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

// decodeJSON reads a bounded JSON body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeUpstreamError translates errors of the lower layers to a status code.
func writeUpstreamError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrEmpty):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, repository.ErrInvalidLimit), errors.Is(err, technical.ErrInsufficientData):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, feed.ErrNoFeeds):
		writeError(w, http.StatusServiceUnavailable, "no_feeds", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
	}
}
