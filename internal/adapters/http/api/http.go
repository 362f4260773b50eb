// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pumptrack/pumptrack/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Read operations expose the published state.
	Ranking(ctx context.Context) []model.RankingEntry
	Chart(ctx context.Context, sharedChartID string) (*model.Chart, bool)
	Charts(ctx context.Context) []*model.Chart
	Profile(ctx context.Context, playerID string) (*model.Profile, bool)
	LogText(ctx context.Context) string

	// Refresh queues a refresh run and returns its id.
	Refresh(ctx context.Context) (string, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	rankingHandler *RankingHandler
	chartsHandler  *ChartsHandler
	profileHandler *ProfileHandler
	refreshHandler *RefreshHandler
	debugHandler   *DebugHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		rankingHandler: NewRankingHandler(deps, maxLimit),
		chartsHandler:  NewChartsHandler(deps, maxLimit),
		profileHandler: NewProfileHandler(deps),
		refreshHandler: NewRefreshHandler(deps),
		debugHandler:   NewDebugHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/ranking", MetricsMiddleware(s.rankingHandler.HandleGetRanking, "ranking"))
	mux.HandleFunc("/charts", MetricsMiddleware(s.chartsHandler.HandleGetCharts, "charts"))
	mux.HandleFunc("/leaderboard/", MetricsMiddleware(s.chartsHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/profiles/", MetricsMiddleware(s.profileHandler.HandleGetProfile, "profiles"))
	mux.HandleFunc("/refresh", MetricsMiddleware(s.refreshHandler.HandlePostRefresh, "refresh"))
	mux.HandleFunc("/debug/replay", MetricsMiddleware(s.debugHandler.HandleGetReplayLog, "debug_replay"))
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
