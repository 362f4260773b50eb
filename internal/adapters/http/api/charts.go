// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// chartSummary is the list shape returned by GET /charts; the full
// leaderboard is only served per chart.
type chartSummary struct {
	SharedChartID     string    `json:"shared_chart_id"`
	Song              string    `json:"song"`
	Label             string    `json:"label"`
	Type              string    `json:"type"`
	Level             int       `json:"level"`
	Players           int       `json:"players"`
	TotalResultsCount int       `json:"total_results_count"`
	LatestScoreDate   time.Time `json:"latest_score_date"`
	MaxScore          float64   `json:"max_score,omitempty"`
}

// ChartsHandler handles chart listing and per-chart leaderboards.
type ChartsHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewChartsHandler creates a new charts handler.
func NewChartsHandler(deps Dependencies, maxLimit int) *ChartsHandler {
	return &ChartsHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetCharts handles GET /charts?limit=N requests. Without a limit
// every chart summary is returned.
func (h *ChartsHandler) HandleGetCharts(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_charts"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	charts := h.deps.Charts(r.Context())

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		if n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
		if n < len(charts) {
			charts = charts[:n]
		}
	}
	summaries := make([]chartSummary, 0, len(charts))
	for _, chart := range charts {
		summaries = append(summaries, chartSummary{
			SharedChartID:     chart.SharedChartID,
			Song:              chart.Song,
			Label:             chart.Label,
			Type:              chart.Type,
			Level:             chart.Level,
			Players:           len(chart.Results),
			TotalResultsCount: chart.TotalResultsCount,
			LatestScoreDate:   chart.LatestScoreDate,
			MaxScore:          chart.MaxScore,
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}

// HandleGetLeaderboard handles GET /leaderboard/{chartID} requests.
func (h *ChartsHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	chartID := strings.TrimPrefix(r.URL.Path, "/leaderboard/")
	if chartID == "" || strings.Contains(chartID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	chart, ok := h.deps.Chart(r.Context(), chartID)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, chart)
}
