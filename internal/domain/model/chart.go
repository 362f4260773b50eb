package model

import (
	"strconv"
	"strings"
	"time"
)

// Chart type letters as encoded in the compact chart label.
const (
	ChartSingle = "S"
	ChartDouble = "D"
	ChartCoop   = "COOP"
)

// Chart is one song+difficulty+mode combination players compete on,
// together with its ordered leaderboard.
type Chart struct {
	SharedChartID string `json:"shared_chart_id"`
	Song          string `json:"song"`
	Label         string `json:"label"`
	Type          string `json:"type"`
	Level         int    `json:"level"`
	Duration      string `json:"duration,omitempty"`

	// MaxTotalSteps is the maximum achievable step count; 0 when the
	// tracklist does not know it.
	MaxTotalSteps int `json:"max_total_steps,omitempty"`

	// Results is the leaderboard, descending by score, at most one
	// entry per (player, rank-mode).
	Results []*Result `json:"results"`

	// TotalResultsCount counts accepted best-score insertions,
	// including unknown-player ones rejected by the placement rule.
	TotalResultsCount int `json:"total_results_count"`

	// LatestScoreDate is the max timestamp over accepted insertions.
	LatestScoreDate time.Time `json:"latest_score_date"`

	// MaxScore is the score a theoretical 100% accuracy run implies,
	// derived once a full-judgment result is observed. 0 = unknown.
	MaxScore float64 `json:"max_score,omitempty"`

	// MaxScoreResult is the highest-scoring result with known raw
	// accuracy that produced MaxScore.
	MaxScoreResult *Result `json:"-"`
}

// ParseChartLabel splits a compact label such as "S20", "D24" or
// "COOP2" into its type letters and numeric level. Unparsable labels
// yield the upper-cased label as type and level 0.
func ParseChartLabel(label string) (chartType string, level int) {
	label = strings.ToUpper(strings.TrimSpace(label))
	i := 0
	for i < len(label) && (label[i] < '0' || label[i] > '9') {
		i++
	}
	chartType = label[:i]
	if i < len(label) {
		level, _ = strconv.Atoi(label[i:])
	}
	return chartType, level
}
