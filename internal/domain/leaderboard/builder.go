// Package leaderboard builds per-chart leaderboards from normalized
// results and derives the head-to-head battles the rating engine
// replays.
package leaderboard

import (
	"context"
	"sort"
	"strings"

	"github.com/pumptrack/pumptrack/internal/domain/model"
	"github.com/pumptrack/pumptrack/internal/domain/normalize"
	"github.com/pumptrack/pumptrack/pkg/logger"
)

// Output is everything the builder produces from one raw snapshot:
// the chart map with ordered leaderboards, the battles derived while
// inserting, and the full list of normalized results.
type Output struct {
	Charts map[string]*model.Chart
	// ChartOrder preserves first-seen chart order so downstream passes
	// iterate deterministically.
	ChartOrder []string
	Battles    []model.Battle
	Results    []*model.Result
	// Skipped counts records dropped because their player or chart
	// could not be resolved against the directory.
	Skipped int
}

// Builder processes raw results grouped by shared-chart id, in
// submission order.
type Builder struct {
	logger logger.Logger
}

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithLogger sets a custom logger for the builder.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// New constructs a Builder.
func New(opts ...Option) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build replays every raw result through normalization and leaderboard
// insertion. Records with unresolvable identifiers are skipped and
// counted; everything else degrades per field instead of failing.
func (b *Builder) Build(ctx context.Context, data *model.RawData) *Output {
	out := &Output{
		Charts: make(map[string]*model.Chart),
	}

	// Current best per (chart, player, rank-mode) and best grade per
	// (chart, player).
	best := make(map[insertKey]*model.Result)
	bestGrade := make(map[gradeKey]*model.Result)

	for i := range data.Results {
		raw := &data.Results[i]

		rawChart, ok := data.SharedCharts[raw.SharedChart]
		if !ok {
			out.Skipped++
			b.warn(ctx, "skipping result: unknown chart", raw.SharedChart)
			continue
		}
		rawPlayer, ok := data.Players[raw.Player]
		if !ok {
			out.Skipped++
			b.warn(ctx, "skipping result: unknown player", raw.Player)
			continue
		}

		chart := out.Charts[raw.SharedChart]
		if chart == nil {
			chart = newChart(raw.SharedChart, rawChart)
			out.Charts[raw.SharedChart] = chart
			out.ChartOrder = append(out.ChartOrder, raw.SharedChart)
		}

		player := model.Player{
			ID:          raw.Player,
			Nickname:    rawPlayer.Nickname,
			ArcadeName:  rawPlayer.ArcadeName,
			Region:      rawPlayer.Region,
			RatingBonus: rawPlayer.RatingBonus,
		}
		result := normalize.Map(*raw, player, chart)
		out.Results = append(out.Results, result)

		b.insert(chart, result, best, &out.Battles)
		trackBestGrade(result, bestGrade)
	}

	return out
}

type insertKey struct {
	chartID  string
	playerID string
	isRank   bool
}

type gradeKey struct {
	chartID  string
	playerID string
}

// insert places result into the chart leaderboard if it beats the
// player's current best for its rank-mode, then derives battles
// against every entry already present.
func (b *Builder) insert(chart *model.Chart, result *model.Result, best map[insertKey]*model.Result, battles *[]model.Battle) {
	key := insertKey{chart.SharedChartID, result.PlayerID, result.IsRank}
	current := best[key]
	if current != nil && current.Score >= result.Score {
		return
	}

	if current != nil {
		removeResult(chart, current)
	}

	// Stable descending insertion point: after any equal scores, so
	// ties keep their existing relative order.
	pos := sort.Search(len(chart.Results), func(i int) bool {
		return chart.Results[i].Score < result.Score
	})

	// Unknown-player entries may only hold the top spot.
	if !result.IsUnknownPlayer || pos == 0 {
		chart.Results = append(chart.Results, nil)
		copy(chart.Results[pos+1:], chart.Results[pos:])
		chart.Results[pos] = result
		if result.Date.After(chart.LatestScoreDate) {
			chart.LatestScoreDate = result.Date
		}
	}
	chart.TotalResultsCount++
	best[key] = result

	if result.IsUnknownPlayer {
		return
	}
	for _, enemy := range chart.Results {
		if enemy.IsUnknownPlayer ||
			enemy.IsRank != result.IsRank ||
			enemy.PlayerID == result.PlayerID ||
			result.Score <= 0 || enemy.Score <= 0 {
			continue
		}
		*battles = append(*battles, model.Battle{
			Challenger: result,
			Incumbent:  enemy,
			Chart:      chart,
		})
	}
}

// trackBestGrade maintains the best grade per (player, chart).
// Overtaking is non-strict so a newer result with an equal grade
// replaces the incumbent. Intermediate records never carry grades
// worth tracking.
func trackBestGrade(result *model.Result, bestGrade map[gradeKey]*model.Result) {
	if result.IsIntermediate {
		return
	}
	key := gradeKey{result.SharedChartID, result.PlayerID}
	current := bestGrade[key]
	if current != nil && current.Grade.Rank() > result.Grade.Rank() {
		return
	}
	if current != nil {
		current.BestGradeOnChart = false
	}
	result.BestGradeOnChart = true
	bestGrade[key] = result
}

// Finalize runs the second pass: once all charts are built, derive
// each chart's maximum-score estimate from its highest-scoring result
// with known raw accuracy.
func (b *Builder) Finalize(ctx context.Context, out *Output) {
	for _, id := range out.ChartOrder {
		chart := out.Charts[id]
		bestScore := 0
		for _, r := range chart.Results {
			if r.AccuracyRaw != nil && *r.AccuracyRaw > 0 && bestScore < r.Score {
				chart.MaxScoreResult = r
				bestScore = r.Score
			}
		}
		if bestScore > 0 {
			chart.MaxScore = maxScoreEstimate(chart.MaxScoreResult)
		}
	}
}

// maxScoreEstimate extrapolates the score a 100% accuracy run implies,
// de-normalized for the rank-mode score bonus.
func maxScoreEstimate(r *model.Result) float64 {
	divisor := 1.0
	if r.IsRank {
		divisor = 1.2
	}
	return float64(r.Score) / *r.AccuracyRaw * 100 / divisor
}

func removeResult(chart *model.Chart, target *model.Result) {
	for i, r := range chart.Results {
		if r == target {
			chart.Results = append(chart.Results[:i], chart.Results[i+1:]...)
			return
		}
	}
}

func newChart(id string, raw model.RawSharedChart) *model.Chart {
	chartType, level := model.ParseChartLabel(raw.ChartLabel)
	return &model.Chart{
		SharedChartID: id,
		Song:          raw.TrackName,
		Label:         strings.ToUpper(raw.ChartLabel),
		Type:          chartType,
		Level:         level,
		Duration:      raw.Duration,
		MaxTotalSteps: raw.MaxTotalSteps,
	}
}

func (b *Builder) warn(ctx context.Context, msg, id string) {
	if b.logger != nil {
		b.logger.Warn(ctx, msg, logger.String("id", id))
	}
}
