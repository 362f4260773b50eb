// Package rating replays battles in chronological order and maintains
// live ratings, placement history and rating history per player.
package rating

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pumptrack/pumptrack/internal/domain/model"
	"github.com/pumptrack/pumptrack/internal/domain/profile"
	"github.com/pumptrack/pumptrack/pkg/logger"
)

// Tuned engine constants. The thresholds encode accepted
// score-recognition tolerances and must not be re-derived.
const (
	// RatingFloor is the hard minimum any rating can reach.
	RatingFloor = 100.0
	// MinRankedBattles is the sample size below which a player is
	// excluded from the published ranking.
	MinRankedBattles = 20

	expectedDivisor = 400.0
	rankModeBonus   = 1.2

	// K-factor shape: ratings are normalized over [700, 1500] and the
	// per-side cap grows from 30 to 50 across that span. The chart
	// level is compared against a pivot of 25.
	kRatingFloor = 700.0
	kRatingSpan  = 800.0
	kBase        = 30.0
	kBonus       = 20.0
	kLevelPivot  = 25.0

	// outcomeAmplify widens the margin-of-victory outcome beyond a
	// binary win/loss, centered at 0.5.
	outcomeAmplify = 5.0

	// historyMinGap bounds rating-history growth: a new sample is only
	// recorded when the previous one is more than this much older.
	historyMinGap = time.Hour
)

// Input is everything one replay needs. The engine takes ownership of
// the profile map for the duration of the replay.
type Input struct {
	Profiles map[string]*model.Profile
	// Players supplies rating bonuses for profiles created lazily when
	// a battle participant has no aggregated profile yet.
	Players map[string]model.RawPlayer
	Battles []model.Battle
	Debug   bool
}

// Output is the replay result: the processed profiles, the published
// ranking, the per-result rating audit, and the debug log text.
type Output struct {
	Profiles  map[string]*model.Profile
	Ranking   []model.RankingEntry
	ScoreInfo map[string]*model.ScoreStats
	LogText   string
}

// Engine computes rating updates. It is a pure batch transform: the
// same input replayed twice yields the identical output.
type Engine struct {
	logger logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New constructs an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Replay sorts battles by the later of the two participants'
// timestamps and applies them strictly in that order, so a player's
// rating going into a battle reflects only earlier battles. Bad input
// never fails the replay: a missing maximum score degrades to a binary
// outcome and missing timestamps order as epoch zero.
func (e *Engine) Replay(ctx context.Context, in Input) Output {
	battles := make([]model.Battle, len(in.Battles))
	copy(battles, in.Battles)
	sort.SliceStable(battles, func(i, j int) bool {
		return battles[i].Date().Before(battles[j].Date())
	})

	scoreInfo := make(map[string]*model.ScoreStats)
	var log strings.Builder

	for _, battle := range battles {
		e.applyBattle(in, battle, scoreInfo, &log)
	}

	out := Output{
		Profiles:  in.Profiles,
		Ranking:   publishRanking(in.Profiles),
		ScoreInfo: scoreInfo,
	}
	if in.Debug {
		out.LogText = log.String()
	}
	if e.logger != nil {
		e.logger.Debug(ctx, "battle replay finished",
			logger.Int("battles", len(battles)),
			logger.Int("ranked", len(out.Ranking)),
		)
	}
	return out
}

func (e *Engine) applyBattle(in Input, battle model.Battle, scoreInfo map[string]*model.ScoreStats, log *strings.Builder) {
	a, b := battle.Challenger, battle.Incumbent
	p1 := ensureProfile(in, a)
	p2 := ensureProfile(in, b)

	r1, r2 := p1.Rating, p2.Rating
	recordStart(scoreInfo, a, r1)
	recordStart(scoreInfo, b, r2)

	e1, e2 := expectedScores(r1, r2)
	maxScore := adjustedMaxScore(battle)
	s1, s2 := outcomeScores(a.Score, b.Score, maxScore)
	k := battleK(r1, r2, battle.Chart.Level)

	dr1 := k * (s1 - e1)
	dr2 := k * (s2 - e2)
	// A perfect-grade result may never itself cause a rating loss.
	if dr1 < 0 && a.Grade == model.GradeSSS {
		dr1 = 0
	}
	if dr2 < 0 && b.Grade == model.GradeSSS {
		dr2 = 0
	}

	recordDiff(scoreInfo, a, dr1)
	recordDiff(scoreInfo, b, dr2)

	if in.Debug {
		fmt.Fprintf(log, "%s - %s / %s - %s\n", battle.Chart.Label, a.Nickname, b.Nickname, battle.Chart.Song)
		fmt.Fprintf(log, "- %d / %d (%.0f) - S %.2f/%.2f E %.2f/%.2f\n", a.Score, b.Score, maxScore, s1, s2, e1, e2)
		fmt.Fprintf(log, "- Rating %.2f / %.2f - %.2f / %.2f - K %.2f\n", r1, r2, dr1, dr2, k)
	}

	p1.Rating = math.Max(RatingFloor, r1+dr1)
	p2.Rating = math.Max(RatingFloor, r2+dr2)
	p1.BattleCount++
	p2.BattleCount++

	battleDate := battle.Date()
	trackPlacement(in.Profiles, p1, p2, battleDate)
	sampleHistory(p1, battleDate)
	sampleHistory(p2, battleDate)
}

// expectedScores is the standard logistic pairing with divisor 400.
// E1 + E2 == 1 by construction.
func expectedScores(r1, r2 float64) (float64, float64) {
	q1 := math.Pow(10, r1/expectedDivisor)
	q2 := math.Pow(10, r2/expectedDivisor)
	e1 := q1 / (q1 + q2)
	return e1, 1 - e1
}

// adjustedMaxScore derives the maximum score the outcome model divides
// by. Starting from the chart estimate scaled for rank-mode, the value
// is widened by 20% when a non-rank battle with an inexact timestamp
// still exceeds it: a machine-reported best was likely not recognized
// as rank. If it still is not the largest value involved, the literal
// maximum score ever observed on the chart is used. Returns 0 when the
// chart has no estimate at all.
func adjustedMaxScore(battle model.Battle) float64 {
	if battle.Chart.MaxScore <= 0 {
		return 0
	}
	a, b := battle.Challenger, battle.Incumbent
	maxScore := battle.Chart.MaxScore
	if battle.IsRank() {
		maxScore *= rankModeBonus
	}
	if !covers(maxScore, a.Score, b.Score) && !battle.IsRank() && (!a.IsExactDate || !b.IsExactDate) {
		maxScore *= rankModeBonus
	}
	if !covers(maxScore, a.Score, b.Score) {
		maxScore = 0
		for _, r := range battle.Chart.Results {
			if float64(r.Score) > maxScore {
				maxScore = float64(r.Score)
			}
		}
	}
	return maxScore
}

func covers(maxScore float64, scoreA, scoreB int) bool {
	return maxScore >= float64(scoreA) && maxScore >= float64(scoreB)
}

// outcomeScores maps the two literal scores onto [0,1] outcomes that
// always sum to 1. With a valid maximum, each score becomes a deficit
// ratio max/score - 1 and the margin between the two deficits is
// amplified fivefold around 0.5. Without one, the outcome collapses to
// binary win/loss.
func outcomeScores(scoreA, scoreB int, maxScore float64) (float64, float64) {
	if scoreA == scoreB {
		return 0.5, 0.5
	}
	if maxScore > 0 && scoreA != 0 && scoreB != 0 {
		defA := maxScore/float64(scoreA) - 1
		defB := maxScore/float64(scoreB) - 1
		s1 := clamp01((defB/(defA+defB)-0.5)*outcomeAmplify + 0.5)
		s2 := clamp01((defA/(defA+defB)-0.5)*outcomeAmplify + 0.5)
		return s1, s2
	}
	if scoreA > scoreB {
		return 1, 0
	}
	return 0, 1
}

// battleK computes the dynamic K-factor. Each side gets a level-scaled
// K bounded by its rating-dependent cap; the battle uses the smaller of
// the two so the lower-rated side's sensitivity dominates.
func battleK(r1, r2 float64, level int) float64 {
	return math.Min(sideK(r1, level), sideK(r2, level))
}

func sideK(rating float64, level int) float64 {
	kRating := clamp01((rating - kRatingFloor) / kRatingSpan)
	maxK := kBase + kBonus*kRating
	k := math.Pow(float64(level)/kLevelPivot, (kRating-0.5)*5+2.5) * maxK
	return math.Max(1, math.Min(maxK, k))
}

// trackPlacement recomputes the full ranking order after a battle and
// appends a placement-history entry for each participant whose place
// moved, once they carry a meaningful battle sample.
func trackPlacement(profiles map[string]*model.Profile, p1, p2 *model.Profile, battleDate time.Time) {
	order := make([]*model.Profile, 0, len(profiles))
	for _, p := range profiles {
		order = append(order, p)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].Rating != order[j].Rating {
			return order[i].Rating > order[j].Rating
		}
		return order[i].ID < order[j].ID
	})
	for place, p := range order {
		if p == p1 {
			recordPlacement(p1, place+1, battleDate)
		}
		if p == p2 {
			recordPlacement(p2, place+1, battleDate)
		}
	}
}

func recordPlacement(p *model.Profile, place int, battleDate time.Time) {
	if (p.LastPlace != place && p.BattleCount > MinRankedBattles) ||
		(p.BattleCount == MinRankedBattles+1 && len(p.PlacementHistory) == 0) {
		p.PlacementHistory = append(p.PlacementHistory, model.PlacementTick{Place: place, Date: battleDate})
	}
	p.LastPlace = place
}

// sampleHistory appends a rating sample unless the previous one is
// less than an hour older than this battle.
func sampleHistory(p *model.Profile, battleDate time.Time) {
	if n := len(p.RatingHistory); n > 0 {
		last := p.RatingHistory[n-1]
		if !last.Date.Before(battleDate.Add(-historyMinGap)) {
			return
		}
	}
	p.RatingHistory = append(p.RatingHistory, model.RatingTick{Rating: p.Rating, Date: battleDate})
}

// ensureProfile creates a minimal profile for a battle participant the
// aggregator never saw (a player whose only records are intermediate).
func ensureProfile(in Input, r *model.Result) *model.Profile {
	if p, ok := in.Profiles[r.PlayerID]; ok {
		return p
	}
	p := &model.Profile{
		ID:         r.PlayerID,
		Name:       r.Nickname,
		NameArcade: r.ArcadeName,
		Grades: map[string]int{
			"F": 0, "D": 0, "C": 0, "B": 0, "A": 0, "S": 0, "SS": 0, "SSS": 0,
		},
		ResultsByGrade: make(map[model.Grade][]model.ScoredChart),
		ResultsByLevel: make(map[int][]model.ScoredChart),
		Achievements:   make(map[string]model.AchievementState),
		LastResultDate: r.Date,
		Rating:         profile.BaseRating + in.Players[r.PlayerID].RatingBonus,
	}
	in.Profiles[r.PlayerID] = p
	return p
}

func recordStart(scoreInfo map[string]*model.ScoreStats, r *model.Result, rating float64) {
	if r.ID == "" {
		return
	}
	stats := scoreInfo[r.ID]
	if stats == nil {
		stats = &model.ScoreStats{}
		scoreInfo[r.ID] = stats
	}
	stats.StartingRating = rating
}

func recordDiff(scoreInfo map[string]*model.ScoreStats, r *model.Result, dr float64) {
	if r.ID == "" {
		return
	}
	stats := scoreInfo[r.ID]
	if stats == nil {
		stats = &model.ScoreStats{}
		scoreInfo[r.ID] = stats
	}
	stats.RatingDiff += dr
	stats.RatingDiffLast = dr
}

// publishRanking projects profiles with a sufficient battle sample
// into the ranking, descending by raw rating.
func publishRanking(profiles map[string]*model.Profile) []model.RankingEntry {
	entries := make([]model.RankingEntry, 0, len(profiles))
	for _, p := range profiles {
		if p.BattleCount < MinRankedBattles {
			continue
		}
		entry := model.RankingEntry{
			PlayerID:    p.ID,
			Name:        p.Name,
			NameArcade:  p.NameArcade,
			Rating:      int(math.Round(p.Rating)),
			RatingRaw:   p.Rating,
			Count:       p.Count,
			BattleCount: p.BattleCount,
			Exp:         p.Exp,
		}
		if p.AccuracyCount > 0 {
			acc := math.Round(p.AccuracySum/float64(p.AccuracyCount)*100) / 100
			entry.Accuracy = &acc
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].RatingRaw != entries[j].RatingRaw {
			return entries[i].RatingRaw > entries[j].RatingRaw
		}
		return entries[i].PlayerID < entries[j].PlayerID
	})
	return entries
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
