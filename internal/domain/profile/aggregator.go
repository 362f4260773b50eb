// Package profile accumulates per-player statistics, achievement state
// and experience from leaderboard-accepted results.
package profile

import (
	"context"

	"github.com/pumptrack/pumptrack/internal/domain/leaderboard"
	"github.com/pumptrack/pumptrack/internal/domain/model"
)

// BaseRating is every player's rating before their stored bonus and
// any battles are applied.
const BaseRating = 1000.0

// Aggregator folds eligible results into player profiles. It owns the
// profile map exclusively until the map is handed to the rating engine.
type Aggregator struct {
	players      map[string]model.RawPlayer
	achievements []Achievement
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithAchievements overrides the default achievement registry.
func WithAchievements(reg []Achievement) Option {
	return func(a *Aggregator) {
		a.achievements = reg
	}
}

// New constructs an Aggregator over the given player directory.
func New(players map[string]model.RawPlayer, opts ...Option) *Aggregator {
	a := &Aggregator{
		players:      players,
		achievements: Registry(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate walks every chart leaderboard in deterministic order and
// builds the profile map. A profile comes into existence on a player's
// first non-unknown-player, non-intermediate result.
func (a *Aggregator) Aggregate(ctx context.Context, lb *leaderboard.Output) map[string]*model.Profile {
	profiles := make(map[string]*model.Profile)
	for _, chartID := range lb.ChartOrder {
		chart := lb.Charts[chartID]
		for _, result := range chart.Results {
			if result.IsUnknownPlayer || result.IsIntermediate {
				continue
			}
			p := profiles[result.PlayerID]
			if p == nil {
				p = a.initProfile(result)
				profiles[result.PlayerID] = p
			}
			a.fold(p, result, chart)
		}
	}
	return profiles
}

func (a *Aggregator) initProfile(result *model.Result) *model.Profile {
	bonus := a.players[result.PlayerID].RatingBonus
	p := &model.Profile{
		ID:         result.PlayerID,
		Name:       result.Nickname,
		NameArcade: result.ArcadeName,
		Grades: map[string]int{
			"F": 0, "D": 0, "C": 0, "B": 0, "A": 0, "S": 0, "SS": 0, "SSS": 0,
		},
		ResultsByGrade: make(map[model.Grade][]model.ScoredChart),
		ResultsByLevel: make(map[int][]model.ScoredChart),
		Achievements:   make(map[string]model.AchievementState, len(a.achievements)),
		LastResultDate: result.Date,
		Rating:         BaseRating + bonus,
	}
	for _, ach := range a.achievements {
		p.Achievements[ach.Name] = model.AchievementState{}
	}
	return p
}

// fold applies one eligible result to the profile: counters, grade
// histogram, best-grade collections, achievement transitions and
// experience, in that order.
func (a *Aggregator) fold(p *model.Profile, result *model.Result, chart *model.Chart) {
	p.Count++
	if result.Accuracy != nil {
		p.AccuracyCount++
		p.AccuracySum += *result.Accuracy
	}
	if result.Grade.IsKnown() {
		p.Grades[result.Grade.Bucket()]++
	}

	if chart.Type != model.ChartCoop && result.BestGradeOnChart {
		sc := model.ScoredChart{Result: result, Chart: chart}
		p.ResultsByGrade[result.Grade] = append(p.ResultsByGrade[result.Grade], sc)
		p.ResultsByLevel[chart.Level] = append(p.ResultsByLevel[chart.Level], sc)
	}

	if result.IsExactDate && p.LastResultDate.Before(result.Date) {
		p.LastResultDate = result.Date
	}

	for _, ach := range a.achievements {
		p.Achievements[ach.Name] = ach.Transition(result, chart, p.Achievements[ach.Name], p)
	}

	p.Exp += Experience(result, chart)
}
