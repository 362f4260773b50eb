package profile

import (
	"github.com/pumptrack/pumptrack/internal/domain/model"
)

// TransitionFunc advances one achievement's state for one eligible
// result. Transitions are pure: they return a new state value and
// never touch the profile.
type TransitionFunc func(result *model.Result, chart *model.Chart, prior model.AchievementState, p *model.Profile) model.AchievementState

// Achievement is one named variant in the closed registry.
type Achievement struct {
	Name       string
	Goal       int
	Transition TransitionFunc
}

// Registry returns the closed set of achievement variants. The
// aggregator threads every achievement through its transition for
// every eligible result, in result order.
func Registry() []Achievement {
	return []Achievement{
		{
			Name: "perfect-dozen",
			Goal: 12,
			Transition: func(r *model.Result, _ *model.Chart, prior model.AchievementState, _ *model.Profile) model.AchievementState {
				if r.Grade != model.GradeSSS {
					return prior
				}
				return advance(prior, prior.Progress+1, 12, r)
			},
		},
		{
			Name: "grade-collector",
			Goal: 50,
			Transition: func(r *model.Result, chart *model.Chart, prior model.AchievementState, _ *model.Profile) model.AchievementState {
				if !r.BestGradeOnChart || chart.Type == model.ChartCoop || r.Grade.Rank() < model.GradeS.Rank() {
					return prior
				}
				return advance(prior, prior.Progress+1, 50, r)
			},
		},
		{
			// Progress is the highest non-Coop level cleared with at
			// least an A grade.
			Name: "level-climber",
			Goal: 20,
			Transition: func(r *model.Result, chart *model.Chart, prior model.AchievementState, _ *model.Profile) model.AchievementState {
				if chart.Type == model.ChartCoop || r.Grade.Rank() < model.GradeA.Rank() || chart.Level <= prior.Progress {
					return prior
				}
				return advance(prior, chart.Level, 20, r)
			},
		},
		{
			Name: "marathoner",
			Goal: 500,
			Transition: func(r *model.Result, _ *model.Chart, prior model.AchievementState, _ *model.Profile) model.AchievementState {
				return advance(prior, prior.Progress+1, 500, r)
			},
		},
		{
			Name: "rank-devotee",
			Goal: 100,
			Transition: func(r *model.Result, _ *model.Chart, prior model.AchievementState, _ *model.Profile) model.AchievementState {
				if !r.IsRank {
					return prior
				}
				return advance(prior, prior.Progress+1, 100, r)
			},
		},
	}
}

// advance moves progress forward and latches the unlocked flag the
// first time the goal is reached. Unlocks never revert.
func advance(prior model.AchievementState, progress, goal int, r *model.Result) model.AchievementState {
	next := prior
	next.Progress = progress
	if !next.Unlocked && progress >= goal {
		next.Unlocked = true
		next.UnlockedAt = r.Date
	}
	return next
}
