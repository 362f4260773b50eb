package profile

import (
	"math"

	"github.com/pumptrack/pumptrack/internal/domain/model"
)

// rankModeBonus mirrors the rank-mode score multiplier.
const rankModeBonus = 1.2

var gradeExpFactor = map[model.Grade]float64{
	model.GradeSSS:   1.5,
	model.GradeSS:    1.35,
	model.GradeS:     1.2,
	model.GradeAPlus: 1.1,
	model.GradeA:     1.0,
	model.GradeBPlus: 0.8,
	model.GradeB:     0.8,
	model.GradeCPlus: 0.6,
	model.GradeC:     0.6,
	model.GradeDPlus: 0.4,
	model.GradeD:     0.4,
	model.GradeF:     0.25,
}

// Experience is a pure function of (result, chart): the square of the
// chart level scaled by grade and the rank-mode bonus. Nothing else
// affects it, so experience totals are reproducible from the result
// stream alone.
func Experience(result *model.Result, chart *model.Chart) int {
	factor, ok := gradeExpFactor[result.Grade]
	if !ok {
		factor = 0.5
	}
	exp := float64(chart.Level*chart.Level) * factor
	if result.IsRank {
		exp *= rankModeBonus
	}
	return int(math.Floor(exp))
}
