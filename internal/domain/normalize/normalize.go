// Package normalize converts raw backend score records into the
// canonical result shape, repairing partially-missing judgment counts
// and deriving accuracy.
package normalize

import (
	"math"
	"strings"
	"time"

	"github.com/pumptrack/pumptrack/internal/domain/model"
)

// Accuracy formula weights. The smoothed variant substitutes
// sqrt(perfect)*10 for the raw perfect count, which dampens the
// dominance of perfects on long charts.
const (
	weightGreat = 60
	weightGood  = 30
	weightMiss  = -20
)

// Timestamp layouts accepted from the backend, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses a backend timestamp. Unparsable or empty input
// yields the zero time; callers treat that as epoch-zero for ordering.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Map converts one raw record into a canonical Result. It is pure:
// identifier resolution (player, chart) is the caller's concern, and
// data-quality gaps degrade fields instead of failing.
func Map(raw model.RawResult, player model.Player, chart *model.Chart) *model.Result {
	r := &model.Result{
		SharedChartID:   raw.SharedChart,
		PlayerID:        raw.Player,
		Nickname:        player.Nickname,
		ArcadeName:      player.ArcadeName,
		IsUnknownPlayer: player.ArcadeName == model.UnknownPlayerArcadeName,
		Date:            ParseDate(raw.Gained),
		IsExactDate:     raw.ExactGainDate,
		Score:           raw.Score,
		Grade:           model.Grade(raw.Grade),
		IsRank:          raw.RankMode,
	}

	if raw.RecognitionNotes == nil {
		// Short record, minimum info, only kept for rating battles.
		// A full record replaces it on the next recognition pass.
		r.IsIntermediate = true
		return r
	}

	r.ID = raw.ID
	r.Mods = raw.ModsList
	r.IsHJ = hasMod(raw.ModsList, "HJ")
	r.Combo = raw.MaxCombo
	if raw.Calories > 0 {
		r.Calories = float64(raw.Calories) / 1000
	}
	r.ScoreIncrease = raw.ScoreIncrease
	r.OriginalMix = raw.OriginalMix
	r.OriginalLabel = raw.OriginalLabel
	r.OriginalScore = raw.OriginalScore
	r.IsMachineBest = *raw.RecognitionNotes == "machine_best"
	r.IsMyBest = *raw.RecognitionNotes == "personal_best"

	r.Judge, r.JudgeKnown = repairJudge(raw, chart.MaxTotalSteps)

	if r.Grade == model.GradeUnknown && r.JudgeKnown {
		r.Grade = guessGrade(r.Judge)
	}

	if r.JudgeKnown {
		r.Accuracy, r.AccuracyRaw = accuracy(r.Judge)
	}

	return r
}

// repairJudge assembles the judgment set from the raw counts. If
// exactly one count is missing and the chart's maximum total steps is
// known, the gap is back-filled as maxTotalSteps minus the sum of the
// known counts. More than one missing count cannot be repaired.
func repairJudge(raw model.RawResult, maxTotalSteps int) (model.Judge, bool) {
	counts := []*int{raw.Perfects, raw.Greats, raw.Goods, raw.Bads, raw.Misses}
	missing := -1
	missingCount := 0
	knownSum := 0
	for i, c := range counts {
		if c == nil {
			missing = i
			missingCount++
		} else {
			knownSum += *c
		}
	}

	filled := make([]int, len(counts))
	for i, c := range counts {
		if c != nil {
			filled[i] = *c
		}
	}

	switch {
	case missingCount == 0:
	case missingCount == 1 && maxTotalSteps > 0:
		filled[missing] = maxTotalSteps - knownSum
	default:
		return model.Judge{}, false
	}

	return model.Judge{
		Perfect: filled[0],
		Great:   filled[1],
		Good:    filled[2],
		Bad:     filled[3],
		Miss:    filled[4],
	}, true
}

// guessGrade infers the grade for a result whose grade was not
// recognized. Only clean runs are decidable: no misses, bads or goods
// means SSS (all perfects) or SS (some greats).
func guessGrade(j model.Judge) model.Grade {
	if j.Miss == 0 && j.Bad == 0 && j.Good == 0 {
		if j.Great == 0 {
			return model.GradeSSS
		}
		return model.GradeSS
	}
	return model.GradeUnknown
}

// accuracy computes the smoothed and raw accuracy values from a fully
// known judgment set. A result with zero perfects has no derivable
// accuracy. The smoothed value is clamped to >= 0, and a raw value of
// exactly 100 forces the smoothed value to 100 so the approximation
// never beats a true perfect score.
func accuracy(j model.Judge) (smoothed, raw *float64) {
	if j.Perfect <= 0 {
		return nil, nil
	}

	perfectW := math.Sqrt(float64(j.Perfect)) * 10
	acc := weighted(perfectW, j)
	accRaw := weighted(float64(j.Perfect), j)

	if acc < 0 {
		acc = 0
	}
	if accRaw == 100 {
		acc = 100
	}
	return &acc, &accRaw
}

// weighted applies the judgment weight formula with the given perfect
// weight, floored to two decimal places.
func weighted(perfectW float64, j model.Judge) float64 {
	total := perfectW + float64(j.Great) + float64(j.Good) + float64(j.Bad) + float64(j.Miss)
	v := (perfectW*100 + float64(j.Great)*weightGreat + float64(j.Good)*weightGood + float64(j.Miss)*weightMiss) / total
	return math.Floor(v*100) / 100
}

func hasMod(mods, mod string) bool {
	for _, m := range strings.Fields(mods) {
		if m == mod {
			return true
		}
	}
	return false
}
