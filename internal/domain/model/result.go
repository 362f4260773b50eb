package model

import "time"

// Judge holds the five judgment counts of a result. Counts are only
// meaningful when the owning Result reports JudgeKnown.
type Judge struct {
	Perfect int `json:"perfect"`
	Great   int `json:"great"`
	Good    int `json:"good"`
	Bad     int `json:"bad"`
	Miss    int `json:"miss"`
}

// Sum returns the total judged note count.
func (j Judge) Sum() int {
	return j.Perfect + j.Great + j.Good + j.Bad + j.Miss
}

// Result is the canonical, normalized form of a RawResult. It is
// immutable once produced by the normalizer, except for the
// BestGradeOnChart marker which the leaderboard builder owns.
type Result struct {
	ID            string `json:"id,omitempty"`
	SharedChartID string `json:"shared_chart_id"`
	PlayerID      string `json:"player_id"`
	Nickname      string `json:"nickname"`
	ArcadeName    string `json:"arcade_name"`

	// IsUnknownPlayer marks scores the machine could not attribute to a
	// registered player (sentinel arcade name).
	IsUnknownPlayer bool `json:"is_unknown_player,omitempty"`
	// IsIntermediate marks short records carrying minimum info, kept
	// only so rating battles see them. A full record replaces them on
	// the next recognition pass.
	IsIntermediate bool `json:"is_intermediate,omitempty"`

	Date        time.Time `json:"date"`
	IsExactDate bool      `json:"is_exact_date"`
	Score       int       `json:"score"`
	Grade       Grade     `json:"grade"`
	IsRank      bool      `json:"is_rank"`

	Mods          string  `json:"mods,omitempty"`
	IsHJ          bool    `json:"is_hj,omitempty"`
	Combo         int     `json:"combo,omitempty"`
	Calories      float64 `json:"calories,omitempty"`
	ScoreIncrease int     `json:"score_increase,omitempty"`
	IsMachineBest bool    `json:"is_machine_best,omitempty"`
	IsMyBest      bool    `json:"is_my_best,omitempty"`

	OriginalMix   string `json:"original_mix,omitempty"`
	OriginalLabel string `json:"original_label,omitempty"`
	OriginalScore int    `json:"original_score,omitempty"`

	// Judge is the repaired judgment set; JudgeKnown reports whether
	// all five counts are known (possibly after back-fill).
	Judge      Judge `json:"judge"`
	JudgeKnown bool  `json:"judge_known"`

	// Accuracy is the smoothed 0-100 value used for display and
	// statistics; AccuracyRaw uses the literal perfect count and feeds
	// the maximum-score estimate. Nil means not derivable.
	Accuracy    *float64 `json:"accuracy,omitempty"`
	AccuracyRaw *float64 `json:"accuracy_raw,omitempty"`

	// BestGradeOnChart marks the player's best-graded result on this
	// chart. Maintained by the leaderboard builder.
	BestGradeOnChart bool `json:"best_grade_on_chart,omitempty"`
}
