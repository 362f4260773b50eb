package model

import "time"

// ScoredChart pairs a result with the chart it was played on, for the
// per-grade and per-level collections on a profile.
type ScoredChart struct {
	Result *Result `json:"result"`
	Chart  *Chart  `json:"chart"`
}

// AchievementState is the fixed-shape state every achievement variant
// carries. Transition functions produce a new value; state is never
// mutated in place.
type AchievementState struct {
	Progress   int       `json:"progress"`
	Unlocked   bool      `json:"unlocked"`
	UnlockedAt time.Time `json:"unlocked_at,omitempty"`
}

// RatingTick is one sampled point of a player's rating trajectory.
type RatingTick struct {
	Rating float64   `json:"rating"`
	Date   time.Time `json:"date"`
}

// PlacementTick is one recorded change of a player's ranking place.
type PlacementTick struct {
	Place int       `json:"place"`
	Date  time.Time `json:"date"`
}

// Profile is the mutable per-player aggregate built from
// leaderboard-accepted results and refined by the rating engine. Each
// pipeline stage owns the profile map exclusively while it runs.
type Profile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	NameArcade string `json:"name_arcade"`

	Count         int     `json:"count"`
	BattleCount   int     `json:"battle_count"`
	AccuracyCount int     `json:"-"`
	AccuracySum   float64 `json:"-"`

	// Grades is the histogram over grade buckets ("+" stripped).
	Grades map[string]int `json:"grades"`

	// ResultsByGrade and ResultsByLevel index each best-grade-on-chart
	// result for distribution displays. Coop charts are excluded.
	ResultsByGrade map[Grade][]ScoredChart `json:"results_by_grade"`
	ResultsByLevel map[int][]ScoredChart   `json:"results_by_level"`

	Achievements map[string]AchievementState `json:"achievements"`
	Exp          int                         `json:"exp"`

	LastResultDate time.Time `json:"last_result_date"`

	// Rating engine state. Rating starts at 1000 plus the player's
	// stored bonus and is floored at 100 after every battle.
	Rating           float64         `json:"rating"`
	RatingHistory    []RatingTick    `json:"rating_history"`
	PlacementHistory []PlacementTick `json:"placement_history"`
	// LastPlace is the place after the player's most recent battle;
	// 0 means no battle yet.
	LastPlace int `json:"last_place,omitempty"`
}
