// Package model contains domain models passed between layers.
package model

// RawData is the full payload returned by the backend highscores endpoint.
// Fields mirror the backend JSON schema.
type RawData struct {
	Players      map[string]RawPlayer      `json:"players"`
	Results      []RawResult               `json:"results"`
	SharedCharts map[string]RawSharedChart `json:"shared_charts"`

	// Error carries a backend-reported failure; non-empty means the
	// payload must be discarded.
	Error string `json:"error,omitempty"`
}

// RawPlayer is a player directory record as supplied by the backend.
type RawPlayer struct {
	Nickname   string `json:"nickname"`
	ArcadeName string `json:"arcade_name"`
	Region     string `json:"region"`
	// RatingBonus shifts the player's initial rating away from the
	// default 1000. Absent for almost everyone.
	RatingBonus float64 `json:"rating_bonus,omitempty"`
}

// RawSharedChart describes a chart as supplied by the backend.
type RawSharedChart struct {
	TrackName     string `json:"track_name"`
	ChartLabel    string `json:"chart_label"`
	Duration      string `json:"duration"`
	MaxTotalSteps int    `json:"max_total_steps"`
}

// RawResult is a single score submission as supplied by the backend.
// Judgment counts are pointers: the recognizer may fail to read any of
// them off the screen, in which case the field is absent entirely.
type RawResult struct {
	ID          string `json:"id"`
	SharedChart string `json:"shared_chart"`
	Player      string `json:"player"`

	Perfects *int `json:"perfects,omitempty"`
	Greats   *int `json:"greats,omitempty"`
	Goods    *int `json:"goods,omitempty"`
	Bads     *int `json:"bads,omitempty"`
	Misses   *int `json:"misses,omitempty"`

	Score         int    `json:"score"`
	Grade         string `json:"grade"`
	Gained        string `json:"gained"`
	ExactGainDate bool   `json:"exact_gain_date"`
	RankMode      bool   `json:"rank_mode"`
	ModsList      string `json:"mods_list"`
	MaxCombo      int    `json:"max_combo"`
	Calories      int    `json:"calories"`
	ScoreIncrease int    `json:"score_increase"`

	OriginalMix   string `json:"original_mix"`
	OriginalLabel string `json:"original_label"`
	OriginalScore int    `json:"original_score"`

	// RecognitionNotes classifies how the score was captured
	// ("machine_best", "personal_best", ...). A missing value marks a
	// short, intermediate record carrying minimum info.
	RecognitionNotes *string `json:"recognition_notes,omitempty"`
}

// Player is the resolved directory entry used across the engine.
type Player struct {
	ID          string  `json:"id"`
	Nickname    string  `json:"nickname"`
	ArcadeName  string  `json:"arcade_name"`
	Region      string  `json:"region"`
	RatingBonus float64 `json:"rating_bonus,omitempty"`
}

// UnknownPlayerArcadeName is the sentinel arcade name the machine uses
// for scores it could not attribute to a registered player.
const UnknownPlayerArcadeName = "PUMPITUP"
