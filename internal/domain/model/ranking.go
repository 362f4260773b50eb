package model

// ChangeKind classifies how a player's ranking position moved relative
// to the persisted baseline snapshot.
type ChangeKind string

// Change classifications.
const (
	// ChangeNone means no baseline was available for comparison.
	ChangeNone ChangeKind = ""
	// ChangeNew means the player is absent from the baseline list.
	ChangeNew ChangeKind = "NEW"
	// ChangeUnknown marks a player present in the baseline but absent
	// from the current list. Should be unreachable.
	ChangeUnknown ChangeKind = "?"
	// ChangeMoved carries a signed place delta; positive = moved up.
	ChangeMoved ChangeKind = "MOVED"
)

// Change describes a player's movement against the baseline snapshot.
type Change struct {
	Kind   ChangeKind `json:"kind"`
	Places int        `json:"places,omitempty"`
}

// RankingEntry is the read-only projection of a Profile published in
// the competitive ranking. Players with fewer than 20 battles never
// appear here.
type RankingEntry struct {
	PlayerID   string `json:"player_id"`
	Name       string `json:"name"`
	NameArcade string `json:"name_arcade"`

	// Rating is rounded for display; RatingRaw orders the list.
	Rating    int     `json:"rating"`
	RatingRaw float64 `json:"rating_raw"`
	// PrevRating is the rating from the baseline snapshot, when known.
	PrevRating *int `json:"prev_rating,omitempty"`

	Count       int      `json:"count"`
	BattleCount int      `json:"battle_count"`
	Accuracy    *float64 `json:"accuracy,omitempty"`
	Exp         int      `json:"exp"`

	Change Change `json:"change"`
}

// SnapshotEntry is the persisted form of one ranking row, kept in the
// key-value store for cross-session comparison.
type SnapshotEntry struct {
	ID     string `json:"id"`
	Rating int    `json:"rating"`
}

// ScoreStats is the per-result rating audit exposed alongside
// processed profiles: the rating going into the result's last battle,
// the cumulative rating change the result produced, and the change
// from its most recent battle alone.
type ScoreStats struct {
	StartingRating float64 `json:"starting_rating"`
	RatingDiff     float64 `json:"rating_diff"`
	RatingDiffLast float64 `json:"rating_diff_last"`
}
