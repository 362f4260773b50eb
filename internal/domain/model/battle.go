package model

import "time"

// Battle is a synthetic head-to-head comparison between two leaderboard
// entries on the same chart and rank-mode. The challenger is the result
// whose insertion produced the battle; the incumbent was already on the
// leaderboard. Battles are recomputed on every insertion and are never
// deduplicated.
type Battle struct {
	Challenger *Result
	Incumbent  *Result
	Chart      *Chart
}

// Date is the later of the two participants' timestamps; it orders the
// chronological replay. Missing timestamps sort as epoch zero.
func (b Battle) Date() time.Time {
	if b.Incumbent.Date.After(b.Challenger.Date) {
		return b.Incumbent.Date
	}
	return b.Challenger.Date
}

// IsRank reports the shared rank-mode flag of both participants.
func (b Battle) IsRank() bool {
	return b.Challenger.IsRank
}
