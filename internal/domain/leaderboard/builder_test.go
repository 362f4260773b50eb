package leaderboard_test

import (
	"context"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/pumptrack/pumptrack/internal/domain/leaderboard"
	"github.com/pumptrack/pumptrack/internal/domain/model"
)

func intp(v int) *int { return &v }

func strp(v string) *string { return &v }

func fullResult(id, chart, player string, score int, grade string) model.RawResult {
	return model.RawResult{
		ID:               id,
		SharedChart:      chart,
		Player:           player,
		Perfects:         intp(score / 10000),
		Greats:           intp(0),
		Goods:            intp(0),
		Bads:             intp(0),
		Misses:           intp(0),
		Score:            score,
		Grade:            grade,
		Gained:           "2024-05-01 10:00:00",
		ExactGainDate:    true,
		RecognitionNotes: strp("personal_best"),
	}
}

func fixture(results ...model.RawResult) *model.RawData {
	return &model.RawData{
		Players: map[string]model.RawPlayer{
			"p1": {Nickname: "ACE", ArcadeName: "ACE"},
			"p2": {Nickname: "BOLT", ArcadeName: "BOLT"},
			"p3": {Nickname: "CRANE", ArcadeName: "CRANE"},
			"px": {Nickname: "PUMPITUP", ArcadeName: "PUMPITUP"},
		},
		SharedCharts: map[string]model.RawSharedChart{
			"c1": {TrackName: "Test Track", ChartLabel: "S20"},
			"c2": {TrackName: "Other Track", ChartLabel: "D24"},
		},
		Results: results,
	}
}

func TestBuildOrdering(t *testing.T) {
	convey.Convey("Given results from several players on one chart", t, func() {
		ctx := context.Background()
		out := leaderboard.New().Build(ctx, fixture(
			fullResult("r1", "c1", "p1", 600000, "A"),
			fullResult("r2", "c1", "p2", 800000, "S"),
			fullResult("r3", "c1", "p3", 700000, "A+"),
		))
		chart := out.Charts["c1"]

		convey.Convey("the leaderboard is descending by score", func() {
			convey.So(chart.Results, convey.ShouldHaveLength, 3)
			convey.So(chart.Results[0].PlayerID, convey.ShouldEqual, "p2")
			convey.So(chart.Results[1].PlayerID, convey.ShouldEqual, "p3")
			convey.So(chart.Results[2].PlayerID, convey.ShouldEqual, "p1")
		})

		convey.Convey("chart metadata is parsed from the label", func() {
			convey.So(chart.Song, convey.ShouldEqual, "Test Track")
			convey.So(chart.Type, convey.ShouldEqual, model.ChartSingle)
			convey.So(chart.Level, convey.ShouldEqual, 20)
		})

		convey.Convey("every insertion produced battles against earlier entries", func() {
			// r2 vs r1, then r3 vs both.
			convey.So(out.Battles, convey.ShouldHaveLength, 3)
		})
	})
}

func TestBuildBestPerPlayer(t *testing.T) {
	convey.Convey("Given repeated scores from the same player", t, func() {
		ctx := context.Background()

		convey.Convey("a better score replaces the previous entry", func() {
			out := leaderboard.New().Build(ctx, fixture(
				fullResult("r1", "c1", "p1", 600000, "A"),
				fullResult("r2", "c1", "p1", 650000, "A"),
			))
			chart := out.Charts["c1"]

			convey.So(chart.Results, convey.ShouldHaveLength, 1)
			convey.So(chart.Results[0].Score, convey.ShouldEqual, 650000)
			convey.So(chart.TotalResultsCount, convey.ShouldEqual, 2)
		})

		convey.Convey("an equal or worse score is ignored", func() {
			out := leaderboard.New().Build(ctx, fixture(
				fullResult("r1", "c1", "p1", 600000, "A"),
				fullResult("r2", "c1", "p1", 600000, "A"),
				fullResult("r3", "c1", "p1", 550000, "B"),
			))
			chart := out.Charts["c1"]

			convey.So(chart.Results, convey.ShouldHaveLength, 1)
			convey.So(chart.Results[0].ID, convey.ShouldEqual, "r1")
			convey.So(chart.TotalResultsCount, convey.ShouldEqual, 1)
		})

		convey.Convey("rank and normal mode keep separate entries", func() {
			rank := fullResult("r2", "c1", "p1", 700000, "A")
			rank.RankMode = true
			out := leaderboard.New().Build(ctx, fixture(
				fullResult("r1", "c1", "p1", 600000, "A"),
				rank,
			))
			chart := out.Charts["c1"]

			convey.So(chart.Results, convey.ShouldHaveLength, 2)
			convey.So(out.Battles, convey.ShouldBeEmpty)
		})
	})
}

func TestBuildUnknownPlayerPlacement(t *testing.T) {
	convey.Convey("Given machine scores without player attribution", t, func() {
		ctx := context.Background()

		convey.Convey("an unknown-player score below the top is dropped from the board", func() {
			out := leaderboard.New().Build(ctx, fixture(
				fullResult("r1", "c1", "p1", 900000, "S"),
				fullResult("r2", "c1", "px", 700000, "A"),
			))
			chart := out.Charts["c1"]

			convey.So(chart.Results, convey.ShouldHaveLength, 1)
			convey.So(chart.TotalResultsCount, convey.ShouldEqual, 2)
		})

		convey.Convey("an unknown-player top score holds the top spot", func() {
			out := leaderboard.New().Build(ctx, fixture(
				fullResult("r1", "c1", "p1", 700000, "A"),
				fullResult("r2", "c1", "px", 900000, "S"),
			))
			chart := out.Charts["c1"]

			convey.So(chart.Results, convey.ShouldHaveLength, 2)
			convey.So(chart.Results[0].IsUnknownPlayer, convey.ShouldBeTrue)
		})

		convey.Convey("unknown-player entries never produce battles", func() {
			out := leaderboard.New().Build(ctx, fixture(
				fullResult("r1", "c1", "px", 900000, "S"),
				fullResult("r2", "c1", "p1", 700000, "A"),
			))

			convey.So(out.Battles, convey.ShouldBeEmpty)
		})
	})
}

func TestBuildSkipsUnresolvable(t *testing.T) {
	convey.Convey("Given records referencing unknown directories", t, func() {
		ctx := context.Background()
		out := leaderboard.New().Build(ctx, fixture(
			fullResult("r1", "c1", "p1", 600000, "A"),
			fullResult("r2", "nope", "p1", 700000, "A"),
			fullResult("r3", "c1", "ghost", 800000, "A"),
		))

		convey.So(out.Skipped, convey.ShouldEqual, 2)
		convey.So(out.Results, convey.ShouldHaveLength, 1)
	})
}

func TestBuildBestGradeTracking(t *testing.T) {
	convey.Convey("Given several grades from one player on one chart", t, func() {
		ctx := context.Background()
		out := leaderboard.New().Build(ctx, fixture(
			fullResult("r1", "c1", "p1", 600000, "A"),
			fullResult("r2", "c1", "p1", 550000, "S"),
			fullResult("r3", "c1", "p1", 500000, "S"),
		))

		convey.Convey("the latest result with the best grade carries the marker", func() {
			var marked []string
			for _, r := range out.Results {
				if r.BestGradeOnChart {
					marked = append(marked, r.ID)
				}
			}
			convey.So(marked, convey.ShouldResemble, []string{"r3"})
		})
	})
}

func TestFinalizeMaxScore(t *testing.T) {
	convey.Convey("Given a built chart with known raw accuracy", t, func() {
		ctx := context.Background()
		builder := leaderboard.New()

		convey.Convey("a 100% run pins the estimate to its own score", func() {
			out := builder.Build(ctx, fixture(
				fullResult("r1", "c1", "p1", 900000, "SSS"),
			))
			builder.Finalize(ctx, out)

			convey.So(out.Charts["c1"].MaxScore, convey.ShouldEqual, 900000.0)
		})

		convey.Convey("a rank-mode run divides out the rank bonus", func() {
			rank := fullResult("r1", "c1", "p1", 1200000, "SSS")
			rank.RankMode = true
			out := builder.Build(ctx, fixture(rank))
			builder.Finalize(ctx, out)

			convey.So(out.Charts["c1"].MaxScore, convey.ShouldAlmostEqual, 1000000.0, 0.001)
		})

		convey.Convey("charts without any known accuracy keep no estimate", func() {
			raw := fullResult("r1", "c1", "p1", 900000, "A")
			raw.Perfects = nil
			out := builder.Build(ctx, fixture(raw))
			builder.Finalize(ctx, out)

			convey.So(out.Charts["c1"].MaxScore, convey.ShouldEqual, 0.0)
		})
	})
}
