package profile_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/pumptrack/pumptrack/internal/domain/leaderboard"
	"github.com/pumptrack/pumptrack/internal/domain/model"
	"github.com/pumptrack/pumptrack/internal/domain/profile"
)

func floatp(v float64) *float64 { return &v }

func chartWith(id, label string, level int, results ...*model.Result) *model.Chart {
	chartType, _ := model.ParseChartLabel(label)
	return &model.Chart{
		SharedChartID: id,
		Song:          "Track " + id,
		Label:         label,
		Type:          chartType,
		Level:         level,
		Results:       results,
	}
}

func playerResult(player string, grade model.Grade) *model.Result {
	return &model.Result{
		PlayerID:   player,
		Nickname:   "ACE",
		ArcadeName: "ACE",
		Grade:      grade,
		Score:      700000,
	}
}

func output(charts ...*model.Chart) *leaderboard.Output {
	out := &leaderboard.Output{Charts: make(map[string]*model.Chart)}
	for _, c := range charts {
		out.Charts[c.SharedChartID] = c
		out.ChartOrder = append(out.ChartOrder, c.SharedChartID)
	}
	return out
}

func TestAggregateCounts(t *testing.T) {
	convey.Convey("Given leaderboard results for one player", t, func() {
		ctx := context.Background()

		r1 := playerResult("p1", model.GradeAPlus)
		r1.Accuracy = floatp(95)
		r2 := playerResult("p1", model.GradeA)
		r2.Accuracy = floatp(85)
		r3 := playerResult("p1", model.GradeUnknown)

		agg := profile.New(map[string]model.RawPlayer{
			"p1": {Nickname: "ACE", ArcadeName: "ACE"},
		})
		profiles := agg.Aggregate(ctx, output(
			chartWith("c1", "S20", 20, r1),
			chartWith("c2", "S18", 18, r2),
			chartWith("c3", "S15", 15, r3),
		))

		convey.Convey("counters and the grade histogram accumulate", func() {
			p := profiles["p1"]
			convey.So(p, convey.ShouldNotBeNil)
			convey.So(p.Count, convey.ShouldEqual, 3)
			convey.So(p.Grades["A"], convey.ShouldEqual, 2)
			convey.So(p.Grades["S"], convey.ShouldEqual, 0)
		})

		convey.Convey("unrecognized grades stay out of the histogram", func() {
			p := profiles["p1"]
			total := 0
			for _, n := range p.Grades {
				total += n
			}
			convey.So(total, convey.ShouldEqual, 2)
		})

		convey.Convey("accuracy sums only over known values", func() {
			p := profiles["p1"]
			convey.So(p.AccuracyCount, convey.ShouldEqual, 2)
			convey.So(p.AccuracySum, convey.ShouldEqual, 180.0)
		})

		convey.Convey("the initial rating applies the stored bonus", func() {
			convey.So(profiles["p1"].Rating, convey.ShouldEqual, 1000.0)
		})
	})
}

func TestAggregateEligibility(t *testing.T) {
	convey.Convey("Given unknown-player and intermediate results", t, func() {
		ctx := context.Background()

		unknown := playerResult("px", model.GradeS)
		unknown.IsUnknownPlayer = true
		short := playerResult("p1", model.GradeA)
		short.IsIntermediate = true

		agg := profile.New(nil)
		profiles := agg.Aggregate(ctx, output(chartWith("c1", "S20", 20, unknown, short)))

		convey.So(profiles, convey.ShouldBeEmpty)
	})
}

func TestAggregateBestGradeCollections(t *testing.T) {
	convey.Convey("Given best-grade results across chart types", t, func() {
		ctx := context.Background()

		single := playerResult("p1", model.GradeS)
		single.BestGradeOnChart = true
		coop := playerResult("p1", model.GradeS)
		coop.BestGradeOnChart = true
		plain := playerResult("p1", model.GradeA)

		agg := profile.New(nil)
		profiles := agg.Aggregate(ctx, output(
			chartWith("c1", "S20", 20, single),
			chartWith("c2", "COOP4", 4, coop),
			chartWith("c3", "S10", 10, plain),
		))
		p := profiles["p1"]

		convey.Convey("only non-coop best-grade results are collected", func() {
			convey.So(p.ResultsByGrade[model.GradeS], convey.ShouldHaveLength, 1)
			convey.So(p.ResultsByLevel[20], convey.ShouldHaveLength, 1)
			convey.So(p.ResultsByLevel[4], convey.ShouldBeEmpty)
			convey.So(p.ResultsByLevel[10], convey.ShouldBeEmpty)
		})
	})
}

func TestAggregateExperience(t *testing.T) {
	convey.Convey("Given grades on a level 20 chart", t, func() {
		ctx := context.Background()

		convey.Convey("an S run earns level squared times the grade factor", func() {
			r := playerResult("p1", model.GradeS)
			profiles := profile.New(nil).Aggregate(ctx, output(chartWith("c1", "S20", 20, r)))
			convey.So(profiles["p1"].Exp, convey.ShouldEqual, 480) // 400 * 1.2
		})

		convey.Convey("rank mode multiplies the reward", func() {
			r := playerResult("p1", model.GradeS)
			r.IsRank = true
			profiles := profile.New(nil).Aggregate(ctx, output(chartWith("c1", "S20", 20, r)))
			convey.So(profiles["p1"].Exp, convey.ShouldEqual, 576) // 400 * 1.2 * 1.2
		})

		convey.Convey("an unrecognized grade falls back to the middle factor", func() {
			r := playerResult("p1", model.GradeUnknown)
			profiles := profile.New(nil).Aggregate(ctx, output(chartWith("c1", "S20", 20, r)))
			convey.So(profiles["p1"].Exp, convey.ShouldEqual, 200) // 400 * 0.5
		})
	})
}

func TestAggregateLastResultDate(t *testing.T) {
	convey.Convey("Given results with mixed date quality", t, func() {
		ctx := context.Background()

		exact := playerResult("p1", model.GradeA)
		exact.Date = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		exact.IsExactDate = true
		fuzzy := playerResult("p1", model.GradeA)
		fuzzy.Date = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

		profiles := profile.New(nil).Aggregate(ctx, output(
			chartWith("c1", "S20", 20, exact),
			chartWith("c2", "S18", 18, fuzzy),
		))

		convey.Convey("only exact dates advance the last-played marker", func() {
			convey.So(profiles["p1"].LastResultDate.Equal(exact.Date), convey.ShouldBeTrue)
		})
	})
}

func TestAggregateAchievements(t *testing.T) {
	convey.Convey("Given a stream of perfect-grade results", t, func() {
		ctx := context.Background()

		charts := make([]*model.Chart, 0, 12)
		for i := 0; i < 12; i++ {
			r := playerResult("p1", model.GradeSSS)
			r.Date = time.Date(2024, 5, 1+i, 10, 0, 0, 0, time.UTC)
			r.IsExactDate = true
			charts = append(charts, chartWith(fmt.Sprintf("c%d", i), "S20", 20, r))
		}

		convey.Convey("the twelfth unlocks the perfect-dozen achievement", func() {
			profiles := profile.New(nil).Aggregate(ctx, output(charts...))
			state := profiles["p1"].Achievements["perfect-dozen"]

			convey.So(state.Progress, convey.ShouldEqual, 12)
			convey.So(state.Unlocked, convey.ShouldBeTrue)
			convey.So(state.UnlockedAt.Day(), convey.ShouldEqual, 12)
		})

		convey.Convey("eleven is not enough", func() {
			profiles := profile.New(nil).Aggregate(ctx, output(charts[:11]...))
			state := profiles["p1"].Achievements["perfect-dozen"]

			convey.So(state.Progress, convey.ShouldEqual, 11)
			convey.So(state.Unlocked, convey.ShouldBeFalse)
		})

		convey.Convey("the marathon counter tracks every result", func() {
			profiles := profile.New(nil).Aggregate(ctx, output(charts...))
			state := profiles["p1"].Achievements["marathoner"]

			convey.So(state.Progress, convey.ShouldEqual, 12)
			convey.So(state.Unlocked, convey.ShouldBeFalse)
		})
	})
}
