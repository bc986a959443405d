package model_test

import (
	"testing"

	"github.com/okian/calcutta/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestPayoutSchedule(t *testing.T) {
	convey.Convey("Given a payout schedule with a gap and a negative amount", t, func() {
		p := model.PayoutSchedule{1: 500, 3: 100, 4: -50}

		convey.Convey("When reading single positions", func() {
			convey.Convey("Then missing and negative positions should be zero", func() {
				convey.So(p.At(1), convey.ShouldEqual, 500)
				convey.So(p.At(2), convey.ShouldEqual, 0)
				convey.So(p.At(4), convey.ShouldEqual, 0)
				convey.So(p.At(0), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When totalling the first n positions", func() {
			convey.Convey("Then only positions 1..n should count", func() {
				convey.So(p.Total(0), convey.ShouldEqual, 0)
				convey.So(p.Total(2), convey.ShouldEqual, 500)
				convey.So(p.Total(10), convey.ShouldEqual, 600)
			})
		})

		convey.Convey("When the schedule is nil", func() {
			var empty model.PayoutSchedule

			convey.Convey("Then every lookup should be zero", func() {
				convey.So(empty.At(1), convey.ShouldEqual, 0)
				convey.So(empty.Total(5), convey.ShouldEqual, 0)
			})
		})
	})
}

func TestTeamProgress(t *testing.T) {
	convey.Convey("Given a team with wins and byes", t, func() {
		team := model.Team{ID: "duke", Wins: 2, Byes: 1}

		convey.Convey("Then progress should count both", func() {
			convey.So(team.Progress(), convey.ShouldEqual, 3)
		})
	})

	convey.Convey("Given a team with corrupt negative counts", t, func() {
		team := model.Team{ID: "duke", Wins: -2, Byes: 1}

		convey.Convey("Then negative counts should contribute nothing", func() {
			convey.So(team.Progress(), convey.ShouldEqual, 1)
			convey.So(model.Team{Wins: 3, Byes: -4}.Progress(), convey.ShouldEqual, 3)
		})
	})
}
