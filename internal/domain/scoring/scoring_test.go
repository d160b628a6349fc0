package scoring_test

import (
	"testing"

	scoring "github.com/fieldops/honorboard/internal/domain/scoring"
	"github.com/fieldops/honorboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCalculator_Points(t *testing.T) {
	Convey("Given a calculator with default weights", t, func() {
		calc := scoring.NewCalculator()

		Convey("When an observer has one approved week and one evaluation", func() {
			stats := []model.WeeklyStats{
				{
					ObserverID:      "obs-1",
					Week:            10,
					Month:           3,
					Year:            2025,
					VisitsCount:     10,
					ViolationsCount: 1,
					WarningsCount:   0,
					Status:          model.StatusApproved,
				},
			}
			evals := []model.Evaluation{
				{
					ObserverID:       "obs-1",
					Week:             10,
					Month:            3,
					Year:             2025,
					Grade:            model.GradeExcellent,
					SupervisorPoints: 5,
				},
			}

			Convey("Then the counts, grade and supervisor points all add up", func() {
				// 10*1 + 1*4 + 0*3 + 10 + 5
				So(calc.Points("obs-1", stats, evals), ShouldEqual, 29)
			})

			Convey("And records of other observers are ignored", func() {
				So(calc.Points("obs-2", stats, evals), ShouldEqual, 0)
			})
		})

		Convey("When an observer has multiple evaluations in the period", func() {
			evals := []model.Evaluation{
				{ObserverID: "obs-1", Grade: model.GradeAcceptable, SupervisorPoints: 2},
				{ObserverID: "obs-1", Grade: model.GradeVeryGood, SupervisorPoints: 3},
			}

			Convey("Then every evaluation contributes to the total", func() {
				// 5+2 + 8+3
				So(calc.Points("obs-1", nil, evals), ShouldEqual, 18)
			})
		})

		Convey("When an observer has an on-leave record in the period", func() {
			stats := []model.WeeklyStats{
				{ObserverID: "obs-1", VisitsCount: 20, Status: model.StatusApproved},
				{ObserverID: "obs-1", IsOnLeave: true},
			}
			evals := []model.Evaluation{
				{ObserverID: "obs-1", Grade: model.GradeExcellent, SupervisorPoints: 10},
			}

			Convey("Then the score is zero regardless of other records", func() {
				So(calc.Points("obs-1", stats, evals), ShouldEqual, 0)
			})
		})

		Convey("When statistics are not approved", func() {
			stats := []model.WeeklyStats{
				{ObserverID: "obs-1", VisitsCount: 10, Status: model.StatusPending},
				{ObserverID: "obs-1", VisitsCount: 10, Status: model.StatusRejected},
				{ObserverID: "obs-1", VisitsCount: 3, Status: model.StatusApproved},
			}

			Convey("Then only the approved record contributes", func() {
				So(calc.Points("obs-1", stats, nil), ShouldEqual, 3)
			})
		})

		Convey("When the observer has no records at all", func() {
			Convey("Then the score is zero", func() {
				So(calc.Points("obs-1", nil, nil), ShouldEqual, 0)
			})
		})

		Convey("When grades are neutral or on-leave", func() {
			evals := []model.Evaluation{
				{ObserverID: "obs-1", Grade: model.GradeNeutral},
				{ObserverID: "obs-1", Grade: model.GradeOnLeave},
			}

			Convey("Then they contribute no base points", func() {
				So(calc.Points("obs-1", nil, evals), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a calculator with custom weights", t, func() {
		calc := scoring.NewCalculator(
			scoring.WithCountWeights(2, 5, 4),
			scoring.WithGradePoints(map[model.Grade]int{model.GradeExcellent: 20}),
		)

		Convey("When computing a score", func() {
			stats := []model.WeeklyStats{
				{ObserverID: "obs-1", VisitsCount: 3, ViolationsCount: 1, WarningsCount: 2, Status: model.StatusApproved},
			}
			evals := []model.Evaluation{
				{ObserverID: "obs-1", Grade: model.GradeExcellent},
				{ObserverID: "obs-1", Grade: model.GradeVeryGood},
			}

			Convey("Then the overrides apply and untouched grades keep defaults", func() {
				// 3*2 + 1*5 + 2*4 + 20 + 8
				So(calc.Points("obs-1", stats, evals), ShouldEqual, 47)
			})
		})

		Convey("When asking for grade base points directly", func() {
			So(calc.GradePoints(model.GradeExcellent), ShouldEqual, 20)
			So(calc.GradePoints(model.GradeAcceptable), ShouldEqual, 5)
			So(calc.GradePoints(model.Grade("bogus")), ShouldEqual, 0)
		})
	})

	Convey("Given a calculator with negative weights", t, func() {
		calc := scoring.NewCalculator(scoring.WithCountWeights(-10, 0, 0))

		Convey("When the weighted sum would go below zero", func() {
			stats := []model.WeeklyStats{
				{ObserverID: "obs-1", VisitsCount: 5, Status: model.StatusApproved},
			}

			Convey("Then the score is clamped at zero", func() {
				So(calc.Points("obs-1", stats, nil), ShouldEqual, 0)
			})
		})
	})
}
