package store_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/fieldops/honorboard/internal/domain/model"
	store "github.com/fieldops/honorboard/internal/store"
	. "github.com/smartystreets/goconvey/convey"
)

// newTestStore returns a store with a deterministic clock and sequential ids.
func newTestStore() *store.Store {
	seq := 0
	return store.New(
		store.WithClock(func() time.Time {
			return time.Date(2025, time.March, 5, 12, 0, 0, 0, time.UTC)
		}),
		store.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
	)
}

func ptr[T any](v T) *T { return &v }

func TestRegionsAndObservers(t *testing.T) {
	Convey("Given an empty store", t, func() {
		s := newTestStore()

		Convey("When creating a region", func() {
			region, err := s.AddRegion("North")

			Convey("Then it is stored with a fresh id", func() {
				So(err, ShouldBeNil)
				So(region.ID, ShouldEqual, "id-1")
				So(s.Regions(), ShouldHaveLength, 1)
			})
		})

		Convey("When creating a region with a blank name", func() {
			_, err := s.AddRegion("  ")

			Convey("Then it fails with ErrInvalidInput", func() {
				So(err, ShouldWrap, store.ErrInvalidInput)
			})
		})

		Convey("When creating an observer without a status", func() {
			observer, err := s.AddObserver(store.NewObserver{Name: "Alia", RegionID: "r1"})

			Convey("Then it defaults to active", func() {
				So(err, ShouldBeNil)
				So(observer.Status, ShouldEqual, model.ObserverActive)
			})
		})

		Convey("When patching an observer", func() {
			observer, err := s.AddObserver(store.NewObserver{Name: "Alia"})
			So(err, ShouldBeNil)

			status := model.ObserverOnLeave
			updated, err := s.UpdateObserver(observer.ID, store.ObserverPatch{
				Name:   ptr("Alia K."),
				Status: &status,
			})

			Convey("Then present fields change and absent fields stay", func() {
				So(err, ShouldBeNil)
				So(updated.Name, ShouldEqual, "Alia K.")
				So(updated.Status, ShouldEqual, model.ObserverOnLeave)
				So(updated.RegionID, ShouldEqual, "")
			})
		})

		Convey("When patching an unknown observer", func() {
			_, err := s.UpdateObserver("nope", store.ObserverPatch{})

			Convey("Then it fails with ErrNotFound", func() {
				So(err, ShouldWrap, store.ErrNotFound)
			})
		})

		Convey("When deleting an observer", func() {
			observer, err := s.AddObserver(store.NewObserver{Name: "Alia"})
			So(err, ShouldBeNil)

			Convey("Then the record disappears", func() {
				So(s.DeleteObserver(observer.ID), ShouldBeNil)
				So(s.Observers(), ShouldBeEmpty)
			})

			Convey("And deleting it twice fails with ErrNotFound", func() {
				So(s.DeleteObserver(observer.ID), ShouldBeNil)
				So(s.DeleteObserver(observer.ID), ShouldWrap, store.ErrNotFound)
			})
		})
	})
}

func TestAddStat(t *testing.T) {
	Convey("Given an empty store", t, func() {
		s := newTestStore()
		input := store.NewStat{
			ObserverID:      "obs-1",
			Week:            10,
			Month:           3,
			Year:            2025,
			VisitsCount:     10,
			ViolationsCount: 1,
			EnteredBy:       "admin",
		}

		Convey("When recording a weekly statistic", func() {
			stat, err := s.AddStat(input)

			Convey("Then it is created pending with the clock's timestamp", func() {
				So(err, ShouldBeNil)
				So(stat.Status, ShouldEqual, model.StatusPending)
				So(stat.EntryDate.Year(), ShouldEqual, 2025)
			})

			Convey("And a second record for the same observer and week is rejected", func() {
				_, err := s.AddStat(input)
				So(err, ShouldWrap, store.ErrDuplicateRecord)
				So(s.Stats(), ShouldHaveLength, 1)
			})

			Convey("And a different week for the same observer is fine", func() {
				week11 := input
				week11.Week = 11
				_, err := s.AddStat(week11)
				So(err, ShouldBeNil)
			})
		})

		Convey("When counts are negative", func() {
			bad := input
			bad.WarningsCount = -1
			_, err := s.AddStat(bad)

			Convey("Then it fails with ErrInvalidInput", func() {
				So(err, ShouldWrap, store.ErrInvalidInput)
			})
		})

		Convey("When violations exceed visits", func() {
			bad := input
			bad.ViolationsCount = 11
			_, err := s.AddStat(bad)

			Convey("Then it fails with ErrInvalidInput", func() {
				So(err, ShouldWrap, store.ErrInvalidInput)
			})
		})

		Convey("When warnings exceed visits", func() {
			bad := input
			bad.WarningsCount = 11
			_, err := s.AddStat(bad)

			Convey("Then it fails with ErrInvalidInput", func() {
				So(err, ShouldWrap, store.ErrInvalidInput)
			})
		})

		Convey("When the record is an on-leave week", func() {
			leave := input
			leave.IsOnLeave = true
			leave.VisitsCount = 5
			leave.ViolationsCount = 9
			leave.WarningsCount = 9

			stat, err := s.AddStat(leave)

			Convey("Then the ratio checks are skipped and counts are zeroed", func() {
				So(err, ShouldBeNil)
				So(stat.IsOnLeave, ShouldBeTrue)
				So(stat.VisitsCount, ShouldEqual, 0)
				So(stat.ViolationsCount, ShouldEqual, 0)
				So(stat.WarningsCount, ShouldEqual, 0)
			})
		})
	})
}

func TestUpdateAndDeleteStat(t *testing.T) {
	Convey("Given a store with one statistic", t, func() {
		s := newTestStore()
		stat, err := s.AddStat(store.NewStat{
			ObserverID: "obs-1", Week: 10, Month: 3, Year: 2025,
			VisitsCount: 5, EnteredBy: "admin",
		})
		So(err, ShouldBeNil)

		Convey("When patching the counts", func() {
			updated, err := s.UpdateStat(stat.ID, store.StatPatch{
				VisitsCount:   ptr(7),
				WarningsCount: ptr(2),
			})

			Convey("Then present fields change and the rest stay", func() {
				So(err, ShouldBeNil)
				So(updated.VisitsCount, ShouldEqual, 7)
				So(updated.WarningsCount, ShouldEqual, 2)
				So(updated.ViolationsCount, ShouldEqual, 0)
				So(updated.Status, ShouldEqual, model.StatusPending)
			})
		})

		Convey("When walking the approval lifecycle", func() {
			for _, status := range []model.ApprovalStatus{
				model.StatusApproved,
				model.StatusReturned,
				model.StatusPending,
				model.StatusRejected,
			} {
				updated, err := s.UpdateStat(stat.ID, store.StatPatch{Status: &status})
				So(err, ShouldBeNil)
				So(updated.Status, ShouldEqual, status)
			}
		})

		Convey("When patching an unknown id", func() {
			_, err := s.UpdateStat("nope", store.StatPatch{})

			Convey("Then it fails with ErrNotFound", func() {
				So(err, ShouldWrap, store.ErrNotFound)
			})
		})

		Convey("When deleting the statistic", func() {
			So(s.DeleteStat(stat.ID), ShouldBeNil)

			Convey("Then the key is free for a new record", func() {
				_, err := s.AddStat(store.NewStat{
					ObserverID: "obs-1", Week: 10, Month: 3, Year: 2025,
					VisitsCount: 1, EnteredBy: "admin",
				})
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestEvaluationEditHistory(t *testing.T) {
	Convey("Given a store with one evaluation", t, func() {
		s := newTestStore()
		eval, err := s.AddEvaluation(store.NewEvaluation{
			ObserverID:       "obs-1",
			Week:             10,
			Month:            3,
			Year:             2025,
			Grade:            model.GradeAcceptable,
			SupervisorPoints: 4,
			EvaluatedBy:      "supervisor",
		})
		So(err, ShouldBeNil)
		So(eval.IsEdited, ShouldBeFalse)
		So(eval.EditHistory, ShouldBeEmpty)

		Convey("When editing without a reason", func() {
			_, err := s.EditEvaluation(eval.ID, store.EvaluationPatch{
				Grade: ptr(model.GradeExcellent),
			}, "   ", "supervisor")

			Convey("Then it fails with ErrMissingReason and nothing changes", func() {
				So(err, ShouldWrap, store.ErrMissingReason)
				got, err := s.Evaluation(eval.ID)
				So(err, ShouldBeNil)
				So(got.Grade, ShouldEqual, model.GradeAcceptable)
				So(got.IsEdited, ShouldBeFalse)
			})
		})

		Convey("When editing the grade with a reason", func() {
			updated, err := s.EditEvaluation(eval.ID, store.EvaluationPatch{
				Grade: ptr(model.GradeExcellent),
			}, "re-checked the field reports", "supervisor")

			Convey("Then the patch applies and a history record is appended", func() {
				So(err, ShouldBeNil)
				So(updated.Grade, ShouldEqual, model.GradeExcellent)
				So(updated.IsEdited, ShouldBeTrue)
				So(updated.EditHistory, ShouldHaveLength, 1)

				record := updated.EditHistory[0]
				So(record.OldGrade, ShouldEqual, model.GradeAcceptable)
				So(record.NewGrade, ShouldEqual, model.GradeExcellent)
				So(record.Reason, ShouldEqual, "re-checked the field reports")
				So(record.EditedBy, ShouldEqual, "supervisor")
			})

			Convey("And fields absent from the patch fall back to their old values", func() {
				record := updated.EditHistory[0]
				So(record.OldPoints, ShouldEqual, 4)
				So(record.NewPoints, ShouldEqual, 4)
				So(updated.SupervisorPoints, ShouldEqual, 4)
			})
		})

		Convey("When editing several times", func() {
			_, err := s.EditEvaluation(eval.ID, store.EvaluationPatch{
				Grade: ptr(model.GradeVeryGood),
			}, "first pass", "a")
			So(err, ShouldBeNil)
			_, err = s.EditEvaluation(eval.ID, store.EvaluationPatch{
				SupervisorPoints: ptr(9),
			}, "second pass", "b")
			So(err, ShouldBeNil)
			updated, err := s.EditEvaluation(eval.ID, store.EvaluationPatch{
				Grade:            ptr(model.GradeExcellent),
				SupervisorPoints: ptr(10),
			}, "third pass", "c")
			So(err, ShouldBeNil)

			Convey("Then the history chains old and new values in order", func() {
				So(updated.EditHistory, ShouldHaveLength, 3)

				So(updated.EditHistory[0].OldGrade, ShouldEqual, model.GradeAcceptable)
				So(updated.EditHistory[0].NewGrade, ShouldEqual, model.GradeVeryGood)

				So(updated.EditHistory[1].OldGrade, ShouldEqual, model.GradeVeryGood)
				So(updated.EditHistory[1].NewGrade, ShouldEqual, model.GradeVeryGood)
				So(updated.EditHistory[1].OldPoints, ShouldEqual, 4)
				So(updated.EditHistory[1].NewPoints, ShouldEqual, 9)

				So(updated.EditHistory[2].OldGrade, ShouldEqual, model.GradeVeryGood)
				So(updated.EditHistory[2].NewGrade, ShouldEqual, model.GradeExcellent)
				So(updated.EditHistory[2].OldPoints, ShouldEqual, 9)
				So(updated.EditHistory[2].NewPoints, ShouldEqual, 10)
			})

			Convey("And the final values match the last edit", func() {
				So(updated.Grade, ShouldEqual, model.GradeExcellent)
				So(updated.SupervisorPoints, ShouldEqual, 10)
			})
		})

		Convey("When editing an unknown evaluation", func() {
			_, err := s.EditEvaluation("nope", store.EvaluationPatch{}, "reason", "x")

			Convey("Then it fails with ErrNotFound", func() {
				So(err, ShouldWrap, store.ErrNotFound)
			})
		})

		Convey("When mutating a returned snapshot", func() {
			_, err := s.EditEvaluation(eval.ID, store.EvaluationPatch{
				Grade: ptr(model.GradeExcellent),
			}, "reason", "x")
			So(err, ShouldBeNil)

			snapshot := s.Evaluations()
			snapshot[0].EditHistory[0].Reason = "tampered"

			Convey("Then the stored history is unaffected", func() {
				got, err := s.Evaluation(eval.ID)
				So(err, ShouldBeNil)
				So(got.EditHistory[0].Reason, ShouldEqual, "reason")
			})
		})

		Convey("When two evaluations share the observer and period", func() {
			_, err := s.AddEvaluation(store.NewEvaluation{
				ObserverID: "obs-1", Week: 10, Month: 3, Year: 2025,
				Grade: model.GradeVeryGood, EvaluatedBy: "supervisor",
			})

			Convey("Then both are kept", func() {
				So(err, ShouldBeNil)
				So(s.Evaluations(), ShouldHaveLength, 2)
			})
		})

		Convey("When deleting the evaluation", func() {
			So(s.DeleteEvaluation(eval.ID), ShouldBeNil)
			So(s.DeleteEvaluation(eval.ID), ShouldWrap, store.ErrNotFound)
		})
	})
}

func TestImprovements(t *testing.T) {
	Convey("Given an empty store", t, func() {
		s := newTestStore()

		Convey("When creating an improvement item", func() {
			item, err := s.AddImprovement(store.NewImprovement{
				ObserverID:  "obs-1",
				Week:        10,
				Month:       3,
				Year:        2025,
				Reason:      "violations crossed the threshold",
				SubmittedBy: "admin",
			})

			Convey("Then it starts as a draft without a plan", func() {
				So(err, ShouldBeNil)
				So(item.PlanStatus, ShouldEqual, model.PlanDraft)
				So(item.Plan, ShouldBeEmpty)
				So(item.SubmissionDate.IsZero(), ShouldBeTrue)
			})

			Convey("And submitting the plan moves it to submitted", func() {
				updated, err := s.SubmitImprovementPlan(item.ID, "weekly coaching sessions")
				So(err, ShouldBeNil)
				So(updated.PlanStatus, ShouldEqual, model.PlanSubmitted)
				So(updated.Plan, ShouldEqual, "weekly coaching sessions")
				So(updated.SubmissionDate.IsZero(), ShouldBeFalse)
			})

			Convey("And submitting an empty plan is rejected", func() {
				_, err := s.SubmitImprovementPlan(item.ID, " ")
				So(err, ShouldWrap, store.ErrInvalidInput)
			})
		})

		Convey("When the reason is blank", func() {
			_, err := s.AddImprovement(store.NewImprovement{ObserverID: "obs-1"})

			Convey("Then it fails with ErrInvalidInput", func() {
				So(err, ShouldWrap, store.ErrInvalidInput)
			})
		})

		Convey("When submitting a plan for an unknown item", func() {
			_, err := s.SubmitImprovementPlan("nope", "plan")

			Convey("Then it fails with ErrNotFound", func() {
				So(err, ShouldWrap, store.ErrNotFound)
			})
		})
	})
}
