package persistence_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	persistence "github.com/fieldops/honorboard/internal/adapters/persistence"
	"github.com/fieldops/honorboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func queryCount(db *sql.DB, table string) int {
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		panic(err)
	}
	return n
}

func TestSQLitePersister(t *testing.T) {
	Convey("Given a SQLite persister on a fresh file", t, func() {
		path := filepath.Join(t.TempDir(), "honorboard.db")
		p, err := persistence.OpenSQLite(path)
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("When applying upserts for every entity", func() {
			jobs := []persistence.Job{
				persistence.UpsertRegion(model.Region{ID: "r1", Name: "North"}),
				persistence.UpsertObserver(model.Observer{ID: "o1", Name: "Alia", RegionID: "r1", Status: model.ObserverActive}),
				persistence.UpsertStat(model.WeeklyStats{
					ID: "s1", ObserverID: "o1", Week: 10, Month: 3, Year: 2025,
					VisitsCount: 10, EnteredBy: "admin", EntryDate: time.Now(),
					Status: model.StatusPending,
				}),
				persistence.UpsertEvaluation(model.Evaluation{
					ID: "e1", ObserverID: "o1", Week: 10, Month: 3, Year: 2025,
					Grade: model.GradeExcellent, EvaluatedBy: "supervisor",
					EvaluationDate: time.Now(),
				}),
				persistence.UpsertImprovement(model.ImprovementItem{
					ID: "i1", ObserverID: "o1", Week: 10, Month: 3, Year: 2025,
					Reason: "violations", PlanStatus: model.PlanDraft, SubmittedBy: "admin",
				}),
			}
			for _, job := range jobs {
				So(p.Apply(ctx, job), ShouldBeNil)
			}
			So(p.Close(), ShouldBeNil)

			Convey("Then the rows are durable across a reopen", func() {
				db, err := sql.Open("sqlite", path)
				So(err, ShouldBeNil)
				defer db.Close()

				So(queryCount(db, "regions"), ShouldEqual, 1)
				So(queryCount(db, "observers"), ShouldEqual, 1)
				So(queryCount(db, "weekly_stats"), ShouldEqual, 1)
				So(queryCount(db, "evaluations"), ShouldEqual, 1)
				So(queryCount(db, "improvements"), ShouldEqual, 1)

				var name string
				So(db.QueryRow("SELECT name FROM observers WHERE id = ?", "o1").Scan(&name), ShouldBeNil)
				So(name, ShouldEqual, "Alia")
			})
		})

		Convey("When upserting the same id twice", func() {
			So(p.Apply(ctx, persistence.UpsertRegion(model.Region{ID: "r1", Name: "North"})), ShouldBeNil)
			So(p.Apply(ctx, persistence.UpsertRegion(model.Region{ID: "r1", Name: "North-East"})), ShouldBeNil)
			So(p.Close(), ShouldBeNil)

			Convey("Then the second write replaces the first", func() {
				db, err := sql.Open("sqlite", path)
				So(err, ShouldBeNil)
				defer db.Close()

				So(queryCount(db, "regions"), ShouldEqual, 1)
				var name string
				So(db.QueryRow("SELECT name FROM regions WHERE id = ?", "r1").Scan(&name), ShouldBeNil)
				So(name, ShouldEqual, "North-East")
			})
		})

		Convey("When deleting a stored row", func() {
			So(p.Apply(ctx, persistence.UpsertObserver(model.Observer{ID: "o1", Name: "Alia"})), ShouldBeNil)
			So(p.Apply(ctx, persistence.DeleteObserver("o1")), ShouldBeNil)
			So(p.Close(), ShouldBeNil)

			Convey("Then the row is gone", func() {
				db, err := sql.Open("sqlite", path)
				So(err, ShouldBeNil)
				defer db.Close()
				So(queryCount(db, "observers"), ShouldEqual, 0)
			})
		})

		Convey("When the job kind is unknown", func() {
			err := p.Apply(ctx, persistence.Job{Kind: "bogus", ID: "x"})
			So(p.Close(), ShouldBeNil)

			Convey("Then Apply reports it", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
