package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure-Go sqlite driver

	"github.com/fieldops/honorboard/internal/domain/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS regions (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS observers (
	id        TEXT PRIMARY KEY,
	name      TEXT NOT NULL,
	region_id TEXT NOT NULL,
	status    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS weekly_stats (
	id               TEXT PRIMARY KEY,
	observer_id      TEXT NOT NULL,
	week             INTEGER NOT NULL,
	month            INTEGER NOT NULL,
	year             INTEGER NOT NULL,
	visits_count     INTEGER NOT NULL,
	violations_count INTEGER NOT NULL,
	warnings_count   INTEGER NOT NULL,
	notes            TEXT NOT NULL,
	entered_by       TEXT NOT NULL,
	entry_date       TEXT NOT NULL,
	status           TEXT NOT NULL,
	is_on_leave      INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS evaluations (
	id                TEXT PRIMARY KEY,
	observer_id       TEXT NOT NULL,
	week              INTEGER NOT NULL,
	month             INTEGER NOT NULL,
	year              INTEGER NOT NULL,
	grade             TEXT NOT NULL,
	supervisor_points INTEGER NOT NULL,
	notes             TEXT NOT NULL,
	evaluated_by      TEXT NOT NULL,
	evaluation_date   TEXT NOT NULL,
	is_edited         INTEGER NOT NULL,
	edit_history      TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS improvements (
	id              TEXT PRIMARY KEY,
	observer_id     TEXT NOT NULL,
	week            INTEGER NOT NULL,
	month           INTEGER NOT NULL,
	year            INTEGER NOT NULL,
	reason          TEXT NOT NULL,
	plan            TEXT NOT NULL,
	plan_status     TEXT NOT NULL,
	submitted_by    TEXT NOT NULL,
	submission_date TEXT NOT NULL
);
`

// SQLite is a Persister backed by a local SQLite database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and ensures the
// schema exists.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// The write-behind pipeline is the only writer; a single connection
	// avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close sqlite: %w", err)
	}
	return nil
}

// Apply executes a single durable-write job.
func (s *SQLite) Apply(ctx context.Context, job Job) error {
	switch job.Kind {
	case KindUpsertRegion:
		return s.upsertRegion(ctx, *job.Region)
	case KindUpsertObserver:
		return s.upsertObserver(ctx, *job.Observer)
	case KindDeleteObserver:
		return s.deleteRow(ctx, "observers", job.ID)
	case KindUpsertStat:
		return s.upsertStat(ctx, *job.Stat)
	case KindDeleteStat:
		return s.deleteRow(ctx, "weekly_stats", job.ID)
	case KindUpsertEvaluation:
		return s.upsertEvaluation(ctx, *job.Evaluation)
	case KindDeleteEvaluation:
		return s.deleteRow(ctx, "evaluations", job.ID)
	case KindUpsertImprovement:
		return s.upsertImprovement(ctx, *job.Improvement)
	default:
		return fmt.Errorf("unknown job kind %q", job.Kind)
	}
}

func (s *SQLite) upsertRegion(ctx context.Context, r model.Region) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO regions (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		r.ID, r.Name)
	if err != nil {
		return fmt.Errorf("upsert region %s: %w", r.ID, err)
	}
	return nil
}

func (s *SQLite) upsertObserver(ctx context.Context, o model.Observer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO observers (id, name, region_id, status) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			region_id = excluded.region_id,
			status = excluded.status`,
		o.ID, o.Name, o.RegionID, string(o.Status))
	if err != nil {
		return fmt.Errorf("upsert observer %s: %w", o.ID, err)
	}
	return nil
}

func (s *SQLite) upsertStat(ctx context.Context, st model.WeeklyStats) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO weekly_stats
			(id, observer_id, week, month, year, visits_count, violations_count,
			 warnings_count, notes, entered_by, entry_date, status, is_on_leave)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			visits_count = excluded.visits_count,
			violations_count = excluded.violations_count,
			warnings_count = excluded.warnings_count,
			notes = excluded.notes,
			status = excluded.status,
			is_on_leave = excluded.is_on_leave`,
		st.ID, st.ObserverID, st.Week, st.Month, st.Year,
		st.VisitsCount, st.ViolationsCount, st.WarningsCount,
		st.Notes, st.EnteredBy, st.EntryDate.UTC().Format(time.RFC3339),
		string(st.Status), boolToInt(st.IsOnLeave))
	if err != nil {
		return fmt.Errorf("upsert stat %s: %w", st.ID, err)
	}
	return nil
}

func (s *SQLite) upsertEvaluation(ctx context.Context, e model.Evaluation) error {
	history, err := json.Marshal(e.EditHistory)
	if err != nil {
		return fmt.Errorf("marshal edit history for %s: %w", e.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO evaluations
			(id, observer_id, week, month, year, grade, supervisor_points,
			 notes, evaluated_by, evaluation_date, is_edited, edit_history)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			grade = excluded.grade,
			supervisor_points = excluded.supervisor_points,
			notes = excluded.notes,
			is_edited = excluded.is_edited,
			edit_history = excluded.edit_history`,
		e.ID, e.ObserverID, e.Week, e.Month, e.Year,
		string(e.Grade), e.SupervisorPoints, e.Notes, e.EvaluatedBy,
		e.EvaluationDate.UTC().Format(time.RFC3339),
		boolToInt(e.IsEdited), string(history))
	if err != nil {
		return fmt.Errorf("upsert evaluation %s: %w", e.ID, err)
	}
	return nil
}

func (s *SQLite) upsertImprovement(ctx context.Context, it model.ImprovementItem) error {
	submitted := ""
	if !it.SubmissionDate.IsZero() {
		submitted = it.SubmissionDate.UTC().Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO improvements
			(id, observer_id, week, month, year, reason, plan, plan_status,
			 submitted_by, submission_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			reason = excluded.reason,
			plan = excluded.plan,
			plan_status = excluded.plan_status,
			submission_date = excluded.submission_date`,
		it.ID, it.ObserverID, it.Week, it.Month, it.Year,
		it.Reason, it.Plan, string(it.PlanStatus), it.SubmittedBy, submitted)
	if err != nil {
		return fmt.Errorf("upsert improvement %s: %w", it.ID, err)
	}
	return nil
}

func (s *SQLite) deleteRow(ctx context.Context, table, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete from %s %s: %w", table, id, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
