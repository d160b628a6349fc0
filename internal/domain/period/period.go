// Package period provides period selectors and pure period filtering over
// domain collections.
package period

import (
	"time"

	"github.com/fieldops/honorboard/internal/domain/model"
)

// Period selects records by month and year, and optionally by week.
// A zero Week means "all weeks of the month", which is how monthly and
// yearly rollups are expressed (valid weeks are 1-52).
type Period struct {
	Week  int `json:"week,omitempty"`
	Month int `json:"month"`
	Year  int `json:"year"`
}

// Matches reports whether a record keyed by (week, month, year) falls
// inside the period.
func (p Period) Matches(week, month, year int) bool {
	if month != p.Month || year != p.Year {
		return false
	}
	return p.Week == 0 || week == p.Week
}

// Current returns the period covering now: the ISO-8601 week number
// (Thursday-anchored, computed on the UTC-normalized date) with the
// calendar month and year.
func Current(now time.Time) Period {
	utc := now.UTC()
	_, week := utc.ISOWeek()
	return Period{
		Week:  week,
		Month: int(utc.Month()),
		Year:  utc.Year(),
	}
}

// FilterStats returns the stats falling inside the period, preserving the
// relative order of the input.
func FilterStats(stats []model.WeeklyStats, p Period) []model.WeeklyStats {
	var out []model.WeeklyStats
	for _, s := range stats {
		if p.Matches(s.Week, s.Month, s.Year) {
			out = append(out, s)
		}
	}
	return out
}

// FilterEvaluations returns the evaluations falling inside the period,
// preserving the relative order of the input.
func FilterEvaluations(evals []model.Evaluation, p Period) []model.Evaluation {
	var out []model.Evaluation
	for _, e := range evals {
		if p.Matches(e.Week, e.Month, e.Year) {
			out = append(out, e)
		}
	}
	return out
}
