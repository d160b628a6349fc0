// Package scoring computes accumulated points from weekly statistics and
// evaluations.
//
// All count weights are positive: a recorded violation or warning rewards
// the observer's diligence in reporting it. This is not a penalty system
// and must not be reinterpreted as one.
package scoring

import (
	"github.com/fieldops/honorboard/internal/domain/model"
)

// Default scoring weights.
const (
	defaultVisitPoints     = 1
	defaultViolationPoints = 4
	defaultWarningPoints   = 3
)

// defaultGradePoints returns the base points awarded per evaluation grade.
func defaultGradePoints() map[model.Grade]int {
	return map[model.Grade]int{
		model.GradeExcellent:        10,
		model.GradeVeryGood:         8,
		model.GradeAcceptable:       5,
		model.GradeNeedsImprovement: 2,
		model.GradeNeutral:          0,
		model.GradeOnLeave:          0,
	}
}

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithCountWeights sets the points awarded per visit, violation and warning.
func WithCountWeights(visit, violation, warning int) Option {
	return func(c *Calculator) {
		c.visitPoints = visit
		c.violationPoints = violation
		c.warningPoints = warning
	}
}

// WithGradePoints overrides grade point values. Grades absent from the map
// keep their defaults.
func WithGradePoints(points map[model.Grade]int) Option {
	return func(c *Calculator) {
		for grade, pts := range points {
			c.gradePoints[grade] = pts
		}
	}
}

// Calculator maps an observer's period statistics and evaluations to a
// non-negative accumulated score. It is pure and safe for concurrent use.
type Calculator struct {
	visitPoints     int
	violationPoints int
	warningPoints   int
	gradePoints     map[model.Grade]int
}

// NewCalculator creates a Calculator with configuration options.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		visitPoints:     defaultVisitPoints,
		violationPoints: defaultViolationPoints,
		warningPoints:   defaultWarningPoints,
		gradePoints:     defaultGradePoints(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GradePoints returns the base points for a grade (0 for unknown grades).
func (c *Calculator) GradePoints(grade model.Grade) int {
	return c.gradePoints[grade]
}

// Points computes the observer's total score from the given period-scoped
// collections. Only approved, non-leave statistics contribute; every
// evaluation in the period contributes, regardless of how many there are.
// If any of the observer's period statistics is an on-leave record the
// score is 0, no matter what the other records hold. The result is clamped
// at 0 to keep the contract valid if weights are ever made negative.
func (c *Calculator) Points(observerID string, periodStats []model.WeeklyStats, periodEvals []model.Evaluation) int {
	points := 0
	for _, s := range periodStats {
		if s.ObserverID != observerID {
			continue
		}
		if s.IsOnLeave {
			return 0
		}
		if s.Status != model.StatusApproved {
			continue
		}
		points += s.VisitsCount * c.visitPoints
		points += s.ViolationsCount * c.violationPoints
		points += s.WarningsCount * c.warningPoints
	}
	for _, e := range periodEvals {
		if e.ObserverID != observerID {
			continue
		}
		points += c.gradePoints[e.Grade]
		points += e.SupervisorPoints
	}
	if points < 0 {
		return 0
	}
	return points
}
