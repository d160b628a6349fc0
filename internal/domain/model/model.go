// Package model contains domain entities passed between layers.
package model

import "time"

// ObserverStatus describes whether an observer is on active duty.
type ObserverStatus string

// Observer statuses.
const (
	ObserverActive  ObserverStatus = "active"
	ObserverOnLeave ObserverStatus = "on_leave"
)

// ApprovalStatus is the review state of a weekly statistic.
type ApprovalStatus string

// Approval workflow states. A returned record goes back to pending when the
// entering staff member edits and resubmits it.
const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
	StatusReturned ApprovalStatus = "returned"
)

// Grade is a supervisor-assigned qualitative evaluation grade.
type Grade string

// Evaluation grades.
const (
	GradeExcellent        Grade = "excellent"
	GradeVeryGood         Grade = "very_good"
	GradeAcceptable       Grade = "acceptable"
	GradeNeedsImprovement Grade = "needs_improvement"
	GradeNeutral          Grade = "neutral"
	GradeOnLeave          Grade = "on_leave"
)

// PlanStatus is the lifecycle state of an improvement plan.
type PlanStatus string

// Plan states. PlanApproved is declared for forward compatibility; no
// operation currently transitions a plan to it.
const (
	PlanDraft     PlanStatus = "draft"
	PlanSubmitted PlanStatus = "submitted"
	PlanApproved  PlanStatus = "approved"
)

// Region is a geographic area an observer is assigned to.
type Region struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Observer is a field worker whose weekly performance is tracked.
type Observer struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	RegionID string         `json:"region_id"`
	Status   ObserverStatus `json:"status"`
}

// WeeklyStats is one week's raw counts for one observer. The tuple
// (ObserverID, Week, Month, Year) is unique among stored records,
// enforced at creation time.
type WeeklyStats struct {
	ID              string         `json:"id"`
	ObserverID      string         `json:"observer_id"`
	Week            int            `json:"week"`
	Month           int            `json:"month"`
	Year            int            `json:"year"`
	VisitsCount     int            `json:"visits_count"`
	ViolationsCount int            `json:"violations_count"`
	WarningsCount   int            `json:"warnings_count"`
	Notes           string         `json:"notes"`
	EnteredBy       string         `json:"entered_by"`
	EntryDate       time.Time      `json:"entry_date"`
	Status          ApprovalStatus `json:"status"`
	IsOnLeave       bool           `json:"is_on_leave"`
}

// Evaluation is a supervisor grade plus discretionary points for an
// observer in a period. Multiple evaluations may exist for the same
// observer and period; period aggregation sums all of them.
type Evaluation struct {
	ID               string       `json:"id"`
	ObserverID       string       `json:"observer_id"`
	Week             int          `json:"week"`
	Month            int          `json:"month"`
	Year             int          `json:"year"`
	Grade            Grade        `json:"grade"`
	SupervisorPoints int          `json:"supervisor_points"`
	Notes            string       `json:"notes"`
	EvaluatedBy      string       `json:"evaluated_by"`
	EvaluationDate   time.Time    `json:"evaluation_date"`
	IsEdited         bool         `json:"is_edited"`
	EditHistory      []EditRecord `json:"edit_history,omitempty"`
}

// Clone returns a deep copy of the evaluation, including its edit history.
func (e Evaluation) Clone() Evaluation {
	out := e
	if len(e.EditHistory) > 0 {
		out.EditHistory = make([]EditRecord, len(e.EditHistory))
		copy(out.EditHistory, e.EditHistory)
	}
	return out
}

// EditRecord is one immutable entry in an evaluation's edit history.
// Records are only ever appended, never rewritten or removed.
type EditRecord struct {
	EditedAt  time.Time `json:"edited_at"`
	EditedBy  string    `json:"edited_by"`
	OldGrade  Grade     `json:"old_grade"`
	NewGrade  Grade     `json:"new_grade"`
	OldPoints int       `json:"old_points"`
	NewPoints int       `json:"new_points"`
	Reason    string    `json:"reason"`
}

// ImprovementItem tracks a remediation plan for an observer flagged in a
// period, typically because their violation count crossed a threshold.
type ImprovementItem struct {
	ID             string     `json:"id"`
	ObserverID     string     `json:"observer_id"`
	Week           int        `json:"week"`
	Month          int        `json:"month"`
	Year           int        `json:"year"`
	Reason         string     `json:"reason"`
	Plan           string     `json:"plan"`
	PlanStatus     PlanStatus `json:"plan_status"`
	SubmittedBy    string     `json:"submitted_by"`
	SubmissionDate time.Time  `json:"submission_date,omitzero"`
}

// HonorBoardEntry is an ephemeral ranked projection for one eligible
// observer. It is recomputed on every request and never stored.
type HonorBoardEntry struct {
	Rank             int        `json:"rank"`
	ObserverID       string     `json:"observer_id"`
	ObserverName     string     `json:"observer_name"`
	RegionName       string     `json:"region_name"`
	TotalPoints      int        `json:"total_points"`
	VisitsCount      int        `json:"visits_count"`
	ViolationsCount  int        `json:"violations_count"`
	WarningsCount    int        `json:"warnings_count"`
	SupervisorPoints int        `json:"supervisor_points"`
	Evaluation       Evaluation `json:"evaluation"`
}

// FlaggedObserver is an observer whose period violation count crossed the
// improvement threshold, joined with any existing improvement item for
// that observer and week. Computed, never stored.
type FlaggedObserver struct {
	ObserverID      string           `json:"observer_id"`
	ObserverName    string           `json:"observer_name"`
	RegionName      string           `json:"region_name"`
	Week            int              `json:"week"`
	Month           int              `json:"month"`
	Year            int              `json:"year"`
	ViolationsCount int              `json:"violations_count"`
	Improvement     *ImprovementItem `json:"improvement,omitempty"`
}

// DashboardStats is a one-shot aggregate for the dashboard view.
// Weekly sums cover approved, non-leave records of the current ISO week.
type DashboardStats struct {
	TotalObservers   int `json:"total_observers"`
	ActiveObservers  int `json:"active_observers"`
	OnLeaveObservers int `json:"on_leave_observers"`
	PendingApprovals int `json:"pending_approvals"`
	ReturnedForEdit  int `json:"returned_for_edit"`
	WeeklyVisits     int `json:"weekly_visits"`
	WeeklyViolations int `json:"weekly_violations"`
}
