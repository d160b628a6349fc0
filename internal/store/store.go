// Package store owns the in-memory entity collections and every mutation
// on them. Collections are slices in insertion order; that order is
// load-bearing for downstream reads (the honor board's representative
// evaluation and tie-breaking both rely on it).
//
// One RWMutex guards each collection, so a read-then-write sequence such
// as the duplicate check before an insert or the history append before a
// patch can never interleave with another write to the same collection.
// Read accessors copy the backing slices out, giving callers a consistent
// snapshot that later mutations cannot touch.
package store

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fieldops/honorboard/internal/domain/model"
)

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithClock sets the time source used for entry and edit timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets the identity generator for created records.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// Store is the single source of truth for all entity collections. One
// shared instance lives for the duration of the process.
type Store struct {
	observersMu sync.RWMutex
	observers   []model.Observer

	regionsMu sync.RWMutex
	regions   []model.Region

	statsMu sync.RWMutex
	stats   []model.WeeklyStats

	evalsMu     sync.RWMutex
	evaluations []model.Evaluation

	improvementsMu sync.RWMutex
	improvements   []model.ImprovementItem

	now   func() time.Time
	newID func() string
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Regions returns a snapshot of the region collection.
func (s *Store) Regions() []model.Region {
	s.regionsMu.RLock()
	defer s.regionsMu.RUnlock()
	out := make([]model.Region, len(s.regions))
	copy(out, s.regions)
	return out
}

// AddRegion creates a region.
func (s *Store) AddRegion(name string) (model.Region, error) {
	if strings.TrimSpace(name) == "" {
		return model.Region{}, fmt.Errorf("%w: region name must not be empty", ErrInvalidInput)
	}
	s.regionsMu.Lock()
	defer s.regionsMu.Unlock()
	region := model.Region{ID: s.newID(), Name: name}
	s.regions = append(s.regions, region)
	return region, nil
}

// Observers returns a snapshot of the observer collection in insertion
// order.
func (s *Store) Observers() []model.Observer {
	s.observersMu.RLock()
	defer s.observersMu.RUnlock()
	out := make([]model.Observer, len(s.observers))
	copy(out, s.observers)
	return out
}

// NewObserver carries the caller-supplied fields for observer creation.
type NewObserver struct {
	Name     string
	RegionID string
	Status   model.ObserverStatus
}

// AddObserver creates an observer. The region reference is not validated
// against the region collection; a dangling reference renders as an
// unknown region on the honor board.
func (s *Store) AddObserver(in NewObserver) (model.Observer, error) {
	if strings.TrimSpace(in.Name) == "" {
		return model.Observer{}, fmt.Errorf("%w: observer name must not be empty", ErrInvalidInput)
	}
	status := in.Status
	if status == "" {
		status = model.ObserverActive
	}
	s.observersMu.Lock()
	defer s.observersMu.Unlock()
	observer := model.Observer{
		ID:       s.newID(),
		Name:     in.Name,
		RegionID: in.RegionID,
		Status:   status,
	}
	s.observers = append(s.observers, observer)
	return observer, nil
}

// ObserverPatch carries field-level updates for an observer. Nil fields
// are left untouched.
type ObserverPatch struct {
	Name     *string
	RegionID *string
	Status   *model.ObserverStatus
}

// UpdateObserver applies a patch to the observer with the given id.
func (s *Store) UpdateObserver(id string, patch ObserverPatch) (model.Observer, error) {
	s.observersMu.Lock()
	defer s.observersMu.Unlock()
	for i := range s.observers {
		if s.observers[i].ID != id {
			continue
		}
		if patch.Name != nil {
			s.observers[i].Name = *patch.Name
		}
		if patch.RegionID != nil {
			s.observers[i].RegionID = *patch.RegionID
		}
		if patch.Status != nil {
			s.observers[i].Status = *patch.Status
		}
		return s.observers[i], nil
	}
	return model.Observer{}, fmt.Errorf("%w: observer %s", ErrNotFound, id)
}

// DeleteObserver removes the observer with the given id. Existing stats
// and evaluations referencing it are left in place.
func (s *Store) DeleteObserver(id string) error {
	s.observersMu.Lock()
	defer s.observersMu.Unlock()
	for i := range s.observers {
		if s.observers[i].ID == id {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: observer %s", ErrNotFound, id)
}

// Stats returns a snapshot of the weekly statistics in insertion order.
func (s *Store) Stats() []model.WeeklyStats {
	s.statsMu.RLock()
	defer s.statsMu.RUnlock()
	out := make([]model.WeeklyStats, len(s.stats))
	copy(out, s.stats)
	return out
}

// Stat returns the statistic with the given id.
func (s *Store) Stat(id string) (model.WeeklyStats, error) {
	s.statsMu.RLock()
	defer s.statsMu.RUnlock()
	for _, st := range s.stats {
		if st.ID == id {
			return st, nil
		}
	}
	return model.WeeklyStats{}, fmt.Errorf("%w: statistic %s", ErrNotFound, id)
}

// NewStat carries the caller-supplied fields for statistic creation.
type NewStat struct {
	ObserverID      string
	Week            int
	Month           int
	Year            int
	VisitsCount     int
	ViolationsCount int
	WarningsCount   int
	Notes           string
	EnteredBy       string
	IsOnLeave       bool
}

// AddStat creates a weekly statistic in pending status.
//
// It fails with ErrDuplicateRecord when a record already exists for the
// (observer, week, month, year) key, and with ErrInvalidInput on negative
// counts or, for non-leave records, when violations or warnings exceed
// visits. An on-leave record has its counts forced to zero regardless of
// what the caller supplied.
func (s *Store) AddStat(in NewStat) (model.WeeklyStats, error) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()

	for _, existing := range s.stats {
		if existing.ObserverID == in.ObserverID &&
			existing.Week == in.Week &&
			existing.Month == in.Month &&
			existing.Year == in.Year {
			return model.WeeklyStats{}, fmt.Errorf("%w: observer %s week %d/%d/%d",
				ErrDuplicateRecord, in.ObserverID, in.Week, in.Month, in.Year)
		}
	}

	if in.VisitsCount < 0 || in.ViolationsCount < 0 || in.WarningsCount < 0 {
		return model.WeeklyStats{}, fmt.Errorf("%w: counts must not be negative", ErrInvalidInput)
	}
	if !in.IsOnLeave {
		if in.ViolationsCount > in.VisitsCount {
			return model.WeeklyStats{}, fmt.Errorf("%w: violations cannot exceed visits", ErrInvalidInput)
		}
		if in.WarningsCount > in.VisitsCount {
			return model.WeeklyStats{}, fmt.Errorf("%w: warnings cannot exceed visits", ErrInvalidInput)
		}
	}

	stat := model.WeeklyStats{
		ID:              s.newID(),
		ObserverID:      in.ObserverID,
		Week:            in.Week,
		Month:           in.Month,
		Year:            in.Year,
		VisitsCount:     in.VisitsCount,
		ViolationsCount: in.ViolationsCount,
		WarningsCount:   in.WarningsCount,
		Notes:           in.Notes,
		EnteredBy:       in.EnteredBy,
		EntryDate:       s.now(),
		Status:          model.StatusPending,
		IsOnLeave:       in.IsOnLeave,
	}
	if stat.IsOnLeave {
		stat.VisitsCount = 0
		stat.ViolationsCount = 0
		stat.WarningsCount = 0
	}
	s.stats = append(s.stats, stat)
	return stat, nil
}

// StatPatch carries field-level updates for a weekly statistic. Nil fields
// are left untouched. Status transitions (approve, reject, return, and the
// resubmission back to pending) ride the Status field.
type StatPatch struct {
	VisitsCount     *int
	ViolationsCount *int
	WarningsCount   *int
	Notes           *string
	Status          *model.ApprovalStatus
	IsOnLeave       *bool
}

// UpdateStat applies a patch to the statistic with the given id. The
// creation-time count invariants are deliberately not re-checked here; a
// supervisor edit is trusted as entered.
func (s *Store) UpdateStat(id string, patch StatPatch) (model.WeeklyStats, error) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	for i := range s.stats {
		if s.stats[i].ID != id {
			continue
		}
		if patch.VisitsCount != nil {
			s.stats[i].VisitsCount = *patch.VisitsCount
		}
		if patch.ViolationsCount != nil {
			s.stats[i].ViolationsCount = *patch.ViolationsCount
		}
		if patch.WarningsCount != nil {
			s.stats[i].WarningsCount = *patch.WarningsCount
		}
		if patch.Notes != nil {
			s.stats[i].Notes = *patch.Notes
		}
		if patch.Status != nil {
			s.stats[i].Status = *patch.Status
		}
		if patch.IsOnLeave != nil {
			s.stats[i].IsOnLeave = *patch.IsOnLeave
		}
		return s.stats[i], nil
	}
	return model.WeeklyStats{}, fmt.Errorf("%w: statistic %s", ErrNotFound, id)
}

// DeleteStat removes the statistic with the given id. Irreversible.
func (s *Store) DeleteStat(id string) error {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	for i := range s.stats {
		if s.stats[i].ID == id {
			s.stats = append(s.stats[:i], s.stats[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: statistic %s", ErrNotFound, id)
}

// Evaluations returns a snapshot of the evaluation collection in insertion
// order, with edit histories deep-copied.
func (s *Store) Evaluations() []model.Evaluation {
	s.evalsMu.RLock()
	defer s.evalsMu.RUnlock()
	out := make([]model.Evaluation, len(s.evaluations))
	for i, e := range s.evaluations {
		out[i] = e.Clone()
	}
	return out
}

// Evaluation returns the evaluation with the given id.
func (s *Store) Evaluation(id string) (model.Evaluation, error) {
	s.evalsMu.RLock()
	defer s.evalsMu.RUnlock()
	for _, e := range s.evaluations {
		if e.ID == id {
			return e.Clone(), nil
		}
	}
	return model.Evaluation{}, fmt.Errorf("%w: evaluation %s", ErrNotFound, id)
}

// NewEvaluation carries the caller-supplied fields for evaluation creation.
type NewEvaluation struct {
	ObserverID       string
	Week             int
	Month            int
	Year             int
	Grade            model.Grade
	SupervisorPoints int
	Notes            string
	EvaluatedBy      string
}

// AddEvaluation creates an evaluation with an empty edit history. No
// uniqueness constraint applies: multiple evaluations for the same
// observer and period are permitted, and period aggregation sums them all.
func (s *Store) AddEvaluation(in NewEvaluation) (model.Evaluation, error) {
	if in.Grade == "" {
		return model.Evaluation{}, fmt.Errorf("%w: grade must not be empty", ErrInvalidInput)
	}
	s.evalsMu.Lock()
	defer s.evalsMu.Unlock()
	eval := model.Evaluation{
		ID:               s.newID(),
		ObserverID:       in.ObserverID,
		Week:             in.Week,
		Month:            in.Month,
		Year:             in.Year,
		Grade:            in.Grade,
		SupervisorPoints: in.SupervisorPoints,
		Notes:            in.Notes,
		EvaluatedBy:      in.EvaluatedBy,
		EvaluationDate:   s.now(),
		IsEdited:         false,
	}
	s.evaluations = append(s.evaluations, eval)
	return eval, nil
}

// EvaluationPatch carries field-level updates for an evaluation. Nil
// fields are left untouched.
type EvaluationPatch struct {
	Grade            *model.Grade
	SupervisorPoints *int
	Notes            *string
}

// EditEvaluation applies a patch to the evaluation with the given id,
// appending an immutable edit record before the patch takes effect. The
// record captures the pre-edit grade and points, the incoming values
// (falling back to the old ones for fields absent from the patch), the
// reason and the editor. A blank reason is rejected with ErrMissingReason.
// IsEdited becomes true on the first edit and stays true.
func (s *Store) EditEvaluation(id string, patch EvaluationPatch, reason, editedBy string) (model.Evaluation, error) {
	if strings.TrimSpace(reason) == "" {
		return model.Evaluation{}, ErrMissingReason
	}
	s.evalsMu.Lock()
	defer s.evalsMu.Unlock()
	for i := range s.evaluations {
		e := &s.evaluations[i]
		if e.ID != id {
			continue
		}

		record := model.EditRecord{
			EditedAt:  s.now(),
			EditedBy:  editedBy,
			OldGrade:  e.Grade,
			NewGrade:  e.Grade,
			OldPoints: e.SupervisorPoints,
			NewPoints: e.SupervisorPoints,
			Reason:    reason,
		}
		if patch.Grade != nil {
			record.NewGrade = *patch.Grade
		}
		if patch.SupervisorPoints != nil {
			record.NewPoints = *patch.SupervisorPoints
		}
		e.EditHistory = append(e.EditHistory, record)
		e.IsEdited = true

		if patch.Grade != nil {
			e.Grade = *patch.Grade
		}
		if patch.SupervisorPoints != nil {
			e.SupervisorPoints = *patch.SupervisorPoints
		}
		if patch.Notes != nil {
			e.Notes = *patch.Notes
		}
		return e.Clone(), nil
	}
	return model.Evaluation{}, fmt.Errorf("%w: evaluation %s", ErrNotFound, id)
}

// DeleteEvaluation removes the evaluation with the given id. Improvement
// items referencing the same observer and period are not cleaned up.
func (s *Store) DeleteEvaluation(id string) error {
	s.evalsMu.Lock()
	defer s.evalsMu.Unlock()
	for i := range s.evaluations {
		if s.evaluations[i].ID == id {
			s.evaluations = append(s.evaluations[:i], s.evaluations[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: evaluation %s", ErrNotFound, id)
}

// Improvements returns a snapshot of the improvement collection.
func (s *Store) Improvements() []model.ImprovementItem {
	s.improvementsMu.RLock()
	defer s.improvementsMu.RUnlock()
	out := make([]model.ImprovementItem, len(s.improvements))
	copy(out, s.improvements)
	return out
}

// NewImprovement carries the caller-supplied fields for improvement
// creation.
type NewImprovement struct {
	ObserverID  string
	Week        int
	Month       int
	Year        int
	Reason      string
	SubmittedBy string
}

// AddImprovement creates a draft improvement item with an empty plan.
func (s *Store) AddImprovement(in NewImprovement) (model.ImprovementItem, error) {
	if strings.TrimSpace(in.Reason) == "" {
		return model.ImprovementItem{}, fmt.Errorf("%w: improvement reason must not be empty", ErrInvalidInput)
	}
	s.improvementsMu.Lock()
	defer s.improvementsMu.Unlock()
	item := model.ImprovementItem{
		ID:          s.newID(),
		ObserverID:  in.ObserverID,
		Week:        in.Week,
		Month:       in.Month,
		Year:        in.Year,
		Reason:      in.Reason,
		PlanStatus:  model.PlanDraft,
		SubmittedBy: in.SubmittedBy,
	}
	s.improvements = append(s.improvements, item)
	return item, nil
}

// SubmitImprovementPlan writes the plan text for an improvement item and
// moves it from draft to submitted, stamping the submission date.
func (s *Store) SubmitImprovementPlan(id, plan string) (model.ImprovementItem, error) {
	if strings.TrimSpace(plan) == "" {
		return model.ImprovementItem{}, fmt.Errorf("%w: plan text must not be empty", ErrInvalidInput)
	}
	s.improvementsMu.Lock()
	defer s.improvementsMu.Unlock()
	for i := range s.improvements {
		if s.improvements[i].ID != id {
			continue
		}
		s.improvements[i].Plan = plan
		s.improvements[i].PlanStatus = model.PlanSubmitted
		s.improvements[i].SubmissionDate = s.now()
		return s.improvements[i], nil
	}
	return model.ImprovementItem{}, fmt.Errorf("%w: improvement %s", ErrNotFound, id)
}
