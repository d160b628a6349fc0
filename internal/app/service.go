// Package service provides the core business service that implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/fieldops/honorboard/internal/adapters/mq/queue"
	"github.com/fieldops/honorboard/internal/adapters/mq/worker"
	"github.com/fieldops/honorboard/internal/adapters/persistence"
	"github.com/fieldops/honorboard/internal/domain/board"
	"github.com/fieldops/honorboard/internal/domain/model"
	"github.com/fieldops/honorboard/internal/domain/period"
	"github.com/fieldops/honorboard/internal/domain/scoring"
	"github.com/fieldops/honorboard/internal/store"
	"github.com/fieldops/honorboard/pkg/logger"
	"github.com/fieldops/honorboard/pkg/metrics"
)

const defaultImprovementThreshold = 2

// Service owns the entity store and exposes every read and mutation the
// presentation layer consumes. Mutations are applied to the in-memory
// store synchronously; durable writes ride the write-behind pipeline and
// never affect the caller-visible outcome.
type Service struct {
	mu sync.RWMutex

	entities *store.Store
	calc     *scoring.Calculator
	board    *board.Builder

	persister    persistence.Persister
	persistQueue *queue.InMemoryQueue
	workerPool   *worker.Pool

	// Configuration
	countWeights         [3]int
	gradePoints          map[model.Grade]int
	improvementThreshold int
	persistQueueSize     int
	persistWorkers       int
	now                  func() time.Time

	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCountWeights sets the points per visit, violation and warning.
func WithCountWeights(visit, violation, warning int) Option {
	return func(s *Service) {
		s.countWeights = [3]int{visit, violation, warning}
	}
}

// WithGradePoints overrides base points per grade.
func WithGradePoints(points map[model.Grade]int) Option {
	return func(s *Service) {
		s.gradePoints = points
	}
}

// WithImprovementThreshold sets the violation count above which an
// observer is flagged.
func WithImprovementThreshold(threshold int) Option {
	return func(s *Service) {
		if threshold >= 0 {
			s.improvementThreshold = threshold
		}
	}
}

// WithPersister enables write-behind durable storage.
func WithPersister(p persistence.Persister) Option {
	return func(s *Service) {
		s.persister = p
	}
}

// WithPersistQueueSize bounds the persistence queue.
func WithPersistQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.persistQueueSize = size
		}
	}
}

// WithPersistWorkers sets the number of persistence workers.
func WithPersistWorkers(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.persistWorkers = count
		}
	}
}

// WithClock sets the time source used for timestamps and the dashboard's
// current week.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		countWeights:         [3]int{1, 4, 3},
		gradePoints:          nil,
		improvementThreshold: defaultImprovementThreshold,
		persistQueueSize:     10_000,
		persistWorkers:       runtime.NumCPU(),
		now:                  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the store, the calculator and, when a persister is
// configured, the write-behind pipeline.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.entities = store.New(store.WithClock(s.now))
	calcOpts := []scoring.Option{
		scoring.WithCountWeights(s.countWeights[0], s.countWeights[1], s.countWeights[2]),
	}
	if len(s.gradePoints) > 0 {
		calcOpts = append(calcOpts, scoring.WithGradePoints(s.gradePoints))
	}
	s.calc = scoring.NewCalculator(calcOpts...)
	s.board = board.NewBuilder(s.calc)

	if s.persister != nil {
		s.persistQueue = queue.NewInMemoryQueue(queue.WithCapacity(s.persistQueueSize))
		s.workerPool = worker.NewPool(s.persistWorkers, s.persistQueue, s.persister)
		s.workerPool.Start(ctx)
		s.logger.Info(ctx, "write-behind persistence enabled",
			logger.Int("workers", s.persistWorkers),
			logger.Int("queueSize", s.persistQueueSize),
		)
	}

	s.started = true
	s.logger.Info(ctx, "honor board service started",
		logger.Int("improvementThreshold", s.improvementThreshold),
		logger.Bool("persistence", s.persister != nil),
	)
	return nil
}

// Stop drains the persistence pipeline and closes the persister.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping honor board service...")

	if s.persistQueue != nil {
		_ = s.persistQueue.Close()
	}
	if s.workerPool != nil {
		s.workerPool.Stop()
	}
	if s.persister != nil {
		if err := s.persister.Close(); err != nil {
			s.logger.Error(ctx, "closing persister failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "honor board service stopped")
}

// persist hands a durable-write job to the pipeline. Best-effort: a full
// queue or disabled persistence only produces a log line.
func (s *Service) persist(ctx context.Context, job persistence.Job) {
	if s.persistQueue == nil {
		return
	}
	if !s.persistQueue.Enqueue(ctx, job) {
		s.logger.Warn(ctx, "persistence job dropped",
			logger.String("kind", string(job.Kind)),
			logger.String("id", job.ID),
		)
	}
}

// AddRegion creates a region.
func (s *Service) AddRegion(ctx context.Context, name string) (model.Region, error) {
	region, err := s.entities.AddRegion(name)
	if err != nil {
		metrics.RecordValidationFailure("invalid_input")
		return model.Region{}, err
	}
	metrics.RecordMutation("region", "create")
	s.persist(ctx, persistence.UpsertRegion(region))
	return region, nil
}

// Regions returns all regions.
func (s *Service) Regions(_ context.Context) []model.Region {
	return s.entities.Regions()
}

// AddObserver creates an observer.
func (s *Service) AddObserver(ctx context.Context, in store.NewObserver) (model.Observer, error) {
	observer, err := s.entities.AddObserver(in)
	if err != nil {
		metrics.RecordValidationFailure("invalid_input")
		return model.Observer{}, err
	}
	metrics.RecordMutation("observer", "create")
	metrics.UpdateObserversTotal(len(s.entities.Observers()))
	s.persist(ctx, persistence.UpsertObserver(observer))
	return observer, nil
}

// UpdateObserver patches an observer.
func (s *Service) UpdateObserver(ctx context.Context, id string, patch store.ObserverPatch) (model.Observer, error) {
	observer, err := s.entities.UpdateObserver(id, patch)
	if err != nil {
		return model.Observer{}, err
	}
	metrics.RecordMutation("observer", "update")
	s.persist(ctx, persistence.UpsertObserver(observer))
	return observer, nil
}

// DeleteObserver removes an observer.
func (s *Service) DeleteObserver(ctx context.Context, id string) error {
	if err := s.entities.DeleteObserver(id); err != nil {
		return err
	}
	metrics.RecordMutation("observer", "delete")
	metrics.UpdateObserversTotal(len(s.entities.Observers()))
	s.persist(ctx, persistence.DeleteObserver(id))
	return nil
}

// Observers returns all observers.
func (s *Service) Observers(_ context.Context) []model.Observer {
	return s.entities.Observers()
}

// AddStat creates a weekly statistic in pending status.
func (s *Service) AddStat(ctx context.Context, in store.NewStat) (model.WeeklyStats, error) {
	stat, err := s.entities.AddStat(in)
	if err != nil {
		metrics.RecordValidationFailure(failureKind(err))
		return model.WeeklyStats{}, err
	}
	metrics.RecordMutation("stat", "create")
	s.persist(ctx, persistence.UpsertStat(stat))
	return stat, nil
}

// UpdateStat patches a statistic. Approvals, rejections, returns and
// resubmissions all ride the Status field of the patch.
func (s *Service) UpdateStat(ctx context.Context, id string, patch store.StatPatch) (model.WeeklyStats, error) {
	stat, err := s.entities.UpdateStat(id, patch)
	if err != nil {
		return model.WeeklyStats{}, err
	}
	metrics.RecordMutation("stat", "update")
	s.persist(ctx, persistence.UpsertStat(stat))
	return stat, nil
}

// DeleteStat removes a statistic.
func (s *Service) DeleteStat(ctx context.Context, id string) error {
	if err := s.entities.DeleteStat(id); err != nil {
		return err
	}
	metrics.RecordMutation("stat", "delete")
	s.persist(ctx, persistence.DeleteStat(id))
	return nil
}

// Stats returns all weekly statistics.
func (s *Service) Stats(_ context.Context) []model.WeeklyStats {
	return s.entities.Stats()
}

// AddEvaluation creates an evaluation.
func (s *Service) AddEvaluation(ctx context.Context, in store.NewEvaluation) (model.Evaluation, error) {
	eval, err := s.entities.AddEvaluation(in)
	if err != nil {
		metrics.RecordValidationFailure(failureKind(err))
		return model.Evaluation{}, err
	}
	metrics.RecordMutation("evaluation", "create")
	s.persist(ctx, persistence.UpsertEvaluation(eval))
	return eval, nil
}

// EditEvaluation patches an evaluation, appending to its edit history.
func (s *Service) EditEvaluation(ctx context.Context, id string, patch store.EvaluationPatch, reason, editedBy string) (model.Evaluation, error) {
	eval, err := s.entities.EditEvaluation(id, patch, reason, editedBy)
	if err != nil {
		metrics.RecordValidationFailure(failureKind(err))
		return model.Evaluation{}, err
	}
	metrics.RecordMutation("evaluation", "edit")
	s.persist(ctx, persistence.UpsertEvaluation(eval))
	return eval, nil
}

// DeleteEvaluation removes an evaluation.
func (s *Service) DeleteEvaluation(ctx context.Context, id string) error {
	if err := s.entities.DeleteEvaluation(id); err != nil {
		return err
	}
	metrics.RecordMutation("evaluation", "delete")
	s.persist(ctx, persistence.DeleteEvaluation(id))
	return nil
}

// Evaluations returns all evaluations.
func (s *Service) Evaluations(_ context.Context) []model.Evaluation {
	return s.entities.Evaluations()
}

// Evaluation returns one evaluation by id.
func (s *Service) Evaluation(_ context.Context, id string) (model.Evaluation, error) {
	return s.entities.Evaluation(id)
}

// AddImprovement creates a draft improvement item.
func (s *Service) AddImprovement(ctx context.Context, in store.NewImprovement) (model.ImprovementItem, error) {
	item, err := s.entities.AddImprovement(in)
	if err != nil {
		metrics.RecordValidationFailure(failureKind(err))
		return model.ImprovementItem{}, err
	}
	metrics.RecordMutation("improvement", "create")
	s.persist(ctx, persistence.UpsertImprovement(item))
	return item, nil
}

// SubmitImprovementPlan writes the plan text and moves the item to
// submitted.
func (s *Service) SubmitImprovementPlan(ctx context.Context, id, plan string) (model.ImprovementItem, error) {
	item, err := s.entities.SubmitImprovementPlan(id, plan)
	if err != nil {
		metrics.RecordValidationFailure(failureKind(err))
		return model.ImprovementItem{}, err
	}
	metrics.RecordMutation("improvement", "submit_plan")
	s.persist(ctx, persistence.UpsertImprovement(item))
	return item, nil
}

// Improvements returns all improvement items.
func (s *Service) Improvements(_ context.Context) []model.ImprovementItem {
	return s.entities.Improvements()
}

// HonorBoard computes the ranked board for a period. Every call
// recomputes from current store state; nothing is cached.
func (s *Service) HonorBoard(_ context.Context, p period.Period) []model.HonorBoardEntry {
	metrics.RecordBoardBuild()
	return s.board.Build(
		s.entities.Observers(),
		s.entities.Regions(),
		s.entities.Stats(),
		s.entities.Evaluations(),
		p,
	)
}

// Points computes a single observer's accumulated score for a period.
func (s *Service) Points(_ context.Context, observerID string, p period.Period) int {
	return s.calc.Points(observerID,
		period.FilterStats(s.entities.Stats(), p),
		period.FilterEvaluations(s.entities.Evaluations(), p),
	)
}

// DashboardStats aggregates the counts shown on the dashboard. Weekly
// sums cover approved, non-leave records of the current ISO week.
func (s *Service) DashboardStats(_ context.Context) model.DashboardStats {
	observers := s.entities.Observers()
	stats := s.entities.Stats()
	current := period.Current(s.now())

	out := model.DashboardStats{TotalObservers: len(observers)}
	for _, o := range observers {
		switch o.Status {
		case model.ObserverActive:
			out.ActiveObservers++
		case model.ObserverOnLeave:
			out.OnLeaveObservers++
		}
	}
	for _, st := range stats {
		switch st.Status {
		case model.StatusPending:
			out.PendingApprovals++
		case model.StatusReturned:
			out.ReturnedForEdit++
		}
		if st.Week == current.Week && st.Month == current.Month && st.Year == current.Year &&
			st.Status == model.StatusApproved && !st.IsOnLeave {
			out.WeeklyVisits += st.VisitsCount
			out.WeeklyViolations += st.ViolationsCount
		}
	}

	metrics.UpdateObserversTotal(out.TotalObservers)
	metrics.UpdatePendingApprovals(out.PendingApprovals)
	return out
}

// GradeDistribution counts period evaluations per grade.
func (s *Service) GradeDistribution(_ context.Context, p period.Period) map[model.Grade]int {
	dist := make(map[model.Grade]int)
	for _, e := range period.FilterEvaluations(s.entities.Evaluations(), p) {
		dist[e.Grade]++
	}
	return dist
}

// NeedingImprovement lists observers whose period violations exceed the
// threshold, joined with any existing improvement item for the same
// observer and week.
func (s *Service) NeedingImprovement(_ context.Context, p period.Period) []model.FlaggedObserver {
	observers := s.entities.Observers()
	regions := s.entities.Regions()
	improvements := s.entities.Improvements()

	observerByID := make(map[string]model.Observer, len(observers))
	for _, o := range observers {
		observerByID[o.ID] = o
	}
	regionNames := make(map[string]string, len(regions))
	for _, r := range regions {
		regionNames[r.ID] = r.Name
	}

	var flagged []model.FlaggedObserver
	for _, st := range period.FilterStats(s.entities.Stats(), p) {
		if st.ViolationsCount <= s.improvementThreshold {
			continue
		}
		f := model.FlaggedObserver{
			ObserverID:      st.ObserverID,
			Week:            st.Week,
			Month:           st.Month,
			Year:            st.Year,
			ViolationsCount: st.ViolationsCount,
			RegionName:      "unknown",
		}
		if o, ok := observerByID[st.ObserverID]; ok {
			f.ObserverName = o.Name
			if name, ok := regionNames[o.RegionID]; ok {
				f.RegionName = name
			}
		}
		for i := range improvements {
			imp := improvements[i]
			if imp.ObserverID == st.ObserverID && imp.Week == st.Week &&
				imp.Month == st.Month && imp.Year == st.Year {
				f.Improvement = &imp
				break
			}
		}
		flagged = append(flagged, f)
	}
	return flagged
}

// failureKind maps store errors to a validation-failure metric label.
func failureKind(err error) string {
	switch {
	case errors.Is(err, store.ErrDuplicateRecord):
		return "duplicate_record"
	case errors.Is(err, store.ErrMissingReason):
		return "missing_reason"
	case errors.Is(err, store.ErrInvalidInput):
		return "invalid_input"
	default:
		return "other"
	}
}
