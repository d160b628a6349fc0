// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/fieldops/honorboard/internal/domain/model"
	"github.com/fieldops/honorboard/internal/domain/period"
	"github.com/fieldops/honorboard/internal/store"
)

// validate checks request DTO constraints before they reach the core.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Dependencies required by the HTTP handlers. An interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	AddRegion(ctx context.Context, name string) (model.Region, error)
	Regions(ctx context.Context) []model.Region

	AddObserver(ctx context.Context, in store.NewObserver) (model.Observer, error)
	UpdateObserver(ctx context.Context, id string, patch store.ObserverPatch) (model.Observer, error)
	DeleteObserver(ctx context.Context, id string) error
	Observers(ctx context.Context) []model.Observer

	AddStat(ctx context.Context, in store.NewStat) (model.WeeklyStats, error)
	UpdateStat(ctx context.Context, id string, patch store.StatPatch) (model.WeeklyStats, error)
	DeleteStat(ctx context.Context, id string) error
	Stats(ctx context.Context) []model.WeeklyStats

	AddEvaluation(ctx context.Context, in store.NewEvaluation) (model.Evaluation, error)
	EditEvaluation(ctx context.Context, id string, patch store.EvaluationPatch, reason, editedBy string) (model.Evaluation, error)
	DeleteEvaluation(ctx context.Context, id string) error
	Evaluations(ctx context.Context) []model.Evaluation

	AddImprovement(ctx context.Context, in store.NewImprovement) (model.ImprovementItem, error)
	SubmitImprovementPlan(ctx context.Context, id, plan string) (model.ImprovementItem, error)
	Improvements(ctx context.Context) []model.ImprovementItem
	NeedingImprovement(ctx context.Context, p period.Period) []model.FlaggedObserver

	HonorBoard(ctx context.Context, p period.Period) []model.HonorBoardEntry
	DashboardStats(ctx context.Context) model.DashboardStats
	GradeDistribution(ctx context.Context, p period.Period) map[model.Grade]int
}

// Server wires HTTP routes for the business API.
type Server struct {
	health       *HealthHandler
	dashboard    *DashboardHandler
	honorBoard   *HonorBoardHandler
	stats        *StatsHandler
	evaluations  *EvaluationsHandler
	observers    *ObserversHandler
	improvements *ImprovementsHandler
}

// NewServer creates an API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		health:       NewHealthHandler(),
		dashboard:    NewDashboardHandler(deps),
		honorBoard:   NewHonorBoardHandler(deps),
		stats:        NewStatsHandler(deps),
		evaluations:  NewEvaluationsHandler(deps),
		observers:    NewObserversHandler(deps),
		improvements: NewImprovementsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.health.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", MetricsMiddleware(s.dashboard.HandleDashboard, "dashboard"))
	mux.HandleFunc("/honorboard", MetricsMiddleware(s.honorBoard.HandleGetBoard, "honorboard"))
	mux.HandleFunc("/honorboard/export", MetricsMiddleware(s.honorBoard.HandleExport, "honorboard_export"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.stats.HandleCollection, "stats"))
	mux.HandleFunc("/stats/", MetricsMiddleware(s.stats.HandleItem, "stats_item"))
	mux.HandleFunc("/evaluations", MetricsMiddleware(s.evaluations.HandleCollection, "evaluations"))
	mux.HandleFunc("/evaluations/", MetricsMiddleware(s.evaluations.HandleItem, "evaluations_item"))
	mux.HandleFunc("/observers", MetricsMiddleware(s.observers.HandleCollection, "observers"))
	mux.HandleFunc("/observers/", MetricsMiddleware(s.observers.HandleItem, "observers_item"))
	mux.HandleFunc("/regions", MetricsMiddleware(s.observers.HandleRegions, "regions"))
	mux.HandleFunc("/improvements", MetricsMiddleware(s.improvements.HandleCollection, "improvements"))
	mux.HandleFunc("/improvements/", MetricsMiddleware(s.improvements.HandlePlan, "improvements_plan"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeStoreError translates core error kinds to HTTP responses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrDuplicateRecord):
		writeError(w, http.StatusConflict, "duplicate_record", err)
	case errors.Is(err, store.ErrMissingReason):
		writeError(w, http.StatusBadRequest, "missing_reason", err)
	case errors.Is(err, store.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// decodeAndValidate parses a JSON body into dst and checks its validate
// tags.
func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return ErrBadRequest
	}
	if err := validate.Struct(dst); err != nil {
		return err
	}
	return nil
}

// parsePeriod reads month, year and the optional week from query
// parameters.
func parsePeriod(r *http.Request) (period.Period, error) {
	q := r.URL.Query()
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil || month < 1 || month > 12 {
		return period.Period{}, ErrBadPeriod
	}
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil || year < 1000 || year > 9999 {
		return period.Period{}, ErrBadPeriod
	}
	p := period.Period{Month: month, Year: year}
	if weekStr := q.Get("week"); weekStr != "" {
		week, err := strconv.Atoi(weekStr)
		if err != nil || week < 1 || week > 52 {
			return period.Period{}, ErrBadPeriod
		}
		p.Week = week
	}
	return p, nil
}

// pathID extracts the trailing id from a prefixed path like /stats/{id}.
func pathID(path, prefix string) (string, bool) {
	if len(path) <= len(prefix) {
		return "", false
	}
	id := path[len(prefix):]
	for _, c := range id {
		if c == '/' {
			return "", false
		}
	}
	return id, true
}
