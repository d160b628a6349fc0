package api

import (
	"net/http"

	"github.com/fieldops/honorboard/internal/domain/model"
	"github.com/fieldops/honorboard/internal/store"
)

// StatsHandler handles weekly statistic CRUD and status transitions.
type StatsHandler struct {
	deps Dependencies
}

// NewStatsHandler creates a stats handler.
func NewStatsHandler(deps Dependencies) *StatsHandler {
	return &StatsHandler{deps: deps}
}

type statCreateRequest struct {
	ObserverID      string `json:"observer_id" validate:"required"`
	Week            int    `json:"week" validate:"required,min=1,max=52"`
	Month           int    `json:"month" validate:"required,min=1,max=12"`
	Year            int    `json:"year" validate:"required,min=1000,max=9999"`
	VisitsCount     int    `json:"visits_count" validate:"min=0"`
	ViolationsCount int    `json:"violations_count" validate:"min=0"`
	WarningsCount   int    `json:"warnings_count" validate:"min=0"`
	Notes           string `json:"notes"`
	EnteredBy       string `json:"entered_by" validate:"required"`
	IsOnLeave       bool   `json:"is_on_leave"`
}

type statPatchRequest struct {
	VisitsCount     *int    `json:"visits_count" validate:"omitempty,min=0"`
	ViolationsCount *int    `json:"violations_count" validate:"omitempty,min=0"`
	WarningsCount   *int    `json:"warnings_count" validate:"omitempty,min=0"`
	Notes           *string `json:"notes"`
	Status          *string `json:"status" validate:"omitempty,oneof=pending approved rejected returned"`
	IsOnLeave       *bool   `json:"is_on_leave"`
}

// HandleCollection handles GET and POST /stats requests.
func (h *StatsHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.deps.Stats(r.Context()))
	case http.MethodPost:
		var req statCreateRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		stat, err := h.deps.AddStat(r.Context(), store.NewStat{
			ObserverID:      req.ObserverID,
			Week:            req.Week,
			Month:           req.Month,
			Year:            req.Year,
			VisitsCount:     req.VisitsCount,
			ViolationsCount: req.ViolationsCount,
			WarningsCount:   req.WarningsCount,
			Notes:           req.Notes,
			EnteredBy:       req.EnteredBy,
			IsOnLeave:       req.IsOnLeave,
		})
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, stat)
	default:
		http.NotFound(w, r)
	}
}

// HandleItem handles PATCH and DELETE /stats/{id} requests.
func (h *StatsHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r.URL.Path, "/stats/")
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	switch r.Method {
	case http.MethodPatch:
		var req statPatchRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		patch := store.StatPatch{
			VisitsCount:     req.VisitsCount,
			ViolationsCount: req.ViolationsCount,
			WarningsCount:   req.WarningsCount,
			Notes:           req.Notes,
			IsOnLeave:       req.IsOnLeave,
		}
		if req.Status != nil {
			status := model.ApprovalStatus(*req.Status)
			patch.Status = &status
		}
		stat, err := h.deps.UpdateStat(r.Context(), id, patch)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stat)
	case http.MethodDelete:
		if err := h.deps.DeleteStat(r.Context(), id); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}
