package api

import (
	"net/http"

	"github.com/fieldops/honorboard/internal/domain/model"
	"github.com/fieldops/honorboard/internal/store"
)

// EvaluationsHandler handles evaluation creation, the history-preserving
// edit operation and deletion.
type EvaluationsHandler struct {
	deps Dependencies
}

// NewEvaluationsHandler creates an evaluations handler.
func NewEvaluationsHandler(deps Dependencies) *EvaluationsHandler {
	return &EvaluationsHandler{deps: deps}
}

type evaluationCreateRequest struct {
	ObserverID       string `json:"observer_id" validate:"required"`
	Week             int    `json:"week" validate:"required,min=1,max=52"`
	Month            int    `json:"month" validate:"required,min=1,max=12"`
	Year             int    `json:"year" validate:"required,min=1000,max=9999"`
	Grade            string `json:"grade" validate:"required,oneof=excellent very_good acceptable needs_improvement neutral on_leave"`
	SupervisorPoints int    `json:"supervisor_points" validate:"min=0,max=10"`
	Notes            string `json:"notes"`
	EvaluatedBy      string `json:"evaluated_by" validate:"required"`
}

type evaluationEditRequest struct {
	Grade            *string `json:"grade" validate:"omitempty,oneof=excellent very_good acceptable needs_improvement neutral on_leave"`
	SupervisorPoints *int    `json:"supervisor_points" validate:"omitempty,min=0,max=10"`
	Notes            *string `json:"notes"`
	Reason           string  `json:"reason" validate:"required"`
	EditedBy         string  `json:"edited_by" validate:"required"`
}

// HandleCollection handles GET and POST /evaluations requests.
func (h *EvaluationsHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.deps.Evaluations(r.Context()))
	case http.MethodPost:
		var req evaluationCreateRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		eval, err := h.deps.AddEvaluation(r.Context(), store.NewEvaluation{
			ObserverID:       req.ObserverID,
			Week:             req.Week,
			Month:            req.Month,
			Year:             req.Year,
			Grade:            model.Grade(req.Grade),
			SupervisorPoints: req.SupervisorPoints,
			Notes:            req.Notes,
			EvaluatedBy:      req.EvaluatedBy,
		})
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, eval)
	default:
		http.NotFound(w, r)
	}
}

// HandleItem handles PATCH and DELETE /evaluations/{id} requests.
func (h *EvaluationsHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r.URL.Path, "/evaluations/")
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	switch r.Method {
	case http.MethodPatch:
		var req evaluationEditRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		patch := store.EvaluationPatch{
			SupervisorPoints: req.SupervisorPoints,
			Notes:            req.Notes,
		}
		if req.Grade != nil {
			grade := model.Grade(*req.Grade)
			patch.Grade = &grade
		}
		eval, err := h.deps.EditEvaluation(r.Context(), id, patch, req.Reason, req.EditedBy)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, eval)
	case http.MethodDelete:
		if err := h.deps.DeleteEvaluation(r.Context(), id); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}
