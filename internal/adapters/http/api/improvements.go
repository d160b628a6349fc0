package api

import (
	"net/http"
	"strings"

	"github.com/fieldops/honorboard/internal/store"
)

// ImprovementsHandler handles improvement tracking endpoints.
type ImprovementsHandler struct {
	deps Dependencies
}

// NewImprovementsHandler creates an improvements handler.
func NewImprovementsHandler(deps Dependencies) *ImprovementsHandler {
	return &ImprovementsHandler{deps: deps}
}

type improvementCreateRequest struct {
	ObserverID  string `json:"observer_id" validate:"required"`
	Week        int    `json:"week" validate:"required,min=1,max=52"`
	Month       int    `json:"month" validate:"required,min=1,max=12"`
	Year        int    `json:"year" validate:"required,min=1000,max=9999"`
	Reason      string `json:"reason" validate:"required"`
	SubmittedBy string `json:"submitted_by" validate:"required"`
}

type planSubmitRequest struct {
	Plan string `json:"plan" validate:"required"`
}

// HandleCollection handles GET and POST /improvements requests. A GET
// with period parameters returns the flagged observers for that period
// instead of the raw item list.
func (h *ImprovementsHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if r.URL.Query().Get("month") != "" {
			p, err := parsePeriod(r)
			if err != nil {
				writeError(w, http.StatusBadRequest, "bad_period", err)
				return
			}
			writeJSON(w, http.StatusOK, h.deps.NeedingImprovement(r.Context(), p))
			return
		}
		writeJSON(w, http.StatusOK, h.deps.Improvements(r.Context()))
	case http.MethodPost:
		var req improvementCreateRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		item, err := h.deps.AddImprovement(r.Context(), store.NewImprovement{
			ObserverID:  req.ObserverID,
			Week:        req.Week,
			Month:       req.Month,
			Year:        req.Year,
			Reason:      req.Reason,
			SubmittedBy: req.SubmittedBy,
		})
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, item)
	default:
		http.NotFound(w, r)
	}
}

// HandlePlan handles POST /improvements/{id}/plan requests.
func (h *ImprovementsHandler) HandlePlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/improvements/")
	id, ok := strings.CutSuffix(rest, "/plan")
	if !ok || id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	var req planSubmitRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	item, err := h.deps.SubmitImprovementPlan(r.Context(), id, req.Plan)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}
