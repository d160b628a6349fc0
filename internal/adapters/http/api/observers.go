package api

import (
	"net/http"

	"github.com/fieldops/honorboard/internal/domain/model"
	"github.com/fieldops/honorboard/internal/store"
)

// ObserversHandler handles observer and region management.
type ObserversHandler struct {
	deps Dependencies
}

// NewObserversHandler creates an observers handler.
func NewObserversHandler(deps Dependencies) *ObserversHandler {
	return &ObserversHandler{deps: deps}
}

type observerCreateRequest struct {
	Name     string `json:"name" validate:"required"`
	RegionID string `json:"region_id"`
	Status   string `json:"status" validate:"omitempty,oneof=active on_leave"`
}

type observerPatchRequest struct {
	Name     *string `json:"name"`
	RegionID *string `json:"region_id"`
	Status   *string `json:"status" validate:"omitempty,oneof=active on_leave"`
}

type regionCreateRequest struct {
	Name string `json:"name" validate:"required"`
}

// HandleCollection handles GET and POST /observers requests.
func (h *ObserversHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.deps.Observers(r.Context()))
	case http.MethodPost:
		var req observerCreateRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		observer, err := h.deps.AddObserver(r.Context(), store.NewObserver{
			Name:     req.Name,
			RegionID: req.RegionID,
			Status:   model.ObserverStatus(req.Status),
		})
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, observer)
	default:
		http.NotFound(w, r)
	}
}

// HandleItem handles PATCH and DELETE /observers/{id} requests.
func (h *ObserversHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r.URL.Path, "/observers/")
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	switch r.Method {
	case http.MethodPatch:
		var req observerPatchRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		patch := store.ObserverPatch{
			Name:     req.Name,
			RegionID: req.RegionID,
		}
		if req.Status != nil {
			status := model.ObserverStatus(*req.Status)
			patch.Status = &status
		}
		observer, err := h.deps.UpdateObserver(r.Context(), id, patch)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, observer)
	case http.MethodDelete:
		if err := h.deps.DeleteObserver(r.Context(), id); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

// HandleRegions handles GET and POST /regions requests.
func (h *ObserversHandler) HandleRegions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.deps.Regions(r.Context()))
	case http.MethodPost:
		var req regionCreateRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		region, err := h.deps.AddRegion(r.Context(), req.Name)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, region)
	default:
		http.NotFound(w, r)
	}
}
