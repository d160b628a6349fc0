package api

import (
	"net/http"

	"github.com/fieldops/honorboard/internal/domain/model"
)

// DashboardHandler serves the one-shot dashboard aggregate.
type DashboardHandler struct {
	deps Dependencies
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(deps Dependencies) *DashboardHandler {
	return &DashboardHandler{deps: deps}
}

type dashboardResponse struct {
	model.DashboardStats
	// GradeDistribution is included when a period is supplied.
	GradeDistribution map[model.Grade]int `json:"grade_distribution,omitempty"`
}

// HandleDashboard handles GET /dashboard requests. With month and year
// query parameters the response also carries the period's grade
// distribution.
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	resp := dashboardResponse{DashboardStats: h.deps.DashboardStats(r.Context())}
	if r.URL.Query().Get("month") != "" {
		p, err := parsePeriod(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_period", err)
			return
		}
		resp.GradeDistribution = h.deps.GradeDistribution(r.Context(), p)
	}
	writeJSON(w, http.StatusOK, resp)
}
