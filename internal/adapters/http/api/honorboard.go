package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/fieldops/honorboard/internal/adapters/export"
)

// HonorBoardHandler serves the ranked honor board and its spreadsheet
// export.
type HonorBoardHandler struct {
	deps Dependencies
}

// NewHonorBoardHandler creates an honor board handler.
func NewHonorBoardHandler(deps Dependencies) *HonorBoardHandler {
	return &HonorBoardHandler{deps: deps}
}

// HandleGetBoard handles GET /honorboard?month&year[&week] requests.
func (h *HonorBoardHandler) HandleGetBoard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	p, err := parsePeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_period", err)
		return
	}
	entries := h.deps.HonorBoard(r.Context(), p)
	writeJSON(w, http.StatusOK, entries)
}

// HandleExport handles GET /honorboard/export?month&year[&week] requests,
// returning the board as an XLSX attachment.
func (h *HonorBoardHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	p, err := parsePeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_period", err)
		return
	}
	entries := h.deps.HonorBoard(r.Context(), p)

	// Render to a buffer first so a failed export still gets a clean
	// error response.
	var buf bytes.Buffer
	if err := export.HonorBoardXLSX(&buf, entries, p); err != nil {
		writeError(w, http.StatusInternalServerError, "export_failed", err)
		return
	}

	filename := fmt.Sprintf("honorboard_%d_%d.xlsx", p.Month, p.Year)
	if p.Week != 0 {
		filename = fmt.Sprintf("honorboard_w%d_%d_%d.xlsx", p.Week, p.Month, p.Year)
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(buf.Bytes())
}
