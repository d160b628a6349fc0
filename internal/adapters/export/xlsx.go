// Package export serializes computed honor-board views for download. The
// core only ever hands it the finished ranked slice; all formatting lives
// here.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/fieldops/honorboard/internal/domain/model"
	"github.com/fieldops/honorboard/internal/domain/period"
)

const sheetName = "Honor Board"

var headers = []string{
	"Rank", "Observer", "Region", "Total Points",
	"Visits", "Violations", "Warnings", "Supervisor Points", "Grade",
}

// HonorBoardXLSX writes the ranked entries as a spreadsheet to w.
func HonorBoardXLSX(w io.Writer, entries []model.HonorBoardEntry, p period.Period) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	title := fmt.Sprintf("Honor board %d/%d", p.Month, p.Year)
	if p.Week != 0 {
		title = fmt.Sprintf("Honor board week %d, %d/%d", p.Week, p.Month, p.Year)
	}
	if err := f.SetCellValue(sheetName, "A1", title); err != nil {
		return fmt.Errorf("write title: %w", err)
	}

	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 2)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, entry := range entries {
		row := []any{
			entry.Rank,
			entry.ObserverName,
			entry.RegionName,
			entry.TotalPoints,
			entry.VisitsCount,
			entry.ViolationsCount,
			entry.WarningsCount,
			entry.SupervisorPoints,
			string(entry.Evaluation.Grade),
		}
		for col, val := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+3)
			if err != nil {
				return fmt.Errorf("row cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, val); err != nil {
				return fmt.Errorf("write row %d: %w", i, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
