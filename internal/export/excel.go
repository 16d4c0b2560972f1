package export

import (
	"fmt"

	"github.com/piwi3910/BinPack/internal/engine"
	"github.com/piwi3910/BinPack/internal/model"
	"github.com/xuri/excelize/v2"
)

// Workbook sheet names.
const (
	SheetPacked     = "Packed"
	SheetRemaining  = "Remaining"
	SheetSummary    = "Summary"
	SheetStrategies = "Strategies"
)

// ExportExcel writes a packing result as a workbook with one sheet of packed
// items and their placements, one of remaining items, and a summary. A
// Strategies sheet is added when reports are given.
func ExportExcel(path string, req model.Request, result model.PackingResult, reports []engine.StrategyReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetPacked); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	packed := [][]interface{}{{"Index", "ID", "Label", "Width", "Length", "Weight", "Cost", "X", "Y", "Placed Width", "Placed Length", "Rotated"}}
	for _, p := range result.PackedItems {
		if p.Index < 0 || p.Index >= len(req.Items) {
			return fmt.Errorf("packed item index %d out of range", p.Index)
		}
		it := req.Items[p.Index]
		packed = append(packed, []interface{}{
			p.Index, it.ID, it.Label, it.Width, it.Length, it.Weight, it.Cost,
			p.Place.X, p.Place.Y, p.Place.Width, p.Place.Length, p.Place.RotatedFor(it),
		})
	}
	if err := writeSheet(f, SheetPacked, packed, bold); err != nil {
		return err
	}

	remaining := [][]interface{}{{"Index", "ID", "Label", "Width", "Length", "Weight", "Cost"}}
	for _, idx := range result.RemainingItems {
		if idx < 0 || idx >= len(req.Items) {
			return fmt.Errorf("remaining item index %d out of range", idx)
		}
		it := req.Items[idx]
		remaining = append(remaining, []interface{}{idx, it.ID, it.Label, it.Width, it.Length, it.Weight, it.Cost})
	}
	if err := writeSheet(f, SheetRemaining, remaining, bold); err != nil {
		return err
	}

	summary := [][]interface{}{
		{"Field", "Value"},
		{"Run ID", result.RunID},
		{"Strategy", string(result.Strategy)},
		{"Bin Width", req.Bin.Width},
		{"Bin Length", req.Bin.Length},
		{"Bin Maximum Weight", req.Bin.MaximumWeight},
		{"Packed Items", len(result.PackedItems)},
		{"Packed Items Cost", result.PackedItemsCost},
		{"Packed Items Weight", result.PackedItemsWeight},
		{"Remaining Items", len(result.RemainingItems)},
		{"Remaining Items Cost", result.RemainingItemsCost},
		{"Remaining Items Weight", result.RemainingItemsWeight},
		{"Efficiency %", result.Efficiency(req.Bin)},
		{"Time Taken (ms)", result.TimeTakenMs},
	}
	if err := writeSheet(f, SheetSummary, summary, bold); err != nil {
		return err
	}

	if len(reports) > 0 {
		rows := [][]interface{}{{"Strategy", "Packed", "Remaining", "Packed Cost", "Remaining Cost", "Efficiency %", "Selected"}}
		for _, r := range reports {
			rows = append(rows, []interface{}{
				string(r.Strategy), r.PackedCount, r.RemainingCount,
				r.Result.PackedItemsCost, r.Result.RemainingItemsCost, r.Efficiency, r.Selected,
			})
		}
		if err := writeSheet(f, SheetStrategies, rows, bold); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

// writeSheet creates the sheet if needed and fills it from A1, styling the
// first row as a header.
func writeSheet(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return err
		}
	}
	return nil
}
