// Package export renders packing results to PDF reports, QR-coded item
// labels and Excel workbooks.
package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/BinPack/internal/engine"
	"github.com/piwi3910/BinPack/internal/model"
)

// itemColor represents an RGB color for a packed item.
type itemColor struct {
	R, G, B int
}

var itemColors = []itemColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// ExportPDF writes a report for a packing result: a layout page showing
// where every packed item sits in the bin, followed by a summary page.
// reports, when non-empty, adds a strategy comparison table to the summary.
func ExportPDF(path string, req model.Request, result model.PackingResult, reports []engine.StrategyReport) error {
	if req.Bin.Width <= 0 || req.Bin.Length <= 0 {
		return fmt.Errorf("bin %dx%d has no area to draw", req.Bin.Width, req.Bin.Length)
	}
	for _, p := range result.PackedItems {
		if p.Index < 0 || p.Index >= len(req.Items) {
			return fmt.Errorf("packed item index %d out of range", p.Index)
		}
	}
	for _, idx := range result.RemainingItems {
		if idx < 0 || idx >= len(req.Items) {
			return fmt.Errorf("remaining item index %d out of range", idx)
		}
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderLayoutPage(pdf, req, result)

	pdf.AddPage()
	renderSummaryPage(pdf, req, result, reports)

	return pdf.OutputFileAndClose(path)
}

// itemLabel falls back to the item's request position when it has no label.
func itemLabel(req model.Request, index int) string {
	if index >= 0 && index < len(req.Items) && req.Items[index].Label != "" {
		return req.Items[index].Label
	}
	return fmt.Sprintf("#%d", index)
}

// renderLayoutPage draws the bin and its packed items on the current page.
func renderLayoutPage(pdf *fpdf.Fpdf, req model.Request, result model.PackingResult) {
	bin := req.Bin

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Bin layout (%d x %d) - %s", bin.Width, bin.Length, result.Strategy)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Items: %d packed, %d remaining | Used area: %s of %s | Efficiency: %.1f%%",
		len(result.PackedItems), len(result.RemainingItems), result.UsedArea().String(), bin.Area().String(), result.Efficiency(bin))
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight

	scale := math.Min(drawWidth/float64(bin.Width), drawHeight/float64(bin.Length))
	canvasW := float64(bin.Width) * scale
	canvasH := float64(bin.Length) * scale

	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Empty bin space is hatched; packed items are drawn over it
	pdf.SetFillColor(235, 235, 235)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")
	drawHatchPattern(pdf, offsetX, offsetY, canvasW, canvasH)

	for i, p := range result.PackedItems {
		col := itemColors[i%len(itemColors)]
		pw := float64(p.Place.Width) * scale
		ph := float64(p.Place.Length) * scale
		px := offsetX + float64(p.Place.X)*scale
		py := offsetY + float64(p.Place.Y)*scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(px, py, pw, ph, "FD")

		if pw > 15 && ph > 8 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			pdf.SetTextColor(0, 0, 0)

			label := itemLabel(req, p.Index)
			dims := fmt.Sprintf("%dx%d", p.Place.Width, p.Place.Length)
			labelW := pdf.GetStringWidth(label)
			dimsW := pdf.GetStringWidth(dims)

			if labelW < pw-2 {
				pdf.SetXY(px+(pw-labelW)/2, py+ph/2-4)
				pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
			}
			if ph > 14 && dimsW < pw-2 {
				pdf.SetXY(px+(pw-dimsW)/2, py+ph/2)
				pdf.CellFormat(dimsW, 4, dims, "", 0, "C", false, 0, "")
			}
		}
	}

	drawDimensionAnnotations(pdf, bin, offsetX, offsetY, canvasW, canvasH)
	drawItemsLegend(pdf, req, result, offsetY+canvasH+5)
}

// drawHatchPattern draws diagonal lines inside a rectangle.
func drawHatchPattern(pdf *fpdf.Fpdf, x, y, w, h float64) {
	pdf.SetDrawColor(190, 190, 190)
	pdf.SetLineWidth(0.15)

	spacing := 4.0
	maxDist := w + h

	for d := spacing; d < maxDist; d += spacing {
		x1 := x + math.Max(0, d-h)
		y1 := y + math.Min(h, d)
		x2 := x + math.Min(w, d)
		y2 := y + math.Max(0, d-w)

		pdf.Line(x1, y1, x2, y2)
	}
}

// drawDimensionAnnotations adds width and length labels outside the bin rectangle.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, bin model.Bin, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%d", bin.Width)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	lengthLabel := fmt.Sprintf("%d", bin.Length)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	lLabelW := pdf.GetStringWidth(lengthLabel)
	pdf.SetXY(offsetX-3-lLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(lLabelW, 4, lengthLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawItemsLegend renders a compact legend of packed items below the bin.
func drawItemsLegend(pdf *fpdf.Fpdf, req model.Request, result model.PackingResult, startY float64) {
	if len(result.PackedItems) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Items packed:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	for i, p := range result.PackedItems {
		if startY > pageHeight-marginBottom {
			break
		}
		col := itemColors[i%len(itemColors)]
		label := fmt.Sprintf("%s (%dx%d)", itemLabel(req, p.Index), p.Place.Width, p.Place.Length)
		if p.Place.RotatedFor(req.Items[p.Index]) {
			label += " R"
		}
		labelW := pdf.GetStringWidth(label) + 6

		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")

		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

// renderSummaryPage draws totals, the optional strategy comparison and the
// list of items that did not make it into the bin.
func renderSummaryPage(pdf *fpdf.Fpdf, req model.Request, result model.PackingResult, reports []engine.StrategyReport) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Packing Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Strategy", string(result.Strategy)},
		{"Bin", fmt.Sprintf("%d x %d, max weight %d", req.Bin.Width, req.Bin.Length, req.Bin.MaximumWeight)},
		{"Items Packed", fmt.Sprintf("%d (cost %d, weight %d)", len(result.PackedItems), result.PackedItemsCost, result.PackedItemsWeight)},
		{"Items Remaining", fmt.Sprintf("%d (cost %d, weight %d)", len(result.RemainingItems), result.RemainingItemsCost, result.RemainingItemsWeight)},
		{"Area Efficiency", fmt.Sprintf("%.1f%%", result.Efficiency(req.Bin))},
		{"Time Taken", fmt.Sprintf("%d ms", result.TimeTakenMs)},
	}
	if result.RunID != "" {
		summaryItems = append(summaryItems, struct {
			label string
			value string
		}{"Run ID", result.RunID})
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(120, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	if len(reports) > 0 {
		y += 5
		y = renderStrategyTable(pdf, reports, y)
	}

	if len(result.RemainingItems) > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "Items Not Packed", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)

		for _, idx := range result.RemainingItems {
			if y > pageHeight-marginBottom-10 {
				pdf.AddPage()
				y = marginTop
				pdf.SetFont("Helvetica", "", 9)
			}
			it := req.Items[idx]
			pdf.SetXY(marginLeft+5, y)
			text := fmt.Sprintf("- %s: %d x %d, weight %d, cost %d", itemLabel(req, idx), it.Width, it.Length, it.Weight, it.Cost)
			pdf.CellFormat(200, 5, text, "", 0, "L", false, 0, "")
			y += 5
		}
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by BinPack - Single Bin Packer", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// renderStrategyTable draws one row per strategy and returns the next y.
func renderStrategyTable(pdf *fpdf.Fpdf, reports []engine.StrategyReport, y float64) float64 {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Strategy Comparison", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{70, 30, 30, 45, 35, 30}
	headers := []string{"Strategy", "Packed", "Remaining", "Remaining Cost", "Efficiency", "Selected"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, r := range reports {
		selected := ""
		if r.Selected {
			selected = "yes"
		}
		rowData := []string{
			string(r.Strategy),
			fmt.Sprintf("%d", r.PackedCount),
			fmt.Sprintf("%d", r.RemainingCount),
			fmt.Sprintf("%d", r.Result.RemainingItemsCost),
			fmt.Sprintf("%.1f%%", r.Efficiency),
			selected,
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		xPos = marginLeft
		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}
	return y
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
