package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/BinPack/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// LabelInfo holds the data encoded into each item label's QR code.
type LabelInfo struct {
	Index   int    `json:"index"`
	ItemID  string `json:"id,omitempty"`
	Label   string `json:"label"`
	Width   int64  `json:"width"`
	Length  int64  `json:"length"`
	X       int64  `json:"x"`
	Y       int64  `json:"y"`
	Rotated bool   `json:"rotated"`
	RunID   string `json:"run,omitempty"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each label cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelMarginTop  = 12.7 // mm
	labelMarginLeft = 4.8  // mm
	labelWidth      = 66.7 // mm per label
	labelHeight     = 25.4 // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// ExportLabels generates a PDF of QR-coded labels, one per packed item, laid
// out on a standard label sheet (Avery 5160 / 3 columns x 10 rows on US Letter).
func ExportLabels(path string, req model.Request, result model.PackingResult) error {
	labels, err := CollectLabelInfos(req, result)
	if err != nil {
		return err
	}
	if len(labels) == 0 {
		return fmt.Errorf("no items packed to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", label.Label, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	// Light border as a cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	// Item indices are unique within a result
	imgName := fmt.Sprintf("qr_item_%d", info.Index)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)

	label := info.Label
	if pdf.GetStringWidth(label) > textW {
		for len(label) > 0 && pdf.GetStringWidth(label+"...") > textW {
			label = label[:len(label)-1]
		}
		label += "..."
	}
	pdf.CellFormat(textW, 4.5, label, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("%d x %d", info.Width, info.Length), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	pdf.CellFormat(textW, 3, fmt.Sprintf("Item %d @ (%d, %d)", info.Index, info.X, info.Y), "", 1, "L", false, 0, "")

	if info.Rotated {
		pdf.SetXY(textX, y+labelPadding+12.5)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(150, 100, 0)
		pdf.CellFormat(textW, 3, "Rotated 90\xb0", "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)
	return nil
}

// CollectLabelInfos extracts one label per packed item, in placement order.
// Width and Length are the item's own dimensions; Rotated tells whether it
// sits in the bin turned 90 degrees.
func CollectLabelInfos(req model.Request, result model.PackingResult) ([]LabelInfo, error) {
	labels := make([]LabelInfo, 0, len(result.PackedItems))
	for _, p := range result.PackedItems {
		if p.Index < 0 || p.Index >= len(req.Items) {
			return nil, fmt.Errorf("packed item index %d out of range", p.Index)
		}
		it := req.Items[p.Index]
		labels = append(labels, LabelInfo{
			Index:   p.Index,
			ItemID:  it.ID,
			Label:   itemLabel(req, p.Index),
			Width:   it.Width,
			Length:  it.Length,
			X:       p.Place.X,
			Y:       p.Place.Y,
			Rotated: p.Place.RotatedFor(it),
			RunID:   result.RunID,
		})
	}
	return labels, nil
}
