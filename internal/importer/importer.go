// Package importer builds item lists from CSV, Excel and DXF files.
// Tabular imports support automatic delimiter detection, flexible column
// mapping, and case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/piwi3910/BinPack/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Items    []model.Item
	Errors   []string
	Warnings []string
}

// Request wraps the imported items in a request for the given bin.
func (r ImportResult) Request(bin model.Bin) model.Request {
	items := r.Items
	if items == nil {
		items = []model.Item{}
	}
	return model.Request{Items: items, Bin: bin}
}

// ColumnMapping maps semantic column roles to their indices in the data.
// A negative index means the column is absent.
type ColumnMapping struct {
	Label    int
	Width    int
	Length   int
	Weight   int
	Cost     int
	Quantity int
}

// maxQuantity bounds how many copies a single row may expand into.
const maxQuantity = 10000

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"label":    {"label", "name", "part", "part name", "description", "desc", "piece", "item"},
	"width":    {"width", "w", "x"},
	"length":   {"length", "len", "l", "height", "h", "depth", "d", "y"},
	"weight":   {"weight", "wt", "mass", "kg"},
	"cost":     {"cost", "value", "price", "profit"},
	"quantity": {"quantity", "qty", "count", "num", "amount", "pcs", "pieces"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		// Prefer consistency first, then more columns
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or the positional
// mapping (Label, Width, Length, Weight, Cost, Quantity) and false otherwise.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Label: -1, Width: -1, Length: -1, Weight: -1, Cost: -1, Quantity: -1}
	slots := map[string]*int{
		"label":    &mapping.Label,
		"width":    &mapping.Width,
		"length":   &mapping.Length,
		"weight":   &mapping.Weight,
		"cost":     &mapping.Cost,
		"quantity": &mapping.Quantity,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				if slot := slots[role]; *slot == -1 {
					*slot = i
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{Label: 0, Width: 1, Length: 2, Weight: 3, Cost: 4, Quantity: 5}, false
	}
	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseWhole parses a whole number, accepting integral decimals like "600.0".
func parseWhole(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) >= math.MaxInt64 {
		return 0, fmt.Errorf("not a whole number")
	}
	return int64(f), nil
}

// parseRow extracts the items described by one row. The quantity column
// expands into that many identical items, each with its own ID.
// Returns the items and an error message if the row was rejected.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, itemCount int) ([]model.Item, string) {
	label := getCell(row, mapping.Label)
	if label == "" {
		label = fmt.Sprintf("Item %d", itemCount+1)
	}

	var dims [2]int64
	for i, col := range []struct {
		name string
		idx  int
	}{{"width", mapping.Width}, {"length", mapping.Length}} {
		s := getCell(row, col.idx)
		if s == "" {
			return nil, fmt.Sprintf("%s: Missing %s value", rowLabel, col.name)
		}
		v, err := parseWhole(s)
		if err != nil {
			return nil, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, col.name, s)
		}
		dims[i] = v
	}

	weight, cost, qty := int64(0), int64(0), int64(1)
	for _, col := range []struct {
		name string
		idx  int
		dst  *int64
	}{{"weight", mapping.Weight, &weight}, {"cost", mapping.Cost, &cost}, {"quantity", mapping.Quantity, &qty}} {
		s := getCell(row, col.idx)
		if s == "" {
			continue
		}
		v, err := parseWhole(s)
		if err != nil {
			return nil, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, col.name, s)
		}
		*col.dst = v
	}

	if dims[0] < 0 || dims[1] < 0 || weight < 0 || cost < 0 {
		return nil, fmt.Sprintf("%s: Width, length, weight, and cost must not be negative", rowLabel)
	}
	if qty <= 0 {
		return nil, fmt.Sprintf("%s: Quantity must be positive", rowLabel)
	}
	if qty > maxQuantity {
		return nil, fmt.Sprintf("%s: Quantity too large (max %d)", rowLabel, maxQuantity)
	}

	var items []model.Item
	for i := int64(0); i < qty; i++ {
		it := model.NewItem(label, dims[0], dims[1])
		it.Weight = weight
		it.Cost = cost
		items = append(items, it)
	}
	return items, ""
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Import picks an importer by file extension.
func Import(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt", ".tsv":
		return ImportCSV(path)
	case ".xlsx", ".xlsm", ".xls":
		return ImportExcel(path)
	case ".dxf":
		return ImportDXF(path)
	default:
		return ImportResult{Errors: []string{fmt.Sprintf("Unsupported file type '%s'", filepath.Ext(path))}}
	}
}

// ImportCSV imports items from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	records, err := readCSV(bytes.NewReader(data), delimiter)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}
	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportCSVFromReader imports items from a CSV reader with a known delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	records, err := readCSV(reader, delimiter)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}}
	}
	if len(records) == 0 {
		return ImportResult{Errors: []string{"File is empty"}}
	}
	return importFromRows(records, "Line", nil)
}

func readCSV(r io.Reader, delimiter rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// ImportExcel imports items from the first sheet of an Excel workbook.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for both CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.Width == -1 {
			missing = append(missing, "Width")
		}
		if mapping.Length == -1 {
			missing = append(missing, "Length")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 3 {
		// An unrecognised header: the width column is not numeric
		if _, err := parseWhole(strings.TrimSpace(rows[0][1])); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	rowsImported := 0
	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		items, errMsg := parseRow(row, mapping, rowLabel, rowsImported)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		rowsImported++
		result.Items = append(result.Items, items...)
	}

	return result
}
