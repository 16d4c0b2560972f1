package project

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/piwi3910/BinPack/internal/model"
)

// LoadRequest reads and validates a packing request from a JSON file.
func LoadRequest(path string) (model.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Request{}, fmt.Errorf("failed to read request file: %w", err)
	}
	req, err := model.ParseRequest(data)
	if err != nil {
		return model.Request{}, fmt.Errorf("%s: %w", path, err)
	}
	return req, nil
}

// SaveRequest writes a request as JSON, for example after importing items
// from a spreadsheet.
func SaveRequest(path string, req model.Request) error {
	return writeJSON(path, req)
}

// SaveResult writes a packing result as JSON.
func SaveResult(path string, result model.PackingResult) error {
	return writeJSON(path, result)
}

// LoadResult reads a packing result previously written by SaveResult.
func LoadResult(path string) (model.PackingResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.PackingResult{}, fmt.Errorf("failed to read result file: %w", err)
	}
	var result model.PackingResult
	if err := json.Unmarshal(data, &result); err != nil {
		return model.PackingResult{}, fmt.Errorf("failed to parse result file: %w", err)
	}
	if result.PackedItems == nil {
		result.PackedItems = []model.PackedItem{}
	}
	if result.RemainingItems == nil {
		result.RemainingItems = []int{}
	}
	return result, nil
}
