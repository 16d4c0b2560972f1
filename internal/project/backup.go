package project

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/piwi3910/BinPack/internal/model"
)

// BackupData is the top-level structure for import/export of all application data.
type BackupData struct {
	Version   string          `json:"version"`
	CreatedAt string          `json:"created_at"`
	Config    model.AppConfig `json:"config"`
	Requests  []SavedRequest  `json:"requests,omitempty"`
}

// SavedRequest is a request file captured in a backup.
type SavedRequest struct {
	Path    string        `json:"path"`
	Request model.Request `json:"request"`
}

// CollectRecentRequests loads every recent request that can still be read.
// Unreadable paths are returned separately so the caller can report them.
func CollectRecentRequests(config model.AppConfig) ([]SavedRequest, []string) {
	var saved []SavedRequest
	var skipped []string
	for _, path := range config.RecentRequests {
		req, err := LoadRequest(path)
		if err != nil {
			skipped = append(skipped, path)
			continue
		}
		saved = append(saved, SavedRequest{Path: path, Request: req})
	}
	return saved, skipped
}

// RestoreRequests writes every backed-up request to its original path.
func RestoreRequests(requests []SavedRequest) error {
	for _, r := range requests {
		if err := SaveRequest(r.Path, r.Request); err != nil {
			return fmt.Errorf("restore %s: %w", r.Path, err)
		}
	}
	return nil
}

// ExportAllData writes the config and any saved requests to a single JSON file.
func ExportAllData(exportPath string, config model.AppConfig, requests []SavedRequest) error {
	backup := BackupData{
		Version:   "1.0.0",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    config,
		Requests:  requests,
	}
	if err := writeJSON(exportPath, backup); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportAllData reads a backup JSON file and returns the contained data.
// Every contained request is validated. The caller is responsible for
// applying the imported config.
func ImportAllData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	for i, r := range backup.Requests {
		if r.Path == "" {
			return BackupData{}, fmt.Errorf("invalid backup file: request %d: missing path", i)
		}
		if err := r.Request.Validate(); err != nil {
			return BackupData{}, fmt.Errorf("invalid backup file: request %d: %w", i, err)
		}
	}
	if backup.Config.RecentRequests == nil {
		backup.Config.RecentRequests = []string{}
	}
	return backup, nil
}
