// Package cli wires the binpack command line to the packer, the importers
// and the exporters.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/piwi3910/BinPack/internal/engine"
	"github.com/piwi3910/BinPack/internal/export"
	"github.com/piwi3910/BinPack/internal/importer"
	"github.com/piwi3910/BinPack/internal/model"
	"github.com/piwi3910/BinPack/internal/project"
)

// maxRecentRequests bounds the recent request history kept in the config file.
const maxRecentRequests = 10

// stdinPath as an items file reads CSV from standard input.
const stdinPath = "-"

// Config holds the parsed command line.
type Config struct {
	ConfigPath string

	RequestFile string
	ItemsFile   string
	BinWidth    int64
	BinLength   int64
	MaxWeight   int64 // Negative means unconstrained

	OutFile     string
	SaveRequest string
	PDFFile     string
	LabelsFile  string
	XLSXFile    string

	Compare   bool
	Parallel  bool
	Algorithm string
	Verbose   bool

	// Backup modes replace packing.
	ExportBackup string
	ImportBackup string
}

// Command runs one packing job.
type Command struct {
	config Config
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func NewCommand(config Config, stdout, stderr io.Writer) *Command {
	return &Command{config: config, stdin: os.Stdin, stdout: stdout, stderr: stderr}
}

// WithStdin sets where "--items -" reads from.
func (c *Command) WithStdin(r io.Reader) *Command {
	c.stdin = r
	return c
}

// Execute loads the request, packs it and writes every requested output.
func (c *Command) Execute(ctx context.Context) error {
	appCfg, err := project.LoadAppConfig(c.configPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := NewLogger(c.stderr, appCfg.LogLevel, c.config.Verbose)

	if c.config.ExportBackup != "" || c.config.ImportBackup != "" {
		return c.runBackup(logger, appCfg)
	}

	settings, err := c.settings(appCfg)
	if err != nil {
		return err
	}

	req, err := c.loadRequest(logger)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if c.config.SaveRequest != "" {
		if err := project.SaveRequest(c.config.SaveRequest, req); err != nil {
			return fmt.Errorf("save request: %w", err)
		}
	}

	result, err := engine.New(settings).WithLogger(logger).Pack(req)
	if err != nil {
		return err
	}

	var reports []engine.StrategyReport
	if c.config.Compare {
		if reports, err = engine.CompareStrategies(req); err != nil {
			return err
		}
		for _, r := range reports {
			logger.Info("strategy comparison",
				"strategy", string(r.Strategy),
				"packed", r.PackedCount,
				"remaining", r.RemainingCount,
				"remaining_cost", r.Result.RemainingItemsCost,
				"efficiency", fmt.Sprintf("%.1f%%", r.Efficiency),
				"selected", r.Selected)
		}
	}

	if err := c.writeOutputs(req, result, reports); err != nil {
		return err
	}

	if c.config.RequestFile != "" {
		appCfg.AddRecentRequest(c.config.RequestFile, maxRecentRequests)
		if err := project.SaveAppConfig(c.configPath(), appCfg); err != nil {
			logger.Warn("could not update recent requests", "error", err)
		}
	}
	return nil
}

// runBackup exports or restores the config together with the recent requests.
func (c *Command) runBackup(logger *slog.Logger, appCfg model.AppConfig) error {
	switch {
	case c.config.ExportBackup != "" && c.config.ImportBackup != "":
		return errors.New("use either --export-backup or --import-backup, not both")
	case c.config.RequestFile != "" || c.config.ItemsFile != "":
		return errors.New("backup flags cannot be combined with --request or --items")

	case c.config.ExportBackup != "":
		saved, skipped := project.CollectRecentRequests(appCfg)
		for _, path := range skipped {
			logger.Warn("recent request not backed up", "file", path)
		}
		if err := project.ExportAllData(c.config.ExportBackup, appCfg, saved); err != nil {
			return err
		}
		logger.Info("backup exported", "file", c.config.ExportBackup, "requests", len(saved))
		return nil

	default:
		backup, err := project.ImportAllData(c.config.ImportBackup)
		if err != nil {
			return err
		}
		if err := project.RestoreRequests(backup.Requests); err != nil {
			return err
		}
		if err := project.SaveAppConfig(c.configPath(), backup.Config); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		logger.Info("backup imported", "file", c.config.ImportBackup,
			"version", backup.Version, "requests", len(backup.Requests))
		return nil
	}
}

func (c *Command) configPath() string {
	if c.config.ConfigPath != "" {
		return c.config.ConfigPath
	}
	return project.DefaultConfigPath()
}

// settings starts from the saved defaults and applies command line overrides.
func (c *Command) settings(appCfg model.AppConfig) (model.Settings, error) {
	settings := model.DefaultSettings()
	appCfg.ApplyToSettings(&settings)

	if c.config.Parallel {
		settings.Parallel = true
	}
	if c.config.Algorithm != "" {
		algo, ok := model.ParseAlgorithm(c.config.Algorithm)
		if !ok {
			return model.Settings{}, fmt.Errorf("unknown algorithm %q (want %s or %s)",
				c.config.Algorithm, model.AlgorithmGreedy, model.AlgorithmGenetic)
		}
		settings.Algorithm = algo
	}
	return settings, nil
}

func (c *Command) loadRequest(logger *slog.Logger) (model.Request, error) {
	switch {
	case c.config.RequestFile != "" && c.config.ItemsFile != "":
		return model.Request{}, errors.New("use either --request or --items, not both")

	case c.config.RequestFile != "":
		return project.LoadRequest(c.config.RequestFile)

	case c.config.ItemsFile != "":
		imported, err := c.importItems()
		if err != nil {
			return model.Request{}, err
		}
		for _, w := range imported.Warnings {
			logger.Warn("import", "file", c.config.ItemsFile, "warning", w)
		}
		if len(imported.Errors) > 0 {
			return model.Request{}, fmt.Errorf("import %s: %s", c.config.ItemsFile, strings.Join(imported.Errors, "; "))
		}

		bin := model.NewBin(c.config.BinWidth, c.config.BinLength)
		if c.config.MaxWeight >= 0 {
			bin.MaximumWeight = c.config.MaxWeight
		}
		req := imported.Request(bin)
		if err := req.Validate(); err != nil {
			return model.Request{}, err
		}
		logger.Debug("items imported", "file", c.config.ItemsFile, "items", len(req.Items))
		return req, nil

	default:
		return model.Request{}, errors.New("either --request or --items is required")
	}
}

// importItems reads the item list from a file, or CSV from stdin for "-".
func (c *Command) importItems() (importer.ImportResult, error) {
	if c.config.ItemsFile != stdinPath {
		return importer.Import(c.config.ItemsFile), nil
	}
	data, err := io.ReadAll(c.stdin)
	if err != nil {
		return importer.ImportResult{}, fmt.Errorf("read stdin: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return importer.ImportResult{Errors: []string{"File is empty"}}, nil
	}
	return importer.ImportCSVFromReader(bytes.NewReader(data), importer.DetectCSVDelimiter(data)), nil
}

func (c *Command) writeOutputs(req model.Request, result model.PackingResult, reports []engine.StrategyReport) error {
	if c.config.OutFile != "" {
		if err := project.SaveResult(c.config.OutFile, result); err != nil {
			return fmt.Errorf("save result: %w", err)
		}
	} else {
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}

	if c.config.PDFFile != "" {
		if err := export.ExportPDF(c.config.PDFFile, req, result, reports); err != nil {
			return fmt.Errorf("export pdf: %w", err)
		}
	}
	if c.config.LabelsFile != "" {
		if err := export.ExportLabels(c.config.LabelsFile, req, result); err != nil {
			return fmt.Errorf("export labels: %w", err)
		}
	}
	if c.config.XLSXFile != "" {
		if err := export.ExportExcel(c.config.XLSXFile, req, result, reports); err != nil {
			return fmt.Errorf("export excel: %w", err)
		}
	}
	return nil
}
