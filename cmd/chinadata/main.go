// Command chinadata harmonizes the annual China macro series from on-disk
// World Bank and Penn World Table snapshots, extends them to the configured
// horizon, derives the secondary indicators, and writes the CSV, XLSX,
// Markdown and quality-report artifacts.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fernando-duarte/china-data-sub002/internal/config"
	"github.com/fernando-duarte/china-data-sub002/internal/exporter"
	"github.com/fernando-duarte/china-data-sub002/internal/infrastructure"
	"github.com/fernando-duarte/china-data-sub002/internal/pipeline"
	"github.com/fernando-duarte/china-data-sub002/internal/sources"
)

const countryCode = "CHN"

func main() {
	dataDir := flag.String("data", "", "directory with source snapshots (overrides config)")
	outDir := flag.String("out", "", "directory for output artifacts (overrides config)")
	configFile := flag.String("config", "chinadata.yaml", "optional YAML config file")
	endYear := flag.Int("end-year", 0, "extend the panel through this year (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.Run.DataDir = *dataDir
	}
	if *outDir != "" {
		cfg.Run.OutputDir = *outDir
	}
	if *endYear != 0 {
		cfg.Parameters.EndYear = *endYear
		if err := cfg.Parameters.Validate(); err != nil {
			slog.Error("configuration invalid", "error", err)
			os.Exit(1)
		}
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("logger initialization failed", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	catalog := config.DefaultCatalog()

	tables, err := loadSources(ctx, cfg.Run.DataDir, logger)
	if err != nil {
		logger.ErrorContext(ctx, "loading source snapshots failed", "error", err)
		os.Exit(1)
	}

	orchestrator := pipeline.New(cfg, catalog, logger)
	result, err := orchestrator.Run(ctx, tables)
	if err != nil {
		logger.ErrorContext(ctx, "pipeline run failed", "error", err)
		os.Exit(1)
	}

	if err := writeArtifacts(cfg, catalog, result, logger); err != nil {
		logger.ErrorContext(ctx, "writing artifacts failed", "error", err)
		os.Exit(1)
	}
	logger.InfoContext(ctx, "run complete",
		"run_id", result.State.ID,
		"output_dir", cfg.Run.OutputDir,
	)
}

func loadSources(ctx context.Context, dataDir string, logger *slog.Logger) ([]*sources.Table, error) {
	wdi, err := sources.LoadWorldBankCSV(ctx, filepath.Join(dataDir, "worldbank_china.csv"), countryCode, logger)
	if err != nil {
		return nil, err
	}
	pwt, err := sources.LoadPWTWorkbook(ctx, filepath.Join(dataDir, "pwt.xlsx"), countryCode, logger)
	if err != nil {
		return nil, err
	}
	return []*sources.Table{wdi, pwt}, nil
}

func writeArtifacts(cfg *config.Config, catalog config.Catalog, result *pipeline.Result, logger *slog.Logger) error {
	out := cfg.Run.OutputDir
	if err := exporter.NewCSVWriter(catalog, logger).Write(filepath.Join(out, "china_panel.csv"), result.Panel); err != nil {
		return err
	}
	if err := exporter.NewXLSXWriter(catalog, logger).Write(filepath.Join(out, "china_panel.xlsx"), result.Panel, result.Report); err != nil {
		return err
	}
	if err := exporter.NewMarkdownWriter(catalog, logger).Write(filepath.Join(out, "china_panel.md"), result.Panel, result.Report); err != nil {
		return err
	}
	return exporter.WriteQualityJSON(filepath.Join(out, "quality_report.json"), result.Report, logger)
}
