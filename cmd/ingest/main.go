// Command ingest assembles the configured census tables from their raw part
// files, filters them to the target area, reconciles aggregates, and writes
// the clean per-table CSVs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"censuscli/internal/config"
	"censuscli/internal/infrastructure"
	"censuscli/internal/operations"
)

func main() {
	configFile := flag.String("config", "", "path to YAML configuration file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogger()

	logger.Info("Starting table ingest",
		slog.Int("year", cfg.Pipeline.Year),
		slog.Int("tables", len(cfg.Pipeline.Tables)),
		slog.String("raw_dir", cfg.Paths.RawDir))

	manager := operations.NewManagerWithSteps(cfg, logger,
		operations.NewIngestStep(logger))
	summary, err := manager.Run(context.Background())
	if err != nil {
		logger.Error("Ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if !summary.OK() {
		_, failed, _ := summary.Counts()
		fmt.Fprintf(os.Stderr, "ingest completed with %d failed tables\n", failed)
		os.Exit(1)
	}
}
