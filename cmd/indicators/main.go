// Command indicators computes the configured indicators from previously
// ingested clean tables and writes the indicator CSV plus metadata and
// summary documents.
package main

import (
	"context"
	"flag"
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

	logger.Info("Starting indicator computation",
		slog.Int("year", cfg.Pipeline.Year),
		slog.String("definitions", cfg.Paths.IndicatorConfigFile))

	manager := operations.NewManagerWithSteps(cfg, logger,
		operations.NewLoadCleanStep(logger),
		operations.NewIndicatorsStep(logger))
	if _, err := manager.Run(context.Background()); err != nil {
		logger.Error("Indicator computation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
