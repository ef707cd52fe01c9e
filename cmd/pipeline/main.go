// Command pipeline runs the full census processing sequence: table ingest,
// indicator computation, and join validation.
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

	logger.Info("Starting census pipeline",
		slog.String("version", config.AppVersion),
		slog.Int("year", cfg.Pipeline.Year),
		slog.String("area_prefix", cfg.Pipeline.AreaPrefix))

	manager := operations.NewManager(cfg, logger)
	summary, err := manager.Run(context.Background())
	if err != nil {
		logger.Error("Pipeline run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if !summary.OK() {
		_, failed, _ := summary.Counts()
		fmt.Fprintf(os.Stderr, "pipeline completed with %d failed units\n", failed)
		os.Exit(1)
	}
}
