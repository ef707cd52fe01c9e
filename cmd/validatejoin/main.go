// Command validatejoin checks geography coverage of the indicator table
// against the boundary reference and writes the join validation report.
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

	logger.Info("Starting join validation",
		slog.String("boundary_file", cfg.Paths.BoundaryFile),
		slog.String("area_prefix", cfg.Pipeline.AreaPrefix))

	manager := operations.NewManagerWithSteps(cfg, logger,
		operations.NewJoinValidationStep(logger))
	summary, err := manager.Run(context.Background())
	if err != nil {
		logger.Error("Join validation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	for _, u := range summary.Units {
		if u.Message != "" {
			fmt.Printf("%s: %s (%s)\n", u.Unit, u.Status, u.Message)
		} else {
			fmt.Printf("%s: %s\n", u.Unit, u.Status)
		}
	}
}
