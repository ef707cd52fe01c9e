package operations

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"censuscli/internal/tables"
)

const (
	StepIDLoadClean   = "load_clean"
	StepNameLoadClean = "Load Clean Tables"
)

// LoadCleanStep reads previously ingested clean tables back from disk, so the
// indicator and join-validation binaries can run without re-ingesting.
type LoadCleanStep struct {
	logger *slog.Logger
}

// NewLoadCleanStep creates the clean-table loading step.
func NewLoadCleanStep(logger *slog.Logger) *LoadCleanStep {
	return &LoadCleanStep{logger: logger.With(slog.String("step", StepIDLoadClean))}
}

func (s *LoadCleanStep) ID() string   { return StepIDLoadClean }
func (s *LoadCleanStep) Name() string { return StepNameLoadClean }

func (s *LoadCleanStep) Execute(ctx context.Context, state *RunState) error {
	cfg := state.Config
	year := cfg.Pipeline.Year

	for _, spec := range cfg.Pipeline.Tables {
		path := filepath.Join(cfg.Paths.CleanDir, strconv.Itoa(year),
			fmt.Sprintf("%s_%d_ed_level.csv", spec.Name, year))
		if _, err := os.Stat(path); err != nil {
			s.logger.Warn("Clean table not found, skipping",
				slog.String("table", spec.Name),
				slog.String("path", path))
			continue
		}
		t, err := tables.ReadTable(path, spec.Name, cfg.Pipeline.KeyColumn)
		if err != nil {
			return fmt.Errorf("failed to read clean table %s: %w", spec.Name, err)
		}
		state.CleanTables[spec.Name] = t
		s.logger.Info("Clean table loaded",
			slog.String("table", spec.Name),
			slog.Int("rows", t.RowCount()))
	}

	if len(state.CleanTables) == 0 {
		return fmt.Errorf("no clean tables found under %s; run the ingest phase first", cfg.Paths.CleanDir)
	}
	return nil
}
