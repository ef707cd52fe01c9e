package operations

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"censuscli/internal/config"
	"censuscli/internal/infrastructure"
	"censuscli/pkg/contracts/domain"
)

// Manager runs pipeline steps in order against a shared run state. Steps run
// sequentially; a step error fails the run and skips dependent steps, but the
// run summary is always produced and the manifest always saved.
type Manager struct {
	cfg    *config.Config
	logger *slog.Logger
	steps  []Step
}

// NewManager creates a run manager with the standard step sequence.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:    cfg,
		logger: logger,
		steps: []Step{
			NewIngestStep(logger),
			NewIndicatorsStep(logger),
			NewJoinValidationStep(logger),
		},
	}
}

// NewManagerWithSteps creates a manager running only the given steps, for
// single-phase invocations.
func NewManagerWithSteps(cfg *config.Config, logger *slog.Logger, steps ...Step) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{cfg: cfg, logger: logger, steps: steps}
}

// Run executes the step sequence and returns the run summary. The returned
// error is non-nil when any step failed structurally; advisory findings
// surface only through the summary's unit statuses.
func (m *Manager) Run(ctx context.Context) (*domain.RunSummary, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	runID := infrastructure.GetRunID(ctx)
	logger := m.logger.With(slog.String("run_id", runID))

	state := NewRunState(runID, m.cfg)
	summary := &domain.RunSummary{
		RunID:     runID,
		StartTime: time.Now(),
	}

	logger.Info("Pipeline run starting", slog.Int("steps", len(m.steps)))

	var runErr error
	for _, step := range m.steps {
		stepState := NewStepState(step.ID(), step.Name())

		if runErr != nil {
			stepState.Skip(fmt.Sprintf("skipped: %v", runErr))
			state.Manifest.RecordStep(stepState)
			logger.Warn("Step skipped",
				slog.String("step", step.ID()),
				slog.String("reason", runErr.Error()))
			continue
		}

		stepState.Start()
		logger.Info("Step starting", slog.String("step", step.ID()))

		if err := step.Execute(ctx, state); err != nil {
			stepState.Fail(err)
			state.Manifest.RecordStep(stepState)
			logger.Error("Step failed",
				slog.String("step", step.ID()),
				slog.String("error", err.Error()),
				slog.Duration("duration", stepState.Duration()))
			runErr = fmt.Errorf("step %s failed: %w", step.ID(), err)
			continue
		}

		stepState.Complete()
		state.Manifest.RecordStep(stepState)
		logger.Info("Step completed",
			slog.String("step", step.ID()),
			slog.Duration("duration", stepState.Duration()))
	}

	summary.EndTime = time.Now()
	summary.Units = state.Units()
	m.logSummary(logger, summary)

	if runErr != nil {
		state.Manifest.Finish("failed", runErr.Error())
	} else {
		state.Manifest.Finish("completed", "")
	}
	manifestPath := filepath.Join(m.cfg.Paths.ReportsDir,
		fmt.Sprintf("run_%s_manifest.json", runID))
	if err := state.Manifest.Save(manifestPath); err != nil {
		logger.Error("Failed to save run manifest",
			slog.String("path", manifestPath),
			slog.String("error", err.Error()))
	}

	return summary, runErr
}

// logSummary enumerates every unit of work with its terminal status. Nothing
// is folded away: a reader of the run log sees each table, the indicator
// stage, and the join stage individually.
func (m *Manager) logSummary(logger *slog.Logger, summary *domain.RunSummary) {
	ok, failed, review := summary.Counts()
	logger.Info("Pipeline run finished",
		slog.Duration("elapsed", summary.EndTime.Sub(summary.StartTime)),
		slog.Int("units_ok", ok),
		slog.Int("units_review", review),
		slog.Int("units_failed", failed))

	for _, u := range summary.Units {
		attrs := []any{
			slog.String("unit", u.Unit),
			slog.String("status", string(u.Status)),
		}
		if u.RowCount > 0 {
			attrs = append(attrs, slog.Int("rows", u.RowCount))
		}
		if u.ColumnCount > 0 {
			attrs = append(attrs, slog.Int("columns", u.ColumnCount))
		}
		if u.Message != "" {
			attrs = append(attrs, slog.String("message", u.Message))
		}
		switch u.Status {
		case domain.UnitStatusFailed:
			logger.Error("Unit result", attrs...)
		case domain.UnitStatusReview:
			logger.Warn("Unit result", attrs...)
		default:
			logger.Info("Unit result", attrs...)
		}
	}
}
