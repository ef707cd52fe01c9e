package operations

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"censuscli/internal/config"
	"censuscli/internal/exporter"
	"censuscli/internal/files"
	"censuscli/internal/indicators"
	"censuscli/internal/joinvalidation"
	"censuscli/internal/tables"
	"censuscli/pkg/contracts/domain"
)

// IngestStep assembles every configured source table from its raw parts,
// filters it to the target administrative area, reconciles it against the
// aggregate baseline, and writes the clean per-table CSV. Each table is an
// independent unit of work: one table's failure never halts the others.
type IngestStep struct {
	logger *slog.Logger
	csv    *exporter.CSVWriter
}

// NewIngestStep creates the ingest step.
func NewIngestStep(logger *slog.Logger) *IngestStep {
	return &IngestStep{
		logger: logger.With(slog.String("step", StepIDIngest)),
		csv:    exporter.NewCSVWriter(),
	}
}

func (s *IngestStep) ID() string   { return StepIDIngest }
func (s *IngestStep) Name() string { return StepNameIngest }

// Execute processes every configured table. It returns an error only when no
// table survived, since downstream steps would have nothing to consume.
func (s *IngestStep) Execute(ctx context.Context, state *RunState) error {
	cfg := state.Config
	discovery := files.NewDiscovery(cfg.Paths.RawDir)
	loader := tables.NewLoader(discovery, cfg.Pipeline.KeyColumn, s.logger)
	aggValidator := tables.NewAggregateValidator(s.logger)

	for _, spec := range cfg.Pipeline.Tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.logger.Info("Processing table",
			slog.String("table", spec.Name),
			slog.String("description", spec.Description))

		raw, err := loader.Load(cfg.Pipeline.Year, spec)
		if err != nil {
			s.logger.Error("Table load failed",
				slog.String("table", spec.Name),
				slog.String("error", err.Error()))
			state.AddUnit(domain.UnitResult{
				Unit:    spec.Name,
				Status:  domain.UnitStatusFailed,
				Message: err.Error(),
			})
			continue
		}

		filtered, count, err := tables.FilterPrefix(raw, cfg.Pipeline.AreaPrefix)
		if err != nil {
			s.logger.Error("Prefix filter failed",
				slog.String("table", spec.Name),
				slog.String("error", err.Error()))
			state.AddUnit(domain.UnitResult{
				Unit:    spec.Name,
				Status:  domain.UnitStatusFailed,
				Message: err.Error(),
			})
			continue
		}
		s.logger.Info("Filtered to area",
			slog.String("table", spec.Name),
			slog.String("prefix", cfg.Pipeline.AreaPrefix),
			slog.Int("units", count))

		status := domain.UnitStatusOK
		message := ""
		if spec.AggregateFile != "" {
			baseline := filepath.Join(cfg.Paths.AggregatesDir, spec.AggregateFile)
			aggResult, err := aggValidator.Validate(filtered, baseline)
			if err != nil {
				// Advisory: a broken baseline degrades to review, not failure.
				s.logger.Warn("Aggregate validation error",
					slog.String("table", spec.Name),
					slog.String("error", err.Error()))
				status = domain.UnitStatusReview
				message = fmt.Sprintf("aggregate validation error: %v", err)
			} else if !aggResult.OK() {
				status = domain.UnitStatusReview
				message = fmt.Sprintf("%d columns exceed the %v%% aggregate tolerance",
					len(aggResult.Mismatches), config.AggregateTolerancePercent)
			}
		}

		outPath := filepath.Join(cfg.Paths.CleanDir, strconv.Itoa(cfg.Pipeline.Year),
			fmt.Sprintf("%s_%d_ed_level.csv", spec.Name, cfg.Pipeline.Year))
		if err := s.csv.WriteTable(outPath, filtered); err != nil {
			s.logger.Error("Failed to write clean table",
				slog.String("table", spec.Name),
				slog.String("error", err.Error()))
			state.AddUnit(domain.UnitResult{
				Unit:    spec.Name,
				Status:  domain.UnitStatusFailed,
				Message: err.Error(),
			})
			continue
		}
		state.Manifest.AddArtifact("clean_table", outPath, StepIDIngest, filtered.RowCount())

		state.CleanTables[spec.Name] = filtered
		state.AddUnit(domain.UnitResult{
			Unit:        spec.Name,
			Status:      status,
			RowCount:    filtered.RowCount(),
			ColumnCount: len(filtered.Columns),
			Message:     message,
		})
		s.logger.Info("Table ingested",
			slog.String("table", spec.Name),
			slog.Int("rows", filtered.RowCount()),
			slog.Int("columns", len(filtered.Columns)))
	}

	if len(state.CleanTables) == 0 {
		return fmt.Errorf("no tables ingested: all %d configured tables failed", len(cfg.Pipeline.Tables))
	}
	return nil
}

// IndicatorsStep merges the clean tables into one wide table and runs the
// two-pass indicator engine over it, writing the indicator CSV plus the
// metadata and summary documents.
type IndicatorsStep struct {
	logger *slog.Logger
	csv    *exporter.CSVWriter
}

// NewIndicatorsStep creates the indicator computation step.
func NewIndicatorsStep(logger *slog.Logger) *IndicatorsStep {
	return &IndicatorsStep{
		logger: logger.With(slog.String("step", StepIDIndicators)),
		csv:    exporter.NewCSVWriter(),
	}
}

func (s *IndicatorsStep) ID() string   { return StepIDIndicators }
func (s *IndicatorsStep) Name() string { return StepNameIndicators }

func (s *IndicatorsStep) Execute(ctx context.Context, state *RunState) error {
	cfg := state.Config
	period := strconv.Itoa(cfg.Pipeline.Year)

	fail := func(err error) error {
		state.AddUnit(domain.UnitResult{
			Unit:    StepIDIndicators,
			Status:  domain.UnitStatusFailed,
			Message: err.Error(),
		})
		return err
	}

	indCfg, err := indicators.LoadConfig(cfg.Paths.IndicatorConfigFile)
	if err != nil {
		return fail(err)
	}
	periodCfg, ok := indCfg.PeriodByName(period)
	if !ok {
		return fail(fmt.Errorf("no indicator configuration for period %s", period))
	}

	// Deterministic merge order regardless of map iteration.
	names := make([]string, 0, len(state.CleanTables))
	for name := range state.CleanTables {
		names = append(names, name)
	}
	sort.Strings(names)
	src := make([]*domain.Table, 0, len(names))
	for _, name := range names {
		src = append(src, state.CleanTables[name])
	}
	merged, err := tables.MergeOnKey(src...)
	if err != nil {
		return fail(fmt.Errorf("failed to merge clean tables: %w", err))
	}
	s.logger.Info("Merged clean tables",
		slog.Int("tables", len(src)),
		slog.Int("rows", merged.RowCount()),
		slog.Int("columns", len(merged.Columns)))

	engine := indicators.NewEngine(cfg.Pipeline.KeyColumn, s.logger)
	result, err := engine.Compute(merged, periodCfg)
	if err != nil {
		return fail(err)
	}
	state.IndicatorResult = result

	csvPath := filepath.Join(cfg.Paths.IndicatorsDir, period,
		fmt.Sprintf("eds_%s_indicators.csv", period))
	if err := s.csv.WriteTable(csvPath, result.Table); err != nil {
		return fail(err)
	}
	state.Manifest.AddArtifact("indicator_table", csvPath, StepIDIndicators, result.Table.RowCount())

	metaPath := filepath.Join(cfg.Paths.ReportsDir,
		fmt.Sprintf("indicators_%s_metadata.json", period))
	if err := exporter.WriteJSON(metaPath, result.Metadata); err != nil {
		return fail(err)
	}
	state.Manifest.AddArtifact("metadata", metaPath, StepIDIndicators, len(result.Metadata))

	summary := indicators.BuildSummary(period, state.ID, result)
	summaryPath := filepath.Join(cfg.Paths.ReportsDir,
		fmt.Sprintf("indicators_%s_summary.json", period))
	if err := exporter.WriteJSON(summaryPath, summary); err != nil {
		return fail(err)
	}
	state.Manifest.AddArtifact("summary", summaryPath, StepIDIndicators, 0)

	for status, count := range summary.StatusCounts() {
		s.logger.Info("Indicator status",
			slog.String("status", status),
			slog.Int("count", count))
	}

	state.AddUnit(domain.UnitResult{
		Unit:        StepIDIndicators,
		Status:      domain.UnitStatusOK,
		RowCount:    result.Table.RowCount(),
		ColumnCount: len(result.Table.Columns),
	})
	return nil
}

// JoinValidationStep validates geography coverage of the indicator table
// against the boundary reference and writes the join report artifacts.
// Match rates below PASS are advisory: the unit is marked for review, the
// run is not failed.
type JoinValidationStep struct {
	logger *slog.Logger
	csv    *exporter.CSVWriter
}

// NewJoinValidationStep creates the join validation step.
func NewJoinValidationStep(logger *slog.Logger) *JoinValidationStep {
	return &JoinValidationStep{
		logger: logger.With(slog.String("step", StepIDJoinValidation)),
		csv:    exporter.NewCSVWriter(),
	}
}

func (s *JoinValidationStep) ID() string   { return StepIDJoinValidation }
func (s *JoinValidationStep) Name() string { return StepNameJoinValidation }

func (s *JoinValidationStep) Execute(ctx context.Context, state *RunState) error {
	cfg := state.Config

	fail := func(err error) error {
		state.AddUnit(domain.UnitResult{
			Unit:    StepIDJoinValidation,
			Status:  domain.UnitStatusFailed,
			Message: err.Error(),
		})
		return err
	}

	// When the indicator step ran in this process its result is in state;
	// the standalone binary reads the indicator table back from disk.
	var dataTable *domain.Table
	dataSource := "indicator table"
	if state.IndicatorResult != nil {
		dataTable = state.IndicatorResult.Table
	} else {
		period := strconv.Itoa(cfg.Pipeline.Year)
		path := filepath.Join(cfg.Paths.IndicatorsDir, period,
			fmt.Sprintf("eds_%s_indicators.csv", period))
		t, err := tables.ReadTable(path, "indicators", cfg.Pipeline.KeyColumn)
		if err != nil {
			return fail(fmt.Errorf("no indicator table available for join validation: %w", err))
		}
		dataTable = t
		dataSource = path
	}

	boundaryUnits, err := joinvalidation.LoadBoundarySet(
		cfg.Paths.BoundaryFile,
		cfg.Pipeline.BoundaryUnitColumn,
		cfg.Pipeline.BoundaryAreaColumn,
		cfg.Pipeline.AreaPrefix,
	)
	if err != nil {
		return fail(err)
	}
	s.logger.Info("Boundary reference loaded",
		slog.Int("units", len(boundaryUnits)),
		slog.String("area", cfg.Pipeline.AreaPrefix))

	validator := joinvalidation.NewValidator(cfg.Pipeline.BoundaryUnitColumn, s.logger)
	result, err := validator.Validate(boundaryUnits, dataTable)
	if err != nil {
		return fail(err)
	}
	state.JoinResult = result

	statsPath := filepath.Join(cfg.Paths.ReportsDir, "join_validation_statistics.json")
	if err := exporter.WriteJSON(statsPath, result.Report); err != nil {
		return fail(err)
	}
	state.Manifest.AddArtifact("join_statistics", statsPath, StepIDJoinValidation, 0)

	joinedPath := filepath.Join(cfg.Paths.ReportsDir, "joined_attributes.csv")
	if err := s.csv.WriteTable(joinedPath, result.Joined); err != nil {
		return fail(err)
	}
	state.Manifest.AddArtifact("joined_table", joinedPath, StepIDJoinValidation, result.Joined.RowCount())

	narrativePath := filepath.Join(cfg.Paths.ReportsDir, "join_validation_summary.md")
	narrative := joinvalidation.Narrative(result.Report, cfg.Paths.BoundaryFile,
		dataSource, time.Now())
	if err := exporter.WriteMarkdown(narrativePath, narrative); err != nil {
		return fail(err)
	}
	state.Manifest.AddArtifact("narrative", narrativePath, StepIDJoinValidation, 0)

	status := domain.UnitStatusOK
	message := ""
	if result.Report.MatchQuality != domain.MatchQualityPass {
		status = domain.UnitStatusReview
		message = fmt.Sprintf("match rate %.2f%% (%s)",
			result.Report.MatchRatePercent, result.Report.MatchQuality)
	}
	state.AddUnit(domain.UnitResult{
		Unit:     StepIDJoinValidation,
		Status:   status,
		RowCount: result.Joined.RowCount(),
		Message:  message,
	})
	return nil
}
