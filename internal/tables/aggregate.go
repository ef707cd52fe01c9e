package tables

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"censuscli/internal/config"
	"censuscli/pkg/contracts/domain"
)

// AggregateMismatch is one column whose fine-grained sum deviates from the
// baseline aggregate by more than the tolerance.
type AggregateMismatch struct {
	Column      string  `json:"column"`
	Sum         float64 `json:"sum"`
	Baseline    float64 `json:"baseline"`
	PercentDiff float64 `json:"percent_diff"`
}

// AggregateResult is the advisory outcome of an aggregate reconciliation.
type AggregateResult struct {
	Skipped        bool                `json:"skipped"`
	BaselinePath   string              `json:"baseline_path,omitempty"`
	ColumnsChecked int                 `json:"columns_checked"`
	Mismatches     []AggregateMismatch `json:"mismatches,omitempty"`
}

// OK reports whether every checked column is within tolerance. A skipped
// validation (no baseline file) passes vacuously.
func (r *AggregateResult) OK() bool {
	return len(r.Mismatches) == 0
}

// AggregateValidator reconciles a filtered fine-grained table against a
// previously produced coarse aggregate: the column-wise sums of the fine
// table must match the single aggregate row within tolerance. Findings are
// advisory; callers log mismatches and continue.
type AggregateValidator struct {
	logger *slog.Logger
}

// NewAggregateValidator creates an aggregate validator.
func NewAggregateValidator(logger *slog.Logger) *AggregateValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &AggregateValidator{logger: logger.With(slog.String("component", "aggregate_validator"))}
}

// Validate sums every numeric column of the fine-grained table and compares
// against the first row of the baseline file for columns present in both.
// A column mismatches when |sum - baseline| / max(|baseline|, 1) exceeds the
// 1% tolerance (strictly greater). An absent baseline file skips validation:
// the validator is regression protection, not gatekeeping.
func (v *AggregateValidator) Validate(t *domain.Table, baselinePath string) (*AggregateResult, error) {
	result := &AggregateResult{BaselinePath: baselinePath}

	if _, err := os.Stat(baselinePath); err != nil {
		v.logger.Warn("Aggregate baseline not found, skipping validation",
			slog.String("table", t.Name),
			slog.String("baseline", baselinePath))
		result.Skipped = true
		return result, nil
	}

	baseline, err := readBaselineRow(baselinePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read aggregate baseline %s: %w", baselinePath, err)
	}

	keyIdx := t.KeyIndex()
	for i, col := range t.Columns {
		if i == keyIdx {
			continue
		}
		sum, numeric := columnSum(t, col)
		if !numeric {
			continue
		}
		baseValue, ok := baseline[strings.ToLower(col)]
		if !ok || domain.IsMissing(baseValue) {
			continue
		}
		result.ColumnsChecked++

		pctDiff := math.Abs(sum-baseValue) / math.Max(math.Abs(baseValue), 1) * 100
		if pctDiff > config.AggregateTolerancePercent {
			result.Mismatches = append(result.Mismatches, AggregateMismatch{
				Column:      col,
				Sum:         sum,
				Baseline:    baseValue,
				PercentDiff: pctDiff,
			})
		}
	}

	if !result.OK() {
		v.logger.Warn("Aggregate validation found mismatches",
			slog.String("table", t.Name),
			slog.Int("mismatches", len(result.Mismatches)),
			slog.Int("columns_checked", result.ColumnsChecked))
		for i, m := range result.Mismatches {
			if i == 5 {
				break
			}
			v.logger.Warn("Column mismatch",
				slog.String("column", m.Column),
				slog.Float64("sum", m.Sum),
				slog.Float64("baseline", m.Baseline),
				slog.Float64("percent_diff", m.PercentDiff))
		}
	} else {
		v.logger.Info("Aggregate validation passed",
			slog.String("table", t.Name),
			slog.Int("columns_checked", result.ColumnsChecked))
	}

	return result, nil
}

// columnSum sums a column, ignoring blank cells. A column counts as numeric
// only when every non-blank cell parses; identifier columns are skipped.
func columnSum(t *domain.Table, col string) (float64, bool) {
	cells, ok := t.Column(col)
	if !ok {
		return 0, false
	}
	var sum float64
	var seen bool
	for _, cell := range cells {
		if strings.TrimSpace(cell) == "" {
			continue
		}
		v := domain.ParseNumeric(cell)
		if domain.IsMissing(v) {
			return 0, false
		}
		sum += v
		seen = true
	}
	return sum, seen
}

// readBaselineRow reads the first data row of a baseline file into a
// lower-cased column -> value map.
func readBaselineRow(path string) (map[string]float64, error) {
	var records [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		records, err = readWorkbookRows(path)
	default:
		records, err = readCSVRows(path)
	}
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("baseline has no data row")
	}

	header := records[0]
	row := records[1]
	baseline := make(map[string]float64, len(header))
	for i, col := range header {
		if i >= len(row) {
			break
		}
		baseline[strings.ToLower(strings.TrimSpace(col))] = domain.ParseNumeric(row[i])
	}
	return baseline, nil
}
