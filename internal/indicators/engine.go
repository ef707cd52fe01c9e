package indicators

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	pipeerrors "censuscli/internal/errors"
	"censuscli/pkg/contracts/domain"
)

// Result is the output of one engine run: the indicator table (geography key
// plus one column per indicator, preserving input row order and configuration
// column order), per-indicator metadata, and the raw computed series.
type Result struct {
	Table    *domain.Table
	Metadata []domain.IndicatorMetadata
	Series   map[string][]float64
}

// MetadataByName returns the metadata record for one indicator.
func (r *Result) MetadataByName(name string) (domain.IndicatorMetadata, bool) {
	for _, m := range r.Metadata {
		if m.Name == name {
			return m, true
		}
	}
	return domain.IndicatorMetadata{}, false
}

// Engine computes indicator series over a wide geography table.
//
// Computation is exactly two passes: pass 1 resolves every raw count and
// denominator directly from source columns; pass 2 resolves derived rates
// against the pass-1 cache and earlier pass-2 entries. Configurations that
// would need more than this one level of indirection (a rate referencing a
// rate defined later) are rejected loudly instead of being generalized into
// a dependency graph.
type Engine struct {
	keyColumn string
	logger    *slog.Logger
}

// NewEngine creates an indicator engine keyed on the given geography column.
func NewEngine(keyColumn string, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		keyColumn: keyColumn,
		logger:    logger.With(slog.String("component", "indicator_engine")),
	}
}

// Compute runs both passes over the source table. Individual indicators never
// fail the run: unresolvable columns, missing references and unknown types
// produce all-missing series tagged with a status code. Only structural
// configuration problems (duplicate names, unsupported forward references)
// return an error.
func (e *Engine) Compute(src *domain.Table, period *Period) (*Result, error) {
	n := src.RowCount()
	cache := make(map[string][]float64, len(period.Definitions))
	defined := make(map[string]struct{}, len(period.Definitions))
	for _, def := range period.Definitions {
		if _, dup := defined[def.Name]; dup {
			return nil, pipeerrors.Newf(pipeerrors.CodeDuplicateIndicator,
				"indicator %s defined more than once", def.Name)
		}
		defined[def.Name] = struct{}{}
	}

	result := &Result{Series: cache}
	var order []string

	e.logger.Info("Pass 1: raw counts and denominators", slog.String("period", period.Name))
	for i := range period.Definitions {
		def := &period.Definitions[i]
		if !def.IsLeaf() {
			continue
		}
		series, meta := e.computeLeaf(src, def, n)
		cache[def.Name] = series
		order = append(order, def.Name)
		result.Metadata = append(result.Metadata, meta)
	}

	e.logger.Info("Pass 2: derived rates", slog.String("period", period.Name))
	for i := range period.Definitions {
		def := &period.Definitions[i]
		if def.IsLeaf() {
			continue
		}
		series, meta, err := e.computeDerived(src, def, cache, defined, n)
		if err != nil {
			return nil, err
		}
		cache[def.Name] = series
		order = append(order, def.Name)
		result.Metadata = append(result.Metadata, meta)
	}

	result.Table = e.buildTable(src, order, cache)

	e.logger.Info("Indicator computation complete",
		slog.String("period", period.Name),
		slog.Int("indicators", len(order)),
		slog.Int("units", n))

	return result, nil
}

// computeLeaf resolves a raw or denominator indicator from its source column.
func (e *Engine) computeLeaf(src *domain.Table, def *domain.IndicatorDefinition, n int) ([]float64, domain.IndicatorMetadata) {
	meta := newMetadata(def)

	series, ok := src.NumericColumn(def.Code)
	if !ok || def.Code == "" {
		e.logger.Warn("Source column not found",
			slog.String("indicator", def.Name),
			slog.String("sas_code", def.Code))
		meta.Status = domain.StatusCodeNotFound
		return missingSeries(n), meta
	}

	meta.Status = domain.StatusOK
	fillStats(&meta, series, true)
	e.logger.Info("Indicator computed",
		slog.String("indicator", def.Name),
		slog.Int("non_null", meta.NonNullCount),
		slog.Int("non_zero", meta.NonZeroCount))
	return series, meta
}

// computeDerived resolves a pass-2 indicator: composite rate, ratio rate, or
// a degraded series for unknown types and unparseable calculations.
func (e *Engine) computeDerived(
	src *domain.Table,
	def *domain.IndicatorDefinition,
	cache map[string][]float64,
	defined map[string]struct{},
	n int,
) ([]float64, domain.IndicatorMetadata, error) {
	meta := newMetadata(def)

	if def.Type != domain.IndicatorTypeRate {
		e.logger.Warn("Unknown indicator type",
			slog.String("indicator", def.Name),
			slog.String("type", string(def.Type)))
		meta.Status = domain.StatusUnknownType
		return missingSeries(n), meta, nil
	}

	switch {
	case def.Composite != nil:
		ref := def.Composite.Reference
		refSeries, computed := cache[ref]
		if !computed {
			if _, definedLater := defined[ref]; definedLater {
				return nil, meta, pipeerrors.Newf(pipeerrors.CodeUnsupportedDependency,
					"indicator %s references %s before it is computed; only one level of rate indirection is supported, reorder the configuration", def.Name, ref)
			}
			e.logger.Warn("Referenced indicator not computed",
				slog.String("indicator", def.Name),
				slog.String("reference", ref))
			meta.Status = domain.StatusMissingReference
			return missingSeries(n), meta, nil
		}

		series := make([]float64, n)
		for i, v := range refSeries {
			// NaN propagates: result is missing exactly where the
			// reference is missing.
			series[i] = def.Composite.Base - v
		}
		meta.Status = domain.StatusOK
		fillStats(&meta, series, false)
		e.logger.Info("Composite rate computed",
			slog.String("indicator", def.Name),
			slog.String("reference", ref))
		return series, meta, nil

	case def.Ratio != nil:
		den, computed := cache[def.Ratio.DenominatorName]
		if !computed {
			if _, definedLater := defined[def.Ratio.DenominatorName]; definedLater {
				return nil, meta, pipeerrors.Newf(pipeerrors.CodeUnsupportedDependency,
					"indicator %s uses denominator %s before it is computed; denominators must be leaves", def.Name, def.Ratio.DenominatorName)
			}
			e.logger.Warn("Denominator not computed",
				slog.String("indicator", def.Name),
				slog.String("denominator", def.Ratio.DenominatorName))
			meta.Status = domain.StatusMissingDenominator
			return missingSeries(n), meta, nil
		}

		num, ok := src.NumericColumn(def.Ratio.NumeratorColumn)
		if !ok {
			num = missingSeries(n)
		}

		// Strict validity mask: defined only where the denominator is a
		// positive non-missing value and the numerator is non-missing.
		// Never divide-by-zero, never infinite.
		series := missingSeries(n)
		valid := 0
		for i := 0; i < n && i < len(num) && i < len(den); i++ {
			if domain.IsMissing(num[i]) || domain.IsMissing(den[i]) || den[i] <= 0 {
				continue
			}
			series[i] = 100 * num[i] / den[i]
			valid++
		}
		meta.Status = domain.StatusOK
		fillStats(&meta, series, false)
		e.logger.Info("Ratio rate computed",
			slog.String("indicator", def.Name),
			slog.Int("valid", valid))
		return series, meta, nil

	default:
		e.logger.Warn("No calculation formula",
			slog.String("indicator", def.Name))
		meta.Status = domain.StatusNoFormula
		return missingSeries(n), meta, nil
	}
}

// buildTable assembles the output table: geography key first, indicator
// columns in computed order, source row order preserved.
func (e *Engine) buildTable(src *domain.Table, order []string, cache map[string][]float64) *domain.Table {
	keys := src.Keys()
	t := &domain.Table{
		Name:      src.Name + "_indicators",
		KeyColumn: e.keyColumn,
		Columns:   append([]string{e.keyColumn}, order...),
		Rows:      make([][]string, len(keys)),
	}
	for i, key := range keys {
		row := make([]string, 0, len(t.Columns))
		row = append(row, key)
		for _, name := range order {
			series := cache[name]
			if i < len(series) {
				row = append(row, formatValue(series[i]))
			} else {
				row = append(row, "")
			}
		}
		t.Rows[i] = row
	}
	return t
}

func newMetadata(def *domain.IndicatorDefinition) domain.IndicatorMetadata {
	return domain.IndicatorMetadata{
		Name:        def.Name,
		Type:        def.Type,
		Description: def.Description,
		SASCode:     def.Code,
		Calculation: def.Calculation,
		Denominator: def.Denominator,
		SourceTable: def.Table,
	}
}

// fillStats computes summary statistics over the non-missing values.
// Counts stay zero and pointers nil for an all-missing series, so the
// metadata distinguishes "computed but zero" from "could not compute".
func fillStats(meta *domain.IndicatorMetadata, series []float64, includeSum bool) {
	var sum, minV, maxV float64
	nonNull, nonZero := 0, 0
	minV, maxV = math.Inf(1), math.Inf(-1)

	for _, v := range series {
		if domain.IsMissing(v) {
			continue
		}
		nonNull++
		if v > 0 {
			nonZero++
		}
		sum += v
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	meta.NonNullCount = nonNull
	if nonNull == 0 {
		return
	}
	mean := sum / float64(nonNull)
	meta.Mean = &mean
	meta.Min = &minV
	meta.Max = &maxV
	if includeSum {
		meta.NonZeroCount = nonZero
		meta.Sum = &sum
	}
}

func missingSeries(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

// formatValue renders a series value as a CSV cell: missing values become
// empty cells, numbers keep up to six decimal places with trailing zeros
// trimmed.
func formatValue(v float64) string {
	if domain.IsMissing(v) {
		return ""
	}
	s := strconv.FormatFloat(v, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
