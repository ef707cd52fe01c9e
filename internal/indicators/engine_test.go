package indicators

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pipeerrors "censuscli/internal/errors"
	"censuscli/pkg/contracts/domain"
)

func sourceTable() *domain.Table {
	return &domain.Table{
		Name:      "merged",
		KeyColumn: "zoneid",
		Columns:   []string{"zoneid", "81sas100001", "81sas100287"},
		Rows: [][]string{
			{"03BN0001", "100", "20"},
			{"03BN0002", "0", "5"},
		},
	}
}

func carPeriod(t *testing.T) *Period {
	t.Helper()
	cfg, err := parseConfig([]byte(`
years:
  "1981":
    TOTAL_HH:
      type: denominator
      code: "81sas100001"
    HH_NOCAR:
      code: "81sas100287"
    PCT_NO_CAR:
      type: rate
      code: "81sas100287"
      denominator: TOTAL_HH
      calculation: "100 * HH_NOCAR / TOTAL_HH"
    CAR_ACCESS_INDEX:
      type: rate
      calculation: "100 - PCT_NO_CAR"
`))
	require.NoError(t, err)
	period, ok := cfg.PeriodByName("1981")
	require.True(t, ok)
	return period
}

func TestComputeTwoPassScenario(t *testing.T) {
	engine := NewEngine("zoneid", nil)
	result, err := engine.Compute(sourceTable(), carPeriod(t))
	require.NoError(t, err)

	pct := result.Series["PCT_NO_CAR"]
	require.Len(t, pct, 2)
	assert.InDelta(t, 20.0, pct[0], 1e-9)
	// Zero denominator: the rate is missing there, never Inf or a panic.
	assert.True(t, math.IsNaN(pct[1]))

	idx := result.Series["CAR_ACCESS_INDEX"]
	require.Len(t, idx, 2)
	assert.InDelta(t, 80.0, idx[0], 1e-9)
	// Missingness propagates through the composite.
	assert.True(t, math.IsNaN(idx[1]))

	for _, name := range []string{"TOTAL_HH", "HH_NOCAR", "PCT_NO_CAR", "CAR_ACCESS_INDEX"} {
		meta, ok := result.MetadataByName(name)
		require.True(t, ok, name)
		assert.Equal(t, domain.StatusOK, meta.Status, name)
	}
}

func TestComputeOutputTable(t *testing.T) {
	engine := NewEngine("zoneid", nil)
	result, err := engine.Compute(sourceTable(), carPeriod(t))
	require.NoError(t, err)

	tab := result.Table
	assert.Equal(t, []string{"zoneid", "TOTAL_HH", "HH_NOCAR", "PCT_NO_CAR", "CAR_ACCESS_INDEX"}, tab.Columns)
	require.Equal(t, 2, tab.RowCount())
	assert.Equal(t, []string{"03BN0001", "100", "20", "20", "80"}, tab.Rows[0])
	// Missing values render as empty cells, zero stays "0".
	assert.Equal(t, []string{"03BN0002", "0", "5", "", ""}, tab.Rows[1])
}

func TestComputeLeafStats(t *testing.T) {
	engine := NewEngine("zoneid", nil)
	result, err := engine.Compute(sourceTable(), carPeriod(t))
	require.NoError(t, err)

	meta, _ := result.MetadataByName("TOTAL_HH")
	assert.Equal(t, 2, meta.NonNullCount)
	assert.Equal(t, 1, meta.NonZeroCount)
	require.NotNil(t, meta.Sum)
	assert.Equal(t, 100.0, *meta.Sum)

	// Rates carry no sum: summing percentages is meaningless.
	meta, _ = result.MetadataByName("PCT_NO_CAR")
	assert.Nil(t, meta.Sum)
	require.NotNil(t, meta.Mean)
	assert.InDelta(t, 20.0, *meta.Mean, 1e-9)
}

func TestComputeMissingSourceColumn(t *testing.T) {
	period := &Period{Name: "1981", Definitions: []domain.IndicatorDefinition{
		{Name: "GHOST", Type: domain.IndicatorTypeRaw, Code: "81sas999999"},
	}}
	engine := NewEngine("zoneid", nil)
	result, err := engine.Compute(sourceTable(), period)
	require.NoError(t, err)

	meta, _ := result.MetadataByName("GHOST")
	assert.Equal(t, domain.StatusCodeNotFound, meta.Status)
	assert.Equal(t, 0, meta.NonNullCount)
	assert.Nil(t, meta.Mean)
	for _, v := range result.Series["GHOST"] {
		assert.True(t, math.IsNaN(v))
	}
}

func TestComputeMissingReference(t *testing.T) {
	period := &Period{Name: "1981", Definitions: []domain.IndicatorDefinition{
		{
			Name: "IDX", Type: domain.IndicatorTypeRate,
			Calculation: "100 - NEVER_DEFINED",
			Composite:   &domain.CompositeCalc{Base: 100, Reference: "NEVER_DEFINED"},
		},
	}}
	engine := NewEngine("zoneid", nil)
	result, err := engine.Compute(sourceTable(), period)
	require.NoError(t, err)

	meta, _ := result.MetadataByName("IDX")
	assert.Equal(t, domain.StatusMissingReference, meta.Status)
}

func TestComputeMissingDenominator(t *testing.T) {
	period := &Period{Name: "1981", Definitions: []domain.IndicatorDefinition{
		{
			Name: "PCT", Type: domain.IndicatorTypeRate,
			Code: "81sas100287", Denominator: "NEVER_DEFINED",
			Ratio: &domain.RatioCalc{NumeratorColumn: "81sas100287", DenominatorName: "NEVER_DEFINED"},
		},
	}}
	engine := NewEngine("zoneid", nil)
	result, err := engine.Compute(sourceTable(), period)
	require.NoError(t, err)

	meta, _ := result.MetadataByName("PCT")
	assert.Equal(t, domain.StatusMissingDenominator, meta.Status)
}

func TestComputeNoFormula(t *testing.T) {
	period := &Period{Name: "1981", Definitions: []domain.IndicatorDefinition{
		{Name: "MYSTERY", Type: domain.IndicatorTypeRate, Calculation: "sqrt(X)"},
	}}
	engine := NewEngine("zoneid", nil)
	result, err := engine.Compute(sourceTable(), period)
	require.NoError(t, err)

	meta, _ := result.MetadataByName("MYSTERY")
	assert.Equal(t, domain.StatusNoFormula, meta.Status)
}

func TestComputeUnknownType(t *testing.T) {
	period := &Period{Name: "1981", Definitions: []domain.IndicatorDefinition{
		{Name: "WEIRD", Type: domain.IndicatorType("median")},
	}}
	engine := NewEngine("zoneid", nil)
	result, err := engine.Compute(sourceTable(), period)
	require.NoError(t, err)

	meta, _ := result.MetadataByName("WEIRD")
	assert.Equal(t, domain.StatusUnknownType, meta.Status)
}

func TestComputeRejectsForwardRateReference(t *testing.T) {
	// A rate referencing a rate defined after it needs a second level of
	// indirection; the engine refuses instead of reordering silently.
	period := &Period{Name: "1981", Definitions: []domain.IndicatorDefinition{
		{
			Name: "EARLY", Type: domain.IndicatorTypeRate,
			Composite: &domain.CompositeCalc{Base: 100, Reference: "LATE"},
		},
		{
			Name: "LATE", Type: domain.IndicatorTypeRate,
			Composite: &domain.CompositeCalc{Base: 100, Reference: "EARLY"},
		},
	}}
	engine := NewEngine("zoneid", nil)
	_, err := engine.Compute(sourceTable(), period)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pipeerrors.ErrUnsupportedDependency))
}

func TestComputeRejectsDuplicateNames(t *testing.T) {
	period := &Period{Name: "1981", Definitions: []domain.IndicatorDefinition{
		{Name: "DUP", Type: domain.IndicatorTypeRaw, Code: "81sas100001"},
		{Name: "DUP", Type: domain.IndicatorTypeRaw, Code: "81sas100287"},
	}}
	engine := NewEngine("zoneid", nil)
	_, err := engine.Compute(sourceTable(), period)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pipeerrors.ErrDuplicateIndicator))
}

func TestComputeNegativeDenominatorIsMissing(t *testing.T) {
	src := &domain.Table{
		Name: "merged", KeyColumn: "zoneid",
		Columns: []string{"zoneid", "num", "den"},
		Rows:    [][]string{{"03BN0001", "5", "-10"}},
	}
	period := &Period{Name: "1981", Definitions: []domain.IndicatorDefinition{
		{Name: "DEN", Type: domain.IndicatorTypeDenominator, Code: "den"},
		{
			Name: "PCT", Type: domain.IndicatorTypeRate,
			Code: "num", Denominator: "DEN",
			Ratio: &domain.RatioCalc{NumeratorColumn: "num", DenominatorName: "DEN"},
		},
	}}
	engine := NewEngine("zoneid", nil)
	result, err := engine.Compute(src, period)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(result.Series["PCT"][0]))
}

func TestBuildSummaryCoverage(t *testing.T) {
	engine := NewEngine("zoneid", nil)
	result, err := engine.Compute(sourceTable(), carPeriod(t))
	require.NoError(t, err)

	s := BuildSummary("1981", "run-1", result)
	assert.Equal(t, "1981", s.Period)
	assert.Equal(t, 2, s.UnitCount)
	assert.Equal(t, 4, s.IndicatorCount)

	assert.Equal(t, 100.0, s.Indicators["TOTAL_HH"].CoveragePercent)
	// One of two units has a valid rate: 50% coverage.
	assert.Equal(t, 50.0, s.Indicators["PCT_NO_CAR"].CoveragePercent)

	counts := s.StatusCounts()
	assert.Equal(t, 4, counts[domain.StatusOK])
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", formatValue(math.NaN()))
	assert.Equal(t, "0", formatValue(0))
	assert.Equal(t, "66.666667", formatValue(200.0/3.0))
	assert.Equal(t, "12.5", formatValue(12.5))
	assert.Equal(t, "100", formatValue(100))
}
