package indicators

import (
	"math"
	"time"

	"censuscli/pkg/contracts/domain"
)

// IndicatorSummary is the per-indicator coverage entry of the summary
// document.
type IndicatorSummary struct {
	Description     string               `json:"description,omitempty"`
	Type            domain.IndicatorType `json:"type"`
	Status          string               `json:"status"`
	SASCode         string               `json:"sas_code,omitempty"`
	NonNullCount    int                  `json:"non_null_count"`
	CoveragePercent float64              `json:"coverage_percent"`
	Mean            *float64             `json:"mean,omitempty"`
	Min             *float64             `json:"min,omitempty"`
	Max             *float64             `json:"max,omitempty"`
}

// Summary aggregates one engine run for coverage reporting.
type Summary struct {
	Period          string                      `json:"period"`
	RunID           string                      `json:"run_id,omitempty"`
	UnitCount       int                         `json:"unit_count"`
	IndicatorCount  int                         `json:"indicator_count"`
	ComputationDate string                      `json:"computation_date"`
	Indicators      map[string]IndicatorSummary `json:"indicators"`
}

// BuildSummary derives the summary document from an engine result.
func BuildSummary(period, runID string, result *Result) *Summary {
	unitCount := result.Table.RowCount()
	s := &Summary{
		Period:          period,
		RunID:           runID,
		UnitCount:       unitCount,
		IndicatorCount:  len(result.Metadata),
		ComputationDate: time.Now().Format(time.RFC3339),
		Indicators:      make(map[string]IndicatorSummary, len(result.Metadata)),
	}

	for _, meta := range result.Metadata {
		coverage := 0.0
		if unitCount > 0 {
			coverage = math.Round(100*float64(meta.NonNullCount)/float64(unitCount)*10) / 10
		}
		s.Indicators[meta.Name] = IndicatorSummary{
			Description:     meta.Description,
			Type:            meta.Type,
			Status:          meta.Status,
			SASCode:         meta.SASCode,
			NonNullCount:    meta.NonNullCount,
			CoveragePercent: coverage,
			Mean:            meta.Mean,
			Min:             meta.Min,
			Max:             meta.Max,
		}
	}
	return s
}

// StatusCounts returns how many indicators ended in each status.
func (s *Summary) StatusCounts() map[string]int {
	counts := make(map[string]int)
	for _, ind := range s.Indicators {
		counts[ind.Status]++
	}
	return counts
}
