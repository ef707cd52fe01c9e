package joinvalidation

import (
	"log/slog"
	"math"

	"censuscli/internal/config"
	"censuscli/pkg/contracts/domain"
)

// Result holds the full outcome of one join validation: the report, the
// joined table (every boundary row retained, blanks where unmatched), and
// the complete unmatched identifier list.
type Result struct {
	Report    domain.JoinReport
	Joined    *domain.Table
	Unmatched []string
}

// Validator performs boundary-to-data join validation.
type Validator struct {
	boundaryColumn string
	logger         *slog.Logger
}

// NewValidator creates a join validator. boundaryColumn names the identifier
// column of the boundary side in the joined output.
func NewValidator(boundaryColumn string, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		boundaryColumn: boundaryColumn,
		logger:         logger.With(slog.String("component", "join_validator")),
	}
}

// Validate left-joins the boundary unit set against the data table. Both key
// spaces are normalized identically (trim, uppercase, leading zeros kept).
// Every boundary row is retained; a boundary unit counts as matched when at
// least one data row shares its normalized key. A zero-sized boundary set is
// not an error: match rate 0, tier FAIL.
func (v *Validator) Validate(boundaryUnits []string, data *domain.Table) (*Result, error) {
	keyIdx := data.KeyIndex()

	// Index data rows by normalized key; first occurrence wins.
	dataRows := make(map[string][]string, data.RowCount())
	if keyIdx >= 0 {
		for _, row := range data.Rows {
			if keyIdx >= len(row) {
				continue
			}
			key := domain.NormalizeUnitID(row[keyIdx])
			if _, ok := dataRows[key]; !ok {
				dataRows[key] = row
			}
		}
	}

	joined := &domain.Table{
		Name:      "joined_" + data.Name,
		KeyColumn: v.boundaryColumn,
		Columns:   append([]string{v.boundaryColumn}, data.Columns...),
	}

	matched := 0
	var unmatched []string
	blank := make([]string, len(data.Columns))

	for _, unit := range boundaryUnits {
		row := append([]string(nil), unit)
		if match, ok := dataRows[domain.NormalizeUnitID(unit)]; ok {
			matched++
			cells := append([]string(nil), match...)
			for len(cells) < len(data.Columns) {
				cells = append(cells, "")
			}
			row = append(row, cells...)
		} else {
			unmatched = append(unmatched, unit)
			row = append(row, blank...)
		}
		joined.Rows = append(joined.Rows, row)
	}

	total := len(boundaryUnits)
	rate := 0.0
	if total > 0 {
		rate = float64(matched) / float64(total) * 100
	}

	report := domain.JoinReport{
		TotalBoundaries:  total,
		TotalDataRecords: data.RowCount(),
		MatchedCount:     matched,
		UnmatchedCount:   total - matched,
		MatchRatePercent: math.Round(rate*100) / 100,
		MatchQuality:     classify(rate),
		UnmatchedSample:  sample(unmatched, config.UnmatchedSampleSize),
	}

	v.logger.Info("Join validation complete",
		slog.Int("total_boundaries", report.TotalBoundaries),
		slog.Int("matched", report.MatchedCount),
		slog.Int("unmatched", report.UnmatchedCount),
		slog.Float64("match_rate_percent", report.MatchRatePercent),
		slog.String("match_quality", string(report.MatchQuality)))

	return &Result{Report: report, Joined: joined, Unmatched: unmatched}, nil
}

// classify maps an unrounded match rate onto the fixed quality tiers.
func classify(rate float64) domain.MatchQuality {
	switch {
	case rate >= config.MatchRatePassThreshold:
		return domain.MatchQualityPass
	case rate >= config.MatchRateReviewThreshold:
		return domain.MatchQualityReview
	default:
		return domain.MatchQualityFail
	}
}

func sample(ids []string, n int) []string {
	if len(ids) <= n {
		return append([]string(nil), ids...)
	}
	return append([]string(nil), ids[:n]...)
}
