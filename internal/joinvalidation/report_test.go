package joinvalidation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"censuscli/pkg/contracts/domain"
)

func TestNarrativePass(t *testing.T) {
	report := domain.JoinReport{
		TotalBoundaries:  100,
		TotalDataRecords: 98,
		MatchedCount:     98,
		UnmatchedCount:   2,
		MatchRatePercent: 98.0,
		MatchQuality:     domain.MatchQualityPass,
		UnmatchedSample:  []string{"03BN0042", "03BN0077"},
	}

	out := Narrative(report, "gis/boundary.csv", "indicators.csv", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	assert.Contains(t, out, "### PASS")
	assert.Contains(t, out, "| Match Rate | 98.00% |")
	assert.Contains(t, out, "03BN0042")
	assert.Contains(t, out, "gis/boundary.csv")
	assert.Contains(t, out, "leading zeros preserved")
}

func TestNarrativeFailListsRemediation(t *testing.T) {
	report := domain.JoinReport{
		TotalBoundaries:  10,
		MatchedCount:     2,
		UnmatchedCount:   8,
		MatchRatePercent: 20.0,
		MatchQuality:     domain.MatchQualityFail,
		UnmatchedSample:  []string{"A", "B"},
	}

	out := Narrative(report, "b.csv", "d.csv", time.Now())
	assert.Contains(t, out, "### FAIL")
	assert.Contains(t, out, "Verify unit identifier formats")
	assert.Contains(t, out, "and 6 more")
}

func TestNarrativeReviewRequiresJustification(t *testing.T) {
	report := domain.JoinReport{
		TotalBoundaries:  100,
		MatchedCount:     92,
		UnmatchedCount:   8,
		MatchRatePercent: 92.0,
		MatchQuality:     domain.MatchQualityReview,
	}

	out := Narrative(report, "b.csv", "d.csv", time.Now())
	assert.Contains(t, out, "### REVIEW")
	assert.Contains(t, out, "document a justification")
}
