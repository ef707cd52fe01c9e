package domain

// MatchQuality classifies a join match rate against the fixed acceptance
// thresholds (>=95% PASS, >=90% REVIEW, otherwise FAIL).
type MatchQuality string

const (
	MatchQualityPass   MatchQuality = "PASS"
	MatchQualityReview MatchQuality = "REVIEW"
	MatchQualityFail   MatchQuality = "FAIL"
)

// JoinReport summarizes a boundary-to-data key join. UnmatchedCount is always
// exact; UnmatchedSample is bounded for reporting.
type JoinReport struct {
	TotalBoundaries  int          `json:"total_boundaries"`
	TotalDataRecords int          `json:"total_data_records"`
	MatchedCount     int          `json:"matched_count"`
	UnmatchedCount   int          `json:"unmatched_count"`
	MatchRatePercent float64      `json:"match_rate_percent"`
	MatchQuality     MatchQuality `json:"match_quality"`
	UnmatchedSample  []string     `json:"unmatched_sample,omitempty"`
}
