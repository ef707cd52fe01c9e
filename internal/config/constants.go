package config

// Application constants. Thresholds are deliberately fixed, not configurable:
// they are the documented acceptance protocol of the pipeline.
const (
	AppName    = "Census Pipeline"
	AppVersion = "1.0.0"

	// Aggregate reconciliation: a column mismatches when the relative
	// difference between the fine-grained sum and the baseline aggregate
	// exceeds this percentage (strictly greater).
	AggregateTolerancePercent = 1.0

	// Join quality tiers.
	MatchRatePassThreshold   = 95.0
	MatchRateReviewThreshold = 90.0

	// Bounded samples for diagnostics.
	UnmatchedSampleSize    = 10
	UnfilteredKeySampleSize = 5

	// Defaults for the Manchester 1981 extract this pipeline was built for.
	DefaultCensusYear = 1981
	DefaultAreaPrefix = "03BN"
	DefaultKeyColumn  = "zoneid"

	// Boundary reference field names.
	DefaultBoundaryUnitColumn = "ED81CD"
	DefaultBoundaryAreaColumn = "LAD81CD"
)
