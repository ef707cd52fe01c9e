package domain

import "time"

// UnitStatus is the terminal status of one unit of work (one table, one
// phase). Review means the unit completed but produced advisory findings.
type UnitStatus string

const (
	UnitStatusOK     UnitStatus = "ok"
	UnitStatusFailed UnitStatus = "failed"
	UnitStatusReview UnitStatus = "review"
)

// UnitResult records the outcome of one unit of work within a run.
type UnitResult struct {
	Unit        string     `json:"unit"`
	Status      UnitStatus `json:"status"`
	RowCount    int        `json:"row_count,omitempty"`
	ColumnCount int        `json:"column_count,omitempty"`
	Message     string     `json:"message,omitempty"`
}

// RunSummary enumerates every unit of work of a pipeline run and its terminal
// status. Every run ends with one of these, never a bare stack trace.
type RunSummary struct {
	RunID     string       `json:"run_id"`
	StartTime time.Time    `json:"start_time"`
	EndTime   time.Time    `json:"end_time"`
	Units     []UnitResult `json:"units"`
}

// OK reports whether no unit of work failed. Review units do not fail a run;
// the operator decides whether to proceed.
func (s *RunSummary) OK() bool {
	for _, u := range s.Units {
		if u.Status == UnitStatusFailed {
			return false
		}
	}
	return true
}

// Counts returns the number of units per terminal status.
func (s *RunSummary) Counts() (ok, failed, review int) {
	for _, u := range s.Units {
		switch u.Status {
		case UnitStatusFailed:
			failed++
		case UnitStatusReview:
			review++
		default:
			ok++
		}
	}
	return ok, failed, review
}
