package operations

import (
	"sync"

	"censuscli/internal/config"
	"censuscli/internal/indicators"
	"censuscli/internal/joinvalidation"
	"censuscli/pkg/contracts/domain"
)

// RunState is the shared state of one pipeline run. Steps read the outputs
// of earlier steps from here and record their unit-of-work outcomes; no
// state survives a run.
type RunState struct {
	ID       string
	Config   *config.Config
	Manifest *RunManifest

	// CleanTables holds the filtered per-table outputs of the ingest step.
	CleanTables map[string]*domain.Table

	// IndicatorResult is the indicator engine output, set by the
	// indicators step.
	IndicatorResult *indicators.Result

	// JoinResult is the join validation output.
	JoinResult *joinvalidation.Result

	mu    sync.Mutex
	units []domain.UnitResult
}

// NewRunState creates the state for one run.
func NewRunState(id string, cfg *config.Config) *RunState {
	return &RunState{
		ID:          id,
		Config:      cfg,
		Manifest:    NewRunManifest(id),
		CleanTables: make(map[string]*domain.Table),
	}
}

// AddUnit records the terminal outcome of one unit of work.
func (s *RunState) AddUnit(u domain.UnitResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.units = append(s.units, u)
}

// Units returns a copy of the recorded unit outcomes.
func (s *RunState) Units() []domain.UnitResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.UnitResult(nil), s.units...)
}
