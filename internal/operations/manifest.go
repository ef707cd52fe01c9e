package operations

import (
	"sync"
	"time"

	"censuscli/internal/exporter"
)

// RunManifest records what a pipeline run produced: every artifact written
// to disk and every step execution, serialized as JSON at the end of the run.
type RunManifest struct {
	mu sync.Mutex `json:"-"`

	RunID       string    `json:"run_id"`
	StartTime   time.Time `json:"start_time"`
	Status      string    `json:"status"` // running, completed, failed
	LastUpdated time.Time `json:"last_updated"`
	Error       string    `json:"error,omitempty"`

	Artifacts []Artifact      `json:"artifacts"`
	Steps     []StepExecution `json:"steps"`
}

// Artifact is one file produced by the run.
type Artifact struct {
	Type      string    `json:"type"` // clean_table, indicator_table, metadata, summary, join_statistics, narrative
	Path      string    `json:"path"`
	Rows      int       `json:"rows,omitempty"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// StepExecution records one step's outcome.
type StepExecution struct {
	StepID    string    `json:"step_id"`
	StepName  string    `json:"step_name"`
	Status    StepStatus `json:"status"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  string    `json:"duration"`
	Error     string    `json:"error,omitempty"`
}

// NewRunManifest creates a manifest for a run.
func NewRunManifest(runID string) *RunManifest {
	now := time.Now()
	return &RunManifest{
		RunID:       runID,
		StartTime:   now,
		Status:      "running",
		LastUpdated: now,
		Artifacts:   []Artifact{},
		Steps:       []StepExecution{},
	}
}

// AddArtifact records a produced file.
func (m *RunManifest) AddArtifact(artifactType, path, createdBy string, rows int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Artifacts = append(m.Artifacts, Artifact{
		Type:      artifactType,
		Path:      path,
		Rows:      rows,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	})
	m.LastUpdated = time.Now()
}

// RecordStep records a step execution.
func (m *RunManifest) RecordStep(state *StepState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	exec := StepExecution{
		StepID:   state.ID,
		StepName: state.Name,
		Status:   state.Status,
		Duration: state.Duration().String(),
	}
	if state.StartTime != nil {
		exec.StartTime = *state.StartTime
	}
	if state.EndTime != nil {
		exec.EndTime = *state.EndTime
	}
	if state.Error != nil {
		exec.Error = state.Error.Error()
	}
	m.Steps = append(m.Steps, exec)
	m.LastUpdated = time.Now()
}

// Finish sets the terminal status.
func (m *RunManifest) Finish(status, errMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Status = status
	m.Error = errMsg
	m.LastUpdated = time.Now()
}

// Save writes the manifest as JSON.
func (m *RunManifest) Save(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return exporter.WriteJSON(path, m)
}
