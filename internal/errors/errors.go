// Package errors provides the structured error model for the pipeline.
// Errors carry a stable code and the affected unit of work so run summaries
// can report per-unit outcomes instead of bare stack traces.
package errors

import (
	"errors"
	"fmt"
)

// Stable error codes for pipeline failures.
const (
	CodeTableLoadFailed       = "TABLE_LOAD_FAILED"
	CodeMissingPartFile       = "MISSING_PART_FILE"
	CodeDuplicateColumn       = "DUPLICATE_COLUMN"
	CodeDuplicateKey          = "DUPLICATE_KEY"
	CodeEmptyFilterResult     = "EMPTY_FILTER_RESULT"
	CodeConfigInvalid         = "CONFIG_INVALID"
	CodeDuplicateIndicator    = "DUPLICATE_INDICATOR"
	CodeUnsupportedDependency = "UNSUPPORTED_DEPENDENCY"
	CodeExportFailed          = "EXPORT_FAILED"
)

// PipelineError is a structured error with a stable code, a human-readable
// message, and optionally the unit of work it belongs to plus supporting
// details (sample keys, colliding column names).
type PipelineError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Unit    string      `json:"unit,omitempty"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	msg := e.Message
	if e.Unit != "" {
		msg = fmt.Sprintf("%s: %s", e.Unit, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s [%s]: %v", msg, e.Code, e.Err)
	}
	return fmt.Sprintf("%s [%s]", msg, e.Code)
}

// Unwrap returns the wrapped cause, if any.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Is matches on error code, so callers can compare against the predefined
// error variables with errors.Is regardless of message and unit.
func (e *PipelineError) Is(target error) bool {
	var t *PipelineError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// New creates a PipelineError with the given code and message.
func New(code, message string) *PipelineError {
	return &PipelineError{Code: code, Message: message}
}

// Newf creates a PipelineError with a formatted message.
func Newf(code, format string, args ...interface{}) *PipelineError {
	return &PipelineError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a PipelineError wrapping an underlying cause.
func Wrap(err error, code, message string) *PipelineError {
	return &PipelineError{Code: code, Message: message, Err: err}
}

// WithUnit returns a copy of the error tagged with the unit of work.
func (e *PipelineError) WithUnit(unit string) *PipelineError {
	cp := *e
	cp.Unit = unit
	return &cp
}

// WithDetails returns a copy of the error carrying supporting details.
func (e *PipelineError) WithDetails(details interface{}) *PipelineError {
	cp := *e
	cp.Details = details
	return &cp
}

// Predefined errors for errors.Is comparisons.
var (
	ErrTableLoadFailed       = New(CodeTableLoadFailed, "table load failed")
	ErrMissingPartFile       = New(CodeMissingPartFile, "part file not found")
	ErrDuplicateColumn       = New(CodeDuplicateColumn, "duplicate column across parts")
	ErrDuplicateKey          = New(CodeDuplicateKey, "duplicate geography key")
	ErrEmptyFilterResult     = New(CodeEmptyFilterResult, "no rows retained by prefix filter")
	ErrConfigInvalid         = New(CodeConfigInvalid, "invalid configuration")
	ErrDuplicateIndicator    = New(CodeDuplicateIndicator, "duplicate indicator name")
	ErrUnsupportedDependency = New(CodeUnsupportedDependency, "unsupported indicator dependency")
	ErrExportFailed          = New(CodeExportFailed, "artifact export failed")
)
