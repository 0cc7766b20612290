package model

import (
	"errors"
	"fmt"
)

// ErrNoMoreWork signals that both the pending and running sets are empty:
// the caller should stop scheduling. It is a normal end-of-input condition,
// not a failure.
var ErrNoMoreWork = errors.New("no pending or running work")

// MalformedConstraintError reports a job definition whose parallelism
// constraints cannot be parsed. Fatal at load time; no partial registration
// happens.
type MalformedConstraintError struct {
	JobID  int
	Field  string
	Reason string
}

func (e *MalformedConstraintError) Error() string {
	return fmt.Sprintf("job %d: malformed %s: %s", e.JobID, e.Field, e.Reason)
}

// UnknownJobError reports a ledger query for a job that was never
// registered. Jobs are registered before scheduling starts, so this
// indicates an upstream integration bug and is not recoverable.
type UnknownJobError struct {
	JobID int
}

func (e *UnknownJobError) Error() string {
	return fmt.Sprintf("job %d is not registered", e.JobID)
}

// OracleUnavailableError reports a failed decide/reward/retrain round-trip.
// Skipping feedback would corrupt the oracle's training signal, so the
// scheduling cycle halts instead of proceeding with stale state.
type OracleUnavailableError struct {
	Op  string
	Err error
}

func (e *OracleUnavailableError) Error() string {
	return fmt.Sprintf("oracle %s failed: %v", e.Op, e.Err)
}

func (e *OracleUnavailableError) Unwrap() error {
	return e.Err
}

// TimeNotAdvancingError reports that the time-advance search could not make
// progress: work remains but neither a completion nor a future submission
// can move the clock forward. This happens when a workload's constraints
// can never be satisfied (e.g. a task missing from every parallel group).
type TimeNotAdvancingError struct {
	At float64
}

func (e *TimeNotAdvancingError) Error() string {
	return fmt.Sprintf("scheduling stuck at t=%g: pending work exists but no event can advance the clock", e.At)
}

// ValidationError aggregates all problems found in a workload document.
type ValidationError struct {
	Message string
	Details []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (%d problems, first: %s)", e.Message, len(e.Details), e.Details[0].Message)
}

// FieldError describes a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// NewValidationError creates a ValidationError with details.
func NewValidationError(msg string, details ...FieldError) *ValidationError {
	return &ValidationError{Message: msg, Details: details}
}
