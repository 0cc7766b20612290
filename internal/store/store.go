// Package store persists simulation runs, the dispatch decisions made
// during them, and final task timings.
package store

import (
	"context"

	"github.com/me/dispatchsim/pkg/model"
)

// Store defines the persistence layer for dispatchsim entities.
type Store interface {
	// Run lifecycle
	CreateRun(ctx context.Context, run *model.Run) error
	FinishRun(ctx context.Context, id string, makespan, totalReward float64) error
	GetRun(ctx context.Context, id string) (*model.Run, error)
	ListRuns(ctx context.Context) ([]*model.Run, error)

	// Per-run records
	SaveDecision(ctx context.Context, runID string, d *model.Decision) error
	ListDecisions(ctx context.Context, runID string) ([]*model.Decision, error)
	SaveTaskResult(ctx context.Context, runID string, tr *model.TaskResult) error
	ListTaskResults(ctx context.Context, runID string) ([]*model.TaskResult, error)

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}

// RunRecorder adapts a Store to the dispatch loop's Recorder interface,
// binding decisions to one run.
type RunRecorder struct {
	store Store
	runID string
}

// NewRunRecorder creates a recorder writing decisions under runID.
func NewRunRecorder(st Store, runID string) *RunRecorder {
	return &RunRecorder{store: st, runID: runID}
}

// RecordDecision implements scheduler.Recorder.
func (r *RunRecorder) RecordDecision(ctx context.Context, d *model.Decision) error {
	return r.store.SaveDecision(ctx, r.runID, d)
}
