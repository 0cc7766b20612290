// Package scheduler implements the oracle-driven dispatch core: the
// running-task tracker, the ready selector with time advancement, the
// first-idle resource placer, and the dispatch loop that ties them to the
// external decision oracle.
//
// All types in this package are mutated by a single scheduling goroutine.
// That contract is documented rather than enforced; the simulation engine
// calls into the package one event at a time.
package scheduler

import (
	"context"

	"github.com/me/dispatchsim/pkg/model"
)

// Recorder persists committed dispatch decisions. Implementations bind a
// run id and sequence counter; a nil Recorder on the loop disables
// persistence entirely.
type Recorder interface {
	RecordDecision(ctx context.Context, d *model.Decision) error
}
