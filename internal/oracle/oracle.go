// Package oracle defines the decision-oracle contract the dispatch loop
// consumes, plus an HTTP transport and a first-fit reference policy.
package oracle

import "context"

// NoFeasibleAction is the action value meaning no resource currently has
// capacity for any ready task. It is normal backpressure, not an error.
const NoFeasibleAction = -1

// Oracle is the external decision policy. All calls are blocking
// round-trips; a failed call is a hard error and is never retried, since
// silently dropped feedback would corrupt the policy's training signal.
type Oracle interface {
	// Decide returns an index into the ready-task list the state vector
	// was built from, or NoFeasibleAction.
	Decide(ctx context.Context, state []int64) (int, error)

	// ReportReward forwards the reward computed for a committed placement.
	ReportReward(ctx context.Context, taskID int, reward float64) error

	// Retrain forwards the state observed one cycle after the named
	// task's placement, closing the (state, action, reward, next_state)
	// tuple for step-wise policy updates.
	Retrain(ctx context.Context, taskID int, state []int64) error
}
