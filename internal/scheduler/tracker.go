package scheduler

import (
	"log/slog"
	"math"

	"github.com/me/dispatchsim/internal/ledger"
	"github.com/me/dispatchsim/pkg/model"
)

// Tracker is the global ledger of in-flight tasks. It holds non-owning
// references; task records belong to the simulation's job list and persist
// after release.
type Tracker struct {
	ledger  *ledger.Ledger
	logger  *slog.Logger
	running []*model.Task
}

// NewTracker creates an empty tracker backed by the given constraint ledger.
func NewTracker(ld *ledger.Ledger, logger *slog.Logger) *Tracker {
	return &Tracker{
		ledger: ld,
		logger: logger.With("component", "tracker"),
	}
}

// Add records a dispatched task: stamps its start time, marks it RUNNING,
// and registers it with the constraint ledger.
func (tr *Tracker) Add(t *model.Task, now float64) error {
	if err := tr.ledger.AddRunning(t); err != nil {
		return err
	}
	t.StartTime = now
	t.State = model.TaskStateRunning
	tr.running = append(tr.running, t)
	tr.logger.Debug("task running", "task_id", t.ID, "job_id", t.JobID, "start", now)
	return nil
}

// ReleaseFinished removes and returns every task whose finish time is known
// and has been reached by the clock, updating the constraint ledger for
// each. Idempotent: a second call at the same time releases nothing.
func (tr *Tracker) ReleaseFinished(now float64) ([]*model.Task, error) {
	var released []*model.Task
	kept := tr.running[:0]

	for _, t := range tr.running {
		if t.FinishTime != model.UnsetTime && t.FinishTime <= now {
			if err := tr.ledger.RemoveRunning(t); err != nil {
				return released, err
			}
			t.State = model.TaskStateFinished
			released = append(released, t)
			continue
		}
		kept = append(kept, t)
	}
	tr.running = kept

	if len(released) > 0 {
		tr.logger.Debug("tasks released", "count", len(released), "time", now)
	}
	return released, nil
}

// NextFinishTime returns the earliest known finish time among running
// tasks, or +Inf when no running task has a finish time yet.
func (tr *Tracker) NextFinishTime() float64 {
	next := math.Inf(1)
	for _, t := range tr.running {
		if t.FinishTime != model.UnsetTime && t.FinishTime < next {
			next = t.FinishTime
		}
	}
	return next
}

// Len returns the number of in-flight tasks.
func (tr *Tracker) Len() int {
	return len(tr.running)
}
