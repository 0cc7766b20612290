package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/me/dispatchsim/internal/feature"
	"github.com/me/dispatchsim/internal/ledger"
	"github.com/me/dispatchsim/internal/oracle"
	"github.com/me/dispatchsim/internal/reward"
	"github.com/me/dispatchsim/pkg/model"
)

// noPreviousTask is the lag sentinel before the first placement.
const noPreviousTask = -1

// Loop is the dispatch loop: it drains all currently placeable work by
// repeatedly encoding the ready set, asking the oracle for an action,
// committing the placement, and forwarding feedback.
type Loop struct {
	ledger   *ledger.Ledger
	tracker  *Tracker
	selector *Selector
	placer   *Placer
	oracle   oracle.Oracle
	encoder  *feature.Encoder
	reward   reward.Model
	recorder Recorder
	logger   *slog.Logger

	// lastTaskID implements the one-cycle retrain lag: the retrain call
	// of cycle N references the task placed in cycle N-1, whose reward
	// the oracle already holds.
	lastTaskID int
	seq        int
	total      float64
}

// NewLoop wires the dispatch loop. recorder may be nil to disable
// decision persistence.
func NewLoop(
	ld *ledger.Ledger,
	tr *Tracker,
	sel *Selector,
	pl *Placer,
	o oracle.Oracle,
	enc *feature.Encoder,
	rm reward.Model,
	rec Recorder,
	logger *slog.Logger,
) *Loop {
	return &Loop{
		ledger:     ld,
		tracker:    tr,
		selector:   sel,
		placer:     pl,
		oracle:     o,
		encoder:    enc,
		reward:     rm,
		recorder:   rec,
		logger:     logger.With("component", "dispatch"),
		lastTaskID: noPreviousTask,
	}
}

// Run drains all placeable work at the given simulated time and returns
// the tasks placed. It returns without error when the ready set empties or
// the oracle signals backpressure; oracle transport failures and ledger
// integration bugs are fatal and propagate.
//
// pending is not mutated; the caller removes the returned tasks from its
// own pending list.
func (l *Loop) Run(ctx context.Context, pending []*model.Task, now float64) ([]*model.Task, error) {
	if _, err := l.tracker.ReleaseFinished(now); err != nil {
		return nil, err
	}

	remaining := append([]*model.Task(nil), pending...)
	var placed []*model.Task

	for {
		ready, err := l.selector.EligibleNow(remaining, now)
		if err != nil {
			return placed, err
		}
		if len(ready) == 0 {
			return placed, nil
		}

		state := l.encoder.Encode(ready, l.placer.Resources())

		action, err := l.oracle.Decide(ctx, state)
		if err != nil {
			return placed, fmt.Errorf("decide: %w", err)
		}

		if action == oracle.NoFeasibleAction {
			// Normal backpressure: no resource fits any ready task.
			l.logger.Debug("no feasible placement", "ready", len(ready), "time", now)
			return placed, nil
		}
		if action < 0 || action >= len(ready) {
			// Same failure class as a busy-pool placement: the oracle
			// acted on stale state. Soft-fail the cycle.
			l.logger.Error("oracle action out of range",
				"action", action, "ready", len(ready), "time", now)
			return placed, nil
		}

		task := ready[action]
		res := l.placer.PlaceFirstIdle(task)
		if res == nil {
			// The oracle claimed capacity exists but nothing is idle.
			// Drop this task for the rest of the pass and keep going.
			l.logger.Error("placement invariant violated: no idle resource for chosen task",
				"task_id", task.ID, "action", action, "time", now)
			remaining = without(remaining, task)
			continue
		}

		if err := l.tracker.Add(task, now); err != nil {
			return placed, err
		}

		score := l.reward.Score(task, res, now)
		l.total += score
		l.logger.Info("task dispatched",
			"task_id", task.ID, "job_id", task.JobID,
			"resource_id", res.ID, "reward", score, "time", now)

		if err := l.oracle.ReportReward(ctx, task.ID, score); err != nil {
			return placed, fmt.Errorf("report reward for task %d: %w", task.ID, err)
		}
		if l.lastTaskID != noPreviousTask {
			if err := l.oracle.Retrain(ctx, l.lastTaskID, state); err != nil {
				return placed, fmt.Errorf("retrain for task %d: %w", l.lastTaskID, err)
			}
		}
		l.lastTaskID = task.ID

		if l.recorder != nil {
			d := &model.Decision{
				Seq:        l.seq,
				SimTime:    now,
				TaskID:     task.ID,
				JobID:      task.JobID,
				ResourceID: res.ID,
				Action:     action,
				Reward:     score,
			}
			if err := l.recorder.RecordDecision(ctx, d); err != nil {
				l.logger.Error("record decision", "task_id", task.ID, "error", err)
			}
		}
		l.seq++

		placed = append(placed, task)
		remaining = without(remaining, task)
	}
}

// TotalReward returns the sum of all rewards reported so far.
func (l *Loop) TotalReward() float64 {
	return l.total
}

// without returns tasks minus the given task, preserving order.
func without(tasks []*model.Task, drop *model.Task) []*model.Task {
	out := tasks[:0]
	for _, t := range tasks {
		if t != drop {
			out = append(out, t)
		}
	}
	return out
}
