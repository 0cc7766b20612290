// Package simengine runs a workload through the dispatch loop under a
// virtual clock, turning a parsed workload plus an oracle into a finished
// run report.
package simengine

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/me/dispatchsim/internal/feature"
	"github.com/me/dispatchsim/internal/ledger"
	"github.com/me/dispatchsim/internal/oracle"
	"github.com/me/dispatchsim/internal/parser"
	"github.com/me/dispatchsim/internal/reward"
	"github.com/me/dispatchsim/internal/scheduler"
	"github.com/me/dispatchsim/pkg/model"
)

// Options tunes an engine. Zero values fall back to sane defaults.
type Options struct {
	// MaxReadyTasks is the number of task slots in the state vector.
	MaxReadyTasks int

	// Reward scores placements; defaults to reward.NewDefault().
	Reward reward.Model

	// Recorder receives every dispatch decision; nil disables recording.
	Recorder scheduler.Recorder
}

// DefaultMaxReadyTasks is the state-vector task capacity used when
// Options.MaxReadyTasks is zero.
const DefaultMaxReadyTasks = 32

// Report summarizes a completed run.
type Report struct {
	RunID       string
	Makespan    float64
	TotalReward float64
	Tasks       []*model.TaskResult
}

// Engine drives one simulation run. It owns the virtual clock and the
// completion-event queue; placement itself is delegated to the dispatch
// loop. Not safe for concurrent use.
type Engine struct {
	logger  *slog.Logger
	ledger  *ledger.Ledger
	tracker *scheduler.Tracker
	placer  *scheduler.Placer
	loop    *scheduler.Loop

	selector *scheduler.Selector
	mips     map[int]float64

	pending []*model.Task
	events  eventQueue
	results []*model.TaskResult
	clock   float64
}

// New builds an engine for the given workload and oracle. Job constraints
// are registered with the ledger up front, so a malformed constraint fails
// here rather than mid-run.
func New(w *parser.Workload, o oracle.Oracle, opts Options, logger *slog.Logger) (*Engine, error) {
	if opts.MaxReadyTasks <= 0 {
		opts.MaxReadyTasks = DefaultMaxReadyTasks
	}
	if opts.Reward == nil {
		opts.Reward = reward.NewDefault()
	}

	ld := ledger.New(logger)
	for _, j := range w.Jobs {
		if err := ld.CreateJob(j.ID, j.MaxParallel, j.ParallelGroups); err != nil {
			return nil, fmt.Errorf("register job %d: %w", j.ID, err)
		}
	}

	resources := w.BuildResources()
	mips := make(map[int]float64, len(resources))
	for _, r := range resources {
		mips[r.ID] = r.MIPS
	}

	tracker := scheduler.NewTracker(ld, logger)
	selector := scheduler.NewSelector(ld, tracker, logger)
	placer := scheduler.NewPlacer(resources, logger)
	enc := feature.NewEncoder(opts.MaxReadyTasks)
	loop := scheduler.NewLoop(ld, tracker, selector, placer, o, enc, opts.Reward, opts.Recorder, logger)

	return &Engine{
		logger:   logger.With("component", "engine"),
		ledger:   ld,
		tracker:  tracker,
		placer:   placer,
		loop:     loop,
		selector: selector,
		mips:     mips,
		pending:  w.BuildTasks(),
	}, nil
}

// Run executes the workload to completion and returns the run report.
// The clock starts at zero and only moves forward, jumping between
// submission times and task completions.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	e.logger.Info("run starting", "tasks", len(e.pending), "resources", len(e.mips))

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next, _, err := e.selector.NextAvailable(e.pending, e.clock)
		if errors.Is(err, model.ErrNoMoreWork) {
			break
		}
		if err != nil {
			return nil, err
		}
		e.clock = next
		e.drainThrough(e.clock)

		placed, err := e.loop.Run(ctx, e.pending, e.clock)
		if err != nil {
			return nil, err
		}

		for _, t := range placed {
			t.FinishTime = e.clock + t.ExecTime(e.mips[t.ResourceID])
			heap.Push(&e.events, &completion{at: t.FinishTime, task: t})
			e.pending = removeTask(e.pending, t)
		}
		e.placer.DrainScheduled()

		if len(placed) == 0 {
			// Backpressure with work still eligible: wait for the next
			// completion to free a resource.
			if e.events.Len() == 0 {
				return nil, &model.TimeNotAdvancingError{At: e.clock}
			}
			ev := heap.Pop(&e.events).(*completion)
			e.clock = ev.at
			e.complete(ev)
		}
	}

	// Everything is dispatched; flush the remaining completions to close
	// out resource bindings and the result list.
	e.drainThrough(math.Inf(1))

	report := &Report{
		Makespan:    e.makespan(),
		TotalReward: e.loop.TotalReward(),
		Tasks:       e.results,
	}
	e.logger.Info("run complete",
		"tasks", len(report.Tasks),
		"makespan", report.Makespan,
		"total_reward", report.TotalReward)
	return report, nil
}

// drainThrough pops every completion event due at or before t.
func (e *Engine) drainThrough(t float64) {
	for e.events.Len() > 0 && e.events[0].at <= t {
		ev := heap.Pop(&e.events).(*completion)
		e.complete(ev)
	}
}

// complete releases the finished task's resource and records its timings.
func (e *Engine) complete(ev *completion) {
	t := ev.task
	e.placer.Release(t.ResourceID)
	e.results = append(e.results, &model.TaskResult{
		TaskID:     t.ID,
		JobID:      t.JobID,
		ResourceID: t.ResourceID,
		SubmitTime: t.SubmitTime,
		StartTime:  t.StartTime,
		FinishTime: t.FinishTime,
	})
	e.logger.Debug("task completed",
		"task_id", t.ID, "job_id", t.JobID,
		"resource_id", t.ResourceID, "finish", t.FinishTime)
}

func (e *Engine) makespan() float64 {
	var span float64
	for _, r := range e.results {
		if r.FinishTime > span {
			span = r.FinishTime
		}
	}
	return span
}

// removeTask filters one task out of a slice, preserving order.
func removeTask(tasks []*model.Task, drop *model.Task) []*model.Task {
	out := tasks[:0]
	for _, t := range tasks {
		if t != drop {
			out = append(out, t)
		}
	}
	return out
}
