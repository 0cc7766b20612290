package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/me/dispatchsim/internal/feature"
	"github.com/me/dispatchsim/internal/ledger"
	"github.com/me/dispatchsim/internal/oracle"
	"github.com/me/dispatchsim/internal/reward"
	"github.com/me/dispatchsim/pkg/model"
)

// scriptedOracle replays a fixed action sequence and records every call.
type scriptedOracle struct {
	actions []int
	next    int

	decideErr error

	rewards  []rewardCall
	retrains []retrainCall
}

type rewardCall struct {
	taskID int
	reward float64
}

type retrainCall struct {
	taskID int
	state  []int64
}

func (o *scriptedOracle) Decide(_ context.Context, _ []int64) (int, error) {
	if o.decideErr != nil {
		return 0, o.decideErr
	}
	if o.next >= len(o.actions) {
		return oracle.NoFeasibleAction, nil
	}
	a := o.actions[o.next]
	o.next++
	return a, nil
}

func (o *scriptedOracle) ReportReward(_ context.Context, taskID int, r float64) error {
	o.rewards = append(o.rewards, rewardCall{taskID: taskID, reward: r})
	return nil
}

func (o *scriptedOracle) Retrain(_ context.Context, taskID int, state []int64) error {
	o.retrains = append(o.retrains, retrainCall{taskID: taskID, state: state})
	return nil
}

// memoryRecorder collects decisions in order.
type memoryRecorder struct {
	decisions []*model.Decision
}

func (r *memoryRecorder) RecordDecision(_ context.Context, d *model.Decision) error {
	r.decisions = append(r.decisions, d)
	return nil
}

type loopFixture struct {
	loop     *Loop
	tracker  *Tracker
	placer   *Placer
	oracle   *scriptedOracle
	recorder *memoryRecorder
}

func newLoopFixture(t *testing.T, o *scriptedOracle, numResources int, jobs ...*model.Job) *loopFixture {
	t.Helper()
	logger := testLogger()
	ld := ledger.New(logger)
	for _, job := range jobs {
		if err := ld.RegisterJob(job); err != nil {
			t.Fatalf("RegisterJob(%d): %v", job.ID, err)
		}
	}
	tr := NewTracker(ld, logger)
	sel := NewSelector(ld, tr, logger)

	resources := make([]*model.Resource, numResources)
	for i := range resources {
		resources[i] = model.NewResource(i, 1000, 1024)
	}
	pl := NewPlacer(resources, logger)

	rec := &memoryRecorder{}
	loop := NewLoop(ld, tr, sel, pl, o, feature.NewEncoder(8), reward.NewDefault(), rec, logger)
	return &loopFixture{loop: loop, tracker: tr, placer: pl, oracle: o, recorder: rec}
}

func TestLoop_PlacesChosenTasks(t *testing.T) {
	o := &scriptedOracle{actions: []int{0, 0}}
	f := newLoopFixture(t, o, 2, permissiveJob(1))

	pending := []*model.Task{
		model.NewTask(1, 1, 1000, 0),
		model.NewTask(2, 1, 2000, 0),
	}

	placed, err := f.loop.Run(context.Background(), pending, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(placed) != 2 {
		t.Fatalf("placed %d tasks, want 2", len(placed))
	}
	if placed[0].ID != 1 || placed[1].ID != 2 {
		t.Errorf("placed ids = [%d %d], want [1 2]", placed[0].ID, placed[1].ID)
	}
	if f.tracker.Len() != 2 {
		t.Errorf("tracker Len = %d, want 2", f.tracker.Len())
	}
	if out := f.placer.DrainScheduled(); len(out) != 2 {
		t.Errorf("scheduled output = %d tasks, want 2", len(out))
	}
	if len(f.recorder.decisions) != 2 {
		t.Fatalf("recorded %d decisions, want 2", len(f.recorder.decisions))
	}
	if f.recorder.decisions[0].Seq != 0 || f.recorder.decisions[1].Seq != 1 {
		t.Errorf("decision seqs = %d,%d, want 0,1",
			f.recorder.decisions[0].Seq, f.recorder.decisions[1].Seq)
	}
}

// Action -1 ends the pass without placement and without any feedback call.
func TestLoop_BackpressureEndsCycleSilently(t *testing.T) {
	o := &scriptedOracle{actions: []int{oracle.NoFeasibleAction}}
	f := newLoopFixture(t, o, 2, permissiveJob(1))

	pending := []*model.Task{model.NewTask(1, 1, 1000, 0)}

	placed, err := f.loop.Run(context.Background(), pending, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(placed) != 0 {
		t.Errorf("placed %d tasks, want 0", len(placed))
	}
	if len(o.rewards) != 0 || len(o.retrains) != 0 {
		t.Errorf("feedback on backpressure: %d rewards, %d retrains, want none",
			len(o.rewards), len(o.retrains))
	}
}

// The retrain accompanying the second placement must reference the first
// task's id, never its own: feedback lags by exactly one cycle.
func TestLoop_RetrainLagsOneCycle(t *testing.T) {
	o := &scriptedOracle{actions: []int{0, 0}}
	f := newLoopFixture(t, o, 2, permissiveJob(1))

	t1 := model.NewTask(1, 1, 1000, 0)
	t2 := model.NewTask(2, 1, 2000, 0)

	if _, err := f.loop.Run(context.Background(), []*model.Task{t1, t2}, 0); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(o.rewards) != 2 {
		t.Fatalf("rewards = %d, want 2", len(o.rewards))
	}
	if o.rewards[0].taskID != 1 || o.rewards[1].taskID != 2 {
		t.Errorf("reward task ids = [%d %d], want [1 2]",
			o.rewards[0].taskID, o.rewards[1].taskID)
	}

	// First cycle has no predecessor, so exactly one retrain fires.
	if len(o.retrains) != 1 {
		t.Fatalf("retrains = %d, want 1", len(o.retrains))
	}
	if o.retrains[0].taskID != 1 {
		t.Errorf("retrain references task %d, want 1 (the previous cycle's)", o.retrains[0].taskID)
	}
}

// The lag persists across Run calls: the first placement of a later pass
// retrains the last task of the earlier pass.
func TestLoop_RetrainLagSpansPasses(t *testing.T) {
	o := &scriptedOracle{actions: []int{0, 0}}
	f := newLoopFixture(t, o, 1, permissiveJob(1))

	t1 := model.NewTask(1, 1, 1000, 0)
	if _, err := f.loop.Run(context.Background(), []*model.Task{t1}, 0); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	// Simulate completion so the next pass can place again.
	t1.FinishTime = 1
	f.placer.Release(t1.ResourceID)

	t2 := model.NewTask(2, 1, 1000, 0)
	if _, err := f.loop.Run(context.Background(), []*model.Task{t2}, 1); err != nil {
		t.Fatalf("second Run: %v", err)
	}

	if len(o.retrains) != 1 {
		t.Fatalf("retrains = %d, want 1", len(o.retrains))
	}
	if o.retrains[0].taskID != 1 {
		t.Errorf("retrain references task %d, want 1", o.retrains[0].taskID)
	}
}

// An oracle claiming capacity while every resource is busy is a soft
// failure: the task is dropped for the pass and the loop keeps going.
func TestLoop_PlacementInvariantViolationSoftFails(t *testing.T) {
	o := &scriptedOracle{actions: []int{0, 0}}
	f := newLoopFixture(t, o, 1, permissiveJob(1))

	// Occupy the only resource outside the loop's knowledge.
	f.placer.PlaceFirstIdle(model.NewTask(99, 1, 1, 0))

	pending := []*model.Task{model.NewTask(1, 1, 1000, 0)}

	placed, err := f.loop.Run(context.Background(), pending, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(placed) != 0 {
		t.Errorf("placed %d tasks on a busy pool, want 0", len(placed))
	}
	// No reward for a placement that never happened.
	if len(o.rewards) != 0 {
		t.Errorf("rewards = %d, want 0", len(o.rewards))
	}
}

func TestLoop_OutOfRangeActionEndsCycle(t *testing.T) {
	o := &scriptedOracle{actions: []int{5}}
	f := newLoopFixture(t, o, 2, permissiveJob(1))

	pending := []*model.Task{model.NewTask(1, 1, 1000, 0)}

	placed, err := f.loop.Run(context.Background(), pending, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(placed) != 0 {
		t.Errorf("placed %d tasks, want 0", len(placed))
	}
}

func TestLoop_OracleErrorIsFatal(t *testing.T) {
	o := &scriptedOracle{decideErr: &model.OracleUnavailableError{Op: "decide", Err: errors.New("connection refused")}}
	f := newLoopFixture(t, o, 1, permissiveJob(1))

	pending := []*model.Task{model.NewTask(1, 1, 1000, 0)}

	_, err := f.loop.Run(context.Background(), pending, 0)
	var oue *model.OracleUnavailableError
	if !errors.As(err, &oue) {
		t.Fatalf("Run = %v, want wrapped OracleUnavailableError", err)
	}
}

// Constraints are re-evaluated inside a pass: with max_parallel=1 the
// second task of the job is withheld from the oracle after the first is
// placed, even though both were submitted.
func TestLoop_ConstraintsShrinkReadySetWithinPass(t *testing.T) {
	job := &model.Job{ID: 1, MaxParallel: 1, ParallelGroups: [][]int{{1, 2}}}
	o := &scriptedOracle{actions: []int{0, 0}}
	f := newLoopFixture(t, o, 2, job)

	pending := []*model.Task{
		model.NewTask(1, 1, 1000, 0),
		model.NewTask(2, 1, 1000, 0),
	}

	placed, err := f.loop.Run(context.Background(), pending, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(placed) != 1 || placed[0].ID != 1 {
		t.Fatalf("placed = %v, want only task 1", placed)
	}
	// Only one decide consumed an action; the second iteration saw an
	// empty ready set and never called the oracle with a task.
	if o.next != 1 {
		t.Errorf("oracle consumed %d actions, want 1", o.next)
	}
}
