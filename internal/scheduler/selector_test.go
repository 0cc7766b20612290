package scheduler

import (
	"errors"
	"testing"

	"github.com/me/dispatchsim/internal/ledger"
	"github.com/me/dispatchsim/pkg/model"
)

func testSelector(t *testing.T, jobs ...*model.Job) (*Selector, *Tracker, *ledger.Ledger) {
	t.Helper()
	ld := ledger.New(testLogger())
	for _, job := range jobs {
		if err := ld.RegisterJob(job); err != nil {
			t.Fatalf("RegisterJob(%d): %v", job.ID, err)
		}
	}
	tr := NewTracker(ld, testLogger())
	return NewSelector(ld, tr, testLogger()), tr, ld
}

func permissiveJob(id int) *model.Job {
	return &model.Job{ID: id, MaxParallel: 10, ParallelGroups: [][]int{{1, 2, 3, 4, 5}}}
}

func TestEligibleNow_FiltersAndPreservesOrder(t *testing.T) {
	sel, _, _ := testSelector(t, permissiveJob(1))

	early := model.NewTask(1, 1, 100, 0)
	late := model.NewTask(2, 1, 100, 50)
	blocked := model.NewTask(9, 1, 100, 0) // task 9 is in no group
	alsoEarly := model.NewTask(3, 1, 100, 1)

	ready, err := sel.EligibleNow([]*model.Task{early, late, blocked, alsoEarly}, 10)
	if err != nil {
		t.Fatalf("EligibleNow: %v", err)
	}

	if len(ready) != 2 || ready[0] != early || ready[1] != alsoEarly {
		ids := make([]int, len(ready))
		for i, r := range ready {
			ids[i] = r.ID
		}
		t.Fatalf("ready ids = %v, want [1 3] in input order", ids)
	}
	if early.State != model.TaskStateEligible {
		t.Errorf("eligible task state = %s, want ELIGIBLE", early.State)
	}
}

// With nothing eligible at t=0, one running task finishing at 5 and a
// pending submission at 3, the selector advances to 3, not 5.
func TestNextAvailable_AdvancesToEarlierOfFinishAndSubmission(t *testing.T) {
	sel, tr, _ := testSelector(t, permissiveJob(1), permissiveJob(2))

	running := model.NewTask(1, 1, 100, 0)
	if err := tr.Add(running, 0); err != nil {
		t.Fatalf("Add: %v", err)
	}
	running.FinishTime = 5

	pending := []*model.Task{model.NewTask(1, 2, 100, 3)}

	effTime, ready, err := sel.NextAvailable(pending, 0)
	if err != nil {
		t.Fatalf("NextAvailable: %v", err)
	}
	if effTime != 3 {
		t.Errorf("effective time = %g, want 3", effTime)
	}
	if len(ready) != 1 || ready[0].JobID != 2 {
		t.Errorf("ready = %v, want the job-2 task", ready)
	}
	// The task finishing at 5 must still be running at 3.
	if tr.Len() != 1 {
		t.Errorf("tracker Len = %d, want 1", tr.Len())
	}
}

// When the blocker is the running task itself, the selector advances to
// its finish time and releases it, unblocking the constraint.
func TestNextAvailable_ReleasesAtFinishTime(t *testing.T) {
	job := &model.Job{ID: 1, MaxParallel: 1, ParallelGroups: [][]int{{1}, {2}}}
	sel, tr, _ := testSelector(t, job)

	running := model.NewTask(1, 1, 100, 0)
	if err := tr.Add(running, 0); err != nil {
		t.Fatalf("Add: %v", err)
	}
	running.FinishTime = 7

	pending := []*model.Task{model.NewTask(2, 1, 100, 0)}

	effTime, ready, err := sel.NextAvailable(pending, 0)
	if err != nil {
		t.Fatalf("NextAvailable: %v", err)
	}
	if effTime != 7 {
		t.Errorf("effective time = %g, want 7", effTime)
	}
	if len(ready) != 1 || ready[0].ID != 2 {
		t.Errorf("ready = %v, want task 2", ready)
	}
	if tr.Len() != 0 {
		t.Errorf("tracker Len = %d, want 0 after release", tr.Len())
	}
}

func TestNextAvailable_Monotonic(t *testing.T) {
	sel, _, _ := testSelector(t, permissiveJob(1))
	pending := []*model.Task{model.NewTask(1, 1, 100, 0)}

	effTime, _, err := sel.NextAvailable(pending, 10)
	if err != nil {
		t.Fatalf("NextAvailable: %v", err)
	}
	if effTime < 10 {
		t.Errorf("effective time = %g went backwards from 10", effTime)
	}
}

func TestNextAvailable_NoMoreWork(t *testing.T) {
	sel, _, _ := testSelector(t)

	_, _, err := sel.NextAvailable(nil, 0)
	if !errors.Is(err, model.ErrNoMoreWork) {
		t.Fatalf("NextAvailable on empty world = %v, want ErrNoMoreWork", err)
	}
}

// A pending task that no parallel group ever admits can never become
// eligible; the selector must fail fast instead of spinning.
func TestNextAvailable_UnsatisfiableConstraints(t *testing.T) {
	job := &model.Job{ID: 1, MaxParallel: 1, ParallelGroups: [][]int{{1}}}
	sel, _, _ := testSelector(t, job)

	pending := []*model.Task{model.NewTask(99, 1, 100, 0)}

	_, _, err := sel.NextAvailable(pending, 0)
	var tne *model.TimeNotAdvancingError
	if !errors.As(err, &tne) {
		t.Fatalf("NextAvailable = %v, want TimeNotAdvancingError", err)
	}
}
