// Package ledger tracks per-job parallelism constraints and the set of
// currently running tasks of each job. It answers the single question the
// dispatch loop needs: can task T of job J start right now.
package ledger

import (
	"log/slog"
	"sort"

	"github.com/me/dispatchsim/pkg/model"
)

// Ledger holds the constraint state for all registered jobs.
//
// The ledger is mutated only by the scheduling goroutine; it carries no
// locks and relies on the host guaranteeing single-threaded invocation.
type Ledger struct {
	logger *slog.Logger
	jobs   map[int]*jobState
}

// jobState is the mutable per-job record.
type jobState struct {
	maxParallel int
	groups      [][]int
	running     map[int]struct{}
}

// New creates an empty ledger.
func New(logger *slog.Logger) *Ledger {
	return &Ledger{
		logger: logger.With("component", "ledger"),
		jobs:   make(map[int]*jobState),
	}
}

// CreateJob registers a job from its textual constraint fields, e.g.
// maxParallel "2" and groups "[[1,2],[2,3,4]]". Registration is
// all-or-nothing: on a parse failure nothing is recorded.
func (l *Ledger) CreateJob(jobID int, maxParallel, groups string) error {
	if _, exists := l.jobs[jobID]; exists {
		return &model.MalformedConstraintError{
			JobID:  jobID,
			Field:  "job id",
			Reason: "already registered",
		}
	}

	mp, err := parseMaxParallel(jobID, maxParallel)
	if err != nil {
		return err
	}
	parsed, err := parseGroups(jobID, groups)
	if err != nil {
		return err
	}

	l.jobs[jobID] = &jobState{
		maxParallel: mp,
		groups:      parsed,
		running:     make(map[int]struct{}),
	}
	l.logger.Debug("job registered", "job_id", jobID, "max_parallel", mp, "groups", len(parsed))
	return nil
}

// RegisterJob registers an already-parsed job definition.
func (l *Ledger) RegisterJob(job *model.Job) error {
	if _, exists := l.jobs[job.ID]; exists {
		return &model.MalformedConstraintError{
			JobID:  job.ID,
			Field:  "job id",
			Reason: "already registered",
		}
	}
	if job.MaxParallel < 1 {
		return &model.MalformedConstraintError{
			JobID:  job.ID,
			Field:  "max_parallel",
			Reason: "must be a positive integer",
		}
	}
	for i, g := range job.ParallelGroups {
		if len(g) == 0 {
			return &model.MalformedConstraintError{
				JobID:  job.ID,
				Field:  "parallel_groups",
				Reason: "group " + itoa(i) + " is empty",
			}
		}
	}

	groups := make([][]int, len(job.ParallelGroups))
	for i, g := range job.ParallelGroups {
		groups[i] = append([]int(nil), g...)
	}
	l.jobs[job.ID] = &jobState{
		maxParallel: job.MaxParallel,
		groups:      groups,
		running:     make(map[int]struct{}),
	}
	l.logger.Debug("job registered", "job_id", job.ID, "max_parallel", job.MaxParallel, "groups", len(groups))
	return nil
}

// CanRun reports whether taskID of jobID may start now: the job's
// concurrency cap must hold after adding the task, and some declared
// parallel group must contain the task together with every task of the
// job already running.
func (l *Ledger) CanRun(jobID, taskID int) (bool, error) {
	js, ok := l.jobs[jobID]
	if !ok {
		return false, &model.UnknownJobError{JobID: jobID}
	}

	if len(js.running)+1 > js.maxParallel {
		return false, nil
	}

	for _, group := range js.groups {
		if !containsTask(group, taskID) {
			continue
		}
		if coversRunning(group, js.running) {
			return true, nil
		}
	}
	return false, nil
}

// AddRunning inserts the task into its job's running set. The ledger does
// not re-validate; callers must have seen CanRun return true for the same
// state.
func (l *Ledger) AddRunning(t *model.Task) error {
	js, ok := l.jobs[t.JobID]
	if !ok {
		return &model.UnknownJobError{JobID: t.JobID}
	}
	js.running[t.ID] = struct{}{}
	return nil
}

// RemoveRunning removes the task from its job's running set. Removing a
// task that is not running is a no-op.
func (l *Ledger) RemoveRunning(t *model.Task) error {
	js, ok := l.jobs[t.JobID]
	if !ok {
		return &model.UnknownJobError{JobID: t.JobID}
	}
	delete(js.running, t.ID)
	return nil
}

// Running returns the sorted task ids of the job currently running.
func (l *Ledger) Running(jobID int) ([]int, error) {
	js, ok := l.jobs[jobID]
	if !ok {
		return nil, &model.UnknownJobError{JobID: jobID}
	}
	ids := make([]int, 0, len(js.running))
	for id := range js.running {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

// MaxParallel returns the job's concurrency cap.
func (l *Ledger) MaxParallel(jobID int) (int, error) {
	js, ok := l.jobs[jobID]
	if !ok {
		return 0, &model.UnknownJobError{JobID: jobID}
	}
	return js.maxParallel, nil
}

// containsTask reports whether the group names the task id.
func containsTask(group []int, taskID int) bool {
	for _, id := range group {
		if id == taskID {
			return true
		}
	}
	return false
}

// coversRunning reports whether every running task id appears in the group.
func coversRunning(group []int, running map[int]struct{}) bool {
	for id := range running {
		if !containsTask(group, id) {
			return false
		}
	}
	return true
}
