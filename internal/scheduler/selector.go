package scheduler

import (
	"log/slog"
	"math"

	"github.com/me/dispatchsim/internal/ledger"
	"github.com/me/dispatchsim/pkg/model"
)

// Selector computes which pending tasks are eligible at a given time and
// advances simulated time when nothing currently is.
type Selector struct {
	ledger  *ledger.Ledger
	tracker *Tracker
	logger  *slog.Logger
}

// NewSelector creates a selector over the given ledger and tracker.
func NewSelector(ld *ledger.Ledger, tr *Tracker, logger *slog.Logger) *Selector {
	return &Selector{
		ledger:  ld,
		tracker: tr,
		logger:  logger.With("component", "selector"),
	}
}

// EligibleNow filters pending to the tasks whose submission time has been
// reached and whose job constraints allow them to start. The returned
// slice preserves the insertion order of pending; any prioritization is
// the oracle's job, not the selector's.
func (s *Selector) EligibleNow(pending []*model.Task, now float64) ([]*model.Task, error) {
	var ready []*model.Task
	for _, t := range pending {
		if t.SubmitTime > now {
			continue
		}
		ok, err := s.ledger.CanRun(t.JobID, t.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			if t.State == model.TaskStatePending {
				t.State = model.TaskStateEligible
			}
			ready = append(ready, t)
		}
	}
	return ready, nil
}

// NextAvailable returns the earliest time at or after now with a non-empty
// eligible set, together with that set. When nothing is eligible it
// advances to the earlier of the next task completion and the next future
// submission, releasing finished tasks along the way.
//
// Implemented as an explicit loop with a strictly increasing clock; when
// neither completions nor future submissions exist it returns
// model.ErrNoMoreWork, and if the clock cannot advance while work remains
// (an unsatisfiable constraint set) it returns TimeNotAdvancingError
// instead of looping forever.
func (s *Selector) NextAvailable(pending []*model.Task, now float64) (float64, []*model.Task, error) {
	clock := now
	for {
		if _, err := s.tracker.ReleaseFinished(clock); err != nil {
			return clock, nil, err
		}

		ready, err := s.EligibleNow(pending, clock)
		if err != nil {
			return clock, nil, err
		}
		if len(ready) > 0 {
			return clock, ready, nil
		}

		next := math.Min(s.tracker.NextFinishTime(), futureSubmitTime(pending, clock))
		if math.IsInf(next, 1) {
			if len(pending) == 0 && s.tracker.Len() == 0 {
				return clock, nil, model.ErrNoMoreWork
			}
			return clock, nil, &model.TimeNotAdvancingError{At: clock}
		}
		if next <= clock {
			return clock, nil, &model.TimeNotAdvancingError{At: clock}
		}

		s.logger.Debug("advancing clock", "from", clock, "to", next)
		clock = next
	}
}

// futureSubmitTime returns the earliest submission time strictly after
// now, or +Inf if every pending task has already been submitted.
func futureSubmitTime(pending []*model.Task, now float64) float64 {
	next := math.Inf(1)
	for _, t := range pending {
		if t.SubmitTime > now && t.SubmitTime < next {
			next = t.SubmitTime
		}
	}
	return next
}
