// Package reward scores committed placement decisions. The score is the
// feedback signal the dispatch loop reports to the oracle after every
// placement, so Score must be total: it always returns a value.
package reward

import (
	"github.com/me/dispatchsim/pkg/model"
)

// Model scores a placement of task t on resource r at simulated time now.
type Model interface {
	Score(t *model.Task, r *model.Resource, now float64) float64
}

// Default scores negative normalized execution time, with a bonus when the
// placement meets the task's deadline. Faster placements score closer to
// zero; deadline-keeping placements score higher than deadline-missing ones.
type Default struct {
	// LengthScale normalizes execution time so rewards stay in a range
	// the oracle's learner handles well.
	LengthScale float64

	// DeadlineBonus is added when now + execTime <= deadline.
	DeadlineBonus float64
}

// NewDefault returns the standard reward model.
func NewDefault() Default {
	return Default{LengthScale: 100, DeadlineBonus: 1}
}

// Score implements Model.
func (d Default) Score(t *model.Task, r *model.Resource, now float64) float64 {
	execTime := t.ExecTime(r.MIPS)
	score := -execTime / d.LengthScale
	if t.Deadline != model.UnsetTime && now+execTime <= t.Deadline {
		score += d.DeadlineBonus
	}
	return score
}
