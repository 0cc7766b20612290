// Package feature encodes the scheduler's observable state as the
// fixed-shape integer vector the decision oracle consumes.
//
// Layout, for an encoder with MaxTasks task slots and R resources:
//
//	index 0                      ready-task count (capped at MaxTasks)
//	1 .. 5*MaxTasks              task slots: jobID, taskID, length,
//	                             priority, slack; zero-padded past the
//	                             ready count
//	5*MaxTasks+1 .. +2*R         resource slots: busy flag (0 idle,
//	                             1 busy), MIPS rating
//
// Slack is deadline minus submission time floored at zero, or zero when
// the task carries no deadline. Ready tasks beyond MaxTasks are not
// encoded; the oracle can therefore never select them, which is the
// intended truncation behavior for oversized ready sets.
package feature

import (
	"github.com/me/dispatchsim/pkg/model"
)

// FieldsPerTask is the number of vector elements per task slot.
const FieldsPerTask = 5

// FieldsPerResource is the number of vector elements per resource slot.
const FieldsPerResource = 2

// Encoder builds state vectors with a fixed number of task slots.
type Encoder struct {
	MaxTasks int
}

// NewEncoder creates an encoder with the given number of task slots.
func NewEncoder(maxTasks int) *Encoder {
	return &Encoder{MaxTasks: maxTasks}
}

// Size returns the vector length for a pool of numResources resources.
func (e *Encoder) Size(numResources int) int {
	return 1 + FieldsPerTask*e.MaxTasks + FieldsPerResource*numResources
}

// Encode builds the state vector for the given ready tasks and resources.
// The resource segment always covers the whole pool, busy or not.
func (e *Encoder) Encode(ready []*model.Task, resources []*model.Resource) []int64 {
	state := make([]int64, e.Size(len(resources)))

	n := len(ready)
	if n > e.MaxTasks {
		n = e.MaxTasks
	}
	state[0] = int64(n)

	for i := 0; i < n; i++ {
		t := ready[i]
		base := 1 + i*FieldsPerTask
		state[base] = int64(t.JobID)
		state[base+1] = int64(t.ID)
		state[base+2] = t.Length
		state[base+3] = int64(t.Priority)
		state[base+4] = slack(t)
	}

	offset := 1 + e.MaxTasks*FieldsPerTask
	for i, r := range resources {
		base := offset + i*FieldsPerResource
		if r.State == model.ResourceStateBusy {
			state[base] = 1
		}
		state[base+1] = int64(r.MIPS)
	}
	return state
}

// ReadyCount reads the encoded ready-task count back out of a vector.
func (e *Encoder) ReadyCount(state []int64) int {
	if len(state) == 0 {
		return 0
	}
	return int(state[0])
}

// IdleResources decodes the busy flags of the resource segment, returning
// one bool per resource (true = idle).
func (e *Encoder) IdleResources(state []int64) []bool {
	offset := 1 + e.MaxTasks*FieldsPerTask
	if offset > len(state) {
		return nil
	}
	rest := state[offset:]
	idle := make([]bool, 0, len(rest)/FieldsPerResource)
	for i := 0; i+1 < len(rest); i += FieldsPerResource {
		idle = append(idle, rest[i] == 0)
	}
	return idle
}

func slack(t *model.Task) int64 {
	if t.Deadline == model.UnsetTime {
		return 0
	}
	s := t.Deadline - t.SubmitTime
	if s < 0 {
		return 0
	}
	return int64(s)
}
