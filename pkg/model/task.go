package model

// UnsetTime marks a simulated-time field that has not been stamped yet.
// Finish times stay at UnsetTime until the simulation fires the completion
// event; deadlines at UnsetTime mean "no deadline".
const UnsetTime = -1.0

// NoResource marks a task that has not been bound to a resource.
const NoResource = -1

// Task is an individually schedulable unit of work within a Job.
type Task struct {
	ID    int `json:"id"`
	JobID int `json:"job_id"`

	// Length is the computational size in million instructions.
	Length int64 `json:"length"`

	// Priority is an opaque hint forwarded to the decision oracle.
	Priority int `json:"priority"`

	// SubmitTime is the simulated time at which the task becomes
	// eligible once its job constraints allow it.
	SubmitTime float64 `json:"submit_time"`

	// StartTime is stamped on dispatch; UnsetTime before that.
	StartTime float64 `json:"start_time"`

	// FinishTime is stamped by the simulation's completion event;
	// UnsetTime while pending or running without a known completion.
	FinishTime float64 `json:"finish_time"`

	// Deadline is the latest acceptable completion time, UnsetTime if none.
	Deadline float64 `json:"deadline"`

	// ResourceID is the bound resource, NoResource until placement.
	ResourceID int `json:"resource_id"`

	State TaskState `json:"state"`
}

// NewTask creates a PENDING task with unstamped times.
func NewTask(id, jobID int, length int64, submitTime float64) *Task {
	return &Task{
		ID:         id,
		JobID:      jobID,
		Length:     length,
		SubmitTime: submitTime,
		StartTime:  UnsetTime,
		FinishTime: UnsetTime,
		Deadline:   UnsetTime,
		ResourceID: NoResource,
		State:      TaskStatePending,
	}
}

// ExecTime returns the execution duration of the task on a resource with
// the given MIPS rating.
func (t *Task) ExecTime(mips float64) float64 {
	return float64(t.Length) / mips
}
