package model

// TaskState represents the lifecycle state of a Task.
type TaskState string

const (
	TaskStatePending  TaskState = "PENDING"
	TaskStateEligible TaskState = "ELIGIBLE"
	TaskStateRunning  TaskState = "RUNNING"
	TaskStateFinished TaskState = "FINISHED"
)

// String returns the string representation of the task state.
func (s TaskState) String() string {
	return string(s)
}

// IsTerminal returns true if the task is in a final state.
func (s TaskState) IsTerminal() bool {
	return s == TaskStateFinished
}

// ValidTaskTransitions defines the allowed state transitions for Tasks.
var ValidTaskTransitions = map[TaskState][]TaskState{
	TaskStatePending:  {TaskStateEligible},
	TaskStateEligible: {TaskStateRunning},
	TaskStateRunning:  {TaskStateFinished},
}

// CanTransitionTo returns true if moving from the current state to next is valid.
func (s TaskState) CanTransitionTo(next TaskState) bool {
	for _, allowed := range ValidTaskTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ResourceState represents the occupancy state of a Resource.
type ResourceState string

const (
	ResourceStateIdle ResourceState = "IDLE"
	ResourceStateBusy ResourceState = "BUSY"
)

// String returns the string representation of the resource state.
func (s ResourceState) String() string {
	return string(s)
}
