package model

import "time"

// Run is one recorded simulation run.
type Run struct {
	ID          string     `json:"id"`
	Workload    string     `json:"workload"`
	Oracle      string     `json:"oracle"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Makespan    float64    `json:"makespan"`
	TotalReward float64    `json:"total_reward"`
}

// Decision is one committed dispatch cycle: which task the oracle chose,
// where it landed, and the reward reported back.
type Decision struct {
	Seq        int     `json:"seq"`
	SimTime    float64 `json:"sim_time"`
	TaskID     int     `json:"task_id"`
	JobID      int     `json:"job_id"`
	ResourceID int     `json:"resource_id"`
	Action     int     `json:"action"`
	Reward     float64 `json:"reward"`
}

// TaskResult is the final timing record of a finished task.
type TaskResult struct {
	TaskID     int     `json:"task_id"`
	JobID      int     `json:"job_id"`
	ResourceID int     `json:"resource_id"`
	SubmitTime float64 `json:"submit_time"`
	StartTime  float64 `json:"start_time"`
	FinishTime float64 `json:"finish_time"`
}
