package model

// Job is a unit of work composed of parallelism-constrained tasks.
//
// MaxParallel caps how many tasks of the job may run concurrently.
// ParallelGroups is a declarative whitelist of co-running sets: at any
// instant the set of running tasks of the job must be a subset of at
// least one declared group. The two constraints are independent; a group
// may name more tasks than MaxParallel permits at once.
type Job struct {
	ID             int     `json:"id"`
	MaxParallel    int     `json:"max_parallel"`
	ParallelGroups [][]int `json:"parallel_groups"`
}
