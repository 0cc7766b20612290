package simengine

import "github.com/me/dispatchsim/pkg/model"

// completion is a scheduled task-finish event.
type completion struct {
	at   float64
	task *model.Task
}

// eventQueue is a min-heap of completion events ordered by time, with task
// id as tiebreaker for deterministic pop order.
type eventQueue []*completion

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].task.ID < q[j].task.ID
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x any) {
	*q = append(*q, x.(*completion))
}

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	ev := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return ev
}
