package ledger

import (
	"strconv"
	"strings"

	"github.com/me/dispatchsim/pkg/model"
)

// parseMaxParallel parses the max_parallel_executable_tasks field.
func parseMaxParallel(jobID int, s string) (int, error) {
	mp, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &model.MalformedConstraintError{
			JobID:  jobID,
			Field:  "max_parallel_executable_tasks",
			Reason: "not an integer: " + strconv.Quote(s),
		}
	}
	if mp < 1 {
		return 0, &model.MalformedConstraintError{
			JobID:  jobID,
			Field:  "max_parallel_executable_tasks",
			Reason: "must be a positive integer, got " + strconv.Itoa(mp),
		}
	}
	return mp, nil
}

// parseGroups parses the tasks_which_can_run_in_parallel field, a bracketed
// comma-separated encoding of task-id groups like "[[1,2],[2,3,4]]".
func parseGroups(jobID int, s string) ([][]int, error) {
	malformed := func(reason string) error {
		return &model.MalformedConstraintError{
			JobID:  jobID,
			Field:  "tasks_which_can_run_in_parallel",
			Reason: reason,
		}
	}

	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "[[") || !strings.HasSuffix(trimmed, "]]") {
		return nil, malformed("expected [[...],[...]] encoding, got " + strconv.Quote(s))
	}

	inner := trimmed[2 : len(trimmed)-2]
	groups := make([][]int, 0, 4)
	for i, part := range strings.Split(inner, "],[") {
		fields := strings.Split(part, ",")
		group := make([]int, 0, len(fields))
		for _, f := range fields {
			f = strings.TrimSpace(f)
			if f == "" {
				return nil, malformed("group " + itoa(i) + " contains an empty element")
			}
			id, err := strconv.Atoi(f)
			if err != nil {
				return nil, malformed("group " + itoa(i) + ": not an integer: " + strconv.Quote(f))
			}
			group = append(group, id)
		}
		if len(group) == 0 {
			return nil, malformed("group " + itoa(i) + " is empty")
		}
		groups = append(groups, group)
	}
	if len(groups) == 0 {
		return nil, malformed("no groups declared")
	}
	return groups, nil
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
