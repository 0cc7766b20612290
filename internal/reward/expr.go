package reward

import (
	"fmt"
	"log/slog"

	"github.com/dop251/goja"

	"github.com/me/dispatchsim/pkg/model"
)

// Expr evaluates a JavaScript expression as the reward function, letting
// experiments redefine the signal without recompiling. The expression sees
// three bindings:
//
//	task     {id, job_id, length, priority, submit, deadline}
//	resource {id, mips, memory_mb}
//	now      current simulated time
//
// and must evaluate to a number, e.g.
//
//	-(task.length / resource.mips) + (task.priority * 0.1)
type Expr struct {
	prog   *goja.Program
	logger *slog.Logger
}

// NewExpr compiles the expression. Compile errors surface here; evaluation
// errors are logged at Score time and yield 0, since the reward must stay
// total for the feedback contract.
func NewExpr(src string, logger *slog.Logger) (*Expr, error) {
	prog, err := goja.Compile("reward", src, false)
	if err != nil {
		return nil, fmt.Errorf("compile reward expression: %w", err)
	}
	return &Expr{
		prog:   prog,
		logger: logger.With("component", "reward"),
	}, nil
}

// Score implements Model.
func (e *Expr) Score(t *model.Task, r *model.Resource, now float64) float64 {
	vm := goja.New()

	taskObj := map[string]any{
		"id":       t.ID,
		"job_id":   t.JobID,
		"length":   t.Length,
		"priority": t.Priority,
		"submit":   t.SubmitTime,
		"deadline": t.Deadline,
	}
	resourceObj := map[string]any{
		"id":        r.ID,
		"mips":      r.MIPS,
		"memory_mb": r.MemoryMB,
	}

	if err := vm.Set("task", taskObj); err != nil {
		e.logger.Error("bind task", "error", err)
		return 0
	}
	if err := vm.Set("resource", resourceObj); err != nil {
		e.logger.Error("bind resource", "error", err)
		return 0
	}
	if err := vm.Set("now", now); err != nil {
		e.logger.Error("bind now", "error", err)
		return 0
	}

	v, err := vm.RunProgram(e.prog)
	if err != nil {
		e.logger.Error("reward expression failed", "task_id", t.ID, "error", err)
		return 0
	}
	return v.ToFloat()
}
