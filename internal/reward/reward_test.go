package reward

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/me/dispatchsim/pkg/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefault_NegativeExecTime(t *testing.T) {
	m := Default{LengthScale: 10, DeadlineBonus: 1}
	task := model.NewTask(1, 1, 1000, 0) // no deadline
	res := model.NewResource(0, 100, 1024)

	// execTime = 1000/100 = 10, score = -10/10 = -1
	got := m.Score(task, res, 0)
	if math.Abs(got-(-1)) > 1e-9 {
		t.Errorf("Score = %g, want -1", got)
	}
}

func TestDefault_DeadlineBonus(t *testing.T) {
	m := Default{LengthScale: 10, DeadlineBonus: 2}
	res := model.NewResource(0, 100, 1024)

	meets := model.NewTask(1, 1, 1000, 0)
	meets.Deadline = 50 // execTime 10, 0+10 <= 50
	if got := m.Score(meets, res, 0); math.Abs(got-1) > 1e-9 {
		t.Errorf("deadline-met Score = %g, want 1", got)
	}

	misses := model.NewTask(2, 1, 1000, 0)
	misses.Deadline = 5 // 0+10 > 5
	if got := m.Score(misses, res, 0); math.Abs(got-(-1)) > 1e-9 {
		t.Errorf("deadline-missed Score = %g, want -1", got)
	}

	// The bonus depends on the dispatch time, not just the deadline.
	if got := m.Score(meets, res, 45); math.Abs(got-(-1)) > 1e-9 {
		t.Errorf("late-dispatch Score = %g, want -1", got)
	}
}

func TestExpr_Score(t *testing.T) {
	e, err := NewExpr("-(task.length / resource.mips) + now", testLogger())
	if err != nil {
		t.Fatalf("NewExpr: %v", err)
	}

	task := model.NewTask(1, 1, 500, 0)
	res := model.NewResource(0, 100, 1024)

	// -(500/100) + 3 = -2
	got := e.Score(task, res, 3)
	if math.Abs(got-(-2)) > 1e-9 {
		t.Errorf("Score = %g, want -2", got)
	}
}

func TestExpr_CompileError(t *testing.T) {
	if _, err := NewExpr("task.length +", testLogger()); err == nil {
		t.Error("expected compile error for truncated expression")
	}
}

func TestExpr_RuntimeErrorScoresZero(t *testing.T) {
	e, err := NewExpr("undefinedThing.field", testLogger())
	if err != nil {
		t.Fatalf("NewExpr: %v", err)
	}

	got := e.Score(model.NewTask(1, 1, 100, 0), model.NewResource(0, 100, 1024), 0)
	if got != 0 {
		t.Errorf("Score = %g, want 0 on evaluation failure", got)
	}
}
