package oracle

import (
	"context"
	"log/slog"
	"sync"

	"github.com/me/dispatchsim/internal/feature"
)

// Heuristic is the reference policy: dispatch the first ready task whenever
// any resource is idle. It exists so the repository runs end to end without
// an external learner, and as a baseline to compare policies against.
//
// Unlike the core scheduler, the heuristic may be driven concurrently (it
// backs the HTTP reference server), so it locks its counters.
type Heuristic struct {
	encoder *feature.Encoder
	logger  *slog.Logger

	mu       sync.Mutex
	decides  int
	rewards  int
	retrains int
	total    float64
}

// NewHeuristic creates the reference policy. The encoder must match the
// one the dispatch loop encodes with, since the policy reads the vector's
// resource segment.
func NewHeuristic(encoder *feature.Encoder, logger *slog.Logger) *Heuristic {
	return &Heuristic{
		encoder: encoder,
		logger:  logger.With("component", "heuristic"),
	}
}

// Decide implements Oracle: first ready task if any resource is idle.
func (h *Heuristic) Decide(_ context.Context, state []int64) (int, error) {
	h.mu.Lock()
	h.decides++
	h.mu.Unlock()

	if h.encoder.ReadyCount(state) == 0 {
		return NoFeasibleAction, nil
	}
	for _, idle := range h.encoder.IdleResources(state) {
		if idle {
			return 0, nil
		}
	}
	return NoFeasibleAction, nil
}

// ReportReward implements Oracle; the heuristic only accumulates it.
func (h *Heuristic) ReportReward(_ context.Context, taskID int, reward float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rewards++
	h.total += reward
	h.logger.Debug("reward recorded", "task_id", taskID, "reward", reward)
	return nil
}

// Retrain implements Oracle; a fixed policy has nothing to update.
func (h *Heuristic) Retrain(_ context.Context, taskID int, _ []int64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.retrains++
	h.logger.Debug("retrain recorded", "task_id", taskID)
	return nil
}

// TotalReward returns the sum of all rewards reported so far.
func (h *Heuristic) TotalReward() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.total
}

// Calls returns the decide/reward/retrain call counts.
func (h *Heuristic) Calls() (decides, rewards, retrains int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.decides, h.rewards, h.retrains
}
