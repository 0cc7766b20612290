package scheduler

import (
	"log/slog"

	"github.com/me/dispatchsim/pkg/model"
)

// Placer binds tasks to the first idle resource in registration order and
// maintains the scheduled output list the simulation engine consumes.
type Placer struct {
	logger    *slog.Logger
	resources []*model.Resource
	scheduled []*model.Task
}

// NewPlacer creates a placer over a fixed resource pool. The scan order is
// the order of the slice and never changes.
func NewPlacer(resources []*model.Resource, logger *slog.Logger) *Placer {
	return &Placer{
		logger:    logger.With("component", "placer"),
		resources: resources,
	}
}

// PlaceFirstIdle binds the task to the first idle resource, marking the
// resource busy and appending the task to the scheduled list in the same
// step. Returns nil when no resource is idle.
func (p *Placer) PlaceFirstIdle(t *model.Task) *model.Resource {
	for _, r := range p.resources {
		if r.State != model.ResourceStateIdle {
			continue
		}
		r.State = model.ResourceStateBusy
		t.ResourceID = r.ID
		p.scheduled = append(p.scheduled, t)
		p.logger.Debug("task placed", "task_id", t.ID, "resource_id", r.ID, "mips", r.MIPS)
		return r
	}
	return nil
}

// Release marks the resource idle again. Called from the completion-event
// path only; the busy→idle transition is what re-enables placement.
func (p *Placer) Release(resourceID int) {
	for _, r := range p.resources {
		if r.ID == resourceID {
			r.State = model.ResourceStateIdle
			return
		}
	}
	p.logger.Warn("release of unknown resource", "resource_id", resourceID)
}

// Resources returns the pool in registration order.
func (p *Placer) Resources() []*model.Resource {
	return p.resources
}

// DrainScheduled returns the tasks bound since the last drain and clears
// the output list.
func (p *Placer) DrainScheduled() []*model.Task {
	out := p.scheduled
	p.scheduled = nil
	return out
}
