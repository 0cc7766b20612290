// Package parser loads workload definition files: the resource pool plus
// jobs with their textual parallelism-constraint fields.
package parser

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/me/dispatchsim/pkg/model"
)

// Workload is a parsed workload document.
type Workload struct {
	Resources []ResourceSpec `yaml:"resources"`
	Jobs      []JobSpec      `yaml:"jobs"`
}

// ResourceSpec describes one compute resource.
type ResourceSpec struct {
	MIPS     float64 `yaml:"mips"`
	MemoryMB int64   `yaml:"memory_mb"`
}

// JobSpec describes one job. The constraint fields stay textual here; the
// constraint ledger is the single parse authority for them.
type JobSpec struct {
	ID             int        `yaml:"id"`
	MaxParallel    string     `yaml:"max_parallel_executable_tasks"`
	ParallelGroups string     `yaml:"tasks_which_can_run_in_parallel"`
	Tasks          []TaskSpec `yaml:"tasks"`
}

// TaskSpec describes one task of a job.
type TaskSpec struct {
	ID         int      `yaml:"id"`
	Length     int64    `yaml:"length"`
	SubmitTime float64  `yaml:"submit_time"`
	Deadline   *float64 `yaml:"deadline,omitempty"`
	Priority   int      `yaml:"priority"`
}

// Parser converts raw workload YAML into a validated Workload.
type Parser struct {
	logger *slog.Logger
}

// New creates a Parser with the given logger.
func New(logger *slog.Logger) *Parser {
	return &Parser{logger: logger.With("component", "parser")}
}

// Parse unmarshals and validates a workload document.
func (p *Parser) Parse(data []byte) (*Workload, error) {
	var w Workload
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}
	if err := p.validate(&w); err != nil {
		return nil, err
	}
	p.logger.Debug("workload parsed", "resources", len(w.Resources), "jobs", len(w.Jobs))
	return &w, nil
}

// Load reads and parses a workload file.
func (p *Parser) Load(path string) (*Workload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workload %s: %w", path, err)
	}
	w, err := p.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse workload %s: %w", path, err)
	}
	return w, nil
}

// validate collects every structural problem before failing, so a bad
// workload file reports all its defects at once. Constraint-text syntax is
// deliberately not checked here; the ledger owns that grammar.
func (p *Parser) validate(w *Workload) error {
	var errs []model.FieldError

	if len(w.Resources) == 0 {
		errs = append(errs, model.FieldError{Field: "resources", Message: "at least one resource is required"})
	}
	for i, r := range w.Resources {
		if r.MIPS <= 0 {
			errs = append(errs, model.FieldError{
				Field:   fmt.Sprintf("resources[%d].mips", i),
				Message: "mips must be positive",
			})
		}
	}

	if len(w.Jobs) == 0 {
		errs = append(errs, model.FieldError{Field: "jobs", Message: "at least one job is required"})
	}
	seenJobs := make(map[int]bool)
	for i, j := range w.Jobs {
		if seenJobs[j.ID] {
			errs = append(errs, model.FieldError{
				Field:   fmt.Sprintf("jobs[%d].id", i),
				Message: fmt.Sprintf("duplicate job id %d", j.ID),
			})
		}
		seenJobs[j.ID] = true

		if j.MaxParallel == "" {
			errs = append(errs, model.FieldError{
				Field:   fmt.Sprintf("jobs[%d].max_parallel_executable_tasks", i),
				Message: "required",
			})
		}
		if j.ParallelGroups == "" {
			errs = append(errs, model.FieldError{
				Field:   fmt.Sprintf("jobs[%d].tasks_which_can_run_in_parallel", i),
				Message: "required",
			})
		}
		if len(j.Tasks) == 0 {
			errs = append(errs, model.FieldError{
				Field:   fmt.Sprintf("jobs[%d].tasks", i),
				Message: "at least one task is required",
			})
		}

		seenTasks := make(map[int]bool)
		for k, task := range j.Tasks {
			if seenTasks[task.ID] {
				errs = append(errs, model.FieldError{
					Field:   fmt.Sprintf("jobs[%d].tasks[%d].id", i, k),
					Message: fmt.Sprintf("duplicate task id %d in job %d", task.ID, j.ID),
				})
			}
			seenTasks[task.ID] = true

			if task.Length <= 0 {
				errs = append(errs, model.FieldError{
					Field:   fmt.Sprintf("jobs[%d].tasks[%d].length", i, k),
					Message: "length must be positive",
				})
			}
			if task.SubmitTime < 0 {
				errs = append(errs, model.FieldError{
					Field:   fmt.Sprintf("jobs[%d].tasks[%d].submit_time", i, k),
					Message: "submit_time must not be negative",
				})
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return model.NewValidationError("workload validation failed", errs...)
}

// BuildResources materializes the resource pool in declaration order.
func (w *Workload) BuildResources() []*model.Resource {
	resources := make([]*model.Resource, len(w.Resources))
	for i, spec := range w.Resources {
		resources[i] = model.NewResource(i, spec.MIPS, spec.MemoryMB)
	}
	return resources
}

// BuildTasks materializes every task of every job, in document order.
func (w *Workload) BuildTasks() []*model.Task {
	var tasks []*model.Task
	for _, j := range w.Jobs {
		for _, spec := range j.Tasks {
			t := model.NewTask(spec.ID, j.ID, spec.Length, spec.SubmitTime)
			t.Priority = spec.Priority
			if spec.Deadline != nil {
				t.Deadline = *spec.Deadline
			}
			tasks = append(tasks, t)
		}
	}
	return tasks
}
