package models

import (
	"context"
	"fmt"
	"time"
)

// Category classifies an agent by the kind of work its tasks perform.
type Category string

const (
	// CategoryLint covers agents that detect and fix code-quality issues.
	CategoryLint Category = "lint"
	// CategoryStyle covers agents that normalize formatting and style.
	CategoryStyle Category = "style"
	// CategorySecurity covers agents that remediate security findings.
	CategorySecurity Category = "security"
	// CategoryPerformance covers agents that apply performance fixes.
	CategoryPerformance Category = "performance"
	// CategoryDocs covers agents that repair documentation.
	CategoryDocs Category = "docs"
)

// Valid returns true if the category is a known value.
func (c Category) Valid() bool {
	switch c {
	case CategoryLint, CategoryStyle, CategorySecurity, CategoryPerformance, CategoryDocs:
		return true
	default:
		return false
	}
}

// Executor performs the real work of a task and returns its result.
// Executors are supplied by the caller and are opaque to the scheduler: they
// may perform arbitrary I/O. An executor must not mutate the task's identity
// fields (ID, Kind, Priority, DependsOn).
type Executor func(ctx context.Context, task *Task) (*TaskResult, error)

// Agent is a named bundle of ordered tasks plus the executors that run them.
// Handlers are resolved per task kind at construction time so a missing
// handler surfaces as a configuration error, not a runtime dispatch failure.
type Agent struct {
	// ID is the unique identifier for this agent.
	ID string `json:"id"`
	// Category classifies the agent's work.
	Category Category `json:"category"`
	// Tasks is the ordered task list owned by this agent.
	Tasks []*Task `json:"tasks"`

	handlers map[string]Executor
}

// NewAgent creates an Agent and validates that every task kind has a handler
// and every task ID is unique within the agent.
func NewAgent(id string, category Category, tasks []*Task, handlers map[string]Executor) (*Agent, error) {
	if id == "" {
		return nil, fmt.Errorf("agent id is required")
	}
	if !category.Valid() {
		return nil, fmt.Errorf("agent %s: unknown category %q", id, category)
	}

	seen := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		if seen[task.ID] {
			return nil, fmt.Errorf("agent %s: duplicate task id %q", id, task.ID)
		}
		seen[task.ID] = true

		if !task.Priority.Valid() {
			return nil, fmt.Errorf("agent %s: task %s has unknown priority %q", id, task.ID, task.Priority)
		}
		if _, ok := handlers[task.Kind]; !ok {
			return nil, fmt.Errorf("agent %s: no handler registered for task kind %q (task %s)", id, task.Kind, task.ID)
		}
	}

	return &Agent{
		ID:       id,
		Category: category,
		Tasks:    tasks,
		handlers: handlers,
	}, nil
}

// ExecutorFor returns the handler for the given task's kind.
func (a *Agent) ExecutorFor(task *Task) Executor {
	return a.handlers[task.Kind]
}

// ResetTasks re-arms every task for a new run.
func (a *Agent) ResetTasks() {
	for _, task := range a.Tasks {
		task.Reset()
	}
}

// AgentExecutionResult aggregates the outcome of running one agent's tasks.
type AgentExecutionResult struct {
	// RunID identifies the batch run that produced this result.
	RunID string `json:"run_id,omitempty"`
	// AgentID identifies the agent that produced this result.
	AgentID string `json:"agent_id"`
	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`
	// FinishedAt is when the run ended.
	FinishedAt time.Time `json:"finished_at"`
	// Duration is FinishedAt minus StartedAt.
	Duration time.Duration `json:"duration"`
	// TotalTasks is the number of tasks processed.
	TotalTasks int `json:"total_tasks"`
	// CompletedTasks is the number of tasks that completed successfully.
	CompletedTasks int `json:"completed_tasks"`
	// FailedTasks is the number of tasks that failed.
	FailedTasks int `json:"failed_tasks"`
	// SkippedTasks is the number of tasks skipped on unmet dependencies.
	SkippedTasks int `json:"skipped_tasks"`
	// Results holds one TaskResult per processed task, in execution order.
	Results []*TaskResult `json:"results"`
	// Summary is a human-readable one-line outcome.
	Summary string `json:"summary"`
}
