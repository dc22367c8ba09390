package models

import (
	"errors"
	"math"
)

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task has not started.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusInProgress indicates the task is being worked on.
	TaskStatusInProgress TaskStatus = "in_progress"
	// TaskStatusCompleted indicates the task completed successfully.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed indicates the task failed.
	TaskStatusFailed TaskStatus = "failed"
	// TaskStatusSkipped indicates the task was skipped because a dependency
	// did not complete.
	TaskStatusSkipped TaskStatus = "skipped"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted,
		TaskStatusFailed, TaskStatusSkipped:
		return true
	default:
		return false
	}
}

// Terminal returns true if the status is a final state. Once a task reaches
// a terminal status its status and result are immutable for the rest of the run.
func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusSkipped:
		return true
	default:
		return false
	}
}

// Priority represents the scheduling priority of a task.
type Priority string

const (
	// PriorityCritical is the highest priority.
	PriorityCritical Priority = "critical"
	// PriorityHigh is above-normal priority.
	PriorityHigh Priority = "high"
	// PriorityMedium is normal priority.
	PriorityMedium Priority = "medium"
	// PriorityLow is the lowest priority.
	PriorityLow Priority = "low"
)

// Valid returns true if the priority is a known value.
func (p Priority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// Rank returns the sort rank for the priority. Lower ranks schedule first.
// Unknown priorities rank last.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// Transition errors.
var (
	// ErrTaskTerminal indicates an attempt to change a task that already
	// reached a terminal status.
	ErrTaskTerminal = errors.New("task is in a terminal status")
	// ErrTaskNotPending indicates Begin was called on a task that is not pending.
	ErrTaskNotPending = errors.New("task is not pending")
)

// Task represents a unit of work owned by a single agent.
type Task struct {
	// ID is the unique identifier for this task within its agent.
	ID string `json:"id"`
	// Name is the short description of the task.
	Name string `json:"name"`
	// Kind selects the executor handler for this task.
	Kind string `json:"kind"`
	// Priority is the scheduling priority.
	Priority Priority `json:"priority"`
	// Status is the current state of the task.
	Status TaskStatus `json:"status"`
	// DependsOn lists task IDs that must complete before this task.
	DependsOn []string `json:"depends_on,omitempty"`
	// Result holds the outcome once the task reaches completed or failed.
	Result *TaskResult `json:"result,omitempty"`
}

// Begin transitions the task from pending to in_progress.
func (t *Task) Begin() error {
	if t.Status.Terminal() {
		return ErrTaskTerminal
	}
	if t.Status != TaskStatusPending {
		return ErrTaskNotPending
	}
	t.Status = TaskStatusInProgress
	return nil
}

// Finish records the result and moves the task to completed or failed based
// on the result's success flag.
func (t *Task) Finish(result *TaskResult) error {
	if t.Status.Terminal() {
		return ErrTaskTerminal
	}
	t.Result = result
	if result != nil && result.Success {
		t.Status = TaskStatusCompleted
	} else {
		t.Status = TaskStatusFailed
	}
	return nil
}

// Skip marks the task skipped without invoking its executor. The result
// records why the task was gated so every task in a pass produces a result.
func (t *Task) Skip(result *TaskResult) error {
	if t.Status.Terminal() {
		return ErrTaskTerminal
	}
	t.Result = result
	t.Status = TaskStatusSkipped
	return nil
}

// Reset re-arms the task for a new run, clearing status and result.
func (t *Task) Reset() {
	t.Status = TaskStatusPending
	t.Result = nil
}

// TaskResult is the outcome of a single executor invocation.
// It is immutable after creation.
type TaskResult struct {
	// TaskID is the ID of the task that produced this result.
	TaskID string `json:"task_id"`
	// Success indicates whether the task achieved its goal.
	Success bool `json:"success"`
	// Message is a human-readable description of the outcome.
	Message string `json:"message,omitempty"`
	// FilesModified lists paths touched by the executor, in order.
	FilesModified []string `json:"files_modified,omitempty"`
	// IssuesFound is the number of issues the executor detected.
	IssuesFound int `json:"issues_found"`
	// IssuesFixed is the number of issues the executor resolved.
	// By convention IssuesFixed <= IssuesFound, though this is not enforced.
	IssuesFixed int `json:"issues_fixed"`
}

// Confidence returns the per-task confidence percentage: 100 when no issues
// were found, otherwise the rounded fix rate.
func (r *TaskResult) Confidence() int {
	if r.IssuesFound == 0 {
		return 100
	}
	return int(math.Round(100 * float64(r.IssuesFixed) / float64(r.IssuesFound)))
}
