package models

import (
	"errors"
	"testing"
)

func TestTaskStatus_Valid(t *testing.T) {
	tests := []struct {
		name   string
		status TaskStatus
		want   bool
	}{
		{"pending is valid", TaskStatusPending, true},
		{"in_progress is valid", TaskStatusInProgress, true},
		{"completed is valid", TaskStatusCompleted, true},
		{"failed is valid", TaskStatusFailed, true},
		{"skipped is valid", TaskStatusSkipped, true},
		{"empty string is invalid", TaskStatus(""), false},
		{"unknown status is invalid", TaskStatus("unknown"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.want {
				t.Errorf("TaskStatus(%q).Valid() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestTaskStatus_Terminal(t *testing.T) {
	tests := []struct {
		status TaskStatus
		want   bool
	}{
		{TaskStatusPending, false},
		{TaskStatusInProgress, false},
		{TaskStatusCompleted, true},
		{TaskStatusFailed, true},
		{TaskStatusSkipped, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Terminal(); got != tt.want {
				t.Errorf("TaskStatus(%q).Terminal() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestPriority_Rank(t *testing.T) {
	tests := []struct {
		priority Priority
		want     int
	}{
		{PriorityCritical, 0},
		{PriorityHigh, 1},
		{PriorityMedium, 2},
		{PriorityLow, 3},
		{Priority("bogus"), 4},
	}

	for _, tt := range tests {
		t.Run(string(tt.priority), func(t *testing.T) {
			if got := tt.priority.Rank(); got != tt.want {
				t.Errorf("Priority(%q).Rank() = %d, want %d", tt.priority, got, tt.want)
			}
		})
	}
}

func TestTask_Transitions(t *testing.T) {
	task := &Task{ID: "t1", Status: TaskStatusPending}

	if err := task.Begin(); err != nil {
		t.Fatalf("Begin() on pending task: %v", err)
	}
	if task.Status != TaskStatusInProgress {
		t.Errorf("Status = %q after Begin, want %q", task.Status, TaskStatusInProgress)
	}

	// Begin on an in-progress task is rejected.
	if err := task.Begin(); !errors.Is(err, ErrTaskNotPending) {
		t.Errorf("Begin() on in_progress task = %v, want ErrTaskNotPending", err)
	}

	res := &TaskResult{TaskID: "t1", Success: true}
	if err := task.Finish(res); err != nil {
		t.Fatalf("Finish(): %v", err)
	}
	if task.Status != TaskStatusCompleted {
		t.Errorf("Status = %q after successful Finish, want %q", task.Status, TaskStatusCompleted)
	}
	if task.Result != res {
		t.Error("Finish did not record the result")
	}
}

func TestTask_TerminalIsImmutable(t *testing.T) {
	task := &Task{ID: "t1", Status: TaskStatusPending}
	first := &TaskResult{TaskID: "t1", Success: false, Message: "first"}
	if err := task.Finish(first); err != nil {
		t.Fatalf("Finish(): %v", err)
	}

	if err := task.Finish(&TaskResult{Success: true}); !errors.Is(err, ErrTaskTerminal) {
		t.Errorf("Finish() on terminal task = %v, want ErrTaskTerminal", err)
	}
	if err := task.Begin(); !errors.Is(err, ErrTaskTerminal) {
		t.Errorf("Begin() on terminal task = %v, want ErrTaskTerminal", err)
	}
	if err := task.Skip(nil); !errors.Is(err, ErrTaskTerminal) {
		t.Errorf("Skip() on terminal task = %v, want ErrTaskTerminal", err)
	}

	if task.Status != TaskStatusFailed || task.Result != first {
		t.Errorf("terminal task mutated: status=%q result=%v", task.Status, task.Result)
	}
}

func TestTask_Reset(t *testing.T) {
	task := &Task{ID: "t1", Status: TaskStatusPending}
	_ = task.Finish(&TaskResult{TaskID: "t1", Success: true})

	task.Reset()

	if task.Status != TaskStatusPending {
		t.Errorf("Status = %q after Reset, want %q", task.Status, TaskStatusPending)
	}
	if task.Result != nil {
		t.Errorf("Result = %v after Reset, want nil", task.Result)
	}
}

func TestTaskResult_Confidence(t *testing.T) {
	tests := []struct {
		name  string
		found int
		fixed int
		want  int
	}{
		{"no issues found means full confidence", 0, 0, 100},
		{"all fixed", 4, 4, 100},
		{"half fixed", 4, 2, 50},
		{"rounds to nearest", 3, 2, 67},
		{"none fixed", 5, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &TaskResult{IssuesFound: tt.found, IssuesFixed: tt.fixed}
			if got := r.Confidence(); got != tt.want {
				t.Errorf("Confidence() = %d, want %d", got, tt.want)
			}
		})
	}
}
