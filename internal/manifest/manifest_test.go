package manifest

import (
	"context"
	"strings"
	"testing"

	"github.com/oakhill-labs/taskforce/pkg/models"
)

const sampleManifest = `
agents:
  - id: lint-fixer
    category: lint
    tasks:
      - id: fix-imports
        name: Fix unused imports
        priority: high
        run: "true"
      - id: fix-format
        name: Normalize formatting
        priority: low
        depends_on: [fix-imports]
        run: "true"
  - id: doc-fixer
    category: docs
    tasks:
      - id: fix-readme
        name: Repair README links
        kind: noop
`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(m.Agents) != 2 {
		t.Fatalf("agents = %d, want 2", len(m.Agents))
	}

	first := m.Agents[0].Tasks[0]
	if first.Kind != KindCommand {
		t.Errorf("kind = %q, want default %q", first.Kind, KindCommand)
	}
	if first.Priority != "high" {
		t.Errorf("priority = %q, want high", first.Priority)
	}

	noop := m.Agents[1].Tasks[0]
	if noop.Priority != string(models.PriorityMedium) {
		t.Errorf("default priority = %q, want medium", noop.Priority)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"no agents", "agents: []", "no agents"},
		{"missing agent id", "agents:\n  - category: lint", "id is required"},
		{
			"command without run",
			"agents:\n  - id: a\n    category: lint\n    tasks:\n      - id: t1\n        name: x",
			"need a run line",
		},
		{"malformed yaml", "agents: {not a list", "parsing manifest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Parse() error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestBuildAgents(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	agents, err := m.BuildAgents()
	if err != nil {
		t.Fatalf("BuildAgents() error = %v", err)
	}

	if len(agents) != 2 {
		t.Fatalf("agents = %d, want 2", len(agents))
	}
	if agents[0].Category != models.CategoryLint {
		t.Errorf("category = %q, want lint", agents[0].Category)
	}
	if len(agents[0].Tasks) != 2 {
		t.Errorf("tasks = %d, want 2", len(agents[0].Tasks))
	}
	if agents[0].ExecutorFor(agents[0].Tasks[0]) == nil {
		t.Error("ExecutorFor returned nil for command task")
	}
}

func TestBuildAgents_UnknownCategory(t *testing.T) {
	m, err := Parse([]byte("agents:\n  - id: a\n    category: mystery\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, err := m.BuildAgents(); err == nil || !strings.Contains(err.Error(), "unknown category") {
		t.Errorf("BuildAgents() error = %v, want unknown category", err)
	}
}

func TestFlatten(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	tasks, exec, err := m.Flatten()
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("tasks = %d, want 3", len(tasks))
	}

	// The dispatch executor routes by task ID; the noop task succeeds.
	var noop *models.Task
	for _, task := range tasks {
		if task.ID == "fix-readme" {
			noop = task
		}
	}
	res, err := exec(context.Background(), noop)
	if err != nil {
		t.Fatalf("dispatch executor error = %v", err)
	}
	if !res.Success {
		t.Errorf("noop result = %+v, want success", res)
	}
}

func TestFlatten_DuplicateTaskIDs(t *testing.T) {
	dup := `
agents:
  - id: a
    category: lint
    tasks:
      - id: shared
        name: one
        kind: noop
  - id: b
    category: docs
    tasks:
      - id: shared
        name: two
        kind: noop
`
	m, err := Parse([]byte(dup))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, _, err := m.Flatten(); err == nil || !strings.Contains(err.Error(), "more than one agent") {
		t.Errorf("Flatten() error = %v, want duplicate id error", err)
	}
}

func TestCommandExecutor(t *testing.T) {
	exec := commandExecutor(map[string]string{
		"ok":   "echo fixed",
		"fail": "exit 3",
	})

	okRes, err := exec(context.Background(), &models.Task{ID: "ok"})
	if err != nil {
		t.Fatalf("executor error = %v", err)
	}
	if !okRes.Success || okRes.Message != "fixed" {
		t.Errorf("result = %+v, want success with output", okRes)
	}

	failRes, err := exec(context.Background(), &models.Task{ID: "fail"})
	if err != nil {
		t.Fatalf("executor error = %v", err)
	}
	if failRes.Success {
		t.Errorf("result = %+v, want failure for exit 3", failRes)
	}
}
