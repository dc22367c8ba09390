// Package manifest loads agent and task definitions from a YAML file and
// builds the runnable Agent/Task graph for the CLI.
package manifest

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/oakhill-labs/taskforce/pkg/models"
)

// Task kinds understood by the built-in handlers.
const (
	// KindCommand runs the task's shell command.
	KindCommand = "command"
	// KindNoop succeeds without doing anything (dry runs, placeholders).
	KindNoop = "noop"
)

// Manifest is the top-level YAML document.
type Manifest struct {
	Agents []AgentSpec `yaml:"agents"`
}

// AgentSpec defines one agent and its ordered tasks.
type AgentSpec struct {
	ID       string     `yaml:"id"`
	Category string     `yaml:"category"`
	Tasks    []TaskSpec `yaml:"tasks"`
}

// TaskSpec defines one task. Kind defaults to "command" and priority to
// "medium" when omitted.
type TaskSpec struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	Kind      string   `yaml:"kind"`
	Priority  string   `yaml:"priority"`
	DependsOn []string `yaml:"depends_on"`
	// Run is the shell command executed for command tasks.
	Run string `yaml:"run"`
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return Parse(data)
}

// Parse parses manifest YAML and validates its shape.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	if len(m.Agents) == 0 {
		return nil, fmt.Errorf("manifest defines no agents")
	}
	for i := range m.Agents {
		agent := &m.Agents[i]
		if agent.ID == "" {
			return nil, fmt.Errorf("agent %d: id is required", i)
		}
		for j := range agent.Tasks {
			task := &agent.Tasks[j]
			if task.ID == "" {
				return nil, fmt.Errorf("agent %s: task %d: id is required", agent.ID, j)
			}
			if task.Kind == "" {
				task.Kind = KindCommand
			}
			if task.Priority == "" {
				task.Priority = string(models.PriorityMedium)
			}
			if task.Kind == KindCommand && task.Run == "" {
				return nil, fmt.Errorf("agent %s: task %s: command tasks need a run line", agent.ID, task.ID)
			}
		}
	}

	return &m, nil
}

// BuildAgents constructs the Agent models with built-in handlers resolved
// per task kind.
func (m *Manifest) BuildAgents() ([]*models.Agent, error) {
	agents := make([]*models.Agent, 0, len(m.Agents))
	for _, spec := range m.Agents {
		tasks := make([]*models.Task, 0, len(spec.Tasks))
		commands := make(map[string]string, len(spec.Tasks))
		for _, ts := range spec.Tasks {
			tasks = append(tasks, &models.Task{
				ID:        ts.ID,
				Name:      ts.Name,
				Kind:      ts.Kind,
				Priority:  models.Priority(ts.Priority),
				Status:    models.TaskStatusPending,
				DependsOn: ts.DependsOn,
			})
			commands[ts.ID] = ts.Run
		}

		handlers := map[string]models.Executor{
			KindCommand: commandExecutor(commands),
			KindNoop:    noopExecutor,
		}

		agent, err := models.NewAgent(spec.ID, models.Category(spec.Category), tasks, handlers)
		if err != nil {
			return nil, err
		}
		agents = append(agents, agent)
	}
	return agents, nil
}

// Flatten returns every task across all agents as one list plus a dispatch
// executor, for the orchestrator's flat-task-list modes. Task IDs must be
// unique across the whole manifest.
func (m *Manifest) Flatten() ([]*models.Task, models.Executor, error) {
	agents, err := m.BuildAgents()
	if err != nil {
		return nil, nil, err
	}

	var tasks []*models.Task
	executors := make(map[string]models.Executor)
	for _, agent := range agents {
		for _, task := range agent.Tasks {
			if _, dup := executors[task.ID]; dup {
				return nil, nil, fmt.Errorf("task id %s appears in more than one agent", task.ID)
			}
			executors[task.ID] = agent.ExecutorFor(task)
			tasks = append(tasks, task)
		}
	}

	dispatch := func(ctx context.Context, task *models.Task) (*models.TaskResult, error) {
		exec, ok := executors[task.ID]
		if !ok {
			return nil, fmt.Errorf("no executor for task %s", task.ID)
		}
		return exec(ctx, task)
	}
	return tasks, dispatch, nil
}
