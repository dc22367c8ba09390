// Package runner executes a single agent's tasks under priority and
// dependency ordering.
package runner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/oakhill-labs/taskforce/internal/graph"
	"github.com/oakhill-labs/taskforce/internal/logging"
	"github.com/oakhill-labs/taskforce/pkg/models"
)

// Runner executes an agent's tasks one at a time: stable priority sort,
// dependency gating, executor invocation, result collection. Per-task
// failures never abort the run.
type Runner struct {
	logger *logging.DebugLogger
}

// New creates a Runner. A nil logger disables debug logging.
func New(logger *logging.DebugLogger) *Runner {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Runner{logger: logger}
}

// Run resets and executes every task owned by the agent and returns the
// aggregate result. It returns an error only for configuration problems
// (cyclic or unknown dependencies) detected before any executor is invoked.
func (r *Runner) Run(ctx context.Context, agent *models.Agent) (*models.AgentExecutionResult, error) {
	agent.ResetTasks()

	g, err := graph.New(agent.Tasks)
	if err != nil {
		return nil, fmt.Errorf("agent %s: invalid task graph: %w", agent.ID, err)
	}

	result := &models.AgentExecutionResult{
		AgentID:    agent.ID,
		StartedAt:  time.Now(),
		TotalTasks: len(agent.Tasks),
		Results:    make([]*models.TaskResult, 0, len(agent.Tasks)),
	}

	// Stable sort keeps declaration order within equal priority.
	ordered := make([]*models.Task, len(agent.Tasks))
	copy(ordered, agent.Tasks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority.Rank() < ordered[j].Priority.Rank()
	})

	for _, task := range ordered {
		if met, unmet := g.DependenciesMet(task.ID); !met {
			r.logger.Log("[runner] agent %s: skipping task %s (dependency %s not completed)", agent.ID, task.ID, unmet)
			skipRes := &models.TaskResult{
				TaskID:  task.ID,
				Success: false,
				Message: fmt.Sprintf("skipped: dependency %s not completed", unmet),
			}
			_ = task.Skip(skipRes)
			result.SkippedTasks++
			result.Results = append(result.Results, skipRes)
			continue
		}

		if err := task.Begin(); err != nil {
			// A task seen twice in a pass is a bug in the caller's graph,
			// but the run continues.
			r.logger.Log("[runner] agent %s: task %s could not start: %v", agent.ID, task.ID, err)
			continue
		}

		r.logger.Log("[runner] agent %s: executing task %s (%s, priority=%s)", agent.ID, task.ID, task.Name, task.Priority)
		taskRes := Execute(ctx, agent.ExecutorFor(task), task)
		if !taskRes.Success {
			r.logger.Log("[runner] agent %s: task %s failed: %s", agent.ID, task.ID, taskRes.Message)
		}

		_ = task.Finish(taskRes)
		if taskRes.Success {
			result.CompletedTasks++
		} else {
			result.FailedTasks++
		}
		result.Results = append(result.Results, taskRes)
	}

	result.FinishedAt = time.Now()
	result.Duration = result.FinishedAt.Sub(result.StartedAt)
	result.Summary = fmt.Sprintf("agent %s: %d/%d completed, %d failed, %d skipped in %s",
		agent.ID, result.CompletedTasks, result.TotalTasks,
		result.FailedTasks, result.SkippedTasks, result.Duration.Round(time.Millisecond))

	r.logger.Log("[runner] %s", result.Summary)
	return result, nil
}

// Execute invokes the executor and converts panics, errors, and missing
// results into a failed TaskResult so a run can continue past one bad task.
// It is shared by the per-agent Runner and the orchestrator's execution modes.
func Execute(ctx context.Context, exec models.Executor, task *models.Task) (res *models.TaskResult) {
	defer func() {
		if p := recover(); p != nil {
			res = &models.TaskResult{
				TaskID:  task.ID,
				Success: false,
				Message: fmt.Sprintf("executor panicked: %v", p),
			}
		}
	}()

	out, err := exec(ctx, task)
	if err != nil {
		return &models.TaskResult{
			TaskID:  task.ID,
			Success: false,
			Message: err.Error(),
		}
	}
	if out == nil {
		return &models.TaskResult{
			TaskID:  task.ID,
			Success: false,
			Message: "executor returned no result",
		}
	}
	if out.TaskID == "" {
		out.TaskID = task.ID
	}
	return out
}
