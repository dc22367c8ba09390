package manifest

import (
	"context"
	"os/exec"
	"strings"

	"github.com/oakhill-labs/taskforce/pkg/models"
)

// commandExecutor returns an executor that runs each task's shell command,
// looked up by task ID from the manifest.
func commandExecutor(commands map[string]string) models.Executor {
	return func(ctx context.Context, task *models.Task) (*models.TaskResult, error) {
		command := commands[task.ID]

		cmd := exec.CommandContext(ctx, "sh", "-c", command)
		out, err := cmd.CombinedOutput()

		result := &models.TaskResult{
			TaskID:  task.ID,
			Success: err == nil,
			Message: strings.TrimSpace(string(out)),
		}
		if err != nil && result.Message == "" {
			result.Message = err.Error()
		}
		return result, nil
	}
}

// noopExecutor succeeds immediately without side effects.
func noopExecutor(ctx context.Context, task *models.Task) (*models.TaskResult, error) {
	return &models.TaskResult{TaskID: task.ID, Success: true, Message: "noop"}, nil
}
