package orchestrator

import (
	"time"

	"github.com/oakhill-labs/taskforce/pkg/models"
)

// Report is the serializable outcome of one orchestrator run. Writing it to
// disk is the caller's responsibility.
type Report struct {
	// RunID is a short unique identifier for this run.
	RunID string `json:"run_id"`
	// Mode is the execution strategy that produced the report.
	Mode Mode `json:"mode"`
	// Results holds the final pass's task results.
	Results []*models.TaskResult `json:"results"`
	// Reasoning holds the confidence chain steps (ultrathink mode only).
	Reasoning []models.ThinkingStep `json:"reasoning,omitempty"`
	// Summary aggregates the run.
	Summary Summary `json:"summary"`
}

// Summary aggregates counts and confidence for a run.
type Summary struct {
	TotalTasks        int           `json:"total_tasks"`
	Completed         int           `json:"completed"`
	Failed            int           `json:"failed"`
	Skipped           int           `json:"skipped"`
	IssuesFound       int           `json:"issues_found"`
	IssuesFixed       int           `json:"issues_fixed"`
	FilesModified     int           `json:"files_modified"`
	OverallConfidence int           `json:"overall_confidence"`
	Iterations        int           `json:"iterations"`
	Duration          time.Duration `json:"duration"`
}

// buildSummary aggregates the final results over the full task set. Counts
// come from task statuses so tasks that never ran in the final pass (for
// example, ones that succeeded in an earlier ultrathink iteration) are still
// represented.
func buildSummary(tasks []*models.Task, results []*models.TaskResult, iterations int, duration time.Duration) Summary {
	summary := Summary{
		TotalTasks: len(tasks),
		Iterations: iterations,
		Duration:   duration,
	}

	for _, task := range tasks {
		switch task.Status {
		case models.TaskStatusCompleted:
			summary.Completed++
		case models.TaskStatusFailed:
			summary.Failed++
		case models.TaskStatusSkipped:
			summary.Skipped++
		}
	}

	seen := make(map[string]bool)
	for _, res := range results {
		summary.IssuesFound += res.IssuesFound
		summary.IssuesFixed += res.IssuesFixed
		for _, path := range res.FilesModified {
			if !seen[path] {
				seen[path] = true
				summary.FilesModified++
			}
		}
	}

	summary.OverallConfidence = overallConfidence(results)
	return summary
}
