package orchestrator

import (
	"context"
	"math"

	"github.com/oakhill-labs/taskforce/pkg/models"
)

// runUltrathink executes the task set iteratively. After each iteration the
// retry set narrows to only the tasks that did not succeed; previously
// succeeded tasks are not re-verified. The loop halts at maxIter or once
// overall confidence reaches the target, whichever comes first. The returned
// results are exactly the last iteration's, not an accumulation.
func (o *Orchestrator) runUltrathink(ctx context.Context) ([]*models.TaskResult, models.ReasoningChain, int) {
	var chain models.ReasoningChain
	var lastResults []*models.TaskResult

	current := o.tasks
	iteration := 0

	for {
		iteration++
		for _, task := range current {
			task.Reset()
		}

		o.logger.Log("[orchestrator] ultrathink iteration %d: %d tasks", iteration, len(current))
		results := o.runSequential(ctx, current)
		lastResults = results

		for _, step := range o.scorer.ScoreIteration(iteration, results) {
			chain.Append(step)
		}

		confidence := overallConfidence(results)
		o.logger.Log("[orchestrator] ultrathink iteration %d: confidence=%d target=%d", iteration, confidence, o.target)

		if confidence >= o.target || iteration >= o.maxIter || ctx.Err() != nil {
			return lastResults, chain, iteration
		}

		var retry []*models.Task
		for _, task := range current {
			if task.Status != models.TaskStatusCompleted {
				retry = append(retry, task)
			}
		}
		if len(retry) == 0 {
			// Everything succeeded but confidence fell short: there is
			// nothing left to retry, so this is a reported shortfall.
			return lastResults, chain, iteration
		}
		current = retry
	}
}

// overallConfidence is round(avgConfidence * successRate) where avgConfidence
// is the mean per-task confidence percentage and successRate the fraction of
// tasks that completed. Zero for an empty result set.
func overallConfidence(results []*models.TaskResult) int {
	if len(results) == 0 {
		return 0
	}

	var completed int
	var confidenceSum float64
	for _, res := range results {
		if res.Success {
			completed++
		}
		confidenceSum += float64(res.Confidence())
	}

	avgConfidence := confidenceSum / float64(len(results))
	successRate := float64(completed) / float64(len(results))
	return int(math.Round(avgConfidence * successRate))
}
