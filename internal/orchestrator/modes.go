package orchestrator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/oakhill-labs/taskforce/pkg/models"
)

// runSequential executes tasks one at a time in priority order. Executor N+1
// does not start until executor N has fully settled. The context is checked
// only between tasks; an in-flight executor is always awaited.
func (o *Orchestrator) runSequential(ctx context.Context, tasks []*models.Task) []*models.TaskResult {
	results := make([]*models.TaskResult, 0, len(tasks))

	for _, task := range byPriority(tasks) {
		if ctx.Err() != nil {
			o.logger.Log("[orchestrator] context cancelled, %d tasks not started", len(tasks)-len(results))
			break
		}
		results = append(results, o.executeTask(ctx, task))
	}
	return results
}

// runParallel partitions tasks into independent (no dependencies) and
// dependent sets. Independent tasks run in fixed-size concurrent batches
// with a join barrier between batches; dependent tasks then run
// sequentially in declaration order.
func (o *Orchestrator) runParallel(ctx context.Context, tasks []*models.Task) []*models.TaskResult {
	var independent, dependent []*models.Task
	for _, task := range tasks {
		if len(task.DependsOn) == 0 {
			independent = append(independent, task)
		} else {
			dependent = append(dependent, task)
		}
	}

	results := make([]*models.TaskResult, 0, len(tasks))

	for start := 0; start < len(independent); start += o.limit {
		if ctx.Err() != nil {
			o.logger.Log("[orchestrator] context cancelled before batch at offset %d", start)
			return results
		}
		end := start + o.limit
		if end > len(independent) {
			end = len(independent)
		}
		results = append(results, o.runBatch(ctx, independent[start:end])...)
	}

	for _, task := range dependent {
		if ctx.Err() != nil {
			o.logger.Log("[orchestrator] context cancelled before dependent task %s", task.ID)
			break
		}
		results = append(results, o.executeTask(ctx, task))
	}

	return results
}

// runBatch fans one batch out concurrently and waits for every member to
// settle before returning (collect-all semantics, never fail-fast: executor
// failures are failed results, not errors, so the join is always total).
func (o *Orchestrator) runBatch(ctx context.Context, batch []*models.Task) []*models.TaskResult {
	o.logger.Log("[orchestrator] launching batch of %d tasks", len(batch))

	results := make([]*models.TaskResult, len(batch))
	var group errgroup.Group
	for i, task := range batch {
		group.Go(func() error {
			results[i] = o.executeTask(ctx, task)
			return nil
		})
	}
	// Wait never returns an error here; it is the batch join barrier.
	_ = group.Wait()

	return results
}
