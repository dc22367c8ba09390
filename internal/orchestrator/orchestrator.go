// Package orchestrator executes a flat task list under one of three
// selectable strategies: sequential, parallel-batched, or ultrathink
// (iterative confidence-convergence).
package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/oakhill-labs/taskforce/internal/graph"
	"github.com/oakhill-labs/taskforce/internal/logging"
	"github.com/oakhill-labs/taskforce/internal/runner"
	"github.com/oakhill-labs/taskforce/pkg/models"
)

// Mode selects the execution strategy. It is fixed at construction and not
// switchable mid-run.
type Mode string

const (
	// ModeSequential executes tasks one at a time in priority order.
	ModeSequential Mode = "sequential"
	// ModeParallel executes independent tasks in fixed-size concurrent
	// batches, then dependent tasks sequentially.
	ModeParallel Mode = "parallel"
	// ModeUltrathink re-runs failed tasks in shrinking iterations until a
	// confidence target or the iteration cap is reached.
	ModeUltrathink Mode = "ultrathink"
)

// Valid returns true if the mode is a known value.
func (m Mode) Valid() bool {
	switch m {
	case ModeSequential, ModeParallel, ModeUltrathink:
		return true
	default:
		return false
	}
}

// Defaults applied by New when an option is unset.
const (
	DefaultParallelLimit    = 3
	DefaultMaxIterations    = 3
	DefaultTargetConfidence = 90
)

// Options configures an Orchestrator.
type Options struct {
	// Mode is the execution strategy. Required.
	Mode Mode
	// ParallelLimit is the batch size for parallel mode.
	ParallelLimit int
	// MaxIterations caps ultrathink iterations.
	MaxIterations int
	// TargetConfidence is the ultrathink convergence threshold (0-100).
	TargetConfidence int
	// Scorer produces reasoning-chain confidence steps. Defaults to the
	// static table scorer.
	Scorer Scorer
	// Logger receives debug output. Defaults to a no-op logger.
	Logger *logging.DebugLogger
}

// Orchestrator runs a pre-populated task list with a single executor.
// It is independent of the Agent/Runner abstraction: the task list is flat
// and not agent-scoped.
type Orchestrator struct {
	mode    Mode
	limit   int
	maxIter int
	target  int
	scorer  Scorer
	logger  *logging.DebugLogger
	tasks   []*models.Task
	deps    *graph.DependencyGraph
	exec    models.Executor
}

// New validates the task graph and builds an Orchestrator. Cyclic or unknown
// dependencies are configuration errors surfaced here, before any executor
// runs.
func New(tasks []*models.Task, exec models.Executor, opts Options) (*Orchestrator, error) {
	if !opts.Mode.Valid() {
		return nil, fmt.Errorf("unknown execution mode %q", opts.Mode)
	}
	if exec == nil {
		return nil, fmt.Errorf("executor is required")
	}
	deps, err := graph.New(tasks)
	if err != nil {
		return nil, fmt.Errorf("invalid task graph: %w", err)
	}

	if opts.ParallelLimit <= 0 {
		opts.ParallelLimit = DefaultParallelLimit
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.TargetConfidence <= 0 {
		opts.TargetConfidence = DefaultTargetConfidence
	}
	if opts.Scorer == nil {
		opts.Scorer = NewStaticScorer()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger()
	}

	return &Orchestrator{
		mode:    opts.Mode,
		limit:   opts.ParallelLimit,
		maxIter: opts.MaxIterations,
		target:  opts.TargetConfidence,
		scorer:  opts.Scorer,
		logger:  opts.Logger,
		tasks:   tasks,
		deps:    deps,
		exec:    exec,
	}, nil
}

// Mode returns the execution strategy selected at construction.
func (o *Orchestrator) Mode() Mode {
	return o.mode
}

// Run executes the task list under the configured mode and returns the
// serializable report. Task failures degrade to result objects; Run itself
// fails only if the context is cancelled before any work could settle.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	for _, task := range o.tasks {
		task.Reset()
	}

	started := time.Now()
	o.logger.Log("[orchestrator] run started: mode=%s tasks=%d", o.mode, len(o.tasks))

	var (
		results    []*models.TaskResult
		chain      models.ReasoningChain
		iterations = 1
	)

	switch o.mode {
	case ModeSequential:
		results = o.runSequential(ctx, o.tasks)
	case ModeParallel:
		results = o.runParallel(ctx, o.tasks)
	case ModeUltrathink:
		results, chain, iterations = o.runUltrathink(ctx)
	}

	report := &Report{
		RunID:     uuid.New().String()[:8],
		Mode:      o.mode,
		Results:   results,
		Reasoning: chain.Steps,
		Summary:   buildSummary(o.tasks, results, iterations, time.Since(started)),
	}

	o.logger.Log("[orchestrator] run finished: %d/%d completed, confidence=%d, duration=%s",
		report.Summary.Completed, report.Summary.TotalTasks,
		report.Summary.OverallConfidence, report.Summary.Duration.Round(time.Millisecond))

	return report, nil
}

// byPriority returns a stable priority-sorted copy of the tasks. Equal
// priorities keep declaration order.
func byPriority(tasks []*models.Task) []*models.Task {
	ordered := make([]*models.Task, len(tasks))
	copy(ordered, tasks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority.Rank() < ordered[j].Priority.Rank()
	})
	return ordered
}

// executeTask drives one task through its status transitions. A task whose
// dependencies are not all completed is skipped without invoking the
// executor, same as the per-agent runner.
func (o *Orchestrator) executeTask(ctx context.Context, task *models.Task) *models.TaskResult {
	if met, unmet := o.deps.DependenciesMet(task.ID); !met {
		res := &models.TaskResult{
			TaskID:  task.ID,
			Success: false,
			Message: fmt.Sprintf("skipped: dependency %s not completed", unmet),
		}
		_ = task.Skip(res)
		o.logger.Log("[orchestrator] task %s skipped: dependency %s not completed", task.ID, unmet)
		return res
	}

	if err := task.Begin(); err != nil {
		res := &models.TaskResult{
			TaskID:  task.ID,
			Success: false,
			Message: fmt.Sprintf("cannot start: %v", err),
		}
		_ = task.Finish(res)
		return res
	}

	res := runner.Execute(ctx, o.exec, task)
	_ = task.Finish(res)

	if !res.Success {
		o.logger.Log("[orchestrator] task %s failed: %s", task.ID, res.Message)
	}
	return res
}
