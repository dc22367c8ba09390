// Package registry holds registered agents and dispatches batch runs.
package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oakhill-labs/taskforce/internal/logging"
	"github.com/oakhill-labs/taskforce/internal/runner"
	"github.com/oakhill-labs/taskforce/pkg/models"
)

// Registry stores agents by ID and runs them in batches. It is an explicit
// instance passed by reference so independent registries can coexist in
// tests and concurrent callers.
type Registry struct {
	mu sync.RWMutex
	// agents maps agent IDs to agents.
	agents map[string]*models.Agent
	// order preserves registration order for deterministic batch runs.
	order  []string
	runner *runner.Runner
	logger *logging.DebugLogger
}

// New creates an empty Registry backed by the given runner.
// A nil logger disables debug logging.
func New(r *runner.Runner, logger *logging.DebugLogger) *Registry {
	if r == nil {
		r = runner.New(logger)
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Registry{
		agents: make(map[string]*models.Agent),
		runner: r,
		logger: logger,
	}
}

// Register inserts an agent by ID. Re-registering an existing ID overwrites
// the previous entry (last-write-wins) with a non-fatal warning.
func (r *Registry) Register(agent *models.Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.agents[agent.ID]; exists {
		r.logger.Log("[registry] warning: agent %s already registered, overwriting", agent.ID)
	} else {
		r.order = append(r.order, agent.ID)
	}
	r.agents[agent.ID] = agent
}

// Get returns the agent for an ID, or nil if not registered.
func (r *Registry) Get(id string) *models.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.agents[id]
}

// All returns every registered agent in registration order.
func (r *Registry) All() []*models.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agents := make([]*models.Agent, 0, len(r.order))
	for _, id := range r.order {
		agents = append(agents, r.agents[id])
	}
	return agents
}

// ByCategory returns registered agents with the given category, in
// registration order.
func (r *Registry) ByCategory(category models.Category) []*models.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var agents []*models.Agent
	for _, id := range r.order {
		if agent := r.agents[id]; agent.Category == category {
			agents = append(agents, agent)
		}
	}
	return agents
}

// Count returns the number of registered agents.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}

// RunAll runs every registered agent and returns one result per agent.
// A malfunctioning agent yields a synthetic all-failed result instead of
// aborting the batch.
func (r *Registry) RunAll(ctx context.Context) []*models.AgentExecutionResult {
	return r.runBatch(ctx, r.All())
}

// RunByCategory runs the registered agents matching the category with the
// same per-agent isolation as RunAll.
func (r *Registry) RunByCategory(ctx context.Context, category models.Category) []*models.AgentExecutionResult {
	return r.runBatch(ctx, r.ByCategory(category))
}

func (r *Registry) runBatch(ctx context.Context, agents []*models.Agent) []*models.AgentExecutionResult {
	runID := uuid.New().String()[:8]
	r.logger.Log("[registry] run %s: %d agents", runID, len(agents))

	results := make([]*models.AgentExecutionResult, 0, len(agents))
	for _, agent := range agents {
		res := r.runIsolated(ctx, agent)
		res.RunID = runID
		results = append(results, res)
	}
	return results
}

// runIsolated runs one agent, converting runner errors and panics into a
// synthetic result with every task counted as failed.
func (r *Registry) runIsolated(ctx context.Context, agent *models.Agent) (result *models.AgentExecutionResult) {
	started := time.Now()

	defer func() {
		if p := recover(); p != nil {
			r.logger.Log("[registry] agent %s panicked: %v", agent.ID, p)
			result = syntheticFailure(agent, started, fmt.Sprintf("agent panicked: %v", p))
		}
	}()

	result, err := r.runner.Run(ctx, agent)
	if err != nil {
		r.logger.Log("[registry] agent %s failed to run: %v", agent.ID, err)
		return syntheticFailure(agent, started, err.Error())
	}
	return result
}

func syntheticFailure(agent *models.Agent, started time.Time, message string) *models.AgentExecutionResult {
	finished := time.Now()
	return &models.AgentExecutionResult{
		AgentID:     agent.ID,
		StartedAt:   started,
		FinishedAt:  finished,
		Duration:    finished.Sub(started),
		TotalTasks:  len(agent.Tasks),
		FailedTasks: len(agent.Tasks),
		Summary:     fmt.Sprintf("agent %s: run aborted: %s", agent.ID, message),
	}
}
