// Package graph provides the dependency graph used to gate task execution.
package graph

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gammazero/toposort"

	"github.com/oakhill-labs/taskforce/pkg/models"
)

// ErrCycleDetected indicates a circular dependency was found in the task set.
var ErrCycleDetected = errors.New("circular dependency detected")

// DependencyGraph is a directed acyclic graph of task dependencies.
// Tasks are nodes; edges point from a task to the tasks it is blocked by.
type DependencyGraph struct {
	mu sync.RWMutex
	// nodes maps task ID to the task itself.
	nodes map[string]*models.Task
	// edges maps task ID to the IDs of tasks it depends on.
	edges map[string][]string
	// order preserves declaration order of task IDs.
	order []string
}

// New builds a dependency graph from a task list and validates it: every
// dependency must reference a known task and the graph must be acyclic.
func New(tasks []*models.Task) (*DependencyGraph, error) {
	g := &DependencyGraph{
		nodes: make(map[string]*models.Task, len(tasks)),
		edges: make(map[string][]string, len(tasks)),
	}

	for _, task := range tasks {
		if _, exists := g.nodes[task.ID]; exists {
			return nil, fmt.Errorf("duplicate task id %q", task.ID)
		}
		g.nodes[task.ID] = task
		g.order = append(g.order, task.ID)
	}

	for _, task := range tasks {
		for _, depID := range task.DependsOn {
			if _, exists := g.nodes[depID]; !exists {
				return nil, fmt.Errorf("task %s depends on unknown task %s", task.ID, depID)
			}
			g.edges[task.ID] = append(g.edges[task.ID], depID)
		}
	}

	if _, err := g.topoOrder(); err != nil {
		return nil, err
	}

	return g, nil
}

// TopologicalSort returns task IDs ordered so every dependency precedes its
// dependents. Returns ErrCycleDetected if the graph contains a cycle.
func (g *DependencyGraph) TopologicalSort() ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.topoOrder()
}

// topoOrder runs the sort without taking the lock. Caller must hold g.mu
// or have exclusive access during construction.
func (g *DependencyGraph) topoOrder() ([]string, error) {
	var edges []toposort.Edge
	for _, id := range g.order {
		deps := g.edges[id]
		if len(deps) == 0 {
			edges = append(edges, toposort.Edge{nil, id})
			continue
		}
		for _, depID := range deps {
			edges = append(edges, toposort.Edge{depID, id})
		}
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCycleDetected, err)
	}

	order := make([]string, 0, len(sorted))
	for _, id := range sorted {
		if id != nil {
			order = append(order, id.(string))
		}
	}
	return order, nil
}

// DependenciesMet reports whether every dependency of the given task has
// status completed. The second return value names the first unmet dependency.
func (g *DependencyGraph) DependenciesMet(taskID string) (bool, string) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, depID := range g.edges[taskID] {
		dep := g.nodes[depID]
		if dep == nil || dep.Status != models.TaskStatusCompleted {
			return false, depID
		}
	}
	return true, ""
}

// Task returns the task for a given ID, or nil if not found.
func (g *DependencyGraph) Task(taskID string) *models.Task {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes[taskID]
}

// Size returns the number of tasks in the graph.
func (g *DependencyGraph) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Dependencies returns the IDs of tasks that the given task depends on.
func (g *DependencyGraph) Dependencies(taskID string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.edges[taskID]
}

// Dependents returns the IDs of tasks that depend on the given task, in
// declaration order.
func (g *DependencyGraph) Dependents(taskID string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var dependents []string
	for _, id := range g.order {
		for _, depID := range g.edges[id] {
			if depID == taskID {
				dependents = append(dependents, id)
				break
			}
		}
	}
	return dependents
}
