package orchestrator

import (
	"time"

	"github.com/oakhill-labs/taskforce/pkg/models"
)

// Scorer produces the reasoning-chain steps for one ultrathink iteration.
// It is pluggable so the confidence strategy is not baked into the scheduler.
type Scorer interface {
	ScoreIteration(iteration int, results []*models.TaskResult) []models.ThinkingStep
}

// staticPhase is one row of the static scorer's phase table.
type staticPhase struct {
	name       string
	confidence float64
	timeout    time.Duration
}

// StaticScorer derives a fixed analysis/planning prefix from a phase table
// and computes execution and verification confidence from the iteration's
// results. Phase timeouts bound only these simulated phases; real executor
// invocations are never subject to them.
type StaticScorer struct {
	phases []staticPhase
}

// NewStaticScorer creates the default scorer.
func NewStaticScorer() *StaticScorer {
	return &StaticScorer{
		phases: []staticPhase{
			{name: "analysis", confidence: 0.90, timeout: 5 * time.Second},
			{name: "planning", confidence: 0.85, timeout: 5 * time.Second},
		},
	}
}

// ScoreIteration emits the static phases followed by execution (success
// rate) and verification (mean per-task fix confidence) steps.
func (s *StaticScorer) ScoreIteration(iteration int, results []*models.TaskResult) []models.ThinkingStep {
	steps := make([]models.ThinkingStep, 0, len(s.phases)+2)
	for _, phase := range s.phases {
		steps = append(steps, models.ThinkingStep{
			Phase:      phase.name,
			Confidence: phase.confidence,
			Timeout:    phase.timeout,
		})
	}

	var completed int
	var confidenceSum float64
	for _, res := range results {
		if res.Success {
			completed++
		}
		confidenceSum += float64(res.Confidence()) / 100
	}

	execution := 0.0
	verification := 0.0
	if len(results) > 0 {
		execution = float64(completed) / float64(len(results))
		verification = confidenceSum / float64(len(results))
	}

	steps = append(steps,
		models.ThinkingStep{Phase: "execution", Confidence: execution, Timeout: 10 * time.Second},
		models.ThinkingStep{Phase: "verification", Confidence: verification, Timeout: 10 * time.Second},
	)
	return steps
}
