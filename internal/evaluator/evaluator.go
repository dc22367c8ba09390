// Package evaluator implements a generic scored-refinement loop: it scores
// an input/output pair against weighted criteria and proposes improvements.
// It has no dependency on the task scheduler and can sit above any textual
// or structural transformation step.
package evaluator

import (
	"fmt"
	"sync"
)

// PassScore is the aggregate score at or above which an evaluation passes.
const PassScore = 80.0

// criticalRatio marks a criterion critical when its value falls below this
// fraction of its target.
const criticalRatio = 0.6

// Criterion is one named quality dimension to evaluate.
type Criterion struct {
	// Name identifies the criterion.
	Name string `json:"name"`
	// Value is the measured score for this dimension.
	Value float64 `json:"value"`
	// Target is the score the dimension should reach.
	Target float64 `json:"target"`
	// Weight is this dimension's share of the aggregate score.
	Weight float64 `json:"weight"`
}

// CriterionResult is a criterion plus its pass/fail outcome.
type CriterionResult struct {
	Criterion
	// Passed is true when Value meets or exceeds Target.
	Passed bool `json:"passed"`
}

// SuggestionPriority ranks an improvement suggestion.
type SuggestionPriority string

const (
	// SuggestionCritical marks a criterion far below its target.
	SuggestionCritical SuggestionPriority = "critical"
	// SuggestionHigh marks a criterion that missed its target.
	SuggestionHigh SuggestionPriority = "high"
)

// ImprovementSuggestion proposes how to close the gap on a failed criterion.
type ImprovementSuggestion struct {
	// Criterion names the failed dimension.
	Criterion string `json:"criterion"`
	// Priority ranks the suggestion.
	Priority SuggestionPriority `json:"priority"`
	// Suggestion is the textual recommendation.
	Suggestion string `json:"suggestion"`
	// ExpectedImpact is the score gain if the criterion reached its target.
	ExpectedImpact float64 `json:"expected_impact"`
}

// OptimizationLoop is the outcome of one evaluation pass.
type OptimizationLoop struct {
	// Iteration counts evaluations performed by this Evaluator.
	Iteration int `json:"iteration"`
	// Score is the weighted aggregate of all criterion values.
	Score float64 `json:"score"`
	// PassThreshold is true when Score >= PassScore.
	PassThreshold bool `json:"pass_threshold"`
	// Criteria holds the per-criterion outcomes in input order.
	Criteria []CriterionResult `json:"criteria"`
	// Improvements holds one suggestion per failed criterion.
	Improvements []ImprovementSuggestion `json:"improvements"`
	// DeltaScore is the score change versus the previous iteration
	// (0 on the first).
	DeltaScore float64 `json:"delta_score"`
}

// Evaluator scores repeated input/output pairs and tracks the score trend
// across calls.
type Evaluator struct {
	mu            sync.Mutex
	iteration     int
	previousScore float64
}

// New creates an Evaluator with no history.
func New() *Evaluator {
	return &Evaluator{}
}

// EvaluateAndOptimize scores the output against the criteria, aggregates a
// weighted score, and generates an improvement suggestion for every
// criterion that missed its target. The input and output strings are opaque
// to the evaluator; only the criteria values drive the outcome.
func (e *Evaluator) EvaluateAndOptimize(input, output string, criteria []Criterion) *OptimizationLoop {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.iteration++
	loop := &OptimizationLoop{
		Iteration: e.iteration,
		Criteria:  make([]CriterionResult, 0, len(criteria)),
	}

	for _, c := range criteria {
		passed := c.Value >= c.Target
		loop.Criteria = append(loop.Criteria, CriterionResult{Criterion: c, Passed: passed})
		loop.Score += c.Value * c.Weight

		if passed {
			continue
		}
		loop.Improvements = append(loop.Improvements, ImprovementSuggestion{
			Criterion:      c.Name,
			Priority:       suggestionPriority(c),
			Suggestion:     fmt.Sprintf("raise %s from %.1f toward its target of %.1f", c.Name, c.Value, c.Target),
			ExpectedImpact: c.Target - c.Value,
		})
	}

	loop.PassThreshold = loop.Score >= PassScore
	if e.iteration > 1 {
		loop.DeltaScore = loop.Score - e.previousScore
	}
	e.previousScore = loop.Score

	return loop
}

func suggestionPriority(c Criterion) SuggestionPriority {
	if c.Value < criticalRatio*c.Target {
		return SuggestionCritical
	}
	return SuggestionHigh
}
