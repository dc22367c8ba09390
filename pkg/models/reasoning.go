package models

import "time"

// ThinkingStep is one named phase of a reasoning chain with its confidence.
type ThinkingStep struct {
	// Phase names the reasoning phase (e.g. "analysis", "verification").
	Phase string `json:"phase"`
	// Confidence is this phase's score in [0,1].
	Confidence float64 `json:"confidence"`
	// Timeout bounds the simulated phase duration. Real executor calls are
	// never bounded by it.
	Timeout time.Duration `json:"timeout,omitempty"`
}

// ReasoningChain is an ordered sequence of thinking steps produced during an
// iterative run. It exists only to compute convergence; nothing persists it
// across runs.
type ReasoningChain struct {
	Steps []ThinkingStep `json:"steps"`
}

// Append adds a step to the chain.
func (c *ReasoningChain) Append(step ThinkingStep) {
	c.Steps = append(c.Steps, step)
}

// AvgConfidence returns the mean confidence across all steps, or 0 for an
// empty chain.
func (c *ReasoningChain) AvgConfidence() float64 {
	if len(c.Steps) == 0 {
		return 0
	}
	var sum float64
	for _, step := range c.Steps {
		sum += step.Confidence
	}
	return sum / float64(len(c.Steps))
}
