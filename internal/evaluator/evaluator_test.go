package evaluator

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEvaluateAndOptimize_AllCriteriaPass(t *testing.T) {
	// Every criterion's value meets or exceeds its target.
	criteria := []Criterion{
		{Name: "correctness", Value: 95, Target: 90, Weight: 0.5},
		{Name: "readability", Value: 85, Target: 80, Weight: 0.3},
		{Name: "coverage", Value: 90, Target: 85, Weight: 0.2},
	}

	loop := New().EvaluateAndOptimize("in", "out", criteria)

	if !loop.PassThreshold {
		t.Errorf("PassThreshold = false, want true (score %.1f)", loop.Score)
	}
	if len(loop.Improvements) != 0 {
		t.Errorf("Improvements = %v, want empty", loop.Improvements)
	}
	want := 95*0.5 + 85*0.3 + 90*0.2
	if !almostEqual(loop.Score, want) {
		t.Errorf("Score = %.2f, want %.2f", loop.Score, want)
	}
	for _, cr := range loop.Criteria {
		if !cr.Passed {
			t.Errorf("criterion %s Passed = false, want true", cr.Name)
		}
	}
}

func TestEvaluateAndOptimize_FailedCriteriaGetSuggestions(t *testing.T) {
	criteria := []Criterion{
		{Name: "correctness", Value: 40, Target: 90, Weight: 0.5}, // < 0.6*target -> critical
		{Name: "readability", Value: 70, Target: 80, Weight: 0.5}, // >= 0.6*target -> high
	}

	loop := New().EvaluateAndOptimize("in", "out", criteria)

	if loop.PassThreshold {
		t.Errorf("PassThreshold = true with score %.1f, want false", loop.Score)
	}
	if len(loop.Improvements) != 2 {
		t.Fatalf("Improvements length = %d, want 2", len(loop.Improvements))
	}

	if loop.Improvements[0].Priority != SuggestionCritical {
		t.Errorf("correctness priority = %q, want critical", loop.Improvements[0].Priority)
	}
	if !almostEqual(loop.Improvements[0].ExpectedImpact, 50) {
		t.Errorf("correctness ExpectedImpact = %.1f, want 50", loop.Improvements[0].ExpectedImpact)
	}
	if loop.Improvements[1].Priority != SuggestionHigh {
		t.Errorf("readability priority = %q, want high", loop.Improvements[1].Priority)
	}
}

func TestEvaluateAndOptimize_CriticalBoundary(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  SuggestionPriority
	}{
		{"just below 0.6 of target", 59.9, SuggestionCritical},
		{"exactly 0.6 of target", 60, SuggestionHigh},
		{"between 0.6 and target", 80, SuggestionHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loop := New().EvaluateAndOptimize("in", "out", []Criterion{
				{Name: "metric", Value: tt.value, Target: 100, Weight: 1},
			})
			if len(loop.Improvements) != 1 {
				t.Fatalf("Improvements length = %d, want 1", len(loop.Improvements))
			}
			if got := loop.Improvements[0].Priority; got != tt.want {
				t.Errorf("priority = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEvaluateAndOptimize_DeltaScoreTrend(t *testing.T) {
	e := New()

	first := e.EvaluateAndOptimize("in", "draft", []Criterion{
		{Name: "quality", Value: 60, Target: 90, Weight: 1},
	})
	if first.DeltaScore != 0 {
		t.Errorf("first DeltaScore = %.1f, want 0", first.DeltaScore)
	}
	if first.Iteration != 1 {
		t.Errorf("first Iteration = %d, want 1", first.Iteration)
	}

	second := e.EvaluateAndOptimize("in", "revised", []Criterion{
		{Name: "quality", Value: 75, Target: 90, Weight: 1},
	})
	if !almostEqual(second.DeltaScore, 15) {
		t.Errorf("second DeltaScore = %.1f, want 15", second.DeltaScore)
	}
	if second.Iteration != 2 {
		t.Errorf("second Iteration = %d, want 2", second.Iteration)
	}

	third := e.EvaluateAndOptimize("in", "regressed", []Criterion{
		{Name: "quality", Value: 70, Target: 90, Weight: 1},
	})
	if !almostEqual(third.DeltaScore, -5) {
		t.Errorf("third DeltaScore = %.1f, want -5", third.DeltaScore)
	}
}

func TestEvaluateAndOptimize_EmptyCriteria(t *testing.T) {
	loop := New().EvaluateAndOptimize("in", "out", nil)

	if loop.Score != 0 {
		t.Errorf("Score = %.1f, want 0", loop.Score)
	}
	if loop.PassThreshold {
		t.Error("PassThreshold = true for empty criteria, want false")
	}
	if len(loop.Improvements) != 0 {
		t.Errorf("Improvements = %v, want empty", loop.Improvements)
	}
}
