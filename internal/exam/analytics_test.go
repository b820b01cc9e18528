package exam

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAggregate_Empty(t *testing.T) {
	a := NewAggregator(nil)

	report := a.Aggregate(nil)
	if report.TotalQuestions != 0 || report.Correct != 0 || report.Percentage != 0 {
		t.Errorf("empty input report = %+v, want zeroed", report)
	}
	if len(report.WeakAreas) != 0 || len(report.StrongAreas) != 0 {
		t.Errorf("empty input report should have no weak/strong areas: %+v", report)
	}
}

func TestClassify_Priority(t *testing.T) {
	a := NewAggregator(nil)

	// Contains both "chain-of-thought" and "compress": the first rule wins.
	topic := a.Classify("Can chain-of-thought prompting compress reasoning steps?")
	if topic != "Chain-of-Thought Prompting" {
		t.Errorf("Classify() = %q, want Chain-of-Thought Prompting", topic)
	}
}

func TestClassify_Buckets(t *testing.T) {
	a := NewAggregator(nil)

	tests := []struct {
		question string
		want     string
	}{
		{"When should you apply CoT prompting?", "Chain-of-Thought Prompting"},
		{"Which strategy helps compress long contexts?", "COMPRESS Strategy"},
		{"When would you write facts to memory?", "WRITE Strategy"},
		{"How does one select relevant context?", "SELECT Strategy"},
		{"What is a token limit?", GeneralTopic},
	}

	for _, tt := range tests {
		if got := a.Classify(tt.question); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.question, got, tt.want)
		}
	}
}

func TestAggregate_Thresholds(t *testing.T) {
	a := NewAggregator(nil)

	build := func(correct, total int) []AttemptResult {
		results := make([]AttemptResult, 0, total)
		for i := 0; i < total; i++ {
			results = append(results, AttemptResult{
				Question:  "question about nothing in particular",
				IsCorrect: i < correct,
			})
		}
		return results
	}

	tests := []struct {
		name       string
		correct    int
		total      int
		wantWeak   bool
		wantStrong bool
	}{
		{"exactly-0.6-neither", 3, 5, false, false},
		{"0.4-weak", 2, 5, true, false},
		{"0.8-strong", 4, 5, false, true},
		{"0.7-neither", 7, 10, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := a.Aggregate(build(tt.correct, tt.total))
			if (len(report.WeakAreas) > 0) != tt.wantWeak {
				t.Errorf("weak areas = %+v, wantWeak %v", report.WeakAreas, tt.wantWeak)
			}
			if (len(report.StrongAreas) > 0) != tt.wantStrong {
				t.Errorf("strong areas = %+v, wantStrong %v", report.StrongAreas, tt.wantStrong)
			}
		})
	}
}

func TestAggregate_Overall(t *testing.T) {
	a := NewAggregator(nil)

	report := a.Aggregate([]AttemptResult{
		{Question: "first question on general material", IsCorrect: true},
		{Question: "second question on general material", IsCorrect: false},
	})

	if report.TotalQuestions != 2 {
		t.Errorf("TotalQuestions = %d, want 2", report.TotalQuestions)
	}
	if report.Correct != 1 {
		t.Errorf("Correct = %d, want 1", report.Correct)
	}
	if report.Percentage != 50 {
		t.Errorf("Percentage = %v, want 50", report.Percentage)
	}
	// 1/2 = 0.5 falls between the thresholds: neither weak nor strong.
	if len(report.WeakAreas) != 0 || len(report.StrongAreas) != 0 {
		t.Errorf("report = %+v, want no weak/strong areas at 0.5 accuracy", report)
	}
}

func TestAggregate_PerTopicTallies(t *testing.T) {
	a := NewAggregator(nil)

	report := a.Aggregate([]AttemptResult{
		{Question: "How to compress context one?", IsCorrect: false},
		{Question: "How to compress context two?", IsCorrect: false},
		{Question: "When to apply cot?", IsCorrect: true},
	})

	if len(report.WeakAreas) != 1 {
		t.Fatalf("weak areas = %+v, want exactly COMPRESS", report.WeakAreas)
	}
	weak := report.WeakAreas[0]
	if weak.Topic != "COMPRESS Strategy" || weak.Correct != 0 || weak.Total != 2 {
		t.Errorf("weak = %+v", weak)
	}

	if len(report.StrongAreas) != 1 {
		t.Fatalf("strong areas = %+v, want exactly CoT", report.StrongAreas)
	}
	strong := report.StrongAreas[0]
	if strong.Topic != "Chain-of-Thought Prompting" || strong.Accuracy != 1 {
		t.Errorf("strong = %+v", strong)
	}
}

func TestAggregate_CustomRules(t *testing.T) {
	a := NewAggregator([]TopicRule{
		{Topic: "Linear Algebra", Keywords: []string{"matrix", "vector"}},
	})

	if got := a.Classify("What is a matrix inverse?"); got != "Linear Algebra" {
		t.Errorf("Classify() = %q, want Linear Algebra", got)
	}
	if got := a.Classify("What is chain-of-thought?"); got != GeneralTopic {
		t.Errorf("Classify() = %q, want fallback with custom rules", got)
	}
}

func TestLoadTopicRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `
- topic: Linear Algebra
  keywords: [matrix, vector]
- topic: Calculus
  keywords: [derivative]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadTopicRules(path)
	if err != nil {
		t.Fatalf("LoadTopicRules() error = %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(rules))
	}
	if rules[0].Topic != "Linear Algebra" || len(rules[0].Keywords) != 2 {
		t.Errorf("rules[0] = %+v", rules[0])
	}
}

func TestLoadTopicRules_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	os.WriteFile(path, []byte("- topic: NoKeywords\n  keywords: []\n"), 0o644)

	if _, err := LoadTopicRules(path); err == nil {
		t.Error("LoadTopicRules() should reject a rule without keywords")
	}

	if _, err := LoadTopicRules(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadTopicRules() should fail for a missing file")
	}
}

func TestRecommendation_Tiers(t *testing.T) {
	tests := []struct {
		percentage float64
		contains   string
	}{
		{95, "exam-ready"},
		{85, "Almost there"},
		{75, "Good foundation"},
		{65, "Keep going"},
		{30, "Don't worry"},
	}

	for _, tt := range tests {
		got := Recommendation(tt.percentage)
		if got == "" {
			t.Fatalf("Recommendation(%v) empty", tt.percentage)
		}
		if !strings.Contains(got, tt.contains) {
			t.Errorf("Recommendation(%v) = %q, want mention of %q", tt.percentage, got, tt.contains)
		}
	}
}
