package exam

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	weakThreshold   = 0.6
	strongThreshold = 0.8

	// GeneralTopic is the fallback bucket for questions no rule matches.
	GeneralTopic = "General Concepts"
)

// AttemptResult is one answered question as seen by the aggregator.
type AttemptResult struct {
	Question  string `json:"question"`
	IsCorrect bool   `json:"is_correct"`
}

// TopicPerformance is the per-topic accuracy record of a report.
type TopicPerformance struct {
	Topic    string  `json:"topic"`
	Accuracy float64 `json:"accuracy"`
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
}

// PerformanceReport is the derived summary over a full set of answered
// questions. It is recomputed from scratch on every call and never mutated.
type PerformanceReport struct {
	TotalQuestions int                `json:"total_questions"`
	Correct        int                `json:"correct"`
	Percentage     float64            `json:"percentage"`
	WeakAreas      []TopicPerformance `json:"weak_areas"`
	StrongAreas    []TopicPerformance `json:"strong_areas"`
}

// TopicRule assigns a topic label to a question whose text contains one of
// the keywords. Rules are data, not code: course domains ship their own rule
// files without touching the aggregator.
type TopicRule struct {
	Topic    string   `yaml:"topic" json:"topic"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// DefaultTopicRules returns the built-in keyword buckets for the prompt
// engineering course material this tool was first used with.
func DefaultTopicRules() []TopicRule {
	return []TopicRule{
		{Topic: "Chain-of-Thought Prompting", Keywords: []string{"chain-of-thought", "cot"}},
		{Topic: "COMPRESS Strategy", Keywords: []string{"compress"}},
		{Topic: "WRITE Strategy", Keywords: []string{"write"}},
		{Topic: "SELECT Strategy", Keywords: []string{"select"}},
	}
}

// LoadTopicRules reads an ordered rule list from a YAML file.
func LoadTopicRules(path string) ([]TopicRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading topic rules: %w", err)
	}

	var rules []TopicRule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing topic rules: %w", err)
	}

	for i, r := range rules {
		if r.Topic == "" || len(r.Keywords) == 0 {
			return nil, fmt.Errorf("topic rule %d must have a topic and at least one keyword", i)
		}
	}

	return rules, nil
}

// Aggregator classifies answered questions into topic buckets and computes
// accuracy statistics.
type Aggregator struct {
	rules []TopicRule
}

// NewAggregator creates an aggregator with the given ordered rules; nil
// selects the defaults.
func NewAggregator(rules []TopicRule) *Aggregator {
	if rules == nil {
		rules = DefaultTopicRules()
	}
	return &Aggregator{rules: rules}
}

// Classify assigns exactly one topic to a question text. Rules are evaluated
// in order and the first keyword hit wins; no hit yields the general bucket.
func (a *Aggregator) Classify(questionText string) string {
	lower := strings.ToLower(questionText)
	for _, rule := range a.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Topic
			}
		}
	}
	return GeneralTopic
}

// Aggregate computes the performance report over a completed round. Empty
// input yields a zeroed report. Weak areas score below 0.6, strong areas 0.8
// or above; topics in between appear in neither set. Topic order follows
// first appearance in the results, so output is deterministic.
func (a *Aggregator) Aggregate(results []AttemptResult) PerformanceReport {
	report := PerformanceReport{
		WeakAreas:   []TopicPerformance{},
		StrongAreas: []TopicPerformance{},
	}
	if len(results) == 0 {
		return report
	}

	type tally struct {
		correct int
		total   int
	}
	tallies := make(map[string]*tally)
	var order []string

	for _, r := range results {
		report.TotalQuestions++
		if r.IsCorrect {
			report.Correct++
		}

		topic := a.Classify(r.Question)
		t, ok := tallies[topic]
		if !ok {
			t = &tally{}
			tallies[topic] = t
			order = append(order, topic)
		}
		t.total++
		if r.IsCorrect {
			t.correct++
		}
	}

	report.Percentage = float64(report.Correct) / float64(report.TotalQuestions) * 100

	for _, topic := range order {
		t := tallies[topic]
		accuracy := float64(t.correct) / float64(t.total)
		perf := TopicPerformance{
			Topic:    topic,
			Accuracy: accuracy,
			Correct:  t.correct,
			Total:    t.total,
		}
		switch {
		case accuracy < weakThreshold:
			report.WeakAreas = append(report.WeakAreas, perf)
		case accuracy >= strongThreshold:
			report.StrongAreas = append(report.StrongAreas, perf)
		}
	}

	return report
}

// Recommendation returns a study recommendation for an overall percentage.
func Recommendation(percentage float64) string {
	switch {
	case percentage >= 90:
		return "You're exam-ready! Consider helping classmates or exploring advanced topics."
	case percentage >= 80:
		return "Almost there! Review your weak areas and you'll be fully prepared."
	case percentage >= 70:
		return "Good foundation. Focus on practicing weak areas and reviewing source material."
	case percentage >= 60:
		return "Keep going! Create more practice questions and review the course material thoroughly."
	default:
		return "Don't worry! Break down topics into smaller chunks and practice consistently."
	}
}
