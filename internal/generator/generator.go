// Package generator turns extracted course material into validated exam
// questions via an AI provider.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/doldm1/sai2-exam-generator/internal/ai"
	"github.com/doldm1/sai2-exam-generator/internal/exam"
)

const (
	defaultCount       = 5
	defaultTemperature = 0.3
)

// Request describes one generation round.
type Request struct {
	Pages      map[int]string // normalized page text keyed by page number
	Count      int            // number of questions; 0 means the default
	Topic      string         // optional topic filter
	Objectives []string       // detected learning objectives, may be empty
}

// Generator builds prompts, calls the AI router and validates the response
// into exam questions.
type Generator struct {
	router      *ai.Router
	validator   exam.Validator
	model       string
	temperature float64
	logger      *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithModel pins the model requested from the provider.
func WithModel(model string) Option {
	return func(g *Generator) { g.model = model }
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) Option {
	return func(g *Generator) { g.temperature = t }
}

// WithStrictValidation enables JSON Schema validation of generated batches.
func WithStrictValidation() Option {
	return func(g *Generator) { g.validator.Strict = true }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// New creates a Generator on top of the given router.
func New(router *ai.Router, opts ...Option) *Generator {
	g := &Generator{
		router:      router,
		temperature: defaultTemperature,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces a validated question batch for the request. The model is
// asked for a JSON object response; a malformed or incomplete batch fails the
// whole call rather than returning a partial set.
func (g *Generator) Generate(ctx context.Context, req Request) ([]exam.Question, error) {
	if len(req.Pages) == 0 {
		return nil, fmt.Errorf("no course material to generate from")
	}
	count := req.Count
	if count <= 0 {
		count = defaultCount
	}

	prompt := BuildPrompt(req.Pages, count, req.Topic, req.Objectives)

	resp, err := g.router.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Model:       g.model,
		Temperature: g.temperature,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("completing generation request: %w", err)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(stripCodeFences(resp.Content)), &payload); err != nil {
		return nil, fmt.Errorf("parsing model response as JSON: %w", err)
	}

	questions, err := g.validator.ValidateBatch(payload)
	if err != nil {
		return nil, fmt.Errorf("validating generated batch: %w", err)
	}

	g.logger.Info("questions generated",
		"requested", count,
		"returned", len(questions),
		"model", resp.Model,
		"tokens", resp.TotalTokens(),
	)

	return questions, nil
}

// stripCodeFences removes a surrounding markdown code block. Models sometimes
// fence JSON output even when told not to.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
