// Package llmjudge asks a remote language model to grade a spoken answer and
// enforces the JSON contract of its reply.
package llmjudge

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/datar-psa/answereval/api"
)

// Confidence attached to a verdict depending on how the provider stopped.
const (
	ConfidenceComplete  = 0.9
	ConfidenceTruncated = 0.5
)

// Task is one answer to grade
type Task struct {
	Mode      api.Mode
	Answer    string
	Reference string
	Question  string
	// ReferenceExamples lists expected examples in examples mode.
	// When empty the reference text is used as a single example.
	ReferenceExamples []string
}

func (t Task) expectedExamples() []string {
	if len(t.ReferenceExamples) > 0 {
		return t.ReferenceExamples
	}
	return []string{t.Reference}
}

// Verdict is a validated judge response
type Verdict struct {
	// Score is clamped to [0,100]
	Score int
	// RemoteIsCorrect is the judge's own opinion; callers derive correctness from Score
	RemoteIsCorrect bool
	Feedback        string
	Similarities    []string
	MissingConcepts []string
	Suggestions     []string
	ValidExamples   []string
	Confidence      float64
	Model           string
	Usage           api.Usage
}

// Options configures a Judge
type Options struct {
	// Provider names the remote service in transport errors, e.g. "openai"
	Provider string
	Logger   zerolog.Logger
}

// Judge grades answers with an LLM
type Judge struct {
	llm      api.LLMGenerator
	provider string
	logger   zerolog.Logger
}

// New creates a Judge backed by llm
func New(llm api.LLMGenerator, opts Options) *Judge {
	provider := opts.Provider
	if provider == "" {
		provider = "llm"
	}
	return &Judge{
		llm:      llm,
		provider: provider,
		logger:   opts.Logger.With().Str("component", "llm_judge").Str("provider", provider).Logger(),
	}
}

// Provider returns the name of the remote service. A nil Judge has none.
func (j *Judge) Provider() string {
	if j == nil {
		return ""
	}
	return j.provider
}

// Evaluate sends one judge request. It returns a *api.TransportError when the
// call fails and a *api.ContractViolation when the reply does not match the
// contract. On a contract violation the returned Verdict still carries Model and Usage.
func (j *Judge) Evaluate(ctx context.Context, task Task) (Verdict, error) {
	if j == nil {
		return Verdict{}, &api.TransportError{Err: api.ErrLLMGenerationFailed}
	}
	if j.llm == nil {
		return Verdict{}, &api.TransportError{Provider: j.provider, Err: api.ErrLLMGenerationFailed}
	}

	req := buildRequest(task)

	j.logger.Debug().
		Str("mode", string(task.Mode)).
		Str("answer_preview", preview(task.Answer)).
		Int("max_tokens", req.MaxTokens).
		Msg("sending judge request")

	gen, err := j.llm.Generate(ctx, req)
	if err != nil {
		var te *api.TransportError
		if !errors.As(err, &te) {
			err = &api.TransportError{Provider: j.provider, Err: err}
		}
		return Verdict{}, fmt.Errorf("%w: %w", api.ErrLLMGenerationFailed, err)
	}

	verdict := Verdict{Model: gen.Model, Usage: gen.Usage}

	payload, err := parseContract(gen.Text)
	if err != nil {
		j.logger.Warn().
			Err(err).
			Int("content_length", len(gen.Text)).
			Bool("truncated", gen.Truncated).
			Msg("judge response violates contract")
		return verdict, &api.ContractViolation{Raw: gen.Text, Err: err}
	}

	verdict.Score = api.ClampScore(int(math.Round(payload.Score)))
	verdict.RemoteIsCorrect = payload.IsCorrect
	verdict.Feedback = payload.Feedback
	verdict.Similarities = nonNil(payload.Similarities)
	verdict.MissingConcepts = nonNil(payload.MissingConcepts)
	verdict.ValidExamples = nonNil(payload.ValidExamples)
	verdict.Suggestions = payload.Suggestions
	if len(verdict.Suggestions) == 0 {
		verdict.Suggestions = append([]string(nil), defaultSuggestions[task.Mode]...)
		if verdict.Suggestions == nil {
			verdict.Suggestions = append([]string(nil), defaultSuggestions[api.ModeDefinition]...)
		}
	}

	verdict.Confidence = ConfidenceComplete
	if gen.Truncated {
		verdict.Confidence = ConfidenceTruncated
	}

	j.logger.Debug().
		Int("score", verdict.Score).
		Bool("remote_is_correct", verdict.RemoteIsCorrect).
		Int("total_tokens", verdict.Usage.TotalTokens).
		Msg("judge verdict parsed")

	return verdict, nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func preview(s string) string {
	const limit = 50
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
