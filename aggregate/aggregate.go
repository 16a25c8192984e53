// Package aggregate combines the semantic, lexical, structural and completeness
// signals into one weighted score with categorized feedback.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/datar-psa/answereval/api"
	"github.com/datar-psa/answereval/embedding"
	"github.com/datar-psa/answereval/heuristic"
)

// DefaultSignalTimeout bounds each individual signal
const DefaultSignalTimeout = 10 * time.Second

const (
	maxSimilarities    = 5
	maxMissingConcepts = 5
	suggestionBelow    = 60
)

// ErrNoSignals is returned when every signal failed and no score can be formed
var ErrNoSignals = errors.New("all evaluation signals failed")

// Weights are the contributions of each signal to the final score
type Weights struct {
	Semantic     float64
	Lexical      float64
	Structural   float64
	Completeness float64
}

// DefaultWeights favour meaning over wording
var DefaultWeights = Weights{
	Semantic:     0.4,
	Lexical:      0.3,
	Structural:   0.15,
	Completeness: 0.15,
}

// Options configures an Aggregator
type Options struct {
	// Embedder powers the semantic signal. Without one that signal scores zero.
	Embedder api.Embedder
	// Weights defaults to DefaultWeights when zero
	Weights Weights
	// SignalTimeout defaults to DefaultSignalTimeout
	SignalTimeout time.Duration
	Logger        zerolog.Logger
}

// Aggregator runs the four signals concurrently and combines them
type Aggregator struct {
	semantic     api.Scorer
	lexical      api.Scorer
	structural   api.Scorer
	completeness api.Scorer
	weights      Weights
	timeout      time.Duration
	logger       zerolog.Logger
}

// New creates an Aggregator using the package's standard scorers.
func New(opts Options) *Aggregator {
	a := &Aggregator{
		semantic:     embedding.Semantic(opts.Embedder, embedding.SemanticOptions{}),
		lexical:      heuristic.Lexical(heuristic.LexicalOptions{}),
		structural:   heuristic.Structural(heuristic.StructuralOptions{}),
		completeness: heuristic.Completeness(heuristic.CompletenessOptions{}),
		weights:      opts.Weights,
		timeout:      opts.SignalTimeout,
		logger:       opts.Logger.With().Str("component", "aggregator").Logger(),
	}
	if a.weights == (Weights{}) {
		a.weights = DefaultWeights
	}
	if a.timeout <= 0 {
		a.timeout = DefaultSignalTimeout
	}
	return a
}

// SignalScore is the per-dimension part of a Breakdown
type SignalScore struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
	Error    string `json:"error,omitempty"`
}

// Breakdown exposes each signal behind an aggregated score
type Breakdown struct {
	Semantic     SignalScore `json:"semantic"`
	Lexical      SignalScore `json:"lexical"`
	Structural   SignalScore `json:"structural"`
	Completeness SignalScore `json:"completeness"`
}

// Assessment is the combined outcome of the four signals
type Assessment struct {
	Score           int
	Feedback        string
	Similarities    []string
	MissingConcepts []string
	Suggestions     []string
	Confidence      float64
	Breakdown       Breakdown
}

// Signals holds the four signal results in fixed positions
type Signals struct {
	Semantic     api.Signal
	Lexical      api.Signal
	Structural   api.Signal
	Completeness api.Signal
}

func (s Signals) all() []api.Signal {
	return []api.Signal{s.Semantic, s.Lexical, s.Structural, s.Completeness}
}

// Evaluate scores the answer on all four dimensions and combines them.
// A failing, slow or panicking signal contributes a zero score; Evaluate only
// returns an error when the context is done or no signal succeeded.
func (a *Aggregator) Evaluate(ctx context.Context, in api.ScoreInputs) (Assessment, error) {
	var signals Signals

	g := new(errgroup.Group)
	g.Go(func() error { signals.Semantic = a.run(ctx, "Semantic", a.semantic, in); return nil })
	g.Go(func() error { signals.Lexical = a.run(ctx, "Lexical", a.lexical, in); return nil })
	g.Go(func() error { signals.Structural = a.run(ctx, "Structural", a.structural, in); return nil })
	g.Go(func() error { signals.Completeness = a.run(ctx, "Completeness", a.completeness, in); return nil })
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return Assessment{}, fmt.Errorf("aggregate evaluation: %w", err)
	}

	failed := 0
	for _, s := range signals.all() {
		if s.Error != nil {
			failed++
			a.logger.Debug().Str("signal", s.Name).Err(s.Error).Msg("signal failed, using zero placeholder")
		}
	}
	if failed == len(signals.all()) {
		return Assessment{}, ErrNoSignals
	}

	return Combine(signals, a.weights), nil
}

// run executes one scorer within its own time bound and converts panics and
// timeouts into zero-score signals.
func (a *Aggregator) run(ctx context.Context, name string, scorer api.Scorer, in api.ScoreInputs) api.Signal {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	done := make(chan api.Signal, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- failedSignal(name, fmt.Errorf("%s scorer panicked: %v", name, r))
			}
		}()
		done <- scorer.Score(ctx, in)
	}()

	select {
	case s := <-done:
		s.Name = name
		if s.Error != nil {
			s.Score = 0
		}
		return s
	case <-ctx.Done():
		return failedSignal(name, fmt.Errorf("%s scorer: %w", name, ctx.Err()))
	}
}

func failedSignal(name string, err error) api.Signal {
	return api.Signal{
		Name:     name,
		Feedback: "Evaluation failed",
		Details:  map[string]any{},
		Error:    err,
	}
}

// Combine folds four signals into an Assessment. It is pure and deterministic.
func Combine(signals Signals, weights Weights) Assessment {
	final := int(math.Round(
		float64(signals.Semantic.Score)*weights.Semantic +
			float64(signals.Lexical.Score)*weights.Lexical +
			float64(signals.Structural.Score)*weights.Structural +
			float64(signals.Completeness.Score)*weights.Completeness,
	))
	final = api.ClampScore(final)

	return Assessment{
		Score:           final,
		Feedback:        Feedback(final),
		Similarities:    similarities(signals.Lexical),
		MissingConcepts: missingConcepts(signals.Lexical),
		Suggestions:     suggestions(signals),
		Confidence:      Confidence(signals.Semantic.Score, signals.Lexical.Score, signals.Structural.Score, signals.Completeness.Score),
		Breakdown: Breakdown{
			Semantic:     signalScore(signals.Semantic),
			Lexical:      signalScore(signals.Lexical),
			Structural:   signalScore(signals.Structural),
			Completeness: signalScore(signals.Completeness),
		},
	}
}

func signalScore(s api.Signal) SignalScore {
	out := SignalScore{Score: s.Score, Feedback: s.Feedback}
	if s.Error != nil {
		out.Error = s.Error.Error()
	}
	return out
}

// Feedback maps a final score to one of six bands
func Feedback(score int) string {
	switch {
	case score >= 90:
		return "Outstanding answer! You demonstrate excellent understanding."
	case score >= 80:
		return "Very good answer! Minor improvements could make it perfect."
	case score >= 70:
		return "Good answer! You understand the main concepts well."
	case score >= 60:
		return "Decent answer with room for improvement. Focus on key concepts."
	case score >= 50:
		return "Basic understanding shown. More practice needed."
	default:
		return "Significant improvement needed. Review the material and try again."
	}
}

func keywordMatches(s api.Signal, key string) []heuristic.KeywordMatch {
	if s.Details == nil {
		return nil
	}
	matches, _ := s.Details[key].([]heuristic.KeywordMatch)
	return matches
}

func similarities(lexical api.Signal) []string {
	out := make([]string, 0, maxSimilarities)
	for _, m := range keywordMatches(lexical, heuristic.DetailFound) {
		if len(out) == maxSimilarities {
			break
		}
		out = append(out, fmt.Sprintf("Used key term: %q", m.Keyword))
	}
	return out
}

func missingConcepts(lexical api.Signal) []string {
	out := make([]string, 0, maxMissingConcepts)
	for _, m := range keywordMatches(lexical, heuristic.DetailMissing) {
		if len(out) == maxMissingConcepts {
			break
		}
		if !m.Category.Surfaced() {
			continue
		}
		out = append(out, fmt.Sprintf("Missing: %q", m.Keyword))
	}
	return out
}

func suggestions(signals Signals) []string {
	out := make([]string, 0, 4)
	if signals.Semantic.Score < suggestionBelow {
		out = append(out, "Focus on the core concepts and their relationships")
	}
	if signals.Lexical.Score < suggestionBelow {
		out = append(out, "Include more specific technical terminology")
	}
	if signals.Structural.Score < suggestionBelow {
		out = append(out, "Organize your answer with clear logical flow")
	}
	if signals.Completeness.Score < suggestionBelow {
		out = append(out, "Provide more detailed explanations and examples")
	}
	return out
}

// Confidence rewards signals that agree and are high:
// max(0, 1 - variance/1000) * mean/100, over all given scores.
func Confidence(scores ...int) float64 {
	if len(scores) == 0 {
		return 0
	}

	var sum float64
	for _, s := range scores {
		sum += float64(s)
	}
	mean := sum / float64(len(scores))

	var variance float64
	for _, s := range scores {
		d := float64(s) - mean
		variance += d * d
	}
	variance /= float64(len(scores))

	consistency := math.Max(0, 1-variance/1000)
	return math.Min(1, consistency*mean/100)
}
