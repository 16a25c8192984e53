package heuristic

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/datar-psa/answereval/api"
)

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// CompletenessOptions configures the Completeness scorer
type CompletenessOptions struct{}

// Completeness returns a scorer that uses the answer/reference length ratio as a
// proxy for thoroughness. It ignores content entirely.
func Completeness(opts CompletenessOptions) api.Scorer {
	return &completenessScorer{opts: opts}
}

type completenessScorer struct {
	opts CompletenessOptions
}

func (s *completenessScorer) Score(ctx context.Context, in api.ScoreInputs) api.Signal {
	result := api.Signal{
		Name:    "Completeness",
		Details: make(map[string]any),
	}

	answerWords := WordCount(in.Answer)
	referenceWords := WordCount(in.Reference)
	if referenceWords == 0 {
		result.Error = api.ErrNoReference
		result.Feedback = "No reference text to measure completeness against."
		return result
	}

	ratio := math.Min(float64(answerWords)/float64(referenceWords), 1)

	result.Score = api.ClampScore(int(math.Round(ratio * 100)))
	result.Feedback = completenessFeedback(ratio, answerWords, referenceWords)
	result.Details["answer_words"] = answerWords
	result.Details["reference_words"] = referenceWords
	result.Details["length_ratio"] = ratio
	return result
}

func completenessFeedback(ratio float64, answerWords, referenceWords int) string {
	switch {
	case ratio >= 0.8:
		return "Comprehensive answer with good depth."
	case ratio >= 0.5:
		return fmt.Sprintf("Moderately complete answer (%d of ~%d words). Could be expanded.", answerWords, referenceWords)
	default:
		return "Answer seems incomplete. Try to provide more detail."
	}
}
