package heuristic

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/datar-psa/answereval/api"
)

var (
	sentenceBoundary = regexp.MustCompile(`[.!?]+`)
	flowIndicator    = regexp.MustCompile(`(?i)\b(first|second|third|finally|therefore|however|moreover|furthermore|additionally)\b`)
	definitionMarker = regexp.MustCompile(`(?i)\bis\s+\w+|\bdefin\w+|\bmeans?\b`)
)

// Structure summarizes how an answer is organized
type Structure struct {
	Sentences         int     `json:"sentences"`
	AvgSentenceLength float64 `json:"avgSentenceLength"`
	HasFlowIndicators bool    `json:"hasFlowIndicators"`
	HasDefinition     bool    `json:"hasDefinition"`
}

// SplitSentences splits text on runs of '.', '!' and '?', dropping empty fragments.
func SplitSentences(text string) []string {
	parts := sentenceBoundary.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// HasFlowIndicators reports whether text contains a sequencing or connective term
// such as "first", "therefore" or "moreover".
func HasFlowIndicators(text string) bool {
	return flowIndicator.MatchString(text)
}

// HasDefinitionPattern reports whether text reads like a definition:
// "is <word>", any "defin*" word, or "mean"/"means".
func HasDefinitionPattern(text string) bool {
	return definitionMarker.MatchString(text)
}

// AnalyzeStructure computes the structural features of text.
func AnalyzeStructure(text string) Structure {
	sentences := SplitSentences(text)
	s := Structure{
		Sentences:         len(sentences),
		HasFlowIndicators: HasFlowIndicators(text),
		HasDefinition:     HasDefinitionPattern(text),
	}
	if len(sentences) > 0 {
		words := 0
		for _, sentence := range sentences {
			words += len(strings.Fields(sentence))
		}
		s.AvgSentenceLength = float64(words) / float64(len(sentences))
	}
	return s
}

// StructureScore compares the organization of an answer with the reference.
// Base 50, up to 20 for sentence coverage, 15 for flow indicators and 15 when
// both texts are phrased as definitions.
func StructureScore(answer, reference Structure) int {
	score := 50.0

	if reference.Sentences > 0 {
		score += math.Min(float64(answer.Sentences)/float64(reference.Sentences), 1) * 20
	}
	if answer.HasFlowIndicators {
		score += 15
	}
	if answer.HasDefinition && reference.HasDefinition {
		score += 15
	}

	return api.ClampScore(int(math.Round(score)))
}

// StructuralOptions configures the Structural scorer
type StructuralOptions struct{}

// Structural returns a scorer that rates sentence coverage, flow and definition phrasing.
func Structural(opts StructuralOptions) api.Scorer {
	return &structuralScorer{opts: opts}
}

type structuralScorer struct {
	opts StructuralOptions
}

func (s *structuralScorer) Score(ctx context.Context, in api.ScoreInputs) api.Signal {
	result := api.Signal{
		Name:    "Structural",
		Details: make(map[string]any),
	}

	if in.Reference == "" {
		result.Error = api.ErrNoReference
		result.Feedback = "No reference text to compare structure against."
		return result
	}

	answer := AnalyzeStructure(in.Answer)
	reference := AnalyzeStructure(in.Reference)

	result.Score = StructureScore(answer, reference)
	result.Feedback = structureFeedback(answer, reference)
	result.Details["answer"] = answer
	result.Details["reference"] = reference
	return result
}

func structureFeedback(answer, reference Structure) string {
	switch {
	case answer.HasFlowIndicators:
		return "Well-structured answer with good flow."
	case float64(answer.Sentences) >= float64(reference.Sentences)*0.7:
		return "Adequate structure and length."
	default:
		return "Consider expanding your answer and improving organization."
	}
}
