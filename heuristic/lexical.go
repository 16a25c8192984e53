package heuristic

import (
	"context"
	"math"

	"github.com/datar-psa/answereval/api"
)

const (
	// DetailFound is the Details key holding []KeywordMatch found in the answer
	DetailFound = "found"
	// DetailMissing is the Details key holding []KeywordMatch missing from the answer
	DetailMissing = "missing"
)

// KeywordMatch is a reference keyword together with its tier
type KeywordMatch struct {
	Keyword  string   `json:"keyword"`
	Category Category `json:"category"`
}

// LexicalOptions configures the Lexical scorer
type LexicalOptions struct{}

// Lexical returns a scorer that checks which reference keywords the answer uses.
// The score is the weighted share of reference keywords found, by tier weight.
func Lexical(opts LexicalOptions) api.Scorer {
	return &lexicalScorer{opts: opts}
}

type lexicalScorer struct {
	opts LexicalOptions
}

func (s *lexicalScorer) Score(ctx context.Context, in api.ScoreInputs) api.Signal {
	result := api.Signal{
		Name:    "Lexical",
		Details: make(map[string]any),
	}

	if in.Reference == "" {
		result.Error = api.ErrNoReference
		result.Feedback = "No reference text to compare keywords against."
		return result
	}

	found, missing := MatchKeywords(in.Answer, in.Reference)
	result.Details[DetailFound] = found
	result.Details[DetailMissing] = missing

	if len(found)+len(missing) == 0 {
		// Nothing survives extraction in the reference, compare plain word sets instead.
		jaccard := WordJaccard(in.Answer, in.Reference)
		result.Score = api.ClampScore(int(math.Round(jaccard * 100)))
		result.Feedback = "Reference has no key terms; compared overall wording."
		result.Details["jaccard"] = jaccard
		return result
	}

	var foundWeight, totalWeight float64
	for _, m := range found {
		foundWeight += m.Category.Weight()
		totalWeight += m.Category.Weight()
	}
	for _, m := range missing {
		totalWeight += m.Category.Weight()
	}

	result.Score = api.ClampScore(int(math.Round(foundWeight / totalWeight * 100)))
	result.Feedback = keywordFeedback(len(found), len(missing))
	result.Details["found_weight"] = foundWeight
	result.Details["total_weight"] = totalWeight
	return result
}

// MatchKeywords splits the reference keywords into those found in the answer and those missing.
// Both slices preserve reference order.
func MatchKeywords(answer, reference string) (found, missing []KeywordMatch) {
	referenceKeywords := ExtractKeywords(reference)
	answerKeywords := ExtractKeywords(answer)
	normalizedAnswer := Normalize(answer)

	found = make([]KeywordMatch, 0, len(referenceKeywords))
	missing = make([]KeywordMatch, 0, len(referenceKeywords))
	for _, kw := range referenceKeywords {
		m := KeywordMatch{Keyword: kw, Category: Classify(kw)}
		if ContainsKeyword(normalizedAnswer, answerKeywords, kw) {
			found = append(found, m)
		} else {
			missing = append(missing, m)
		}
	}
	return found, missing
}

func keywordFeedback(found, missing int) string {
	switch {
	case missing == 0:
		return "Excellent keyword coverage!"
	case found > missing:
		return "Good keyword usage with some gaps to address."
	default:
		return "Several important keywords missing. Focus on key terminology."
	}
}
