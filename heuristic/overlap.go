package heuristic

import (
	"math"
	"regexp"
	"strings"
)

var nonWord = regexp.MustCompile(`\W+`)

// Overlap is the outcome of the last-resort keyword comparison
type Overlap struct {
	Score    int
	Keywords []string
	Matched  []string
	Missing  []string
}

// KeywordOverlap scores the share of reference keywords (longer than three
// characters) that the answer mentions. A keyword counts as mentioned when it
// and an answer word contain one another in either direction.
// A reference without such keywords scores 100 on a spoken-text exact match, 0 otherwise.
func KeywordOverlap(answer, reference string) Overlap {
	keywords := splitWords(reference, 4)
	answerWords := splitWords(answer, 4)

	out := Overlap{
		Keywords: keywords,
		Matched:  make([]string, 0, len(keywords)),
		Missing:  make([]string, 0, len(keywords)),
	}

	if len(keywords) == 0 {
		if ExactMatch(answer, reference, SpokenMatch) {
			out.Score = 100
		}
		return out
	}

	for _, kw := range keywords {
		if mentions(answerWords, kw) {
			out.Matched = append(out.Matched, kw)
		} else {
			out.Missing = append(out.Missing, kw)
		}
	}

	out.Score = int(math.Round(float64(len(out.Matched)) / float64(len(keywords)) * 100))
	return out
}

func mentions(words []string, keyword string) bool {
	for _, w := range words {
		if strings.Contains(w, keyword) || strings.Contains(keyword, w) {
			return true
		}
	}
	return false
}

// splitWords lowercases text, splits on non-word runs and keeps words of at least minLen bytes.
func splitWords(text string, minLen int) []string {
	parts := nonWord.Split(strings.ToLower(text), -1)
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(p) >= minLen {
			words = append(words, p)
		}
	}
	return words
}

// nonAITerms are generic brands and devices that are not AI systems in their own right.
var nonAITerms = []string{
	"iphone", "microsoft", "apple", "google company", "facebook company",
	"amazon company", "computer", "laptop", "phone",
}

// SplitExamples turns a free-text example list such as "Siri, Alexa; Netflix"
// into separate examples. Separators are commas, semicolons and line breaks.
func SplitExamples(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n' || r == '\r'
	})
	examples := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			examples = append(examples, p)
		}
	}
	return examples
}

// ExamplesMatch is the outcome of comparing spoken examples with reference examples
type ExamplesMatch struct {
	Score int
	// Matched lists the reference examples the answer mentions
	Matched []string
	// NonAITerms is true when the answer names generic, non-AI products
	NonAITerms bool
	// Penalized is true when the score came from the non-AI penalty band
	Penalized bool
}

// MatchExamples counts the reference examples mentioned in the answer. A reference
// example is mentioned when any of its words appears in the answer.
//
// Scoring: answers that mention no reference example but name generic non-AI
// products land in [0,10) using jitter (a value in [0,1)); any match scores
// min(90, matches/len(examples)*80 + 20); everything else gets 20 for trying.
func MatchExamples(answer string, examples []string, jitter float64) ExamplesMatch {
	text := strings.Join(strings.Fields(Normalize(answer)), " ")
	out := ExamplesMatch{Matched: make([]string, 0, len(examples))}

	for _, example := range examples {
		for _, word := range strings.Fields(Normalize(example)) {
			// possessive and initial fragments would match any answer
			if len([]rune(word)) < 2 {
				continue
			}
			if strings.Contains(text, word) {
				out.Matched = append(out.Matched, example)
				break
			}
		}
	}

	for _, term := range nonAITerms {
		if strings.Contains(text, term) {
			out.NonAITerms = true
			break
		}
	}

	matches := len(out.Matched)
	var score float64
	switch {
	case matches == 0 && out.NonAITerms:
		jitter = math.Max(0, math.Min(jitter, 0.999))
		score = jitter * 10
		out.Penalized = true
	case matches > 0:
		score = math.Min(90, float64(matches)/float64(len(examples))*80+20)
	default:
		score = 20
	}

	out.Score = int(math.Round(score))
	return out
}
