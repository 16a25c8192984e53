package heuristic

import (
	"strings"
	"unicode"
)

// Category is the importance tier of a reference keyword
type Category string

const (
	CategoryCritical   Category = "critical"
	CategoryImportant  Category = "important"
	CategorySupporting Category = "supporting"
	// CategoryContext is part of the weighting model but Classify never returns it.
	CategoryContext Category = "context"
)

// Weight returns the fixed weight of the tier.
func (c Category) Weight() float64 {
	switch c {
	case CategoryCritical:
		return 0.4
	case CategoryImportant:
		return 0.3
	case CategorySupporting:
		return 0.2
	case CategoryContext:
		return 0.1
	default:
		return 0
	}
}

// Surfaced reports whether a miss in this tier is worth showing to the learner.
func (c Category) Surfaced() bool {
	return c == CategoryCritical || c == CategoryImportant
}

var criticalTerms = setOf(
	"learning", "training", "model", "algorithm", "data",
	"supervised", "unsupervised", "neural", "network",
	"fine-tuning", "optimization", "gradient", "loss",
	"machine", "artificial", "intelligence",
)

var importantTerms = setOf(
	"accuracy", "performance", "validation", "testing",
	"feature", "parameter", "hyperparameter", "epoch",
	"bias", "variance", "overfitting", "underfitting",
	"computer", "computers", "prediction", "inference",
	"classification", "regression", "reasoning",
)

var stopWords = setOf(
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
	"of", "with", "by", "is", "are", "was", "were", "be", "been", "have",
	"has", "had", "do", "does", "did", "will", "would", "could", "should",
	"this", "that", "these", "those", "can", "may", "might", "must",
)

func setOf(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Classify returns the tier of a normalized token.
// Lookup is static: critical list first, then important, everything else is supporting.
func Classify(token string) Category {
	token = strings.ToLower(token)
	if _, ok := criticalTerms[token]; ok {
		return CategoryCritical
	}
	if _, ok := importantTerms[token]; ok {
		return CategoryImportant
	}
	return CategorySupporting
}

// IsStopWord reports whether word is in the fixed stop-word list.
func IsStopWord(word string) bool {
	_, ok := stopWords[strings.ToLower(word)]
	return ok
}

// Normalize lowercases text and replaces every rune that is not a letter,
// digit, underscore or whitespace with a space.
func Normalize(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)
}

// ExtractKeywords returns the content words of text in order of appearance.
// Tokens of three characters or fewer and stop-words are dropped; duplicates are kept.
func ExtractKeywords(text string) []string {
	fields := strings.Fields(Normalize(text))
	keywords := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) <= 3 || IsStopWord(f) {
			continue
		}
		keywords = append(keywords, f)
	}
	return keywords
}

// Stem strips a single trailing "ing", "ed" or "s", in that priority order.
// It makes no claim to linguistic correctness.
func Stem(word string) string {
	switch {
	case strings.HasSuffix(word, "ing"):
		return strings.TrimSuffix(word, "ing")
	case strings.HasSuffix(word, "ed"):
		return strings.TrimSuffix(word, "ed")
	case strings.HasSuffix(word, "s"):
		return strings.TrimSuffix(word, "s")
	}
	return word
}

// ContainsKeyword reports whether a reference keyword appears in the candidate text.
// candidateKeywords are the extracted keywords of text; they allow a match in the
// reverse direction, when the keyword contains a shorter spoken form.
func ContainsKeyword(text string, candidateKeywords []string, keyword string) bool {
	normalizedText := strings.ToLower(text)
	normalizedKeyword := strings.ToLower(keyword)
	if normalizedKeyword == "" {
		return false
	}

	if strings.Contains(normalizedText, normalizedKeyword) {
		return true
	}

	for _, w := range candidateKeywords {
		if strings.Contains(normalizedKeyword, w) {
			return true
		}
	}

	stemmed := Stem(normalizedKeyword)
	return stemmed != "" && strings.Contains(normalizedText, stemmed)
}
