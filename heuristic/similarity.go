package heuristic

import (
	"strings"
	"unicode/utf8"
)

// TextSimilarity blends word-set Jaccard overlap (70%) with a character length
// ratio (30%) after spoken-text normalization. Identical texts score 1.
func TextSimilarity(answer, reference string) float64 {
	a := normalizeFor(answer, SpokenMatch)
	b := normalizeFor(reference, SpokenMatch)
	if a == b {
		return 1.0
	}

	jaccard := jaccard(strings.Fields(a), strings.Fields(b))

	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	lengthRatio := 0.0
	if longest := max(la, lb); longest > 0 {
		lengthRatio = float64(min(la, lb)) / float64(longest)
	}

	return jaccard*0.7 + lengthRatio*0.3
}

// WordJaccard is the Jaccard index of the two texts' normalized word sets.
func WordJaccard(answer, reference string) float64 {
	return jaccard(
		strings.Fields(normalizeFor(answer, SpokenMatch)),
		strings.Fields(normalizeFor(reference, SpokenMatch)),
	)
}

func jaccard(a, b []string) float64 {
	setA := setOf(a...)
	setB := setOf(b...)

	intersection := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
