package heuristic

import (
	"strings"
	"unicode"
)

// ExactMatchOptions configures ExactMatch
type ExactMatchOptions struct {
	// CaseInsensitive determines if the comparison should ignore case
	CaseInsensitive bool
	// TrimWhitespace determines if leading and trailing whitespace should be trimmed
	TrimWhitespace bool
	// IgnorePunctuation drops every rune that is not a letter, digit, underscore or space
	IgnorePunctuation bool
}

// ExactMatch reports whether answer and reference are the same text once the
// configured normalizations are applied.
func ExactMatch(answer, reference string, opts ExactMatchOptions) bool {
	return normalizeFor(answer, opts) == normalizeFor(reference, opts)
}

// SpokenMatch is the normalization used for transcribed speech: case, punctuation and
// surrounding whitespace are ignored.
var SpokenMatch = ExactMatchOptions{CaseInsensitive: true, TrimWhitespace: true, IgnorePunctuation: true}

func normalizeFor(text string, opts ExactMatchOptions) string {
	if opts.CaseInsensitive {
		text = strings.ToLower(text)
	}
	if opts.IgnorePunctuation {
		text = stripPunctuation(text)
	}
	if opts.TrimWhitespace {
		text = strings.TrimSpace(text)
	}
	return text
}

// stripPunctuation removes (rather than blanks) punctuation, so "don't" becomes "dont".
func stripPunctuation(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, text)
}
