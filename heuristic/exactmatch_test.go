package heuristic

import "testing"

func TestExactMatch(t *testing.T) {
	tests := []struct {
		name      string
		opts      ExactMatchOptions
		answer    string
		reference string
		want      bool
	}{
		{
			name:      "exact match",
			opts:      ExactMatchOptions{},
			answer:    "4",
			reference: "4",
			want:      true,
		},
		{
			name:      "no match",
			opts:      ExactMatchOptions{},
			answer:    "5",
			reference: "4",
			want:      false,
		},
		{
			name:      "case sensitive mismatch",
			opts:      ExactMatchOptions{CaseInsensitive: false},
			answer:    "Paris",
			reference: "paris",
			want:      false,
		},
		{
			name:      "case insensitive match",
			opts:      ExactMatchOptions{CaseInsensitive: true},
			answer:    "Paris",
			reference: "paris",
			want:      true,
		},
		{
			name:      "whitespace sensitive mismatch",
			opts:      ExactMatchOptions{TrimWhitespace: false},
			answer:    "4 ",
			reference: "4",
			want:      false,
		},
		{
			name:      "whitespace insensitive match",
			opts:      ExactMatchOptions{TrimWhitespace: true},
			answer:    "  4  ",
			reference: "4",
			want:      true,
		},
		{
			name:      "punctuation ignored",
			opts:      ExactMatchOptions{IgnorePunctuation: true},
			answer:    "dont stop.",
			reference: "don't stop",
			want:      true,
		},
		{
			name:      "spoken match",
			opts:      SpokenMatch,
			answer:    "  Machine Learning!  ",
			reference: "machine learning",
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExactMatch(tt.answer, tt.reference, tt.opts); got != tt.want {
				t.Errorf("ExactMatch(%q, %q) = %v, want %v", tt.answer, tt.reference, got, tt.want)
			}
		})
	}
}
