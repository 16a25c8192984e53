package heuristic

import (
	"reflect"
	"testing"
)

func TestKeywordOverlap(t *testing.T) {
	tests := []struct {
		name        string
		answer      string
		reference   string
		wantScore   int
		wantMatched []string
	}{
		{
			name:        "exact match",
			answer:      mlReference,
			reference:   mlReference,
			wantScore:   100,
			wantMatched: []string{"machine", "learning", "subset", "artificial", "intelligence", "that", "enables", "computers", "learn", "from", "data"},
		},
		{
			name:        "bidirectional containment",
			answer:      "compute learning",
			reference:   "computers learn",
			wantScore:   100,
			wantMatched: []string{"computers", "learn"},
		},
		{
			name:        "nothing in common",
			answer:      "I don't know",
			reference:   "Neural networks are computing systems",
			wantScore:   0,
			wantMatched: []string{},
		},
		{
			name:        "short reference matches only on equality",
			answer:      "A.I.",
			reference:   "ai",
			wantScore:   100,
			wantMatched: []string{},
		},
		{
			name:        "short reference mismatch",
			answer:      "no",
			reference:   "ai",
			wantScore:   0,
			wantMatched: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := KeywordOverlap(tt.answer, tt.reference)
			if got.Score != tt.wantScore {
				t.Errorf("KeywordOverlap() score = %d, want %d", got.Score, tt.wantScore)
			}
			if !reflect.DeepEqual(got.Matched, tt.wantMatched) {
				t.Errorf("KeywordOverlap() matched = %v, want %v", got.Matched, tt.wantMatched)
			}
		})
	}
}

func TestMatchExamples(t *testing.T) {
	examples := []string{"Siri", "Alexa", "Netflix recommendations"}

	tests := []struct {
		name          string
		answer        string
		jitter        float64
		wantScore     int
		wantMatched   int
		wantPenalized bool
	}{
		{
			name:          "generic brands only",
			answer:        "iPhone and Microsoft",
			jitter:        0.73,
			wantScore:     7,
			wantPenalized: true,
		},
		{
			name:          "generic brands with maximal jitter stay below fifteen",
			answer:        "a laptop and a phone",
			jitter:        1.0,
			wantScore:     10,
			wantPenalized: true,
		},
		{
			name:        "one match",
			answer:      "I use Siri every day",
			wantScore:   47,
			wantMatched: 1,
		},
		{
			name:        "all matches are capped",
			answer:      "siri, alexa and my netflix queue",
			wantScore:   90,
			wantMatched: 3,
		},
		{
			name:        "punctuation in answer is ignored",
			answer:      "Siri, Alexa!",
			wantScore:   73,
			wantMatched: 2,
		},
		{
			name:      "unknown examples earn credit for trying",
			answer:    "self driving cars",
			wantScore: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchExamples(tt.answer, examples, tt.jitter)
			if got.Score != tt.wantScore {
				t.Errorf("MatchExamples() score = %d, want %d", got.Score, tt.wantScore)
			}
			if len(got.Matched) != tt.wantMatched {
				t.Errorf("MatchExamples() matched = %v, want %d entries", got.Matched, tt.wantMatched)
			}
			if got.Penalized != tt.wantPenalized {
				t.Errorf("MatchExamples() penalized = %v, want %v", got.Penalized, tt.wantPenalized)
			}
		})
	}
}

func TestMatchExamples_PunctuatedExamples(t *testing.T) {
	got := MatchExamples("I use Siri and Alexa", []string{"Siri,", "(Alexa)", "Netflix recommendations."}, 0)
	if got.Score != 73 {
		t.Errorf("MatchExamples() score = %d, want 73", got.Score)
	}
	if !reflect.DeepEqual(got.Matched, []string{"Siri,", "(Alexa)"}) {
		t.Errorf("MatchExamples() matched = %v", got.Matched)
	}
}

func TestSplitExamples(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "commas", text: "Siri, Alexa, Netflix recommendations", want: []string{"Siri", "Alexa", "Netflix recommendations"}},
		{name: "semicolons and lines", text: "Siri; Alexa\nTesla Autopilot\r\n", want: []string{"Siri", "Alexa", "Tesla Autopilot"}},
		{name: "single example", text: "Google Search", want: []string{"Google Search"}},
		{name: "empty separators", text: " , ;", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitExamples(tt.text); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitExamples(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
