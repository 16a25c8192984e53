package heuristic

import (
	"reflect"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		token string
		want  Category
	}{
		{"learning", CategoryCritical},
		{"Data", CategoryCritical},
		{"gradient", CategoryCritical},
		{"overfitting", CategoryImportant},
		{"computers", CategoryImportant},
		{"banana", CategorySupporting},
		{"subset", CategorySupporting},
		// background vocabulary is never promoted to the context tier
		{"history", CategorySupporting},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			if got := Classify(tt.token); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestCategoryWeight(t *testing.T) {
	want := map[Category]float64{
		CategoryCritical:   0.4,
		CategoryImportant:  0.3,
		CategorySupporting: 0.2,
		CategoryContext:    0.1,
		Category("bogus"):  0,
	}
	for c, w := range want {
		if got := c.Weight(); got != w {
			t.Errorf("%s.Weight() = %v, want %v", c, got, w)
		}
	}
}

func TestExtractKeywords(t *testing.T) {
	got := ExtractKeywords("Machine learning is a subset of AI, and it learns from DATA!")
	want := []string{"machine", "learning", "subset", "learns", "from", "data"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractKeywords() = %v, want %v", got, want)
	}
}

func TestExtractKeywords_DropsStopWordsAndShortTokens(t *testing.T) {
	got := ExtractKeywords("this that those would could the an of")
	if len(got) != 0 {
		t.Errorf("ExtractKeywords() = %v, want empty", got)
	}
}

func TestStem(t *testing.T) {
	tests := []struct {
		word string
		want string
	}{
		{"training", "train"},
		{"learned", "learn"},
		{"models", "model"},
		{"data", "data"},
		// only one suffix is stripped
		{"things", "thing"},
		{"sings", "sing"},
		{"feeds", "feed"},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			if got := Stem(tt.word); got != tt.want {
				t.Errorf("Stem(%q) = %q, want %q", tt.word, got, tt.want)
			}
		})
	}
}

func TestContainsKeyword(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		keyword string
		want    bool
	}{
		{"substring", "neural networks learn", "network", true},
		{"stemmed keyword", "we train a model", "training", true},
		{"reverse containment", "computers learn", "learning", true},
		{"absent", "computers learn", "intelligence", false},
		{"empty keyword", "anything", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ContainsKeyword(tt.text, ExtractKeywords(tt.text), tt.keyword)
			if got != tt.want {
				t.Errorf("ContainsKeyword(%q, %q) = %v, want %v", tt.text, tt.keyword, got, tt.want)
			}
		})
	}
}
