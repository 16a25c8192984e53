package embedding

import (
	"context"
	"testing"

	"github.com/datar-psa/answereval/api"
	"github.com/datar-psa/answereval/internal/testutils"
)

// TestSemantic_Integration tests the Semantic scorer with real embeddings APIs.
// Requests are replayed from testdata by hypert; set UPDATE_TESTS=true with valid
// credentials to record them.
func TestSemantic_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	providers := []struct {
		name     string
		embedder func(t *testing.T) api.Embedder
	}{
		{
			name: "gemini",
			embedder: func(t *testing.T) api.Embedder {
				return testutils.NewGeminiEmbedder(t, testutils.DefaultGeminiTestConfig("embedding_gemini"), "text-embedding-005")
			},
		},
		{
			name: "openai",
			embedder: func(t *testing.T) api.Embedder {
				return testutils.NewOpenAIEmbedder(t, testutils.DefaultOpenAITestConfig("embedding_openai"))
			},
		},
	}

	tests := []struct {
		name      string
		answer    string
		reference string
		minScore  int
		maxScore  int
	}{
		{
			name:      "identical text",
			answer:    "Machine learning is a subset of AI that enables computers to learn from data.",
			reference: "Machine learning is a subset of AI that enables computers to learn from data.",
			minScore:  95,
			maxScore:  100,
		},
		{
			name:      "spoken paraphrase",
			answer:    "machine learning lets computers learn from data",
			reference: "Machine learning is a subset of AI that enables computers to learn from data.",
			minScore:  75,
			maxScore:  100,
		},
		{
			name:      "unrelated answer",
			answer:    "I don't know",
			reference: "Neural networks are computing systems inspired by biological neurons.",
			minScore:  0,
			maxScore:  70,
		},
	}

	for _, p := range providers {
		t.Run(p.name, func(t *testing.T) {
			scorer := Semantic(p.embedder(t), SemanticOptions{})

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					result := scorer.Score(ctx, api.ScoreInputs{Answer: tt.answer, Reference: tt.reference})

					if result.Error != nil {
						t.Fatalf("Semantic.Score() unexpected error = %v", result.Error)
					}

					if result.Score < tt.minScore || result.Score > tt.maxScore {
						t.Errorf("Semantic.Score() score = %d, want between %d and %d", result.Score, tt.minScore, tt.maxScore)
						t.Logf("Cosine similarity: %v", result.Details["cosine_similarity"])
					}

					if result.Details["embedding_dim"] == nil {
						t.Error("Semantic.Score() missing embedding_dim in details")
					}
				})
			}
		})
	}
}
