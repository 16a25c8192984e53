package embedding

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/datar-psa/answereval/api"
)

// SemanticOptions configures the Semantic scorer
type SemanticOptions struct{}

// Semantic returns a scorer that measures semantic similarity using embeddings.
// It computes cosine similarity between the answer and reference embeddings and
// reports round(similarity*100), clamped to [0,100].
//
// Embedding failures never escape: they yield a zero-score signal with the
// error recorded in Signal.Error.
func Semantic(embedder api.Embedder, opts SemanticOptions) api.Scorer {
	return &semanticScorer{embedder: embedder, opts: opts}
}

type semanticScorer struct {
	embedder api.Embedder
	opts     SemanticOptions
}

func (s *semanticScorer) Score(ctx context.Context, in api.ScoreInputs) api.Signal {
	result := api.Signal{
		Name:    "Semantic",
		Details: make(map[string]any),
	}

	if in.Reference == "" {
		result.Error = api.ErrNoReference
		result.Feedback = "Could not perform semantic analysis"
		return result
	}

	if s.embedder == nil {
		result.Error = api.ErrEmbedderRequired
		result.Feedback = "Could not perform semantic analysis"
		return result
	}

	var answerEmbed, referenceEmbed []float64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		answerEmbed, err = s.embedder.Embed(gctx, in.Answer)
		if err != nil {
			return fmt.Errorf("failed to embed answer: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		referenceEmbed, err = s.embedder.Embed(gctx, in.Reference)
		if err != nil {
			return fmt.Errorf("failed to embed reference: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		result.Error = err
		result.Feedback = "Could not perform semantic analysis"
		return result
	}

	if len(answerEmbed) == 0 || len(answerEmbed) != len(referenceEmbed) {
		result.Error = fmt.Errorf("embedding dimensions differ: %d vs %d", len(answerEmbed), len(referenceEmbed))
		result.Feedback = "Could not perform semantic analysis"
		return result
	}

	similarity := cosineSimilarity(answerEmbed, referenceEmbed)

	result.Score = api.ClampScore(int(math.Round(similarity * 100)))
	result.Feedback = semanticFeedback(similarity)
	result.Details["cosine_similarity"] = similarity
	result.Details["embedding_dim"] = len(answerEmbed)

	return result
}

func semanticFeedback(similarity float64) string {
	switch {
	case similarity >= 0.8:
		return "Excellent semantic match! Your answer captures the meaning very well."
	case similarity >= 0.6:
		return "Good semantic understanding. Your answer is on the right track."
	case similarity >= 0.4:
		return "Some semantic similarity detected. Consider focusing on key concepts."
	default:
		return "Limited semantic match. Try to align your answer more closely with the expected concepts."
	}
}

// cosineSimilarity computes the cosine similarity between two vectors
// Returns a value between -1 and 1, where 1 means identical direction
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	normA = math.Sqrt(normA)
	normB = math.Sqrt(normB)

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (normA * normB)
}
