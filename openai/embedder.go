package openai

import (
	"context"
	"errors"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/datar-psa/answereval/api"
)

// Embedder implements api.Embedder against the embeddings API.
type Embedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewEmbedder wraps client. An empty model uses text-embedding-3-small.
func NewEmbedder(client *openai.Client, model string) *Embedder {
	m := openai.EmbeddingModel(model)
	if m == "" {
		m = openai.SmallEmbedding3
	}
	return &Embedder{client: client, model: m}
}

// Model returns the embedding model name, used to namespace cached vectors
func (e *Embedder) Model() string {
	return string(e.model)
}

// Embed implements api.Embedder
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: e.model,
	})
	requestDuration.WithLabelValues("embedding", string(e.model)).Observe(time.Since(start).Seconds())
	if err != nil {
		requestFailures.WithLabelValues("embedding", string(e.model)).Inc()
		return nil, transportError(err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		requestFailures.WithLabelValues("embedding", string(e.model)).Inc()
		return nil, errors.New("no embeddings returned")
	}

	// Convert []float32 to []float64
	values := resp.Data[0].Embedding
	embedding := make([]float64, len(values))
	for i, v := range values {
		embedding[i] = float64(v)
	}

	return embedding, nil
}

var _ api.Embedder = (*Embedder)(nil)
