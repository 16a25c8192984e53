package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/datar-psa/answereval/api"
)

// Embedder embeds answers and references with a Gemini embedding model
type Embedder struct {
	client    *genai.Client
	modelName string
	tracer    trace.Tracer
	logger    zerolog.Logger
}

// NewEmbedder creates a Gemini embedder for modelName (e.g. "text-embedding-005")
func NewEmbedder(client *genai.Client, modelName string) *Embedder {
	return &Embedder{
		client:    client,
		modelName: modelName,
		tracer:    otel.Tracer("github.com/datar-psa/answereval/gemini"),
		logger:    zerolog.Nop(),
	}
}

// WithLogger returns the embedder with logger attached
func (e *Embedder) WithLogger(logger zerolog.Logger) *Embedder {
	e.logger = logger.With().Str("component", "gemini_embedder").Logger()
	return e
}

// Embed implements api.Embedder. Failures are returned as *api.TransportError.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	ctx, span := e.tracer.Start(ctx, "gemini.embed", trace.WithAttributes(
		attribute.String("model", e.modelName),
		attribute.Int("text_length", len(text)),
	))
	defer span.End()

	contents := []*genai.Content{{Parts: []*genai.Part{{Text: text}}}}
	resp, err := e.client.Models.EmbedContent(ctx, e.modelName, contents, &genai.EmbedContentConfig{})
	if err != nil {
		return nil, e.fail(span, transportError(fmt.Errorf("failed to generate embedding: %w", err)))
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, e.fail(span, &api.TransportError{Provider: providerName, Err: errors.New("empty embedding returned")})
	}

	values := resp.Embeddings[0].Values
	vector := make([]float64, len(values))
	for i, v := range values {
		vector[i] = float64(v)
	}

	span.SetAttributes(attribute.Int("embedding_dim", len(vector)))
	e.logger.Debug().Int("embedding_dim", len(vector)).Msg("gemini embedding")

	return vector, nil
}

// Model returns the embedding model name, used to namespace cached vectors
func (e *Embedder) Model() string {
	return e.modelName
}

func (e *Embedder) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	e.logger.Warn().Err(err).Msg("gemini embedding failed")
	return err
}

var _ api.Embedder = (*Embedder)(nil)
