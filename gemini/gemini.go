package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/datar-psa/answereval/api"
)

const providerName = "gemini"

// Generator wraps a genai.Client to implement the LLMGenerator interface
type Generator struct {
	client    *genai.Client
	modelName string
	tracer    trace.Tracer
	logger    zerolog.Logger
}

// NewGenerator creates a new Gemini generator
// client: genai.Client from google.golang.org/genai
// modelName: the model to use (e.g., "gemini-2.5-flash")
func NewGenerator(client *genai.Client, modelName string) *Generator {
	return &Generator{
		client:    client,
		modelName: modelName,
		tracer:    otel.Tracer("github.com/datar-psa/answereval/gemini"),
		logger:    zerolog.Nop(),
	}
}

// WithLogger returns the generator with logger attached
func (g *Generator) WithLogger(logger zerolog.Logger) *Generator {
	g.logger = logger.With().Str("component", "gemini_generator").Logger()
	return g
}

// Generate implements LLMGenerator.Generate.
// When the request carries a schema the response is constrained to JSON matching it.
func (g *Generator) Generate(ctx context.Context, req api.GenerateRequest) (api.Generation, error) {
	ctx, span := g.tracer.Start(ctx, "gemini.generate", trace.WithAttributes(
		attribute.String("model", g.modelName),
	))
	defer span.End()

	content := &genai.Content{
		Role: "user",
		Parts: []*genai.Part{
			{Text: req.Prompt},
		},
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseJsonSchema = req.Schema
	}

	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.modelName,
		[]*genai.Content{content},
		config,
	)
	if err != nil {
		return api.Generation{}, g.fail(span, transportError(fmt.Errorf("failed to generate content: %w", err)))
	}

	if len(resp.Candidates) == 0 {
		return api.Generation{}, g.fail(span, &api.TransportError{Provider: providerName, Err: errors.New("no candidates returned")})
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return api.Generation{}, g.fail(span, &api.TransportError{Provider: providerName, Err: errors.New("no parts in response")})
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		text.WriteString(part.Text)
	}

	gen := api.Generation{
		Text:      strings.TrimSpace(text.String()),
		Model:     g.modelName,
		Truncated: candidate.FinishReason != genai.FinishReasonStop,
	}
	if resp.ModelVersion != "" {
		gen.Model = resp.ModelVersion
	}
	if usage := resp.UsageMetadata; usage != nil {
		gen.Usage = api.Usage{
			PromptTokens:     int(usage.PromptTokenCount),
			CompletionTokens: int(usage.CandidatesTokenCount),
			TotalTokens:      int(usage.TotalTokenCount),
		}
	}

	span.SetAttributes(
		attribute.String("finish_reason", string(candidate.FinishReason)),
		attribute.Int("total_tokens", gen.Usage.TotalTokens),
	)
	g.logger.Debug().
		Str("finish_reason", string(candidate.FinishReason)).
		Int("total_tokens", gen.Usage.TotalTokens).
		Msg("gemini response")

	return gen, nil
}

func (g *Generator) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	g.logger.Warn().Err(err).Msg("gemini request failed")
	return err
}

// transportError keeps the HTTP status reported by the genai client
func transportError(err error) *api.TransportError {
	te := &api.TransportError{Provider: providerName, Err: err}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		te.StatusCode = apiErr.Code
	}
	return te
}

// Verify that Generator implements LLMGenerator
var _ api.LLMGenerator = (*Generator)(nil)
