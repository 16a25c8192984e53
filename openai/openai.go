// Package openai implements the judge and embedding interfaces on the OpenAI API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/datar-psa/answereval/api"
)

// DefaultModel is the chat model used for judging
const DefaultModel = "gpt-4o"

const providerName = "openai"

var (
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "answereval",
		Subsystem: "openai",
		Name:      "request_duration_seconds",
		Help:      "Duration of OpenAI requests",
	}, []string{"operation", "model"})

	requestFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "answereval",
		Subsystem: "openai",
		Name:      "request_failures_total",
		Help:      "Number of failed OpenAI requests",
	}, []string{"operation", "model"})

	tokensUsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "answereval",
		Subsystem: "openai",
		Name:      "tokens_total",
		Help:      "Tokens consumed by OpenAI chat completions",
	}, []string{"model", "kind"})
)

// Config defines configuration options for the OpenAI clients.
type Config struct {
	APIKey string
	// BaseURL overrides the API endpoint, e.g. for a proxy or tests
	BaseURL string
	Model   string
	// EmbeddingModel defaults to text-embedding-3-small
	EmbeddingModel string
	Logger         zerolog.Logger
}

// NewClient builds a go-openai client from cfg.
func NewClient(cfg Config) (*openai.Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(config), nil
}

// Generator implements api.LLMGenerator against the chat completion API.
type Generator struct {
	client *openai.Client
	model  string
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewGenerator wraps client. An empty model uses DefaultModel.
func NewGenerator(client *openai.Client, model string, logger zerolog.Logger) *Generator {
	if model == "" {
		model = DefaultModel
	}
	return &Generator{
		client: client,
		model:  model,
		tracer: otel.Tracer("github.com/datar-psa/answereval/openai"),
		logger: logger.With().Str("component", "openai_generator").Logger(),
	}
}

// Generate implements api.LLMGenerator. The response is requested in JSON mode.
func (g *Generator) Generate(parent context.Context, req api.GenerateRequest) (api.Generation, error) {
	ctx, span := g.tracer.Start(parent, "openai.generate", trace.WithAttributes(
		attribute.String("model", g.model),
		attribute.Int("max_tokens", req.MaxTokens),
	))
	defer span.End()

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	request := openai.ChatCompletionRequest{
		Model:          g.model,
		Messages:       messages,
		MaxTokens:      req.MaxTokens,
		Temperature:    req.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, request)
	requestDuration.WithLabelValues("chat", g.model).Observe(time.Since(start).Seconds())
	if err != nil {
		return api.Generation{}, g.fail(span, "chat", transportError(err))
	}

	if len(resp.Choices) == 0 {
		return api.Generation{}, g.fail(span, "chat", &api.TransportError{Provider: providerName, Err: errors.New("no choices returned from openai")})
	}

	choice := resp.Choices[0]
	gen := api.Generation{
		Text:      strings.TrimSpace(choice.Message.Content),
		Model:     resp.Model,
		Truncated: choice.FinishReason != openai.FinishReasonStop,
		Usage: api.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}

	tokensUsed.WithLabelValues(g.model, "prompt").Add(float64(gen.Usage.PromptTokens))
	tokensUsed.WithLabelValues(g.model, "completion").Add(float64(gen.Usage.CompletionTokens))
	span.SetAttributes(
		attribute.String("finish_reason", string(choice.FinishReason)),
		attribute.Int("total_tokens", gen.Usage.TotalTokens),
	)

	g.logger.Debug().
		Str("model", resp.Model).
		Str("finish_reason", string(choice.FinishReason)).
		Int("content_length", len(gen.Text)).
		Int("total_tokens", gen.Usage.TotalTokens).
		Msg("openai response")

	return gen, nil
}

func (g *Generator) fail(span trace.Span, operation string, err error) error {
	requestFailures.WithLabelValues(operation, g.model).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	g.logger.Warn().Err(err).Str("operation", operation).Msg("openai request failed")
	return err
}

// transportError maps go-openai errors onto api.TransportError, keeping the HTTP status.
func transportError(err error) *api.TransportError {
	te := &api.TransportError{Provider: providerName, Err: err}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		te.StatusCode = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		te.StatusCode = reqErr.HTTPStatusCode
	}
	return te
}

var _ api.LLMGenerator = (*Generator)(nil)
