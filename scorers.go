package answereval

import (
	"github.com/rs/zerolog"
	goopenai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"github.com/datar-psa/answereval/aggregate"
	"github.com/datar-psa/answereval/api"
	"github.com/datar-psa/answereval/embedding"
	"github.com/datar-psa/answereval/gemini"
	"github.com/datar-psa/answereval/heuristic"
	"github.com/datar-psa/answereval/llmjudge"
	"github.com/datar-psa/answereval/openai"
)

// ProviderOptions configures the provider-backed constructors
type ProviderOptions struct {
	genaiClient  *genai.Client
	openaiClient *goopenai.Client
	modelName    string
	logger       zerolog.Logger
}

// WithGenaiClient sets the Gemini client
func WithGenaiClient(client *genai.Client) func(*ProviderOptions) {
	return func(opts *ProviderOptions) {
		opts.genaiClient = client
	}
}

// WithOpenAIClient sets the OpenAI client
func WithOpenAIClient(client *goopenai.Client) func(*ProviderOptions) {
	return func(opts *ProviderOptions) {
		opts.openaiClient = client
	}
}

// WithModelName sets the chat or embedding model name
func WithModelName(modelName string) func(*ProviderOptions) {
	return func(opts *ProviderOptions) {
		opts.modelName = modelName
	}
}

// WithProviderLogger sets the logger used by the provider clients
func WithProviderLogger(logger zerolog.Logger) func(*ProviderOptions) {
	return func(opts *ProviderOptions) {
		opts.logger = logger
	}
}

func providerOptions(opts []func(*ProviderOptions)) *ProviderOptions {
	options := &ProviderOptions{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// NewOpenAIJudge creates a remote judge backed by OpenAI chat completions.
// It returns nil when no client is given, which leaves tier 1 disabled.
func NewOpenAIJudge(opts ...func(*ProviderOptions)) *llmjudge.Judge {
	options := providerOptions(opts)
	if options.openaiClient == nil {
		return nil
	}
	gen := openai.NewGenerator(options.openaiClient, options.modelName, options.logger)
	return llmjudge.New(gen, llmjudge.Options{Provider: "openai", Logger: options.logger})
}

// NewGeminiJudge creates a remote judge backed by Gemini.
// Example model: "gemini-2.5-flash".
func NewGeminiJudge(opts ...func(*ProviderOptions)) *llmjudge.Judge {
	options := providerOptions(opts)
	if options.genaiClient == nil || options.modelName == "" {
		return nil
	}
	gen := gemini.NewGenerator(options.genaiClient, options.modelName).WithLogger(options.logger)
	return llmjudge.New(gen, llmjudge.Options{Provider: "gemini", Logger: options.logger})
}

// Embedding wraps an embedder and exposes the embedding-based constructors.
type Embedding struct{ embedder api.Embedder }

// EmbeddingOptions configures Embedding creation
type EmbeddingOptions struct {
	embedder api.Embedder
}

// WithEmbedder sets the embedder
func WithEmbedder(embedder api.Embedder) func(*EmbeddingOptions) {
	return func(opts *EmbeddingOptions) {
		opts.embedder = embedder
	}
}

// NewEmbedding creates a new Embedding wrapper using functional options.
func NewEmbedding(opts ...func(*EmbeddingOptions)) *Embedding {
	options := &EmbeddingOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return &Embedding{embedder: options.embedder}
}

// NewOpenAIEmbedding creates an Embedding using OpenAI embeddings.
// An empty model name uses text-embedding-3-small.
func NewOpenAIEmbedding(opts ...func(*ProviderOptions)) *Embedding {
	options := providerOptions(opts)
	if options.openaiClient == nil {
		return NewEmbedding()
	}
	return NewEmbedding(WithEmbedder(openai.NewEmbedder(options.openaiClient, options.modelName)))
}

// NewGeminiEmbedding creates an Embedding using Gemini.
// Example model: "text-embedding-005".
func NewGeminiEmbedding(opts ...func(*ProviderOptions)) *Embedding {
	options := providerOptions(opts)
	if options.genaiClient == nil || options.modelName == "" {
		return NewEmbedding()
	}
	return NewEmbedding(WithEmbedder(gemini.NewEmbedder(options.genaiClient, options.modelName).WithLogger(options.logger)))
}

// Embedder returns the wrapped embedder, nil when none was configured
func (e *Embedding) Embedder() api.Embedder {
	return e.embedder
}

type SemanticOptions = embedding.SemanticOptions

// Semantic returns a scorer that measures semantic similarity using embeddings.
func (e *Embedding) Semantic(opts SemanticOptions) api.Scorer {
	return embedding.Semantic(e.embedder, opts)
}

type AggregatorOptions = aggregate.Options

// Aggregator returns the four-signal aggregator powered by this embedder.
// opts.Embedder is ignored.
func (e *Embedding) Aggregator(opts AggregatorOptions) *aggregate.Aggregator {
	opts.Embedder = e.embedder
	return aggregate.New(opts)
}

// Heuristic exposes constructors for the local, dependency-free scorers.
type Heuristic struct{}

// NewHeuristic creates a new Heuristic.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

type LexicalOptions = heuristic.LexicalOptions

// Lexical returns the weighted key-term scorer.
func (h *Heuristic) Lexical(opts LexicalOptions) api.Scorer {
	return heuristic.Lexical(opts)
}

type StructuralOptions = heuristic.StructuralOptions

// Structural returns the sentence-structure scorer.
func (h *Heuristic) Structural(opts StructuralOptions) api.Scorer {
	return heuristic.Structural(opts)
}

type CompletenessOptions = heuristic.CompletenessOptions

// Completeness returns the length-ratio scorer.
func (h *Heuristic) Completeness(opts CompletenessOptions) api.Scorer {
	return heuristic.Completeness(opts)
}
