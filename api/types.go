package api

import "context"

// Mode selects how a candidate answer is compared against its reference.
type Mode string

const (
	// ModeDefinition compares a single free-text answer with a reference definition.
	ModeDefinition Mode = "definition"
	// ModeExamples compares a spoken list of examples with a list of reference examples.
	ModeExamples Mode = "examples"
)

// Usage is the token accounting reported by a remote model call.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// GenerateRequest describes a single structured generation call.
type GenerateRequest struct {
	// System is the system instruction sent ahead of the prompt
	System string
	// Prompt is the user prompt
	Prompt string
	// Schema is an optional JSON schema (map[string]any) the response must follow
	Schema map[string]any
	// MaxTokens caps the completion length; zero lets the provider decide
	MaxTokens int
	// Temperature is the sampling temperature
	Temperature float32
}

// Generation is the raw outcome of a generation call.
// Text is returned untouched; interpreting it is the caller's job.
type Generation struct {
	Text  string
	Model string
	// Truncated is true when the provider stopped for any reason other than a natural stop
	Truncated bool
	Usage     Usage
}

// LLMGenerator is an interface for generating text using an LLM.
// OpenAI and Gemini implementations are provided in the openai and gemini subpackages.
type LLMGenerator interface {
	// Generate sends the request and returns the raw response text.
	// Implementations return a *TransportError when the remote call itself fails.
	Generate(ctx context.Context, req GenerateRequest) (Generation, error)
}

// Embedder generates vector embeddings for text
type Embedder interface {
	// Embed generates an embedding vector for the given text
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Signal is the result of a single scoring dimension
type Signal struct {
	// Name identifies the scorer that produced this result
	Name string
	// Score is an integer between 0 and 100
	Score int
	// Feedback is a short human-readable explanation of the score
	Feedback string
	// Details contains scorer-specific information
	Details map[string]any
	// Error contains any error that occurred during scoring.
	// A signal with an error always has a zero score.
	Error error
}

// ScoreInputs carries inputs for scoring across different scorers.
//
// Fields usage conventions:
// - Answer:    the candidate (voice-transcribed) answer
// - Reference: the expected answer
// - Question:  the question the answer responds to (optional)
type ScoreInputs struct {
	Answer    string
	Reference string
	Question  string
}

// Scorer evaluates one dimension of an answer
type Scorer interface {
	// Score never returns an error directly; failures are reported through Signal.Error
	Score(ctx context.Context, in ScoreInputs) Signal
}

// ScorerFunc adapts a function to the Scorer interface.
type ScorerFunc func(ctx context.Context, in ScoreInputs) Signal

// Score implements Scorer.
func (f ScorerFunc) Score(ctx context.Context, in ScoreInputs) Signal {
	return f(ctx, in)
}

// ClampScore bounds a score to the [0,100] range.
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
