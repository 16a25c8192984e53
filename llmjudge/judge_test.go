package llmjudge

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/datar-psa/answereval/api"
)

// mockLLMGenerator is a simple mock for unit tests
type mockLLMGenerator struct {
	response  string
	truncated bool
	err       error
	lastReq   api.GenerateRequest
}

func (m *mockLLMGenerator) Generate(ctx context.Context, req api.GenerateRequest) (api.Generation, error) {
	m.lastReq = req
	if m.err != nil {
		return api.Generation{}, m.err
	}
	return api.Generation{
		Text:      m.response,
		Model:     "gpt-4o",
		Truncated: m.truncated,
		Usage:     api.Usage{PromptTokens: 120, CompletionTokens: 40, TotalTokens: 160},
	}, nil
}

const nnReference = "Neural networks are computing systems inspired by biological neurons."

func TestJudge_Evaluate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name            string
		response        string
		truncated       bool
		llmErr          error
		task            Task
		wantTransport   bool
		wantContract    bool
		wantScore       int
		wantConfidence  float64
		wantSuggestions []string
		wantValid       []string
	}{
		{
			name:            "definition verdict",
			response:        `{"score": 85, "isCorrect": true, "feedback": "Covers neurons and computation."}`,
			task:            Task{Mode: api.ModeDefinition, Answer: "networks of artificial neurons", Reference: nnReference},
			wantScore:       85,
			wantConfidence:  ConfidenceComplete,
			wantSuggestions: []string{"Try including key terms from the definition", "Be more specific in your answer"},
			wantValid:       []string{},
		},
		{
			name:            "fenced response",
			response:        "```json\n{\"score\": 72.6, \"isCorrect\": true, \"feedback\": \"ok\", \"suggestions\": [\"Mention layers\"]}\n```",
			task:            Task{Mode: api.ModeDefinition, Answer: "a", Reference: nnReference},
			wantScore:       73,
			wantConfidence:  ConfidenceComplete,
			wantSuggestions: []string{"Mention layers"},
			wantValid:       []string{},
		},
		{
			name:            "truncated response lowers confidence",
			response:        `{"score": 40, "isCorrect": false, "feedback": "Partial"}`,
			truncated:       true,
			task:            Task{Mode: api.ModeDefinition, Answer: "a", Reference: nnReference},
			wantScore:       40,
			wantConfidence:  ConfidenceTruncated,
			wantSuggestions: []string{"Try including key terms from the definition", "Be more specific in your answer"},
			wantValid:       []string{},
		},
		{
			name:         "score above range",
			response:     `{"score": 250, "isCorrect": true, "feedback": "Perfect"}`,
			task:         Task{Mode: api.ModeDefinition, Answer: "a", Reference: nnReference},
			wantContract: true,
		},
		{
			name:         "negative score",
			response:     `{"score": -5, "isCorrect": false, "feedback": "Wrong"}`,
			task:         Task{Mode: api.ModeDefinition, Answer: "a", Reference: nnReference},
			wantContract: true,
		},
		{
			name:            "examples verdict",
			response:        `{"score": 90, "isCorrect": true, "feedback": "Three valid systems", "validExamples": ["Siri", "Alexa", "Netflix"]}`,
			task:            Task{Mode: api.ModeExamples, Answer: "Siri, Alexa and Netflix", ReferenceExamples: []string{"Siri", "Alexa"}},
			wantScore:       90,
			wantConfidence:  ConfidenceComplete,
			wantSuggestions: []string{"Try Siri, Google Search, Netflix recommendations, Tesla Autopilot"},
			wantValid:       []string{"Siri", "Alexa", "Netflix"},
		},
		{
			name:         "malformed json",
			response:     `{"score": 85, "isCorrect": tru`,
			task:         Task{Mode: api.ModeDefinition, Answer: "a", Reference: nnReference},
			wantContract: true,
		},
		{
			name:         "missing required field",
			response:     `{"score": 85, "feedback": "no verdict"}`,
			task:         Task{Mode: api.ModeDefinition, Answer: "a", Reference: nnReference},
			wantContract: true,
		},
		{
			name:         "score has wrong type",
			response:     `{"score": "high", "isCorrect": true, "feedback": "x"}`,
			task:         Task{Mode: api.ModeDefinition, Answer: "a", Reference: nnReference},
			wantContract: true,
		},
		{
			name:          "transport failure",
			llmErr:        errors.New("connection refused"),
			task:          Task{Mode: api.ModeDefinition, Answer: "a", Reference: nnReference},
			wantTransport: true,
		},
		{
			name:          "typed transport failure keeps status",
			llmErr:        &api.TransportError{Provider: "openai", StatusCode: 429, Err: errors.New("rate limited")},
			task:          Task{Mode: api.ModeDefinition, Answer: "a", Reference: nnReference},
			wantTransport: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &mockLLMGenerator{response: tt.response, truncated: tt.truncated, err: tt.llmErr}
			verdict, err := New(llm, Options{Provider: "openai"}).Evaluate(ctx, tt.task)

			if tt.wantTransport {
				if !api.IsTransportError(err) {
					t.Fatalf("Evaluate() error = %v, want transport error", err)
				}
				if !errors.Is(err, api.ErrLLMGenerationFailed) {
					t.Errorf("Evaluate() error = %v, want wrapped ErrLLMGenerationFailed", err)
				}
				return
			}
			if tt.wantContract {
				if !api.IsContractViolation(err) {
					t.Fatalf("Evaluate() error = %v, want contract violation", err)
				}
				if verdict.Usage.TotalTokens != 160 {
					t.Errorf("Evaluate() usage = %+v, want tokens recorded on violation", verdict.Usage)
				}
				return
			}
			if err != nil {
				t.Fatalf("Evaluate() unexpected error = %v", err)
			}

			if verdict.Score != tt.wantScore {
				t.Errorf("Evaluate() score = %d, want %d", verdict.Score, tt.wantScore)
			}
			if verdict.Confidence != tt.wantConfidence {
				t.Errorf("Evaluate() confidence = %v, want %v", verdict.Confidence, tt.wantConfidence)
			}
			if !reflect.DeepEqual(verdict.Suggestions, tt.wantSuggestions) {
				t.Errorf("Evaluate() suggestions = %v, want %v", verdict.Suggestions, tt.wantSuggestions)
			}
			if !reflect.DeepEqual(verdict.ValidExamples, tt.wantValid) {
				t.Errorf("Evaluate() validExamples = %v, want %v", verdict.ValidExamples, tt.wantValid)
			}
			if verdict.Similarities == nil || verdict.MissingConcepts == nil {
				t.Error("Evaluate() returned nil slices")
			}
			if verdict.Model != "gpt-4o" || verdict.Usage.TotalTokens != 160 {
				t.Errorf("Evaluate() model/usage = %q/%+v", verdict.Model, verdict.Usage)
			}
		})
	}
}

func TestJudge_RequestShapes(t *testing.T) {
	ctx := context.Background()
	llm := &mockLLMGenerator{response: `{"score": 50, "isCorrect": false, "feedback": "x"}`}
	judge := New(llm, Options{})

	if _, err := judge.Evaluate(ctx, Task{Mode: api.ModeDefinition, Answer: "my answer", Reference: nnReference, Question: "What are neural networks?"}); err != nil {
		t.Fatalf("Evaluate() unexpected error = %v", err)
	}
	if llm.lastReq.MaxTokens != 150 || llm.lastReq.Temperature != 0.3 {
		t.Errorf("definition request max_tokens=%d temperature=%v, want 150 and 0.3", llm.lastReq.MaxTokens, llm.lastReq.Temperature)
	}
	for _, want := range []string{"EXPECTED ANSWER: " + nnReference, "STUDENT ANSWER: my answer", "QUESTION: What are neural networks?"} {
		if !strings.Contains(llm.lastReq.Prompt, want) {
			t.Errorf("definition prompt missing %q", want)
		}
	}
	if llm.lastReq.Schema == nil {
		t.Error("definition request has no schema")
	}

	if _, err := judge.Evaluate(ctx, Task{Mode: api.ModeExamples, Answer: "Siri", ReferenceExamples: []string{"Siri", "Alexa"}}); err != nil {
		t.Fatalf("Evaluate() unexpected error = %v", err)
	}
	if llm.lastReq.MaxTokens != 200 || llm.lastReq.Temperature != 0.2 {
		t.Errorf("examples request max_tokens=%d temperature=%v, want 200 and 0.2", llm.lastReq.MaxTokens, llm.lastReq.Temperature)
	}
	if !strings.Contains(llm.lastReq.Prompt, "Expected examples: Siri, Alexa") {
		t.Errorf("examples prompt = %q", llm.lastReq.Prompt)
	}
}

func TestJudge_NilReceiver(t *testing.T) {
	var j *Judge
	if got := j.Provider(); got != "" {
		t.Errorf("Provider() = %q, want empty", got)
	}
	_, err := j.Evaluate(context.Background(), Task{Mode: api.ModeDefinition, Answer: "a", Reference: "b"})
	if !api.IsTransportError(err) {
		t.Errorf("Evaluate() error = %v, want transport error", err)
	}
}

func TestJudge_NoGenerator(t *testing.T) {
	_, err := New(nil, Options{}).Evaluate(context.Background(), Task{Mode: api.ModeDefinition, Answer: "a", Reference: "b"})
	if !api.IsTransportError(err) {
		t.Errorf("Evaluate() error = %v, want transport error", err)
	}
}

func TestStripMarkdownCodeFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain json", input: `{"score": 1}`, want: `{"score": 1}`},
		{name: "json fence", input: "```json\n{\"score\": 1}\n```", want: `{"score": 1}`},
		{name: "bare fence", input: "```\n{\"score\": 1}\n```\n", want: `{"score": 1}`},
		{name: "fence with trailing blank line", input: "```json\n{\"score\": 1}\n\n```", want: `{"score": 1}`},
		{name: "surrounding whitespace", input: "  {\"score\": 1}\n", want: `{"score": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripMarkdownCodeFences(tt.input); got != tt.want {
				t.Errorf("stripMarkdownCodeFences() = %q, want %q", got, tt.want)
			}
		})
	}
}
