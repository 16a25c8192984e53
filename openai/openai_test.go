package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/datar-psa/answereval/api"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) Config {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1"}
}

func chatResponse(content, finishReason string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4o-2024-08-06",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finishReason,
		}},
		"usage": map[string]any{"prompt_tokens": 120, "completion_tokens": 30, "total_tokens": 150},
	}
}

func TestGenerator_Generate(t *testing.T) {
	var captured map[string]any
	cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse(`{"score": 80, "isCorrect": true, "feedback": "ok"}`, "stop"))
	})

	client, err := NewClient(cfg)
	require.NoError(t, err)

	gen, err := NewGenerator(client, "", zerolog.Nop()).Generate(context.Background(), api.GenerateRequest{
		System:      "You are an AI tutor",
		Prompt:      "Evaluate this",
		MaxTokens:   150,
		Temperature: 0.3,
	})
	require.NoError(t, err)

	require.Equal(t, `{"score": 80, "isCorrect": true, "feedback": "ok"}`, gen.Text)
	require.Equal(t, "gpt-4o-2024-08-06", gen.Model)
	require.False(t, gen.Truncated)
	require.Equal(t, api.Usage{PromptTokens: 120, CompletionTokens: 30, TotalTokens: 150}, gen.Usage)

	require.Equal(t, DefaultModel, captured["model"])
	require.EqualValues(t, 150, captured["max_tokens"])
	require.Equal(t, map[string]any{"type": "json_object"}, captured["response_format"])
	messages, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
}

func TestGenerator_TruncatedResponse(t *testing.T) {
	cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse(`{"score": 80, "isCor`, "length"))
	})

	client, err := NewClient(cfg)
	require.NoError(t, err)

	gen, err := NewGenerator(client, "gpt-4o", zerolog.Nop()).Generate(context.Background(), api.GenerateRequest{Prompt: "x"})
	require.NoError(t, err)
	require.True(t, gen.Truncated)
}

func TestGenerator_TransportErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantStatus int
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, wantStatus: http.StatusTooManyRequests},
		{name: "unauthorized", status: http.StatusUnauthorized, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"message": "nope", "type": "invalid_request_error", "code": "x"},
				})
			})

			client, err := NewClient(cfg)
			require.NoError(t, err)

			_, err = NewGenerator(client, "gpt-4o", zerolog.Nop()).Generate(context.Background(), api.GenerateRequest{Prompt: "x"})
			require.Error(t, err)

			var te *api.TransportError
			require.ErrorAs(t, err, &te)
			require.Equal(t, "openai", te.Provider)
			require.Equal(t, tt.wantStatus, te.StatusCode)
		})
	}
}

func TestGenerator_NoChoices(t *testing.T) {
	cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		resp := chatResponse("", "stop")
		resp["choices"] = []any{}
		_ = json.NewEncoder(w).Encode(resp)
	})

	client, err := NewClient(cfg)
	require.NoError(t, err)

	_, err = NewGenerator(client, "gpt-4o", zerolog.Nop()).Generate(context.Background(), api.GenerateRequest{Prompt: "x"})
	require.True(t, api.IsTransportError(err))
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
}

func TestEmbedder_Embed(t *testing.T) {
	var captured map[string]any
	cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/embeddings", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]any{{"object": "embedding", "index": 0, "embedding": []float64{0.5, -0.25, 1}}},
			"model":  "text-embedding-3-small",
			"usage":  map[string]any{"prompt_tokens": 3, "total_tokens": 3},
		})
	})

	client, err := NewClient(cfg)
	require.NoError(t, err)

	embedder := NewEmbedder(client, "")
	require.Equal(t, "text-embedding-3-small", embedder.Model())

	vector, err := embedder.Embed(context.Background(), "neural networks")
	require.NoError(t, err)
	require.Equal(t, []float64{0.5, -0.25, 1}, vector)
	require.Equal(t, "text-embedding-3-small", captured["model"])
	require.Equal(t, []any{"neural networks"}, captured["input"])
}

func TestEmbedder_Failure(t *testing.T) {
	cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	client, err := NewClient(cfg)
	require.NoError(t, err)

	_, err = NewEmbedder(client, "").Embed(context.Background(), "x")
	require.True(t, api.IsTransportError(err))
}
