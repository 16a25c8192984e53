package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/datar-psa/answereval"
	"github.com/datar-psa/answereval/api"
	"github.com/datar-psa/answereval/llmjudge"
	"github.com/datar-psa/answereval/observability"
)

type downJudge struct{}

func (downJudge) Evaluate(context.Context, llmjudge.Task) (llmjudge.Verdict, error) {
	return llmjudge.Verdict{}, &api.TransportError{Provider: "stub", Err: errors.New("down")}
}

func (downJudge) Provider() string { return "stub" }

func newTestApp(opts ...answereval.Option) (*fiber.App, *answereval.Evaluator, *observability.UsageTracker) {
	usage := observability.NewUsageTracker()
	opts = append(opts, answereval.WithObserver(usage))
	evaluator := answereval.New(opts...)
	return NewApp(NewHandler(evaluator, usage, zerolog.Nop())), evaluator, usage
}

func performRequest(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func TestEvaluateEndpoint(t *testing.T) {
	app, _, _ := newTestApp()

	resp := performRequest(t, app, http.MethodPost, "/api/v1/evaluations",
		`{"answer":"computers learn from data","reference":"Machine learning enables computers to learn from data."}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Success bool              `json:"success"`
		Message string            `json:"message"`
		Data    answereval.Result `json:"data"`
	}
	decode(t, resp, &payload)

	require.True(t, payload.Success)
	require.Equal(t, "evaluation complete", payload.Message)
	require.Equal(t, 3, payload.Data.Telemetry.Tier)
	require.Equal(t, answereval.MethodKeywordOverlap, payload.Data.Telemetry.Method)
	require.NotNil(t, payload.Data.ValidExamples)
}

func TestEvaluateEndpoint_Errors(t *testing.T) {
	app, _, _ := newTestApp()

	t.Run("malformed body", func(t *testing.T) {
		resp := performRequest(t, app, http.MethodPost, "/api/v1/evaluations", `{"answer":`)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("blank answer", func(t *testing.T) {
		resp := performRequest(t, app, http.MethodPost, "/api/v1/evaluations", `{"answer":"  ","reference":"x"}`)
		require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

		var payload struct {
			Success bool              `json:"success"`
			Details ValidationDetails `json:"details"`
		}
		decode(t, resp, &payload)
		require.False(t, payload.Success)
		require.Equal(t, "answer", payload.Details.Field)
	})

	t.Run("missing reference", func(t *testing.T) {
		resp := performRequest(t, app, http.MethodPost, "/api/v1/evaluations", `{"answer":"something"}`)
		require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	})
}

func TestCircuitAndHealthEndpoints(t *testing.T) {
	app, evaluator, usage := newTestApp(answereval.WithJudge(downJudge{}))

	body := `{"answer":"I don't know","reference":"Neural networks are computing systems."}`
	for i := 0; i < 2; i++ {
		resp := performRequest(t, app, http.MethodPost, "/api/v1/evaluations", body)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}
	require.True(t, evaluator.Breaker().Open())
	require.EqualValues(t, 2, usage.Snapshot().Fallbacks)

	resp := performRequest(t, app, http.MethodGet, "/api/v1/health", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var health struct {
		Data HealthResponse `json:"data"`
	}
	decode(t, resp, &health)
	require.True(t, health.Data.RemoteJudge)
	require.True(t, health.Data.Circuit.Open)
	require.Equal(t, 2, health.Data.Circuit.ConsecutiveFailures)

	resp = performRequest(t, app, http.MethodPost, "/api/v1/circuit/reset", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var reset struct {
		Data CircuitState `json:"data"`
	}
	decode(t, resp, &reset)
	require.False(t, reset.Data.Open)
	require.False(t, evaluator.Breaker().Open())

	resp = performRequest(t, app, http.MethodDelete, "/api/v1/usage", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()
	require.Zero(t, usage.Snapshot().Fallbacks)
}

func TestUsageEndpointDisabled(t *testing.T) {
	app := NewApp(NewHandler(answereval.New(), nil, zerolog.Nop()))

	resp := performRequest(t, app, http.MethodGet, "/api/v1/usage", "")
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	app, _, _ := newTestApp()

	resp := performRequest(t, app, http.MethodGet, "/metrics", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	require.Contains(t, string(body), "go_goroutines")
}

func TestEvaluationResponseContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("testdata", "evaluation_response.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	app, _, _ := newTestApp(
		answereval.WithJudge(downJudge{}),
		answereval.WithJitter(func() float64 { return 0.5 }),
	)

	bodies := []string{
		`{"answer":"I don't know","reference":"Neural networks are computing systems."}`,
		`{"answer":"iPhone and Microsoft","mode":"examples","referenceExamples":["Siri","Alexa"]}`,
	}
	for _, body := range bodies {
		resp := performRequest(t, app, http.MethodPost, "/api/v1/evaluations", body)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		resp.Body.Close()

		var payload interface{}
		require.NoError(t, json.Unmarshal(raw, &payload))
		require.NoError(t, schema.Validate(payload))
	}
}
