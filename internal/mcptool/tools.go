// Package mcptool exposes the evaluator to MCP clients over stdio.
package mcptool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/datar-psa/answereval"
)

// EvaluateTool handles the evaluate_answer MCP tool.
type EvaluateTool struct {
	evaluator *answereval.Evaluator
}

// NewEvaluateTool creates an EvaluateTool
func NewEvaluateTool(evaluator *answereval.Evaluator) *EvaluateTool {
	return &EvaluateTool{evaluator: evaluator}
}

// Definition returns the MCP tool definition for registration.
func (t *EvaluateTool) Definition() mcp.Tool {
	return mcp.NewTool("evaluate_answer",
		mcp.WithDescription(
			"Score a spoken quiz answer against the expected answer. Returns a 0-100 score, "+
				"whether it passes the threshold, feedback, matched and missing concepts, and "+
				"which evaluation tier produced the result.",
		),
		mcp.WithString("answer",
			mcp.Required(),
			mcp.Description("The candidate answer, usually transcribed from speech."),
		),
		mcp.WithString("reference",
			mcp.Description("The expected answer. Optional in examples mode when reference_examples is given."),
		),
		mcp.WithString("question",
			mcp.Description("The question that was asked."),
		),
		mcp.WithString("mode",
			mcp.Description("'definition' (default) compares against a definition; 'examples' checks named examples."),
			mcp.Enum(string(answereval.ModeDefinition), string(answereval.ModeExamples)),
		),
		mcp.WithArray("reference_examples",
			mcp.Description("Acceptable examples for examples mode."),
			mcp.WithStringItems(),
		),
		mcp.WithNumber("threshold",
			mcp.Description("Passing score, 0-100. Defaults to 70."),
			mcp.Min(0),
			mcp.Max(100),
		),
	)
}

// Handle runs one evaluation
func (t *EvaluateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	request := answereval.Request{
		Answer:            req.GetString("answer", ""),
		Reference:         req.GetString("reference", ""),
		Question:          req.GetString("question", ""),
		Mode:              answereval.Mode(req.GetString("mode", "")),
		ReferenceExamples: req.GetStringSlice("reference_examples", nil),
		Threshold:         req.GetInt("threshold", 0),
	}

	result, err := t.evaluator.Evaluate(ctx, request)
	if err != nil {
		var verr *answereval.ValidationError
		if errors.As(err, &verr) {
			return mcp.NewToolResultError(verr.Error()), nil
		}
		return nil, fmt.Errorf("evaluating answer: %w", err)
	}

	return mcp.NewToolResultStructured(result, summarize(result)), nil
}

func summarize(r answereval.Result) string {
	var sb strings.Builder
	verdict := "incorrect"
	if r.IsCorrect {
		verdict = "correct"
	}
	fmt.Fprintf(&sb, "Score: %d/100 (%s, confidence %.2f)\n", r.Score, verdict, r.Confidence)
	fmt.Fprintf(&sb, "Feedback: %s\n", r.Feedback)
	writeList(&sb, "Matched", r.Similarities)
	writeList(&sb, "Missing", r.MissingConcepts)
	writeList(&sb, "Valid examples", r.ValidExamples)
	writeList(&sb, "Suggestions", r.Suggestions)
	fmt.Fprintf(&sb, "Evaluated by tier %d (%s)", r.Telemetry.Tier, r.Telemetry.Method)
	if r.Telemetry.FallbackReason != "" {
		fmt.Fprintf(&sb, ": %s", r.Telemetry.FallbackReason)
	}
	return sb.String()
}

func writeList(sb *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "%s: %s\n", label, strings.Join(items, "; "))
}

// ResetCircuitTool handles the reset_circuit MCP tool.
type ResetCircuitTool struct {
	evaluator *answereval.Evaluator
}

// NewResetCircuitTool creates a ResetCircuitTool
func NewResetCircuitTool(evaluator *answereval.Evaluator) *ResetCircuitTool {
	return &ResetCircuitTool{evaluator: evaluator}
}

// Definition returns the MCP tool definition for registration.
func (t *ResetCircuitTool) Definition() mcp.Tool {
	return mcp.NewTool("reset_circuit",
		mcp.WithDescription("Close the remote judge circuit breaker so the next evaluation tries the remote judge again."),
	)
}

// Handle resets the breaker
func (t *ResetCircuitTool) Handle(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.evaluator.ResetCircuit()
	return mcp.NewToolResultText("Circuit breaker reset."), nil
}

// NewServer registers the tools on a new MCP server
func NewServer(evaluator *answereval.Evaluator, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"answereval",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	evaluate := NewEvaluateTool(evaluator)
	s.AddTool(evaluate.Definition(), evaluate.Handle)

	reset := NewResetCircuitTool(evaluator)
	s.AddTool(reset.Definition(), reset.Handle)

	return s
}
