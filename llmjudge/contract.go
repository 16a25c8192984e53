package llmjudge

import (
	"encoding/json"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// contractSchema is the JSON shape every judge response must follow.
// It is also sent to providers that support constrained decoding.
var contractSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"score": map[string]any{
			"type":        "number",
			"minimum":     0,
			"maximum":     100,
			"description": "Score from 0 to 100",
		},
		"isCorrect": map[string]any{
			"type":        "boolean",
			"description": "Whether the answer is acceptable",
		},
		"feedback": map[string]any{
			"type":        "string",
			"description": "Specific feedback about what was good or missing",
		},
		"similarities":    stringList("Concepts the answer got right"),
		"missingConcepts": stringList("Concepts the answer missed"),
		"suggestions":     stringList("Tips for a better answer"),
		"validExamples":   stringList("Examples from the answer that are valid"),
	},
	"required": []string{"score", "isCorrect", "feedback"},
}

func stringList(description string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": description,
	}
}

var compiledContract = mustCompileContract()

func mustCompileContract() *jsonschema.Schema {
	raw, err := json.Marshal(contractSchema)
	if err != nil {
		panic(err)
	}
	return jsonschema.MustCompileString("answereval://judge-verdict.schema.json", string(raw))
}

// stripMarkdownCodeFences removes a ```json (or bare ```) fence around a response.
func stripMarkdownCodeFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}

	// Drop the opening fence line, including any language tag
	newline := strings.IndexByte(cleaned, '\n')
	if newline < 0 {
		return cleaned
	}
	cleaned = cleaned[newline+1:]

	cleaned = strings.TrimRight(cleaned, " \r\n\t")
	cleaned = strings.TrimSuffix(cleaned, "```")

	return strings.TrimSpace(cleaned)
}

// judgePayload mirrors contractSchema
type judgePayload struct {
	Score           float64  `json:"score"`
	IsCorrect       bool     `json:"isCorrect"`
	Feedback        string   `json:"feedback"`
	Similarities    []string `json:"similarities"`
	MissingConcepts []string `json:"missingConcepts"`
	Suggestions     []string `json:"suggestions"`
	ValidExamples   []string `json:"validExamples"`
}

// parseContract validates raw against the contract and decodes it.
func parseContract(raw string) (judgePayload, error) {
	content := stripMarkdownCodeFences(raw)

	var doc any
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return judgePayload{}, err
	}
	if err := compiledContract.Validate(doc); err != nil {
		return judgePayload{}, err
	}

	var payload judgePayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return judgePayload{}, err
	}
	return payload, nil
}
