package llmjudge

import (
	"fmt"
	"strings"

	"github.com/datar-psa/answereval/api"
)

// Request parameters of the two judge request shapes.
const (
	definitionMaxTokens   = 150
	definitionTemperature = 0.3
	examplesMaxTokens     = 200
	examplesTemperature   = 0.2
)

const definitionSystemPrompt = "You are an AI tutor evaluating student answers. Provide detailed scores based on conceptual understanding. " +
	"Be forgiving of speech-to-text errors but strict about missing key concepts."

const definitionPromptTemplate = `Evaluate this SPOKEN answer from speech-to-text (0-100 points):

QUESTION: %s
EXPECTED ANSWER: %s
STUDENT ANSWER: %s

EVALUATION CRITERIA:
- Award points for key concepts of the expected answer that are mentioned
- Deduct points for missing important concepts
- Ignore speech recognition errors like "abroad" instead of "broad"
- Focus on conceptual understanding, not grammar

SCORING:
- 90-100: All key concepts covered
- 70-89: Most key concepts with minor gaps
- 50-69: Basic understanding with significant gaps
- 30-49: Limited understanding
- 0-29: Incorrect or no understanding

Return JSON format: {"score": [0-100], "isCorrect": [true/false], "feedback": "specific feedback about what was good/missing", "similarities": ["concepts the student got right"], "missingConcepts": ["concepts the student missed"], "suggestions": ["tips"]}`

const examplesSystemPrompt = "You are evaluating AI examples. Award high scores for actual AI systems like Siri, Alexa, Google Translate. " +
	"Be strict about non-AI brands but generous for valid AI examples."

const examplesPromptTemplate = `Evaluate these SPOKEN examples for AI technology:

Question: %s
Expected examples: %s
User examples: %s

SCORING GUIDELINES:
- Valid AI systems/apps (Siri, Alexa, Google Translate, Netflix recommendations): 80-100 points
- Generic tech brands without AI focus (iPhone, Microsoft, Apple): 0-15 points
- Mix of valid AI + non-AI examples: 40-70 points
- User can provide different valid AI examples not in the expected list
- Ignore speech recognition errors (e.g. "Serie" for "Siri")

Count valid AI examples and score accordingly:
- 3+ valid AI examples: 85-100 points
- 2 valid AI examples: 70-85 points
- 1 valid AI example: 50-70 points
- 0 valid AI examples: 0-15 points

Return JSON: {"score": number, "isCorrect": boolean, "feedback": "explanation", "validExamples": ["list"], "suggestions": ["tips"]}`

var defaultSuggestions = map[api.Mode][]string{
	api.ModeDefinition: {"Try including key terms from the definition", "Be more specific in your answer"},
	api.ModeExamples:   {"Try Siri, Google Search, Netflix recommendations, Tesla Autopilot"},
}

// buildRequest renders the generation request for a task
func buildRequest(task Task) api.GenerateRequest {
	if task.Mode == api.ModeExamples {
		return api.GenerateRequest{
			System:      examplesSystemPrompt,
			Prompt:      fmt.Sprintf(examplesPromptTemplate, task.Question, strings.Join(task.expectedExamples(), ", "), task.Answer),
			Schema:      contractSchema,
			MaxTokens:   examplesMaxTokens,
			Temperature: examplesTemperature,
		}
	}

	return api.GenerateRequest{
		System:      definitionSystemPrompt,
		Prompt:      fmt.Sprintf(definitionPromptTemplate, task.Question, task.Reference, task.Answer),
		Schema:      contractSchema,
		MaxTokens:   definitionMaxTokens,
		Temperature: definitionTemperature,
	}
}
