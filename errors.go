package answereval

import "github.com/datar-psa/answereval/api"

var (
	// ErrNoReference is returned when a reference answer is required but not provided
	ErrNoReference = api.ErrNoReference
	// ErrNoAnswer is returned when the candidate answer is empty
	ErrNoAnswer = api.ErrNoAnswer
	// ErrLLMGenerationFailed is returned when LLM generation fails
	ErrLLMGenerationFailed = api.ErrLLMGenerationFailed
)

// ValidationError is the only error Evaluate returns
type ValidationError = api.ValidationError

// TransportError is a failed remote call, including non-2xx statuses
type TransportError = api.TransportError

// ContractViolation is a remote reply that does not match the judge contract
type ContractViolation = api.ContractViolation
