package api

import (
	"errors"
	"fmt"
)

var (
	// ErrNoReference is returned when a reference answer is required but not provided
	ErrNoReference = errors.New("reference answer is required")
	// ErrNoAnswer is returned when the candidate answer is empty
	ErrNoAnswer = errors.New("candidate answer is required")
	// ErrLLMGenerationFailed is returned when LLM generation fails
	ErrLLMGenerationFailed = errors.New("LLM generation failed")
	// ErrEmbedderRequired is reported by the semantic scorer when no embedder is configured
	ErrEmbedderRequired = errors.New("embedder is required")
)

// ValidationError reports a request the evaluator refuses to score.
// It is the only error that crosses the evaluator boundary.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// TransportError reports that a remote call could not be completed:
// unreachable, timed out, unauthorized or rate limited.
type TransportError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s transport error (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s transport error: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ContractViolation reports a remote response that arrived but does not match
// the required JSON shape.
type ContractViolation struct {
	Raw string
	Err error
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("judge response violates contract: %v", e.Err)
}

func (e *ContractViolation) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err wraps a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsContractViolation reports whether err wraps a *ContractViolation.
func IsContractViolation(err error) bool {
	var cv *ContractViolation
	return errors.As(err, &cv)
}
