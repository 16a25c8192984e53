package answereval

import (
	"context"

	"github.com/datar-psa/answereval/aggregate"
	"github.com/datar-psa/answereval/api"
	"github.com/datar-psa/answereval/llmjudge"
)

type Mode = api.Mode
type LLMGenerator = api.LLMGenerator
type Embedder = api.Embedder
type Scorer = api.Scorer
type Signal = api.Signal
type ScoreInputs = api.ScoreInputs
type Usage = api.Usage

const (
	ModeDefinition = api.ModeDefinition
	ModeExamples   = api.ModeExamples
)

// Judge grades an answer remotely. *llmjudge.Judge implements it.
type Judge interface {
	Evaluate(ctx context.Context, task llmjudge.Task) (llmjudge.Verdict, error)
	Provider() string
}

// Aggregator combines local signals into one assessment. *aggregate.Aggregator implements it.
type Aggregator interface {
	Evaluate(ctx context.Context, in api.ScoreInputs) (aggregate.Assessment, error)
}

// Observer receives telemetry for every finished evaluation.
// It is called synchronously; implementations must not block.
type Observer interface {
	ObserveEvaluation(ctx context.Context, ev Event)
}

// ObserverFunc adapts a function to the Observer interface
type ObserverFunc func(ctx context.Context, ev Event)

// ObserveEvaluation implements Observer
func (f ObserverFunc) ObserveEvaluation(ctx context.Context, ev Event) {
	f(ctx, ev)
}

var (
	_ Judge      = (*llmjudge.Judge)(nil)
	_ Aggregator = (*aggregate.Aggregator)(nil)
)
