// Package answereval scores spoken quiz answers against a reference answer.
//
// An Evaluator walks a fallback ladder: a remote LLM judge when one is installed
// and its circuit breaker is closed, then a secondary local tier (the signal
// aggregator when configured, text similarity otherwise), then a keyword-overlap
// last resort. Every path returns a fully populated Result; only request
// validation errors are returned to the caller.
package answereval

import (
	"context"
	"fmt"
	"math/rand/v2"
	"reflect"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/datar-psa/answereval/api"
	"github.com/datar-psa/answereval/circuit"
	"github.com/datar-psa/answereval/llmjudge"
)

// DefaultRemoteTimeout bounds a single remote judge call
const DefaultRemoteTimeout = 30 * time.Second

// Evaluator runs the fallback ladder. It is safe for concurrent use.
type Evaluator struct {
	mu    sync.RWMutex
	judge Judge

	generator api.LLMGenerator
	provider  string

	aggregator    Aggregator
	breaker       *circuit.Breaker
	observers     []Observer
	validate      *validator.Validate
	jitter        func() float64
	remoteTimeout time.Duration
	logger        zerolog.Logger
}

// Option configures an Evaluator
type Option func(*Evaluator)

// WithJudge installs the remote judge used by tier 1. A nil judge, including a
// nil *llmjudge.Judge from NewOpenAIJudge without a client, leaves tier 1 disabled.
func WithJudge(judge Judge) Option {
	return func(e *Evaluator) {
		e.judge = nilIfAbsent(judge)
	}
}

// WithGenerator installs a remote judge backed by llm unless WithJudge is also given
func WithGenerator(llm api.LLMGenerator, provider string) Option {
	return func(e *Evaluator) {
		e.generator = llm
		e.provider = provider
	}
}

// WithAggregator makes the signal aggregator the secondary tier
func WithAggregator(agg Aggregator) Option {
	return func(e *Evaluator) {
		e.aggregator = agg
	}
}

// WithBreaker shares a circuit breaker, e.g. between evaluators using the same credential
func WithBreaker(b *circuit.Breaker) Option {
	return func(e *Evaluator) {
		e.breaker = b
	}
}

// WithObserver adds an observer notified after every evaluation
func WithObserver(o Observer) Option {
	return func(e *Evaluator) {
		e.observers = append(e.observers, o)
	}
}

// WithJitter sets the source of the non-AI-term penalty, which must return values in [0,1)
func WithJitter(jitter func() float64) Option {
	return func(e *Evaluator) {
		e.jitter = jitter
	}
}

// WithRemoteTimeout bounds each remote judge call
func WithRemoteTimeout(d time.Duration) Option {
	return func(e *Evaluator) {
		e.remoteTimeout = d
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

// New creates an Evaluator. Its circuit breaker starts closed.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		validate:      NewValidator(),
		jitter:        rand.Float64,
		remoteTimeout: DefaultRemoteTimeout,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.judge == nil && e.generator != nil {
		e.judge = llmjudge.New(e.generator, llmjudge.Options{Provider: e.provider, Logger: e.logger})
	}
	e.logger = e.logger.With().Str("component", "evaluator").Logger()
	if e.breaker == nil {
		e.breaker = circuit.New(circuit.DefaultThreshold)
	}
	e.breaker.Reset()
	return e
}

// InstallJudge replaces the remote judge, e.g. after a new credential was
// entered, and closes the circuit breaker. A nil judge disables tier 1.
func (e *Evaluator) InstallJudge(judge Judge) {
	judge = nilIfAbsent(judge)
	e.mu.Lock()
	e.judge = judge
	e.mu.Unlock()
	e.breaker.Reset()
	e.logger.Info().Bool("enabled", judge != nil).Msg("remote judge installed")
}

// ResetCircuit closes the circuit breaker so the next request tries the remote judge again
func (e *Evaluator) ResetCircuit() {
	e.breaker.Reset()
	e.logger.Info().Msg("circuit breaker reset")
}

// Breaker exposes the circuit breaker state
func (e *Evaluator) Breaker() *circuit.Breaker {
	return e.breaker
}

// HasJudge reports whether a remote judge is installed
func (e *Evaluator) HasJudge() bool {
	return e.currentJudge() != nil
}

// nilIfAbsent turns an interface holding a nil pointer into a nil interface
func nilIfAbsent(judge Judge) Judge {
	if judge == nil {
		return nil
	}
	if v := reflect.ValueOf(judge); v.Kind() == reflect.Ptr && v.IsNil() {
		return nil
	}
	return judge
}

func (e *Evaluator) currentJudge() Judge {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.judge
}

// Evaluate scores req. The only error it returns is a *ValidationError, raised
// before any scoring; every other failure degrades to a lower tier.
func (e *Evaluator) Evaluate(ctx context.Context, req Request) (Result, error) {
	if err := Validate(e.validate, req); err != nil {
		return Result{}, err
	}

	start := time.Now()
	run := &ladder{path: []State{StateIdle}}

	var result Result
	judge := e.currentJudge()
	switch {
	case judge != nil && e.breaker.Allow():
		var ok bool
		result, ok = e.remote(ctx, judge, req, run)
		if !ok {
			result = e.secondary(ctx, req, run)
		}
	case judge != nil:
		run.reason = fmt.Sprintf("circuit open after %d consecutive remote failures", e.breaker.Failures())
		result = e.secondary(ctx, req, run)
	case e.aggregator != nil:
		run.reason = "no remote judge configured"
		result = e.secondary(ctx, req, run)
	default:
		run.reason = "no remote judge or aggregator configured"
		result = e.tertiary(req, run)
	}

	run.enter(StateDone)
	result.normalize(req.threshold())
	result.Telemetry = run.telemetry()
	result.Telemetry.ConsecutiveFailures = e.breaker.Failures()
	result.Telemetry.Duration = time.Since(start)

	e.logger.Debug().
		Int("tier", result.Telemetry.Tier).
		Str("method", result.Telemetry.Method).
		Int("score", result.Score).
		Bool("is_correct", result.IsCorrect).
		Float64("confidence", result.Confidence).
		Msg("evaluation complete")

	e.notify(ctx, req, result)
	return result, nil
}

// remote runs tier 1. It returns false when the ladder must fall back.
func (e *Evaluator) remote(ctx context.Context, judge Judge, req Request, run *ladder) (Result, bool) {
	run.enter(StateAwaitingRemote)
	run.provider = judge.Provider()

	callCtx, cancel := context.WithTimeout(ctx, e.remoteTimeout)
	verdict, err := judge.Evaluate(callCtx, llmjudge.Task{
		Mode:              req.mode(),
		Answer:            req.Answer,
		Reference:         req.Reference,
		Question:          req.Question,
		ReferenceExamples: req.ReferenceExamples,
	})
	cancel()

	run.model = verdict.Model
	run.usage = verdict.Usage

	if err != nil {
		if api.IsContractViolation(err) {
			run.enter(StateParsingRemote)
			run.reason = "remote response violated contract"
		} else {
			run.reason = "remote judge unavailable"
		}
		failures := e.breaker.RecordFailure()
		e.logger.Warn().
			Err(err).
			Str("provider", run.provider).
			Int("consecutive_failures", failures).
			Bool("circuit_open", e.breaker.Open()).
			Msg("remote judge failed, falling back")
		return Result{}, false
	}

	run.enter(StateParsingRemote)
	e.breaker.RecordSuccess()
	if threshold := req.threshold(); verdict.RemoteIsCorrect != (verdict.Score >= threshold) {
		e.logger.Debug().
			Bool("remote_is_correct", verdict.RemoteIsCorrect).
			Int("score", verdict.Score).
			Int("threshold", threshold).
			Msg("remote correctness disagrees with threshold, using threshold")
	}

	run.tier, run.method = 1, MethodRemoteJudge
	return Result{
		Score:           verdict.Score,
		Feedback:        verdict.Feedback,
		Similarities:    verdict.Similarities,
		MissingConcepts: verdict.MissingConcepts,
		Suggestions:     verdict.Suggestions,
		ValidExamples:   verdict.ValidExamples,
		Confidence:      verdict.Confidence,
	}, true
}

func (e *Evaluator) notify(ctx context.Context, req Request, result Result) {
	if len(e.observers) == 0 {
		return
	}
	ev := Event{
		Mode:       req.mode(),
		Score:      result.Score,
		IsCorrect:  result.IsCorrect,
		Confidence: result.Confidence,
		Telemetry:  result.Telemetry,
	}
	for _, o := range e.observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					e.logger.Error().Interface("panic", r).Msg("observer panicked")
				}
			}()
			o.ObserveEvaluation(ctx, ev)
		}()
	}
}

// ladder records the path of one evaluation
type ladder struct {
	path     []State
	tier     int
	method   string
	provider string
	model    string
	usage    api.Usage
	reason   string
}

func (l *ladder) enter(s State) {
	l.path = append(l.path, s)
}

func (l *ladder) telemetry() Telemetry {
	t := Telemetry{
		Tier:     l.tier,
		Path:     l.path,
		Method:   l.method,
		Provider: l.provider,
		Model:    l.model,
		Usage:    l.usage,
	}
	if l.tier > 1 {
		t.FallbackReason = l.reason
	}
	return t
}
