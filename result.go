package answereval

import (
	"time"

	"github.com/datar-psa/answereval/aggregate"
	"github.com/datar-psa/answereval/api"
)

// State is a step of the fallback ladder
type State string

const (
	StateIdle           State = "idle"
	StateAwaitingRemote State = "awaiting_remote"
	StateParsingRemote  State = "parsing_remote"
	StateFallback2      State = "fallback2"
	StateFallback3      State = "fallback3"
	StateDone           State = "done"
)

// Methods that can produce a result, reported in Telemetry.Method
const (
	MethodRemoteJudge    = "remote-judge"
	MethodAggregate      = "aggregate"
	MethodTextSimilarity = "text-similarity-fallback"
	MethodExamplesMatch  = "basic-examples-fallback"
	MethodKeywordOverlap = "keyword-overlap-fallback"
)

// Telemetry describes how a result was produced
type Telemetry struct {
	// Tier is 1 for the remote judge, 2 for the secondary and 3 for the last-resort tier
	Tier   int     `json:"tier"`
	Path   []State `json:"path"`
	Method string  `json:"method"`
	// Provider and Model identify the remote judge when it was attempted
	Provider       string    `json:"provider,omitempty"`
	Model          string    `json:"model,omitempty"`
	Usage          api.Usage `json:"usage"`
	FallbackReason string    `json:"fallbackReason,omitempty"`
	// ConsecutiveFailures is the breaker count after this evaluation
	ConsecutiveFailures int           `json:"consecutiveFailures"`
	Duration            time.Duration `json:"duration"`
}

// Result has the same shape whichever tier produced it. Slices are never nil.
type Result struct {
	Score           int      `json:"score"`
	IsCorrect       bool     `json:"isCorrect"`
	Feedback        string   `json:"feedback"`
	Similarities    []string `json:"similarities"`
	MissingConcepts []string `json:"missingConcepts"`
	Suggestions     []string `json:"suggestions"`
	ValidExamples   []string `json:"validExamples"`
	Confidence      float64  `json:"confidence"`
	// Breakdown is set only when the aggregator produced the result
	Breakdown *aggregate.Breakdown `json:"breakdown,omitempty"`
	Telemetry Telemetry            `json:"telemetry"`
}

// Event is delivered to observers after every evaluation
type Event struct {
	Mode       Mode
	Score      int
	IsCorrect  bool
	Confidence float64
	Telemetry  Telemetry
}

const maxListItems = 5

// normalize enforces the result invariants against threshold
func (r *Result) normalize(threshold int) {
	r.Score = api.ClampScore(r.Score)
	r.IsCorrect = r.Score >= threshold
	r.Similarities = capList(r.Similarities, maxListItems)
	r.MissingConcepts = capList(r.MissingConcepts, maxListItems)
	r.Suggestions = capList(r.Suggestions, -1)
	r.ValidExamples = capList(r.ValidExamples, -1)
	if r.Confidence < 0 {
		r.Confidence = 0
	}
	if r.Confidence > 1 {
		r.Confidence = 1
	}
}

// capList returns a non-nil copy of items truncated to limit; a negative limit keeps all
func capList(items []string, limit int) []string {
	if limit >= 0 && len(items) > limit {
		items = items[:limit]
	}
	out := make([]string, len(items))
	copy(out, items)
	return out
}
