package observability

import (
	"context"
	"time"

	"go.uber.org/atomic"

	"github.com/datar-psa/answereval"
)

// Usage is a snapshot of remote judge consumption since the session started
type Usage struct {
	TotalRequests    int64      `json:"totalRequests"`
	PromptTokens     int64      `json:"promptTokens"`
	CompletionTokens int64      `json:"completionTokens"`
	TotalTokens      int64      `json:"totalTokens"`
	Fallbacks        int64      `json:"fallbacks"`
	LastRequest      *time.Time `json:"lastRequest,omitempty"`
	SessionStart     time.Time  `json:"sessionStart"`
}

// UsageTracker totals the tokens spent on the remote judge.
// Only evaluations that report token usage count as requests.
type UsageTracker struct {
	requests     atomic.Int64
	prompt       atomic.Int64
	completion   atomic.Int64
	total        atomic.Int64
	fallbacks    atomic.Int64
	lastRequest  atomic.Time
	sessionStart atomic.Time
	now          func() time.Time
}

// NewUsageTracker starts a session now
func NewUsageTracker() *UsageTracker {
	u := &UsageTracker{now: time.Now}
	u.sessionStart.Store(u.now())
	return u
}

// ObserveEvaluation implements answereval.Observer
func (u *UsageTracker) ObserveEvaluation(_ context.Context, ev answereval.Event) {
	t := ev.Telemetry
	if t.Tier > 1 && attemptedRemote(t) {
		u.fallbacks.Inc()
	}
	if t.Usage.TotalTokens <= 0 {
		return
	}
	u.requests.Inc()
	u.prompt.Add(int64(t.Usage.PromptTokens))
	u.completion.Add(int64(t.Usage.CompletionTokens))
	u.total.Add(int64(t.Usage.TotalTokens))
	u.lastRequest.Store(u.now())
}

// Snapshot returns the current totals
func (u *UsageTracker) Snapshot() Usage {
	s := Usage{
		TotalRequests:    u.requests.Load(),
		PromptTokens:     u.prompt.Load(),
		CompletionTokens: u.completion.Load(),
		TotalTokens:      u.total.Load(),
		Fallbacks:        u.fallbacks.Load(),
		SessionStart:     u.sessionStart.Load(),
	}
	if last := u.lastRequest.Load(); !last.IsZero() {
		s.LastRequest = &last
	}
	return s
}

// Reset zeroes the totals and starts a new session
func (u *UsageTracker) Reset() {
	u.requests.Store(0)
	u.prompt.Store(0)
	u.completion.Store(0)
	u.total.Store(0)
	u.fallbacks.Store(0)
	u.lastRequest.Store(time.Time{})
	u.sessionStart.Store(u.now())
}

var _ answereval.Observer = (*UsageTracker)(nil)
