// Package circuit tracks consecutive failures of the remote answer judge and
// decides whether it should still be attempted.
package circuit

import "go.uber.org/atomic"

// DefaultThreshold is the number of consecutive remote failures after which the
// judge is skipped until a success or reset.
const DefaultThreshold = 2

// Breaker is a consecutive-failure counter shared by concurrent evaluations.
// The zero value is not usable; create one with New.
type Breaker struct {
	threshold int32
	failures  *atomic.Int32
}

// New creates a closed breaker. A threshold below 1 uses DefaultThreshold.
func New(threshold int) *Breaker {
	if threshold < 1 {
		threshold = DefaultThreshold
	}
	return &Breaker{
		threshold: int32(threshold),
		failures:  atomic.NewInt32(0),
	}
}

// Allow reports whether the remote judge may be attempted.
func (b *Breaker) Allow() bool {
	return b.failures.Load() < b.threshold
}

// Open reports whether the breaker has tripped.
func (b *Breaker) Open() bool {
	return !b.Allow()
}

// RecordFailure counts a transport error or contract violation and returns the
// new consecutive failure count.
func (b *Breaker) RecordFailure() int {
	return int(b.failures.Inc())
}

// RecordSuccess closes the breaker.
func (b *Breaker) RecordSuccess() {
	b.failures.Store(0)
}

// Reset closes the breaker, e.g. after a new credential is installed.
func (b *Breaker) Reset() {
	b.failures.Store(0)
}

// Failures returns the current consecutive failure count.
func (b *Breaker) Failures() int {
	return int(b.failures.Load())
}

// Threshold returns the failure count at which the breaker opens.
func (b *Breaker) Threshold() int {
	return int(b.threshold)
}
