// Package observability turns evaluation telemetry into metrics, events and
// usage totals. Every type here implements answereval.Observer.
package observability

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/datar-psa/answereval"
)

// PrometheusObserver records one sample set per evaluation
type PrometheusObserver struct {
	evaluations    *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	remoteFailures *prometheus.CounterVec
	breakerCount   prometheus.Gauge
	tokens         *prometheus.CounterVec
}

// NewPrometheusObserver creates the collectors and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusObserver(reg prometheus.Registerer) (*PrometheusObserver, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	o := &PrometheusObserver{
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "answereval",
			Name:      "evaluations_total",
			Help:      "Total number of evaluations by the tier and method that produced them.",
		}, []string{"mode", "tier", "method", "correct"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "answereval",
			Name:      "evaluation_duration_seconds",
			Help:      "Latency distribution of evaluations.",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"tier"}),
		remoteFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "answereval",
			Name:      "remote_fallbacks_total",
			Help:      "Evaluations that attempted the remote judge and fell back.",
		}, []string{"provider", "reason"}),
		breakerCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "answereval",
			Name:      "remote_consecutive_failures",
			Help:      "Consecutive remote judge failures counted by the circuit breaker.",
		}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "answereval",
			Name:      "remote_tokens_total",
			Help:      "Tokens reported by the remote judge.",
		}, []string{"provider", "kind"}),
	}

	for _, c := range []prometheus.Collector{o.evaluations, o.duration, o.remoteFailures, o.breakerCount, o.tokens} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// ObserveEvaluation implements answereval.Observer
func (o *PrometheusObserver) ObserveEvaluation(_ context.Context, ev answereval.Event) {
	t := ev.Telemetry
	tier := strconv.Itoa(t.Tier)

	o.evaluations.WithLabelValues(string(ev.Mode), tier, t.Method, strconv.FormatBool(ev.IsCorrect)).Inc()
	o.duration.WithLabelValues(tier).Observe(t.Duration.Seconds())
	o.breakerCount.Set(float64(t.ConsecutiveFailures))

	if attemptedRemote(t) && t.Tier > 1 {
		o.remoteFailures.WithLabelValues(t.Provider, t.FallbackReason).Inc()
	}
	if t.Usage.TotalTokens > 0 {
		o.tokens.WithLabelValues(t.Provider, "prompt").Add(float64(t.Usage.PromptTokens))
		o.tokens.WithLabelValues(t.Provider, "completion").Add(float64(t.Usage.CompletionTokens))
	}
}

func attemptedRemote(t answereval.Telemetry) bool {
	for _, s := range t.Path {
		if s == answereval.StateAwaitingRemote {
			return true
		}
	}
	return false
}

var _ answereval.Observer = (*PrometheusObserver)(nil)
