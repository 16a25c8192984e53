package observability

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/datar-psa/answereval"
)

// DefaultSubject is where evaluation events are published
const DefaultSubject = "answereval.evaluations"

// Publisher is the part of *nats.Conn the observer needs
type Publisher interface {
	Publish(subject string, data []byte) error
}

var _ Publisher = (*nats.Conn)(nil)

// EvaluationEvent is the JSON payload published for every evaluation
type EvaluationEvent struct {
	Source     string               `json:"source"`
	Mode       answereval.Mode      `json:"mode"`
	Score      int                  `json:"score"`
	IsCorrect  bool                 `json:"isCorrect"`
	Confidence float64              `json:"confidence"`
	Telemetry  answereval.Telemetry `json:"telemetry"`
	SentAt     time.Time            `json:"sentAt"`
}

// NATSObserver publishes evaluation events. Publish failures are logged and dropped.
type NATSObserver struct {
	pub     Publisher
	subject string
	source  string
	logger  zerolog.Logger
}

// NATSOptions configures a NATSObserver
type NATSOptions struct {
	// Subject defaults to DefaultSubject
	Subject string
	// Source identifies this process in published events
	Source string
	Logger zerolog.Logger
}

// NewNATSObserver creates an observer publishing through pub
func NewNATSObserver(pub Publisher, opts NATSOptions) *NATSObserver {
	subject := opts.Subject
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSObserver{
		pub:     pub,
		subject: subject,
		source:  opts.Source,
		logger:  opts.Logger.With().Str("component", "nats_observer").Logger(),
	}
}

// ObserveEvaluation implements answereval.Observer
func (o *NATSObserver) ObserveEvaluation(_ context.Context, ev answereval.Event) {
	if o.pub == nil {
		return
	}

	payload, err := json.Marshal(EvaluationEvent{
		Source:     o.source,
		Mode:       ev.Mode,
		Score:      ev.Score,
		IsCorrect:  ev.IsCorrect,
		Confidence: ev.Confidence,
		Telemetry:  ev.Telemetry,
		SentAt:     time.Now().UTC(),
	})
	if err != nil {
		o.logger.Error().Err(err).Msg("failed to encode evaluation event")
		return
	}

	if err := o.pub.Publish(o.subject, payload); err != nil {
		o.logger.Warn().Err(err).Str("subject", o.subject).Msg("failed to publish evaluation event")
	}
}

var _ answereval.Observer = (*NATSObserver)(nil)
