// Package server exposes the evaluator over HTTP with fiber.
package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/datar-psa/answereval"
	"github.com/datar-psa/answereval/observability"
)

// Handler serves evaluation, circuit and usage endpoints
type Handler struct {
	evaluator *answereval.Evaluator
	usage     *observability.UsageTracker
	logger    zerolog.Logger
}

// NewHandler constructs a handler. usage may be nil.
func NewHandler(evaluator *answereval.Evaluator, usage *observability.UsageTracker, logger zerolog.Logger) *Handler {
	return &Handler{
		evaluator: evaluator,
		usage:     usage,
		logger:    logger.With().Str("component", "evaluation_handler").Logger(),
	}
}

// Register wires the routes below router
func (h *Handler) Register(router fiber.Router) {
	router.Get("/health", h.health)
	router.Post("/evaluations", h.evaluate)
	router.Post("/circuit/reset", h.resetCircuit)
	router.Get("/usage", h.getUsage)
	router.Delete("/usage", h.resetUsage)
}

// CircuitState is the breaker part of the health payload
type CircuitState struct {
	Open                bool `json:"open"`
	ConsecutiveFailures int  `json:"consecutiveFailures"`
	Threshold           int  `json:"threshold"`
}

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string       `json:"status"`
	Timestamp   time.Time    `json:"timestamp"`
	RemoteJudge bool         `json:"remoteJudge"`
	Circuit     CircuitState `json:"circuit"`
}

// ValidationDetails names the rejected field
type ValidationDetails struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (h *Handler) health(c *fiber.Ctx) error {
	return SendSuccess(c, "service healthy", HealthResponse{
		Status:      "ok",
		Timestamp:   time.Now().UTC(),
		RemoteJudge: h.evaluator.HasJudge(),
		Circuit:     h.circuit(),
	})
}

func (h *Handler) evaluate(c *fiber.Ctx) error {
	var req answereval.Request
	if err := c.BodyParser(&req); err != nil {
		return SendError(c, fiber.StatusBadRequest, "invalid payload", nil)
	}

	result, err := h.evaluator.Evaluate(c.UserContext(), req)
	if err != nil {
		var verr *answereval.ValidationError
		if errors.As(err, &verr) {
			return SendError(c, fiber.StatusUnprocessableEntity, verr.Error(), ValidationDetails{Field: verr.Field, Reason: verr.Reason})
		}
		h.logger.Error().Err(err).Msg("failed to evaluate answer")
		return SendError(c, fiber.StatusInternalServerError, "failed to evaluate answer", nil)
	}

	return SendSuccess(c, "evaluation complete", result)
}

func (h *Handler) resetCircuit(c *fiber.Ctx) error {
	h.evaluator.ResetCircuit()
	return SendSuccess(c, "circuit reset", h.circuit())
}

func (h *Handler) getUsage(c *fiber.Ctx) error {
	if h.usage == nil {
		return SendError(c, fiber.StatusNotFound, "usage tracking disabled", nil)
	}
	return SendSuccess(c, "", h.usage.Snapshot())
}

func (h *Handler) resetUsage(c *fiber.Ctx) error {
	if h.usage == nil {
		return SendError(c, fiber.StatusNotFound, "usage tracking disabled", nil)
	}
	h.usage.Reset()
	return SendSuccess(c, "usage reset", h.usage.Snapshot())
}

func (h *Handler) circuit() CircuitState {
	b := h.evaluator.Breaker()
	return CircuitState{
		Open:                b.Open(),
		ConsecutiveFailures: b.Failures(),
		Threshold:           b.Threshold(),
	}
}

// NewApp builds the fiber application: the API under /api/v1 and the
// Prometheus scrape endpoint at /metrics.
func NewApp(handler *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "answereval",
		DisableStartupMessage: true,
	})
	handler.Register(app.Group("/api/v1"))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	return app
}
