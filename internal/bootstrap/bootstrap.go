// Package bootstrap wires configuration into a ready Evaluator:
// provider clients, the cached embedder, the aggregator, the breaker and observers.
package bootstrap

import (
	"context"
	"os"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	goopenai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"github.com/datar-psa/answereval"
	"github.com/datar-psa/answereval/aggregate"
	"github.com/datar-psa/answereval/api"
	"github.com/datar-psa/answereval/circuit"
	"github.com/datar-psa/answereval/embedding"
	"github.com/datar-psa/answereval/internal/config"
	"github.com/datar-psa/answereval/llmjudge"
	"github.com/datar-psa/answereval/observability"
	"github.com/datar-psa/answereval/openai"
)

// App is a wired Evaluator together with the resources it owns
type App struct {
	Config    config.Config
	Evaluator *answereval.Evaluator
	Usage     *observability.UsageTracker
	Logger    zerolog.Logger

	closers []func()
}

// Options tweaks wiring for tests and embedding programs
type Options struct {
	// Registerer receives the evaluation metrics; nil uses the default registry
	Registerer prometheus.Registerer
	// SkipMetrics disables the Prometheus observer
	SkipMetrics bool
}

// NewLogger builds the process logger at the configured level
func NewLogger(level string, verbose bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if verbose {
		lvl = zerolog.DebugLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}

// New wires an App from cfg. Optional infrastructure that cannot be reached
// (Redis, NATS) is logged and skipped; evaluation never depends on it.
func New(ctx context.Context, cfg config.Config, logger zerolog.Logger, opts Options) (*App, error) {
	app := &App{
		Config: cfg,
		Usage:  observability.NewUsageTracker(),
		Logger: logger,
	}

	clients, err := newClients(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	evalOpts := []answereval.Option{
		answereval.WithLogger(logger),
		answereval.WithBreaker(circuit.New(cfg.BreakerThreshold)),
		answereval.WithRemoteTimeout(cfg.RemoteTimeout),
		answereval.WithObserver(app.Usage),
	}

	if judge := clients.judge(cfg, logger); judge != nil {
		evalOpts = append(evalOpts, answereval.WithJudge(judge))
		logger.Info().Str("provider", cfg.Provider).Msg("remote judge enabled")
	} else {
		logger.Info().Msg("no remote judge credential, using local tiers only")
	}

	if cfg.UseAggregator {
		embedder := clients.embedder(cfg)
		if embedder != nil {
			embedder = app.cache(cfg, embedder, logger)
		} else {
			logger.Warn().Msg("no embedding provider configured, semantic signal will score zero")
		}
		agg := aggregate.New(aggregate.Options{
			Embedder:      embedder,
			SignalTimeout: cfg.SignalTimeout,
			Logger:        logger,
		})
		evalOpts = append(evalOpts, answereval.WithAggregator(agg))
	}

	if !opts.SkipMetrics {
		metrics, err := observability.NewPrometheusObserver(opts.Registerer)
		if err != nil {
			return nil, errors.Wrap(err, "failed to register evaluation metrics")
		}
		evalOpts = append(evalOpts, answereval.WithObserver(metrics))
	}

	if cfg.NATSURL != "" {
		conn, err := nats.Connect(cfg.NATSURL, nats.Name("answereval"))
		if err != nil {
			logger.Warn().Err(err).Str("url", cfg.NATSURL).Msg("nats unavailable, evaluation events disabled")
		} else {
			app.closers = append(app.closers, func() { _ = conn.Drain() })
			hostname, _ := os.Hostname()
			evalOpts = append(evalOpts, answereval.WithObserver(observability.NewNATSObserver(conn, observability.NATSOptions{
				Subject: cfg.NATSSubject,
				Source:  hostname,
				Logger:  logger,
			})))
		}
	}

	app.Evaluator = answereval.New(evalOpts...)
	return app, nil
}

// Close releases connections opened by New
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) cache(cfg config.Config, next api.Embedder, logger zerolog.Logger) api.Embedder {
	if cfg.RedisURL == "" {
		return next
	}
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("invalid redis url, embedding cache disabled")
		return next
	}
	client := redis.NewClient(redisOpts)
	a.closers = append(a.closers, func() { _ = client.Close() })

	namespace := cfg.EmbeddingProvider + ":" + embeddingModel(cfg)
	return embedding.NewCachedEmbedder(next, client, embedding.CacheOptions{
		Namespace: namespace,
		TTL:       cfg.EmbeddingTTL,
		Logger:    logger,
	})
}

type clients struct {
	openai *goopenai.Client
	genai  *genai.Client
}

func newClients(ctx context.Context, cfg config.Config, logger zerolog.Logger) (clients, error) {
	var c clients
	needs := map[string]bool{cfg.Provider: true, cfg.EmbeddingProvider: cfg.UseAggregator}

	if needs[config.ProviderOpenAI] && cfg.OpenAI.APIKey != "" {
		client, err := openai.NewClient(openai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Logger:  logger,
		})
		if err != nil {
			return c, errors.Wrap(err, "failed to create openai client")
		}
		c.openai = client
	}

	if needs[config.ProviderGemini] && (cfg.Gemini.APIKey != "" || cfg.Gemini.Project != "") {
		clientCfg := &genai.ClientConfig{
			Backend: genai.BackendGeminiAPI,
			APIKey:  cfg.Gemini.APIKey,
		}
		if cfg.Gemini.Project != "" {
			clientCfg = &genai.ClientConfig{
				Backend:  genai.BackendVertexAI,
				Project:  cfg.Gemini.Project,
				Location: cfg.Gemini.Location,
			}
		}
		client, err := genai.NewClient(ctx, clientCfg)
		if err != nil {
			return c, errors.Wrap(err, "failed to create gemini client")
		}
		c.genai = client
	}

	return c, nil
}

func (c clients) judge(cfg config.Config, logger zerolog.Logger) answereval.Judge {
	var judge *llmjudge.Judge
	switch cfg.Provider {
	case config.ProviderOpenAI:
		judge = answereval.NewOpenAIJudge(
			answereval.WithOpenAIClient(c.openai),
			answereval.WithModelName(cfg.OpenAI.Model),
			answereval.WithProviderLogger(logger),
		)
	case config.ProviderGemini:
		judge = answereval.NewGeminiJudge(
			answereval.WithGenaiClient(c.genai),
			answereval.WithModelName(cfg.Gemini.Model),
			answereval.WithProviderLogger(logger),
		)
	}
	if judge == nil {
		return nil
	}
	return judge
}

func (c clients) embedder(cfg config.Config) api.Embedder {
	var e *answereval.Embedding
	switch cfg.EmbeddingProvider {
	case config.ProviderOpenAI:
		e = answereval.NewOpenAIEmbedding(
			answereval.WithOpenAIClient(c.openai),
			answereval.WithModelName(cfg.OpenAI.EmbeddingModel),
		)
	case config.ProviderGemini:
		e = answereval.NewGeminiEmbedding(
			answereval.WithGenaiClient(c.genai),
			answereval.WithModelName(cfg.Gemini.EmbeddingModel),
		)
	default:
		return nil
	}
	return e.Embedder()
}

func embeddingModel(cfg config.Config) string {
	if cfg.EmbeddingProvider == config.ProviderGemini {
		return cfg.Gemini.EmbeddingModel
	}
	return cfg.OpenAI.EmbeddingModel
}
