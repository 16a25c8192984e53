// Package config loads runtime settings from an optional YAML/JSON/TOML file,
// a .env file and ANSWEREVAL_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Providers accepted for the remote judge
const (
	ProviderNone   = "none"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds runtime configuration values
type Config struct {
	// Provider selects the remote judge: openai, gemini or none
	Provider string
	// EmbeddingProvider selects the embedder for the aggregator; empty follows Provider
	EmbeddingProvider string

	OpenAI OpenAIConfig
	Gemini GeminiConfig

	RedisURL      string
	EmbeddingTTL  time.Duration
	NATSURL       string
	NATSSubject   string
	HTTPPort      string
	RemoteTimeout time.Duration
	SignalTimeout time.Duration
	// BreakerThreshold is the number of consecutive remote failures that opens the circuit
	BreakerThreshold int
	// UseAggregator makes the four-signal aggregator the secondary tier
	UseAggregator bool
	LogLevel      string
}

// OpenAIConfig holds OpenAI credentials and model names
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	EmbeddingModel string
}

// GeminiConfig holds Gemini credentials and model names.
// A Project selects Vertex AI; otherwise APIKey is used with the Gemini API.
type GeminiConfig struct {
	APIKey         string
	Project        string
	Location       string
	Model          string
	EmbeddingModel string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.HTTPPort, ":") {
		return c.HTTPPort
	}
	return fmt.Sprintf(":%s", c.HTTPPort)
}

// JudgeEnabled reports whether a remote judge credential is configured
func (c Config) JudgeEnabled() bool {
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAI.APIKey != ""
	case ProviderGemini:
		return c.Gemini.APIKey != "" || c.Gemini.Project != ""
	default:
		return false
	}
}

// Load reads configuration. configPath may be empty; a missing .env file is ignored.
func Load(configPath string) (cfg Config, err error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ANSWEREVAL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("provider", ProviderOpenAI)
	v.SetDefault("embedding_provider", "")
	v.SetDefault("openai.model", "gpt-4o")
	v.SetDefault("openai.embedding_model", "text-embedding-3-small")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.embedding_model", "text-embedding-005")
	v.SetDefault("gemini.location", "us-central1")
	v.SetDefault("embedding.cache_ttl", "24h")
	v.SetDefault("nats.subject", "answereval.evaluations")
	v.SetDefault("http.port", "8080")
	v.SetDefault("remote_timeout", "30s")
	v.SetDefault("signal_timeout", "10s")
	v.SetDefault("breaker.threshold", 2)
	v.SetDefault("aggregator.enabled", true)
	v.SetDefault("log.level", "info")

	// Provider SDK variables are honoured as fallbacks
	_ = v.BindEnv("openai.api_key", "ANSWEREVAL_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("gemini.api_key", "ANSWEREVAL_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err = v.ReadInConfig(); err != nil {
			err = errors.Wrapf(err, "failed to read config file: %s", configPath)
			return cfg, err
		}
	}

	durations := map[string]*time.Duration{
		"embedding.cache_ttl": &cfg.EmbeddingTTL,
		"remote_timeout":      &cfg.RemoteTimeout,
		"signal_timeout":      &cfg.SignalTimeout,
	}
	for key, target := range durations {
		*target, err = time.ParseDuration(v.GetString(key))
		if err != nil {
			err = errors.Wrapf(err, "invalid %s", key)
			return cfg, err
		}
	}

	cfg.Provider = strings.ToLower(v.GetString("provider"))
	cfg.EmbeddingProvider = strings.ToLower(v.GetString("embedding_provider"))
	cfg.OpenAI = OpenAIConfig{
		APIKey:         v.GetString("openai.api_key"),
		BaseURL:        v.GetString("openai.base_url"),
		Model:          v.GetString("openai.model"),
		EmbeddingModel: v.GetString("openai.embedding_model"),
	}
	cfg.Gemini = GeminiConfig{
		APIKey:         v.GetString("gemini.api_key"),
		Project:        v.GetString("gemini.project"),
		Location:       v.GetString("gemini.location"),
		Model:          v.GetString("gemini.model"),
		EmbeddingModel: v.GetString("gemini.embedding_model"),
	}
	cfg.RedisURL = v.GetString("redis.url")
	cfg.NATSURL = v.GetString("nats.url")
	cfg.NATSSubject = v.GetString("nats.subject")
	cfg.HTTPPort = v.GetString("http.port")
	cfg.BreakerThreshold = v.GetInt("breaker.threshold")
	cfg.UseAggregator = v.GetBool("aggregator.enabled")
	cfg.LogLevel = strings.ToLower(v.GetString("log.level"))

	if cfg.EmbeddingProvider == "" {
		cfg.EmbeddingProvider = cfg.Provider
	}

	err = cfg.Validate()
	if err != nil {
		err = errors.Wrap(err, "config validation failed")
		return cfg, err
	}
	return cfg, nil
}

// Validate checks that the settings are usable
func (c Config) Validate() (err error) {
	for _, p := range []string{c.Provider, c.EmbeddingProvider} {
		switch p {
		case ProviderNone, ProviderOpenAI, ProviderGemini:
		default:
			return errors.Errorf("unknown provider %q (want openai, gemini or none)", p)
		}
	}
	if c.BreakerThreshold < 1 {
		return errors.Errorf("breaker.threshold must be at least 1, got %d", c.BreakerThreshold)
	}
	if c.RemoteTimeout <= 0 || c.SignalTimeout <= 0 {
		return errors.New("remote_timeout and signal_timeout must be positive")
	}
	return nil
}
