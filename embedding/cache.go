package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/datar-psa/answereval/api"
)

// CachedEmbedder memoizes embeddings in Redis. Reference answers are embedded on
// every evaluation of the same question, so hits are the common case.
// Cache errors are logged and bypassed; they never fail an embedding.
type CachedEmbedder struct {
	next   api.Embedder
	cache  *redis.Client
	prefix string
	ttl    time.Duration
	logger zerolog.Logger
}

// CacheOptions configures CachedEmbedder
type CacheOptions struct {
	// Namespace separates entries of different embedding models
	Namespace string
	// TTL of a cached vector; zero keeps entries forever
	TTL    time.Duration
	Logger zerolog.Logger
}

// NewCachedEmbedder wraps next with a Redis cache. A nil client disables caching.
func NewCachedEmbedder(next api.Embedder, client *redis.Client, opts CacheOptions) *CachedEmbedder {
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "default"
	}
	return &CachedEmbedder{
		next:   next,
		cache:  client,
		prefix: "answereval:embedding:" + namespace + ":",
		ttl:    opts.TTL,
		logger: opts.Logger.With().Str("component", "embedding_cache").Logger(),
	}
}

// Embed implements api.Embedder
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if c.next == nil {
		return nil, api.ErrEmbedderRequired
	}
	if c.cache == nil {
		return c.next.Embed(ctx, text)
	}

	key := c.key(text)
	if cached, err := c.cache.Get(ctx, key).Bytes(); err == nil {
		var vector []float64
		if unmarshalErr := json.Unmarshal(cached, &vector); unmarshalErr == nil && len(vector) > 0 {
			c.logger.Debug().Str("key", key).Msg("embedding cache hit")
			return vector, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn().Err(err).Msg("failed to read embedding cache")
	}

	vector, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(vector)
	if err != nil {
		return nil, fmt.Errorf("encode embedding: %w", err)
	}
	if err := c.cache.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to store embedding cache")
	}

	return vector, nil
}

func (c *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.prefix + hex.EncodeToString(sum[:])
}

var _ api.Embedder = (*CachedEmbedder)(nil)
