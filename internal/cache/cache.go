// Package cache provides an optional Redis cache of classification
// verdicts keyed by content hash. A cold or unreachable Redis only costs
// recomputation; every cache failure is treated as a miss.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JartiX/Irk-media-monitoring/internal/logger"
)

const keyPrefix = "relevance:"

// Config holds Redis cache settings. An empty Addr disables the cache.
type Config struct {
	Addr     string        `env:"REDIS_ADDR" yaml:"addr"`
	Password string        `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// Verdict is a cached classification result.
type Verdict struct {
	Relevant bool    `json:"relevant"`
	Score    float64 `json:"score"`
}

// ScoreCache caches verdicts by the SHA-256 of the scored text. A nil
// *ScoreCache is valid and always misses.
type ScoreCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// New builds the cache, or returns nil when no address is configured.
func New(cfg Config, log logger.Logger) *ScoreCache {
	if cfg.Addr == "" {
		return nil
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ScoreCache{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		ttl:    ttl,
		logger: log,
	}
}

// Get returns the cached verdict for text, if any.
func (c *ScoreCache) Get(ctx context.Context, text string) (Verdict, bool) {
	if c == nil {
		return Verdict{}, false
	}

	raw, err := c.client.Get(ctx, key(text)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("cache get failed", logger.Error(err))
		}
		return Verdict{}, false
	}

	var v Verdict
	if err := json.Unmarshal(raw, &v); err != nil {
		c.logger.Debug("cache entry corrupted", logger.Error(err))
		return Verdict{}, false
	}
	return v, true
}

// Set stores the verdict for text.
func (c *ScoreCache) Set(ctx context.Context, text string, v Verdict) {
	if c == nil {
		return
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key(text), raw, c.ttl).Err(); err != nil {
		c.logger.Debug("cache set failed", logger.Error(err))
	}
}

// Close releases the Redis connection.
func (c *ScoreCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

func key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return keyPrefix + hex.EncodeToString(sum[:])
}
