package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/pulsedesk/pulsedesk/internal/ports"
)

// keyPrefix namespaces every cached report so Invalidate can sweep them
// without touching unrelated keys.
const keyPrefix = "pulsedesk:report:"

// ReportCacheConfig configures the Redis-backed report cache
type ReportCacheConfig struct {
	Enabled  bool
	RedisURL string
}

// redisReportCache implements ports.ReportCache with Redis
type redisReportCache struct {
	client *redis.Client
	logger *logrus.Logger
}

// NewReportCache creates a Redis-backed report cache, or a noop cache when
// caching is disabled.
func NewReportCache(config ReportCacheConfig, logger *logrus.Logger) (ports.ReportCache, error) {
	if !config.Enabled {
		logger.Info("Report caching disabled")
		return &noopReportCache{}, nil
	}

	opt, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Report cache connected to Redis")
	return &redisReportCache{client: client, logger: logger}, nil
}

// Get returns the cached payload for key, with a hit/miss flag
func (c *redisReportCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read report cache: %w", err)
	}
	return payload, true, nil
}

// Set stores a payload under key for the given TTL
func (c *redisReportCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write report cache: %w", err)
	}
	return nil
}

// Invalidate drops every cached report. A recompute batch changes the data
// under every report, so the whole namespace is swept.
func (c *redisReportCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete cached report: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan report cache: %w", err)
	}
	return nil
}

// noopReportCache is used when caching is disabled: every lookup misses
type noopReportCache struct{}

func (n *noopReportCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

func (n *noopReportCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (n *noopReportCache) Invalidate(ctx context.Context) error {
	return nil
}
