package ports

import (
	"context"
	"time"
)

// ReportCache is an injected TTL cache for rendered aggregate reports. The
// reporting usecase owns the keys and the TTL; the metric engine itself never
// touches a cache.
type ReportCache interface {
	// Get returns the cached payload for key, with a hit/miss flag
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a payload under key for the given TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Invalidate drops every cached report. Called after a recompute batch.
	Invalidate(ctx context.Context) error
}
