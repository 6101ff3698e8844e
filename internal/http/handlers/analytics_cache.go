package handlers

import (
	"context"
	"log/slog"
	"time"
)

const (
	analyticsCacheKey       = "analytics:earnings:v1"
	analyticsComputeTimeout = 5 * time.Second
)

// AnalyticsCache is satisfied by cache.Cache and cache.RedisCache.
type AnalyticsCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte) error
	Delete(ctx context.Context, key string) error
}

// invalidateAnalytics drops cached earnings after any order write. Failures only cost freshness
// until the TTL expires, so they are logged and swallowed.
func invalidateAnalytics(ctx context.Context, c AnalyticsCache) {
	if c == nil {
		return
	}
	if err := c.Delete(ctx, analyticsCacheKey); err != nil {
		slog.WarnContext(ctx, "analytics cache invalidation failed", "err", err)
	}
}
