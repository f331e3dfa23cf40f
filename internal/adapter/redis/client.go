// Package redis stores voter records as Redis sets.
package redis

import (
	"context"
	"fmt"

	"github.com/pscheid92/photocontest/internal/adapter/metrics"
	"github.com/pscheid92/photocontest/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

// NewClient connects to redisURL (e.g. "redis://localhost:6379") and verifies the
// connection. m may be nil, which disables metrics and circuit breaker metrics.
func NewClient(ctx context.Context, redisURL string, m *metrics.StorageMetrics) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := goredis.NewClient(opts)
	if m != nil {
		rdb.AddHook(NewMetricsHook(m))
	}
	rdb.AddHook(NewCircuitBreakerHook(m))

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return rdb, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStorage, op, err)
}
