package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"skillbridge/internal/metrics"
	"skillbridge/pkg/logging"
)

// LoggingStore wraps a Store with logging + metrics. tier labels the cache
// ("resolver" or "generation") in both.
type LoggingStore struct {
	inner Store
	tier  string
}

func NewLoggingStore(inner Store, tier string) Store {
	return &LoggingStore{inner: inner, tier: tier}
}

func (c *LoggingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	value, ok, err := c.inner.Get(ctx, key)

	result := "miss"
	if err != nil {
		result = "error"
	} else if ok {
		result = "hit"
	}
	metrics.CacheLookupsTotal.WithLabelValues(c.tier, result).Inc()

	fields := c.fields(key, start)
	fields = append(fields, zap.String("cache_result", result))
	if err != nil {
		logging.L(ctx).Error("cache_get", append(fields, zap.Error(err))...)
	} else {
		logging.L(ctx).Debug("cache_get", fields...)
	}

	return value, ok, err
}

func (c *LoggingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	err := c.inner.Set(ctx, key, value, ttl)

	fields := append(c.fields(key, start), zap.Int("bytes", len(value)), zap.Duration("ttl", ttl))
	if err != nil {
		logging.L(ctx).Error("cache_set", append(fields, zap.Error(err))...)
	} else {
		logging.L(ctx).Debug("cache_set", fields...)
	}
	return err
}

func (c *LoggingStore) Has(ctx context.Context, key string) (bool, error) {
	ok, err := c.inner.Has(ctx, key)
	if err != nil {
		logging.L(ctx).Error("cache_has", append(c.fields(key, time.Now()), zap.Error(err))...)
	}
	return ok, err
}

func (c *LoggingStore) Delete(ctx context.Context, key string) error {
	err := c.inner.Delete(ctx, key)
	if err != nil {
		logging.L(ctx).Error("cache_delete", append(c.fields(key, time.Now()), zap.Error(err))...)
	}
	return err
}

func (c *LoggingStore) fields(key string, start time.Time) []zap.Field {
	fields := []zap.Field{
		zap.String("cache_tier", c.tier),
		zap.String("cache_key", key),
		zap.Float64("latency_ms", float64(time.Since(start).Microseconds())/1000.0),
	}
	if k, ok := ParseKey(key); ok {
		fields = append(fields, zap.String("namespace", k.Namespace), zap.Strings("key_parts", k.Parts))
	}
	return fields
}
