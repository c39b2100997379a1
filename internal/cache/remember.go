package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Remember returns the JSON value cached under key, or computes it with fn
// and caches the result. Cache failures are logged and never fail the call.
func Remember[T any](ctx context.Context, c Cache, logger *zap.Logger, key string, ttl time.Duration, fn func() (T, error)) (T, error) {
	if raw, found := c.Get(ctx, key); found {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			logger.Debug("Cache hit", zap.String("key", key))
			return cached, nil
		}
		logger.Warn("Discarding undecodable cache entry", zap.String("key", key))
	}

	result, err := fn()
	if err != nil {
		return result, err
	}

	raw, err := json.Marshal(result)
	if err != nil {
		logger.Warn("Failed to encode cache value", zap.String("key", key), zap.Error(err))
		return result, nil
	}

	if err := c.Set(ctx, key, raw, ttl); err != nil {
		logger.Warn("Failed to cache result",
			zap.String("key", key),
			zap.Error(err),
		)
	} else {
		logger.Debug("Cache set", zap.String("key", key))
	}

	return result, nil
}
