package cache

import (
	"context"
	"fmt"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// StoreOption configures NewIdempotencyStore
type StoreOption func(*storeOptions)

type storeOptions struct {
	logger        *zap.Logger
	allowFallback bool
}

// WithLogger sets the logger used to report which store was chosen
func WithLogger(logger *zap.Logger) StoreOption {
	return func(o *storeOptions) { o.logger = logger }
}

// WithInMemoryFallback controls whether an unreachable redis degrades to the
// in-memory store. Default true.
func WithInMemoryFallback(allow bool) StoreOption {
	return func(o *storeOptions) { o.allowFallback = allow }
}

// NewIdempotencyStore returns a redis-backed store when redis is enabled and
// reachable, otherwise an in-memory one.
func NewIdempotencyStore(ctx context.Context, cfg config.RedisConfig, opts ...StoreOption) (shared.IdempotencyStore, error) {
	o := storeOptions{logger: zap.NewNop(), allowFallback: true}
	for _, opt := range opts {
		opt(&o)
	}

	if !cfg.Enabled {
		o.logger.Info("Redis disabled, using in-memory idempotency store")
		return NewMemoryIdempotencyStore(), nil
	}

	client, err := NewRedisClient(ctx, cfg)
	if err == nil {
		o.logger.Info("Using Redis idempotency store", zap.String("addr", cfg.Addr()))
		return NewRedisIdempotencyStore(client, DefaultKeyPrefix), nil
	}

	if !o.allowFallback {
		return nil, fmt.Errorf("redis required for idempotency: %w", err)
	}

	o.logger.Warn("Redis unavailable, falling back to in-memory idempotency store",
		zap.Error(err),
	)
	return NewMemoryIdempotencyStore(), nil
}
