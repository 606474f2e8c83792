package cache

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/sgi/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewIdempotencyStore builds the store selected by cfg.IdempotencyBackend.
// The redis backend needs a connected client.
func NewIdempotencyStore(cfg config.EventConfig, client redis.UniversalClient, log *zap.Logger) (shared.IdempotencyStore, error) {
	switch cfg.IdempotencyBackend {
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("redis idempotency backend selected but no Redis client is configured")
		}
		log.Info("using Redis idempotency store")
		return NewRedisIdempotencyStore(client, DefaultKeyPrefix), nil
	case "memory", "":
		log.Info("using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", cfg.IdempotencyBackend)
	}
}
