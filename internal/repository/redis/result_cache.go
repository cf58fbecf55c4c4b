package redis

import (
	"context"
	"errors"
	"time"

	"recohub/business/recommendation"
	"recohub/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// ResultCacheRepository stores serialized recommendation results with a TTL.
// It never surfaces backend errors: failed reads degrade to a miss and
// failed writes are dropped, so the serving path stays correct (only slower)
// when Redis misbehaves or is absent.
type ResultCacheRepository struct {
	client *redis.Client
}

var _ recommendation.ResultCache = (*ResultCacheRepository)(nil)

func NewResultCacheRepository(client *redis.Client) *ResultCacheRepository {
	return &ResultCacheRepository{client: client}
}

func (r *ResultCacheRepository) Get(ctx context.Context, key string) ([]byte, bool) {
	payload, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("cache read failed, treating as miss", "key", key, "error", err)
		}
		return nil, false
	}

	return payload, true
}

func (r *ResultCacheRepository) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) {
	if err := r.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		logger.Warn("cache write failed", "key", key, "error", err)
	}
}
