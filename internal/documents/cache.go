package documents

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL bounds how long a resolved URL may be served from cache.
// Signed URLs expire; the TTL must stay comfortably below their lifetime.
const DefaultCacheTTL = 5 * time.Minute

const cacheKeyPrefix = "docurl:"

// CachedResolver decorates a Resolver with a Redis cache. Cache failures
// fall through to the inner resolver: the cache is an optimization, never a
// dependency.
type CachedResolver struct {
	inner  Resolver
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedResolver(inner Resolver, client *redis.Client, logger *slog.Logger) *CachedResolver {
	return &CachedResolver{
		inner:  inner,
		client: client,
		ttl:    DefaultCacheTTL,
		logger: logger,
	}
}

func (r *CachedResolver) ResolveURL(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}

	key := cacheKeyPrefix + ref
	cached, err := r.client.Get(ctx, key).Result()
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, redis.Nil) {
		r.logger.WarnContext(ctx, "document url cache read failed", "ref", ref, "error", err)
	}

	resolved, err := r.inner.ResolveURL(ctx, ref)
	if err != nil || resolved == "" {
		return resolved, err
	}

	if err := r.client.Set(ctx, key, resolved, r.ttl).Err(); err != nil {
		r.logger.WarnContext(ctx, "document url cache write failed", "ref", ref, "error", err)
	}
	return resolved, nil
}
