// internal/domain/catalog/cached_repository.go
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	cacheKeyPrefix = "catalog:"
	// sharedLoadTimeout bounds a load shared by several callers
	sharedLoadTimeout = 5 * time.Second
)

// CachedRepository is a Redis read-through cache in front of another Repository.
// Concurrent misses for the same key share one backend call.
type CachedRepository struct {
	next   Repository
	redis  *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
	sfg    singleflight.Group
}

// NewCachedRepository wraps next with a Redis cache
func NewCachedRepository(next Repository, redisClient *redis.Client, ttl time.Duration, logger *logrus.Logger) *CachedRepository {
	return &CachedRepository{
		next:   next,
		redis:  redisClient,
		ttl:    ttl,
		logger: logger,
	}
}

func (r *CachedRepository) FindByID(ctx context.Context, id string) (*Product, error) {
	return readThrough(ctx, r, "product:"+id, func(ctx context.Context) (*Product, error) {
		return r.next.FindByID(ctx, id)
	})
}

func (r *CachedRepository) FindBySlug(ctx context.Context, slug string) (*Product, error) {
	return readThrough(ctx, r, "slug:"+slug, func(ctx context.Context) (*Product, error) {
		return r.next.FindBySlug(ctx, slug)
	})
}

func (r *CachedRepository) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	featured := "any"
	if filter.Featured != nil {
		featured = fmt.Sprintf("%t", *filter.Featured)
	}
	key := fmt.Sprintf("list:%s:%s:%s", filter.Category, featured, filter.Query)

	return readThrough(ctx, r, key, func(ctx context.Context) ([]Product, error) {
		return r.next.List(ctx, filter)
	})
}

func (r *CachedRepository) Categories(ctx context.Context) ([]CategorySummary, error) {
	return readThrough(ctx, r, "categories", func(ctx context.Context) ([]CategorySummary, error) {
		return r.next.Categories(ctx)
	})
}

// Invalidate drops every cached catalog entry
func (r *CachedRepository) Invalidate(ctx context.Context) error {
	iter := r.redis.Scan(ctx, 0, cacheKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan catalog cache: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return r.redis.Del(ctx, keys...).Err()
}

// readThrough serves key from Redis or loads it once for all concurrent
// callers. The shared load runs detached from any single caller's context;
// each caller still stops waiting when its own context ends.
func readThrough[T any](ctx context.Context, r *CachedRepository, key string, load func(context.Context) (T, error)) (T, error) {
	var zero T
	key = cacheKeyPrefix + key

	ch := r.sfg.DoChan(key, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
		defer cancel()

		var cached T
		data, err := r.redis.Get(ctx, key).Bytes()
		if err == nil {
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
			r.logger.WithField("key", key).Warn("Discarding corrupt catalog cache entry")
		} else if !errors.Is(err, redis.Nil) {
			// cache errors never fail the read
			r.logger.WithError(err).WithField("key", key).Warn("Catalog cache get failed")
		}

		value, err := load(ctx)
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(value); err == nil {
			if err := r.redis.Set(ctx, key, data, r.ttl).Err(); err != nil {
				r.logger.WithError(err).WithField("key", key).Warn("Catalog cache set failed")
			}
		}
		return value, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}
