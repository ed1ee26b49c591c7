package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pkordes/trip-planner/internal/domain"
)

// redisKeyPrefix namespaces plan documents inside a shared Redis database.
const redisKeyPrefix = "trip-planner:plan:"

// redisPlanStore stores each document as a plain string value without TTL.
type redisPlanStore struct {
	rdb *redis.Client
}

// NewRedisPlanStore constructs a PlanStore backed by rdb.
func NewRedisPlanStore(rdb *redis.Client) PlanStore {
	return &redisPlanStore{rdb: rdb}
}

// ConnectRedis parses url, opens a client and verifies connectivity.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("repo.ConnectRedis: invalid redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("repo.ConnectRedis: ping: %w", err)
	}
	return rdb, nil
}

func (s *redisPlanStore) Get(ctx context.Context, key string) ([]byte, error) {
	doc, err := s.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("repo.PlanStore.Get: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("repo.PlanStore.Get: %w", err)
	}
	return doc, nil
}

func (s *redisPlanStore) Put(ctx context.Context, key string, doc []byte) error {
	if err := s.rdb.Set(ctx, redisKeyPrefix+key, doc, 0).Err(); err != nil {
		return fmt.Errorf("repo.PlanStore.Put: %w", err)
	}
	return nil
}

func (s *redisPlanStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("repo.PlanStore.Delete: %w", err)
	}
	return nil
}
