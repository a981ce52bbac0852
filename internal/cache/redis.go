package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares results across API replicas. Keys are namespaced by Prefix.
type RedisStore struct {
	Client *redis.Client
	Prefix string
}

func NewRedisStore(opt *redis.Options, prefix string) *RedisStore {
	return &RedisStore{Client: redis.NewClient(opt), Prefix: prefix}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.Client.Get(ctx, s.Prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return s.Client.Set(ctx, s.Prefix+key, value, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.Client.Del(ctx, s.Prefix+key).Err()
}

// Ping checks connectivity; used by the health endpoint.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.Client.Close()
}
