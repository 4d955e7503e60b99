package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RunLock serializes scheduled escalation runs across instances. The engine
// itself never depends on it for correctness; it only skips a run when
// another holder is active.
type RunLock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type redisRunLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisRunLock builds a best-effort SETNX lease on the given key.
func NewRedisRunLock(client *redis.Client, key string, ttl time.Duration) RunLock {
	return &redisRunLock{client: client, key: key, ttl: ttl}
}

func (l *redisRunLock) Acquire(ctx context.Context) (bool, error) {
	return l.client.SetNX(ctx, l.key, time.Now().Format(time.RFC3339), l.ttl).Result()
}

func (l *redisRunLock) Release(ctx context.Context) error {
	return l.client.Del(ctx, l.key).Err()
}
