package store

import (
	"context"
	"errors"
	"io"
	"net"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures a [RedisStore].
type RedisConfig struct {
	Addr     string // host:port, default "localhost:6379"
	Password string
	DB       int
	Prefix   string // prepended to every key, default "rundown:"
}

// RedisStore keeps each document as a redis string. Documents never expire.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to redis and pings it.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "rundown:"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := RetryWithBackoff(ctx, func() error { return redisErr(client.Ping(ctx).Err()) }); err != nil {
		_ = client.Close()
		return nil, storageErr(err, "connect to redis at %s", cfg.Addr)
	}
	return &RedisStore{client: client, prefix: cfg.Prefix}, nil
}

// Get retrieves the document stored under key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	found := true
	err := RetryWithBackoff(ctx, func() error {
		b, err := s.client.Get(ctx, s.prefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			found = false
			return nil
		}
		data = b
		return redisErr(err)
	})
	if err != nil {
		return nil, false, storageErr(err, "read %s", key)
	}
	if !found {
		return nil, false, nil
	}
	return data, true, nil
}

// Set replaces the document stored under key.
func (s *RedisStore) Set(ctx context.Context, key string, data []byte) error {
	err := RetryWithBackoff(ctx, func() error {
		return redisErr(s.client.Set(ctx, s.prefix+key, data, 0).Err())
	})
	return storageErr(err, "write %s", key)
}

// Delete removes the document stored under key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	err := RetryWithBackoff(ctx, func() error {
		return redisErr(s.client.Del(ctx, s.prefix+key).Err())
	})
	return storageErr(err, "delete %s", key)
}

// Close closes the redis client.
func (s *RedisStore) Close() error { return s.client.Close() }

// Backend reports [BackendRedis].
func (s *RedisStore) Backend() Backend { return BackendRedis }

// redisErr marks connection-level failures as retryable.
func redisErr(err error) error {
	if err == nil {
		return nil
	}
	var ne net.Error
	if errors.As(err, &ne) || errors.Is(err, io.EOF) {
		return Retryable(err)
	}
	return err
}

var _ Store = (*RedisStore)(nil)
