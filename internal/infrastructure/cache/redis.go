package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joacominatel/rewards/internal/infrastructure/logging"
)

const (
	// default connection timeout
	defaultConnectTimeout = 10 * time.Second

	// defaultBreakdownTTL applies when the config leaves the ttl unset.
	defaultBreakdownTTL = 10 * time.Minute
)

var (
	ErrRedisNotConnected = errors.New("redis not connected")
	ErrCacheMiss         = errors.New("cache miss")
)

// RedisConfig holds configuration for Redis connection.
type RedisConfig struct {
	URL string
	// BreakdownTTL is how long a cached breakdown stays readable.
	BreakdownTTL time.Duration
}

// RedisClient wraps the go-redis client with reward-specific operations.
// it caches recomputed breakdowns and keeps a sorted set of recomputed totals.
type RedisClient struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewRedisClient creates a new Redis client from the config.
// returns nil if the URL is empty (redis disabled).
func NewRedisClient(cfg RedisConfig, logger *logging.Logger) (*RedisClient, error) {
	if cfg.URL == "" {
		logger.Info("redis disabled: no REDIS_URL configured")
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	opts.DialTimeout = defaultConnectTimeout
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolSize = 20
	opts.MinIdleConns = 2

	return newRedisClient(redis.NewClient(opts), cfg.BreakdownTTL, logger), nil
}

func newRedisClient(client *redis.Client, ttl time.Duration, logger *logging.Logger) *RedisClient {
	if ttl <= 0 {
		ttl = defaultBreakdownTTL
	}
	return &RedisClient{
		client: client,
		ttl:    ttl,
		logger: logger.WithComponent("redis"),
	}
}

// Connect tests the connection to Redis.
func (r *RedisClient) Connect(ctx context.Context) error {
	if r.client == nil {
		return ErrRedisNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()

	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	r.logger.Info("redis connected")
	return nil
}

// Close closes the Redis connection.
func (r *RedisClient) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

// TTL returns the breakdown expiry.
func (r *RedisClient) TTL() time.Duration {
	return r.ttl
}

// HealthCheck verifies Redis is responding.
func (r *RedisClient) HealthCheck(ctx context.Context) error {
	if r.client == nil {
		return ErrRedisNotConnected
	}

	return r.client.Ping(ctx).Err()
}
