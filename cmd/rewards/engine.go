package main

import (
	"context"
	"time"

	"github.com/joacominatel/rewards/internal/application"
	"github.com/joacominatel/rewards/internal/domain"
	"github.com/joacominatel/rewards/internal/infrastructure/cache"
	"github.com/joacominatel/rewards/internal/infrastructure/config"
	"github.com/joacominatel/rewards/internal/infrastructure/database"
	"github.com/joacominatel/rewards/internal/infrastructure/logging"
	"github.com/joacominatel/rewards/internal/infrastructure/postgres"
)

// actorCacheTTL bounds how stale the banned/deleted user set may be.
const actorCacheTTL = time.Minute

// engine holds the wiring shared by every command that recomputes.
type engine struct {
	conn    *database.Connection
	redis   *cache.RedisClient
	useCase *application.ComputeRewardsUseCase
}

// newEngine connects to postgres, which must hold every source table, and to redis
// when configured, then builds the use case.
// a redis failure is not fatal: the engine runs without cache.
func newEngine(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*engine, error) {
	conn, err := database.New(cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Rewards.Concurrency > database.MaxConns() {
		logger.Warn("recompute concurrency exceeds database pool size",
			"concurrency", cfg.Rewards.Concurrency,
			"max_conns", database.MaxConns(),
		)
	}

	pool := conn.Pool()
	directory := cache.NewActorValidityCache(postgres.NewUserDirectory(pool), actorCacheTTL)

	useCase := application.NewComputeRewardsUseCase(
		postgres.NewActivitySource(pool),
		directory,
		domain.DefaultRateTable(),
		logger,
	).WithConcurrency(cfg.Rewards.Concurrency)

	e := &engine{conn: conn, useCase: useCase}

	redisClient, err := cache.NewRedisClient(cache.RedisConfig{
		URL:          cfg.Redis.URL,
		BreakdownTTL: cfg.Rewards.CacheTTL,
	}, logger)
	if err != nil {
		logger.Warn("redis misconfigured, continuing without cache", "error", err.Error())
		return e, nil
	}
	if redisClient == nil {
		return e, nil
	}

	if err := redisClient.Connect(ctx); err != nil {
		logger.Warn("redis connection failed, continuing without cache", "error", err.Error())
		return e, nil
	}

	e.redis = redisClient
	e.useCase = e.useCase.WithCache(redisClient)
	logger.Info("redis breakdown cache enabled", "ttl", redisClient.TTL().String())
	return e, nil
}

// Close releases the connections.
func (e *engine) Close() {
	if e.redis != nil {
		_ = e.redis.Close()
	}
	e.conn.Close()
}
