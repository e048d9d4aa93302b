package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joacominatel/rewards/internal/infrastructure/config"
	"github.com/joacominatel/rewards/internal/infrastructure/logging"
)

const maxConns = 10

// sourceTables are the tables the engine reads. a missing one fails the health check.
var sourceTables = []string{
	"profiles", "posts", "products", "livestreams",
	"likes", "comments", "shares", "friendships",
}

// MaxConns is the pool ceiling. recompute concurrency above it only queues.
func MaxConns() int {
	return maxConns
}

// Connection wraps a postgres connection pool.
// uses pgx for better performance and postgres-specific features.
type Connection struct {
	pool   *pgxpool.Pool
	config config.DatabaseConfig
	logger *logging.Logger
}

// New creates a new database connection.
func New(cfg config.DatabaseConfig, logger *logging.Logger) (*Connection, error) {
	componentLogger := logger.WithComponent("database")

	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		componentLogger.DatabaseConnectionFailed(err)
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	// sensible pool defaults, sized for the recompute fan-out
	poolConfig.MaxConns = maxConns
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	// disable prepared statements for supabase transaction pooler (pgbouncer) compatibility
	// pgbouncer in transaction mode doesn't support prepared statements because
	// connections are recycled between transactions
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	// pgbouncer forwards application_name; other startup params are rejected
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "rewards"

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		componentLogger.DatabaseConnectionFailed(err)
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	conn := &Connection{
		pool:   pool,
		config: cfg,
		logger: componentLogger,
	}

	// verify connection works
	if err := conn.HealthCheck(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	componentLogger.DatabaseConnected(cfg.Host, cfg.Name)

	return conn, nil
}

// HealthCheck verifies the database answers and every source table exists
// in the configured schema.
func (c *Connection) HealthCheck(ctx context.Context) error {
	rows, err := c.pool.Query(ctx,
		`SELECT t FROM unnest($1::text[]) AS t WHERE to_regclass(quote_ident($2) || '.' || quote_ident(t)) IS NULL`,
		sourceTables, c.config.Schema,
	)
	if err != nil {
		c.logger.HealthCheckFailed(err)
		return fmt.Errorf("health check failed: %w", err)
	}

	missing, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		c.logger.HealthCheckFailed(err)
		return fmt.Errorf("health check failed: %w", err)
	}
	if len(missing) > 0 {
		err := fmt.Errorf("missing tables in schema %s: %v", c.config.Schema, missing)
		c.logger.HealthCheckFailed(err)
		return fmt.Errorf("health check failed: %w", err)
	}

	c.logger.HealthCheckPassed()
	return nil
}

// Pool returns the underlying connection pool.
// repositories read the activity log through it.
func (c *Connection) Pool() *pgxpool.Pool {
	return c.pool
}

// Close shuts down the connection pool.
func (c *Connection) Close() {
	c.pool.Close()
	c.logger.Info("database connection closed")
}

// Ping satisfies the readiness probe.
func (c *Connection) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

// Schema returns the configured schema name.
func (c *Connection) Schema() string {
	return c.config.Schema
}
