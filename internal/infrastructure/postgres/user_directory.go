package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joacominatel/rewards/internal/domain"
)

// UserDirectory implements domain.UserDirectory using Postgres.
type UserDirectory struct {
	pool *pgxpool.Pool
}

// NewUserDirectory creates a new UserDirectory.
func NewUserDirectory(pool *pgxpool.Pool) *UserDirectory {
	return &UserDirectory{pool: pool}
}

// InvalidActors returns every banned or soft-deleted user.
func (d *UserDirectory) InvalidActors(ctx context.Context) (domain.ActorSet, error) {
	const query = `
		SELECT id
		FROM profiles
		WHERE is_banned OR deleted_at IS NOT NULL
	`

	ids, err := d.queryIDs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing invalid actors: %w", err)
	}
	return domain.NewActorSet(ids...), nil
}

// ListUsersForRecompute returns active users ordered by id.
// limit <= 0 returns every active user.
func (d *UserDirectory) ListUsersForRecompute(ctx context.Context, limit int) ([]domain.UserID, error) {
	const query = `
		SELECT id
		FROM profiles
		WHERE NOT is_banned AND deleted_at IS NULL
		ORDER BY id
		LIMIT $1
	`

	// LIMIT NULL means no limit in postgres
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}

	ids, err := d.queryIDs(ctx, query, limitArg)
	if err != nil {
		return nil, fmt.Errorf("listing users for recompute: %w", err)
	}
	return ids, nil
}

func (d *UserDirectory) queryIDs(ctx context.Context, query string, args ...any) ([]domain.UserID, error) {
	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.UserID, error) {
		var id uuid.UUID
		if err := row.Scan(&id); err != nil {
			return domain.UserID{}, err
		}
		return domain.UserIDFromUUID(id), nil
	})
}
