package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/joacominatel/rewards/internal/domain"
)

const (
	// breakdownKeyPrefix namespaces one cached breakdown per user.
	breakdownKeyPrefix = "rewards:breakdown:"

	// TotalsKey is the sorted set of recomputed totals, scored by points.
	TotalsKey = "rewards:totals"
)

// RankedUser is one entry of the recomputed totals ranking.
type RankedUser struct {
	UserID string        `json:"user_id"`
	Total  domain.Points `json:"total"`
}

func breakdownKey(userID string) string {
	return breakdownKeyPrefix + userID
}

// SaveBreakdown stores a breakdown with the configured ttl and
// upserts its total into the totals ranking in one round trip.
func (r *RedisClient) SaveBreakdown(ctx context.Context, breakdown *domain.RewardBreakdown) error {
	if r == nil || r.client == nil {
		return ErrRedisNotConnected
	}

	payload, err := json.Marshal(breakdown)
	if err != nil {
		return fmt.Errorf("encoding breakdown: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, breakdownKey(breakdown.UserID), payload, r.ttl)
		pipe.ZAdd(ctx, TotalsKey, redis.Z{
			Score:  float64(breakdown.Total),
			Member: breakdown.UserID,
		})
		return nil
	})
	if err != nil {
		r.logger.Error("failed to cache breakdown",
			"user_id", breakdown.UserID,
			"error", err.Error(),
		)
		return fmt.Errorf("caching breakdown: %w", err)
	}

	r.logger.Debug("breakdown cached",
		"user_id", breakdown.UserID,
		"total", breakdown.Total.Int64(),
		"ttl", r.ttl.String(),
	)
	return nil
}

// GetBreakdown returns the cached breakdown of a user.
// returns ErrCacheMiss when nothing is cached or the entry expired.
func (r *RedisClient) GetBreakdown(ctx context.Context, userID string) (*domain.RewardBreakdown, error) {
	if r == nil || r.client == nil {
		return nil, ErrRedisNotConnected
	}

	payload, err := r.client.Get(ctx, breakdownKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("reading cached breakdown: %w", err)
	}

	var breakdown domain.RewardBreakdown
	if err := json.Unmarshal(payload, &breakdown); err != nil {
		return nil, fmt.Errorf("decoding cached breakdown: %w", err)
	}
	return &breakdown, nil
}

// EvictUsers drops the cached breakdowns of the given users and removes them
// from the totals ranking in one round trip.
func (r *RedisClient) EvictUsers(ctx context.Context, userIDs []string) error {
	if r == nil || r.client == nil {
		return ErrRedisNotConnected
	}
	if len(userIDs) == 0 {
		return nil
	}

	keys := make([]string, len(userIDs))
	members := make([]any, len(userIDs))
	for i, id := range userIDs {
		keys[i] = breakdownKey(id)
		members[i] = id
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.ZRem(ctx, TotalsKey, members...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("evicting users: %w", err)
	}
	return nil
}

// TopTotals returns the users with the highest recomputed totals, best first.
func (r *RedisClient) TopTotals(ctx context.Context, limit, offset int64) ([]RankedUser, error) {
	if r == nil || r.client == nil {
		return nil, ErrRedisNotConnected
	}

	// ZREVRANGE returns members ordered by score (high to low)
	results, err := r.client.ZRevRangeWithScores(ctx, TotalsKey, offset, offset+limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrangewithscores failed: %w", err)
	}

	ranked := make([]RankedUser, 0, len(results))
	for _, z := range results {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		ranked = append(ranked, RankedUser{UserID: member, Total: domain.Points(z.Score)})
	}
	return ranked, nil
}
