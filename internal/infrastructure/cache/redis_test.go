package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joacominatel/rewards/internal/domain"
	"github.com/joacominatel/rewards/internal/infrastructure/logging"
)

func TestNewRedisClient_EmptyURLDisablesCache(t *testing.T) {
	client, err := NewRedisClient(RedisConfig{}, logging.Discard())

	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewRedisClient_InvalidURL(t *testing.T) {
	_, err := NewRedisClient(RedisConfig{URL: "not-a-redis-url"}, logging.Discard())

	assert.ErrorContains(t, err, "parsing redis url")
}

func TestNewRedisClient_TTL(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		client, err := NewRedisClient(RedisConfig{URL: "redis://localhost:6379/0"}, logging.Discard())
		require.NoError(t, err)
		defer client.Close()

		assert.Equal(t, defaultBreakdownTTL, client.TTL())
	})

	t.Run("configured", func(t *testing.T) {
		client, err := NewRedisClient(RedisConfig{
			URL:          "redis://localhost:6379/0",
			BreakdownTTL: 90 * time.Second,
		}, logging.Discard())
		require.NoError(t, err)
		defer client.Close()

		assert.Equal(t, 90*time.Second, client.TTL())
	})
}

func TestRedisClient_NilReceiver(t *testing.T) {
	var client *RedisClient
	ctx := context.Background()

	_, err := client.GetBreakdown(ctx, "u1")
	assert.ErrorIs(t, err, ErrRedisNotConnected)

	err = client.SaveBreakdown(ctx, &domain.RewardBreakdown{UserID: "u1"})
	assert.ErrorIs(t, err, ErrRedisNotConnected)

	assert.ErrorIs(t, client.EvictUsers(ctx, []string{"u1"}), ErrRedisNotConnected)

	_, err = client.TopTotals(ctx, 10, 0)
	assert.ErrorIs(t, err, ErrRedisNotConnected)
}

func TestRedisClient_EvictNobody(t *testing.T) {
	client, err := NewRedisClient(RedisConfig{URL: "redis://localhost:6379/0"}, logging.Discard())
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.EvictUsers(context.Background(), nil))
}

func TestBreakdownKey(t *testing.T) {
	assert.Equal(t, "rewards:breakdown:u1", breakdownKey("u1"))
}
