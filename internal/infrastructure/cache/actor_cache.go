package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/joacominatel/rewards/internal/domain"
)

// ActorValidityCache is an in-memory TTL cache in front of a UserDirectory.
// the invalid actor set is global, so one cached copy serves a whole batch
// instead of one database query per user.
type ActorValidityCache struct {
	directory domain.UserDirectory
	ttl       time.Duration
	now       func() time.Time

	mu        sync.RWMutex
	invalid   domain.ActorSet
	expiresAt time.Time

	group singleflight.Group
}

// NewActorValidityCache creates a new actor validity cache.
func NewActorValidityCache(directory domain.UserDirectory, ttl time.Duration) *ActorValidityCache {
	return &ActorValidityCache{
		directory: directory,
		ttl:       ttl,
		now:       time.Now,
	}
}

// InvalidActors returns the cached set, refreshing it once expired.
// concurrent callers during a refresh share one directory query.
func (c *ActorValidityCache) InvalidActors(ctx context.Context) (domain.ActorSet, error) {
	// fast path: check cache
	c.mu.RLock()
	if c.invalid != nil && c.now().Before(c.expiresAt) {
		set := c.invalid
		c.mu.RUnlock()
		return set, nil
	}
	c.mu.RUnlock()

	// slow path: query the directory
	v, err, _ := c.group.Do("invalid_actors", func() (any, error) {
		set, err := c.directory.InvalidActors(ctx)
		if err != nil {
			return nil, err
		}
		if set == nil {
			set = domain.NewActorSet()
		}

		c.mu.Lock()
		c.invalid = set
		c.expiresAt = c.now().Add(c.ttl)
		c.mu.Unlock()

		return set, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(domain.ActorSet), nil
}

// ListUsersForRecompute is never cached.
func (c *ActorValidityCache) ListUsersForRecompute(ctx context.Context, limit int) ([]domain.UserID, error) {
	return c.directory.ListUsersForRecompute(ctx, limit)
}

// Invalidate forces the next call to query the directory.
func (c *ActorValidityCache) Invalidate() {
	c.mu.Lock()
	c.invalid = nil
	c.mu.Unlock()
}
