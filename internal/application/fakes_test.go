package application

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joacominatel/rewards/internal/domain"
)

type fakeSource struct {
	mu         sync.Mutex
	activities map[domain.UserID]*domain.UserActivity
	errs       map[domain.UserID]error
	calls      atomic.Int32

	delay    time.Duration
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		activities: make(map[domain.UserID]*domain.UserActivity),
		errs:       make(map[domain.UserID]error),
	}
}

func (s *fakeSource) add(a *domain.UserActivity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities[a.Profile.ID] = a
}

func (s *fakeSource) fail(id domain.UserID, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[id] = err
}

func (s *fakeSource) FetchUserActivity(ctx context.Context, userID domain.UserID) (*domain.UserActivity, error) {
	s.calls.Add(1)

	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		seen := s.maxSeen.Load()
		if n <= seen || s.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.errs[userID]; ok {
		return nil, err
	}
	a, ok := s.activities[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

type fakeDirectory struct {
	invalid    domain.ActorSet
	invalidErr error
	users      []domain.UserID
	listErr    error
	lastLimit  int

	invalidations atomic.Int32
}

func (d *fakeDirectory) Invalidate() {
	d.invalidations.Add(1)
}

func (d *fakeDirectory) InvalidActors(ctx context.Context) (domain.ActorSet, error) {
	return d.invalid, d.invalidErr
}

func (d *fakeDirectory) ListUsersForRecompute(ctx context.Context, limit int) ([]domain.UserID, error) {
	d.lastLimit = limit
	if d.listErr != nil {
		return nil, d.listErr
	}
	if limit > 0 && len(d.users) > limit {
		return d.users[:limit], nil
	}
	return d.users, nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]domain.RewardBreakdown
	saveErr error
	saves   int
	evicted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]domain.RewardBreakdown)}
}

func (c *fakeCache) GetBreakdown(ctx context.Context, userID string) (*domain.RewardBreakdown, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[userID]
	if !ok {
		return nil, fmt.Errorf("miss")
	}
	return &b, nil
}

func (c *fakeCache) EvictUsers(ctx context.Context, userIDs []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evicted = append(c.evicted, userIDs...)
	for _, id := range userIDs {
		delete(c.entries, id)
	}
	return nil
}

func (c *fakeCache) SaveBreakdown(ctx context.Context, b *domain.RewardBreakdown) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saves++
	if c.saveErr != nil {
		return c.saveErr
	}
	c.entries[b.UserID] = *b
	return nil
}

type fakeRecorder struct {
	mu            sync.Mutex
	outcomes      map[string]int
	dropped       map[string]int
	discrepancies int
	recomputes    int
	lookups       map[string]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{
		outcomes: make(map[string]int),
		dropped:  make(map[string]int),
		lookups:  make(map[string]int),
	}
}

func (r *fakeRecorder) RecordUserComputed(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[outcome]++
}

func (r *fakeRecorder) RecordEventsDropped(reason string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n > 0 {
		r.dropped[reason] += n
	}
}

func (r *fakeRecorder) RecordDiscrepancy() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.discrepancies++
}

func (r *fakeRecorder) RecordRecompute(float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recomputes++
}

func (r *fakeRecorder) RecordCacheLookup(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups[result]++
}

// activity builders

var longText = strings.Repeat("a thoughtful caption ", 8)

func stampAt(day, hour int) string {
	return time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC).Format(time.RFC3339)
}

func newActivity(id domain.UserID) *domain.UserActivity {
	return &domain.UserActivity{Profile: domain.UserProfile{ID: id}}
}

func withQualityPosts(a *domain.UserActivity, n, day int) *domain.UserActivity {
	for i := range n {
		a.Posts = append(a.Posts, domain.ContentRecord{
			ID:        domain.NewEventID(),
			AuthorID:  a.Profile.ID,
			Content:   longText,
			Images:    []string{fmt.Sprintf("https://cdn.example.com/%d.jpg", i)},
			PostType:  domain.PostTypePost,
			CreatedAt: time.Date(2024, 3, day, 1, i, 0, 0, time.UTC).Format(time.RFC3339),
		})
	}
	return a
}

func withLikes(a *domain.UserActivity, from domain.UserID, n, day int) *domain.UserActivity {
	target := domain.NewEventID()
	for i := range n {
		a.Likes = append(a.Likes, domain.InteractionRecord{
			ID:        domain.NewEventID(),
			ActorID:   from,
			TargetID:  target,
			Source:    domain.SourcePost,
			CreatedAt: time.Date(2024, 3, day, 2, i, 0, 0, time.UTC).Format(time.RFC3339),
		})
	}
	return a
}

type fakeNotifier struct {
	mu         sync.Mutex
	alerts     []domain.DiscrepancyAlert
	thresholds domain.DiscrepancyThresholds
}

func (n *fakeNotifier) NotifyDiscrepancy(_ context.Context, alert domain.DiscrepancyAlert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alert)
	return nil
}

func (n *fakeNotifier) Thresholds() domain.DiscrepancyThresholds {
	return n.thresholds
}
