package application

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joacominatel/rewards/internal/domain"
	"github.com/joacominatel/rewards/internal/infrastructure/logging"
)

// DefaultConcurrency bounds the batch fan-out when none is configured.
const DefaultConcurrency = 8

// BreakdownCache stores recomputed breakdowns.
// allows the use case to remain decoupled from redis specifics.
type BreakdownCache interface {
	GetBreakdown(ctx context.Context, userID string) (*domain.RewardBreakdown, error)
	SaveBreakdown(ctx context.Context, breakdown *domain.RewardBreakdown) error
	EvictUsers(ctx context.Context, userIDs []string) error
}

// Recorder abstracts the metrics layer.
type Recorder interface {
	RecordUserComputed(outcome string)
	RecordEventsDropped(reason string, n int)
	RecordDiscrepancy()
	RecordRecompute(durationSeconds float64)
	RecordCacheLookup(result string)
}

// actorRefresher is implemented by directories that cache the invalid actor set.
type actorRefresher interface {
	Invalidate()
}

// ComputeRewardsInput selects the user to recompute.
type ComputeRewardsInput struct {
	UserID string
	// Fresh skips the cache read. the result is still written back.
	Fresh bool
}

// ComputeRewardsOutput is the recomputed report of one user.
type ComputeRewardsOutput struct {
	Breakdown domain.RewardBreakdown
	FromCache bool
}

// ComputeAllInput selects the users of a batch.
// when UserIDs is empty the user directory decides, bounded by Limit.
type ComputeAllInput struct {
	UserIDs []string
	Limit   int
}

// UserFailure is a user whose recomputation failed.
// the batch keeps going; the caller decides whether to retry.
type UserFailure struct {
	UserID string `json:"user_id"`
	Error  string `json:"error"`
}

// ComputeAllOutput contains the result of a batch recomputation.
type ComputeAllOutput struct {
	Results  []domain.RewardBreakdown
	Failures []UserFailure
	Duration time.Duration
}

// Processed returns how many users the batch covered.
func (o *ComputeAllOutput) Processed() int {
	return len(o.Results) + len(o.Failures)
}

// ComputeRewardsUseCase recomputes reward breakdowns from the activity log.
// it never writes balances; the output is a report.
type ComputeRewardsUseCase struct {
	source      domain.ActivitySource
	directory   domain.UserDirectory
	rates       domain.RateTable
	cache       BreakdownCache
	recorder    Recorder
	notifier    domain.NotificationService
	concurrency int
	now         func() time.Time
	logger      *logging.Logger
}

// NewComputeRewardsUseCase creates a new ComputeRewardsUseCase.
func NewComputeRewardsUseCase(
	source domain.ActivitySource,
	directory domain.UserDirectory,
	rates domain.RateTable,
	logger *logging.Logger,
) *ComputeRewardsUseCase {
	return &ComputeRewardsUseCase{
		source:      source,
		directory:   directory,
		rates:       rates,
		concurrency: DefaultConcurrency,
		now:         time.Now,
		logger:      logger.WithComponent("compute_rewards"),
	}
}

// WithCache sets the breakdown cache (redis).
// when set, single-user reads are served from it and every result is written back.
func (uc *ComputeRewardsUseCase) WithCache(c BreakdownCache) *ComputeRewardsUseCase {
	uc.cache = c
	return uc
}

// WithMetrics sets the metrics recorder.
func (uc *ComputeRewardsUseCase) WithMetrics(r Recorder) *ComputeRewardsUseCase {
	uc.recorder = r
	return uc
}

// WithNotifier sets the discrepancy notifier (webhook dispatcher).
// when set, significant discrepancies trigger an alert.
func (uc *ComputeRewardsUseCase) WithNotifier(n domain.NotificationService) *ComputeRewardsUseCase {
	uc.notifier = n
	return uc
}

// WithConcurrency bounds how many users a batch recomputes at once.
// values below 1 fall back to DefaultConcurrency.
func (uc *ComputeRewardsUseCase) WithConcurrency(n int) *ComputeRewardsUseCase {
	if n < 1 {
		n = DefaultConcurrency
	}
	uc.concurrency = n
	return uc
}

// Rates returns the rate table the use case computes with.
func (uc *ComputeRewardsUseCase) Rates() domain.RateTable {
	return uc.rates
}

// Execute recomputes the breakdown of one user.
func (uc *ComputeRewardsUseCase) Execute(ctx context.Context, input ComputeRewardsInput) (*ComputeRewardsOutput, error) {
	userID, err := domain.ParseUserID(strings.TrimSpace(input.UserID))
	if err != nil {
		uc.logger.Warn("reward computation rejected: invalid user id",
			"user_id", input.UserID,
			"reason", err.Error(),
		)
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	if !input.Fresh {
		if cached := uc.cachedBreakdown(ctx, userID); cached != nil {
			return &ComputeRewardsOutput{Breakdown: *cached, FromCache: true}, nil
		}
	}

	if input.Fresh {
		uc.refreshActors()
	}

	invalid, err := uc.directory.InvalidActors(ctx)
	if err != nil {
		uc.logger.Error("reward computation failed: invalid actor lookup failed",
			"user_id", userID.String(),
			"error", err.Error(),
		)
		return nil, fmt.Errorf("loading invalid actors: %w", err)
	}

	breakdown, err := uc.compute(ctx, userID, invalid)
	if err != nil {
		return nil, err
	}
	return &ComputeRewardsOutput{Breakdown: *breakdown}, nil
}

// ExecuteAll recomputes every selected user with bounded concurrency.
// one user's failure never aborts the batch; it is reported in Failures.
// only a failure to select the users or to load shared data fails the call.
func (uc *ComputeRewardsUseCase) ExecuteAll(ctx context.Context, input ComputeAllInput) (*ComputeAllOutput, error) {
	start := time.Now()

	userIDs, failures, err := uc.selectUsers(ctx, input)
	if err != nil {
		return nil, err
	}

	uc.refreshActors()
	invalid, err := uc.directory.InvalidActors(ctx)
	if err != nil {
		uc.logger.Error("batch reward computation failed: invalid actor lookup failed",
			"error", err.Error(),
		)
		return nil, fmt.Errorf("loading invalid actors: %w", err)
	}
	uc.evictInvalid(ctx, invalid)

	uc.logger.RecomputeStarted(len(userIDs), uc.concurrency)

	// each goroutine writes only its own slot
	breakdowns := make([]*domain.RewardBreakdown, len(userIDs))
	errs := make([]error, len(userIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.concurrency)

	for i, id := range userIDs {
		g.Go(func() error {
			breakdowns[i], errs[i] = uc.compute(gctx, id, invalid)
			return nil
		})
	}
	// goroutines never return an error
	_ = g.Wait()

	output := &ComputeAllOutput{Failures: failures}
	for i, id := range userIDs {
		if errs[i] != nil {
			output.Failures = append(output.Failures, UserFailure{UserID: id.String(), Error: errs[i].Error()})
			continue
		}
		output.Results = append(output.Results, *breakdowns[i])
	}

	slices.SortFunc(output.Results, func(a, b domain.RewardBreakdown) int {
		return strings.Compare(a.UserID, b.UserID)
	})
	slices.SortFunc(output.Failures, func(a, b UserFailure) int {
		return strings.Compare(a.UserID, b.UserID)
	})

	output.Duration = time.Since(start)
	if uc.recorder != nil {
		uc.recorder.RecordRecompute(output.Duration.Seconds())
	}

	uc.logger.RecomputeCompleted(
		output.Processed(),
		len(output.Results),
		len(output.Failures),
		output.Duration.Milliseconds(),
	)

	return output, nil
}

// selectUsers resolves the batch. ids that do not parse become failures.
func (uc *ComputeRewardsUseCase) selectUsers(ctx context.Context, input ComputeAllInput) ([]domain.UserID, []UserFailure, error) {
	if len(input.UserIDs) == 0 {
		ids, err := uc.directory.ListUsersForRecompute(ctx, input.Limit)
		if err != nil {
			uc.logger.Error("batch reward computation failed: listing users",
				"error", err.Error(),
			)
			return nil, nil, fmt.Errorf("listing users: %w", err)
		}
		return ids, nil, nil
	}

	var (
		ids      []domain.UserID
		failures []UserFailure
	)
	seen := make(map[domain.UserID]struct{}, len(input.UserIDs))
	for _, raw := range input.UserIDs {
		id, err := domain.ParseUserID(strings.TrimSpace(raw))
		if err != nil {
			failures = append(failures, UserFailure{UserID: raw, Error: err.Error()})
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if input.Limit > 0 && len(ids) > input.Limit {
		ids = ids[:input.Limit]
	}
	return ids, failures, nil
}

// compute fetches one user's activity and runs the pipeline.
func (uc *ComputeRewardsUseCase) compute(ctx context.Context, userID domain.UserID, invalid domain.ActorSet) (*domain.RewardBreakdown, error) {
	activity, err := uc.source.FetchUserActivity(ctx, userID)
	if err != nil {
		uc.recordOutcome("failed")
		if errors.Is(err, domain.ErrNotFound) {
			uc.logger.Warn("reward computation failed: user not found",
				"user_id", userID.String(),
			)
			return nil, fmt.Errorf("user %s: %w", userID, err)
		}
		uc.logger.Error("reward computation failed: activity fetch failed",
			"user_id", userID.String(),
			"error", err.Error(),
		)
		return nil, fmt.Errorf("fetching activity for %s: %w", userID, err)
	}

	result := domain.ComputeBreakdown(activity, invalid, uc.rates)
	breakdown := result.Breakdown
	if breakdown.UserID == "" {
		breakdown.UserID = userID.String()
	}

	for _, d := range result.MalformedTimestamps() {
		uc.logger.MalformedTimestamp(breakdown.UserID, d.EventID.String(), d.Category.String(), d.Detail)
	}

	if breakdown.HasDiscrepancy() {
		uc.logger.Warn("live balance differs from recomputed total",
			"user_id", breakdown.UserID,
			"live_balance", breakdown.LiveBalance.Int64(),
			"recomputed_total", breakdown.Total.Int64(),
			"discrepancy", breakdown.Discrepancy.Int64(),
		)
	}

	uc.record(breakdown)
	uc.notify(ctx, breakdown)
	if !invalid.Contains(userID) {
		uc.storeBreakdown(ctx, &breakdown)
	}

	uc.logger.Debug("reward breakdown computed",
		"user_id", breakdown.UserID,
		"recurring_total", breakdown.RecurringTotal.Int64(),
		"total", breakdown.Total.Int64(),
		"days", len(breakdown.RawByDay),
		"outcome", "computed",
	)

	return &breakdown, nil
}

func (uc *ComputeRewardsUseCase) cachedBreakdown(ctx context.Context, userID domain.UserID) *domain.RewardBreakdown {
	if uc.cache == nil {
		return nil
	}

	cached, err := uc.cache.GetBreakdown(ctx, userID.String())
	if err != nil || cached == nil {
		uc.recordCacheLookup("miss")
		return nil
	}
	uc.recordCacheLookup("hit")
	return cached
}

// storeBreakdown writes back to the cache (best-effort, the activity log is the source of truth)
func (uc *ComputeRewardsUseCase) storeBreakdown(ctx context.Context, breakdown *domain.RewardBreakdown) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.SaveBreakdown(ctx, breakdown); err != nil {
		uc.logger.Warn("breakdown cache write failed",
			"user_id", breakdown.UserID,
			"error", err.Error(),
		)
	}
}

// refreshActors drops a cached invalid actor set so bans apply immediately.
func (uc *ComputeRewardsUseCase) refreshActors() {
	if r, ok := uc.directory.(actorRefresher); ok {
		r.Invalidate()
	}
}

// evictInvalid removes banned and deleted users from the cache and the totals ranking
// (best-effort, the next batch retries)
func (uc *ComputeRewardsUseCase) evictInvalid(ctx context.Context, invalid domain.ActorSet) {
	if uc.cache == nil || len(invalid) == 0 {
		return
	}

	ids := make([]string, 0, len(invalid))
	for id := range invalid {
		ids = append(ids, id.String())
	}
	slices.Sort(ids)

	if err := uc.cache.EvictUsers(ctx, ids); err != nil {
		uc.logger.Warn("invalid actor eviction failed",
			"users", len(ids),
			"error", err.Error(),
		)
		return
	}
	uc.logger.Debug("invalid actors evicted from cache", "users", len(ids))
}

// notify alerts on a significant discrepancy (best-effort, the report is already computed)
func (uc *ComputeRewardsUseCase) notify(ctx context.Context, b domain.RewardBreakdown) {
	if uc.notifier == nil {
		return
	}
	alert, ok := uc.notifier.Thresholds().AlertFor(b, uc.now())
	if !ok {
		return
	}
	if err := uc.notifier.NotifyDiscrepancy(ctx, alert); err != nil {
		uc.logger.Warn("discrepancy notification failed",
			"user_id", b.UserID,
			"error", err.Error(),
		)
	}
}

func (uc *ComputeRewardsUseCase) record(b domain.RewardBreakdown) {
	if uc.recorder == nil {
		return
	}
	uc.recorder.RecordUserComputed("computed")
	uc.recorder.RecordEventsDropped(string(domain.DropMalformedTimestamp), b.Dropped.MalformedTimestamp)
	uc.recorder.RecordEventsDropped(string(domain.DropInvalidActor), b.Dropped.InvalidActor)
	uc.recorder.RecordEventsDropped(string(domain.DropBelowQuality), b.Dropped.BelowQuality)
	uc.recorder.RecordEventsDropped(string(domain.DropInvalidLivestream), b.Dropped.InvalidLivestream)
	uc.recorder.RecordEventsDropped(string(domain.DropInvalidRecord), b.Dropped.InvalidRecord)
	if b.HasDiscrepancy() {
		uc.recorder.RecordDiscrepancy()
	}
}

func (uc *ComputeRewardsUseCase) recordOutcome(outcome string) {
	if uc.recorder != nil {
		uc.recorder.RecordUserComputed(outcome)
	}
}

func (uc *ComputeRewardsUseCase) recordCacheLookup(result string) {
	if uc.recorder != nil {
		uc.recorder.RecordCacheLookup(result)
	}
}
