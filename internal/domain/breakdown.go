package domain

// CategoryCounts holds rewarded event counts per category, after quotas.
type CategoryCounts struct {
	Posts       int `json:"posts"`
	Likes       int `json:"likes"`
	Comments    int `json:"comments"`
	Shares      int `json:"shares"`
	Friendships int `json:"friendships"`
	Livestreams int `json:"livestreams"`
}

// Get returns the count of a category.
func (c CategoryCounts) Get(cat Category) int {
	switch cat {
	case CategoryPost:
		return c.Posts
	case CategoryLike:
		return c.Likes
	case CategoryComment:
		return c.Comments
	case CategoryShare:
		return c.Shares
	case CategoryFriendship:
		return c.Friendships
	case CategoryLivestream:
		return c.Livestreams
	}
	return 0
}

func (c *CategoryCounts) set(cat Category, n int) {
	switch cat {
	case CategoryPost:
		c.Posts = n
	case CategoryLike:
		c.Likes = n
	case CategoryComment:
		c.Comments = n
	case CategoryShare:
		c.Shares = n
	case CategoryFriendship:
		c.Friendships = n
	case CategoryLivestream:
		c.Livestreams = n
	}
}

// RewardBreakdown is the recomputed reward report of one user.
// it is derived data for audits and exports, never the source of truth.
type RewardBreakdown struct {
	UserID string `json:"user_id"`

	// Counts are rewarded items after daily quotas, not raw activity.
	Counts CategoryCounts `json:"counts"`

	RawByDay    map[DayKey]Points `json:"raw_by_day"`
	CappedByDay map[DayKey]Points `json:"capped_by_day"`

	// RecurringTotal is the capped sum over all days, bonuses excluded.
	RecurringTotal Points `json:"recurring_total"`
	WelcomeBonus   Points `json:"welcome_bonus"`
	WalletBonus    Points `json:"wallet_bonus"`
	Total          Points `json:"total"`

	// LiveBalance and Discrepancy are set when the live balance is known.
	// Discrepancy = LiveBalance - Total.
	LiveBalance *Points `json:"live_balance,omitempty"`
	Discrepancy *Points `json:"discrepancy,omitempty"`

	Dropped DropSummary `json:"dropped"`
}

// HasDiscrepancy returns true if the live balance disagrees with the recomputed total.
func (b RewardBreakdown) HasDiscrepancy() bool {
	return b.Discrepancy != nil && *b.Discrepancy != 0
}

// Computation is the result of running the pipeline for one user.
// Dropped carries every filtered record so the caller can log them.
type Computation struct {
	Breakdown RewardBreakdown
	Dropped   []DroppedEvent
}

// MalformedTimestamps returns the drops caused by unparseable timestamps.
func (c Computation) MalformedTimestamps() []DroppedEvent {
	var out []DroppedEvent
	for _, d := range c.Dropped {
		if d.Reason == DropMalformedTimestamp {
			out = append(out, d)
		}
	}
	return out
}

// ComputeBreakdown runs the full reward pipeline for one user.
// this is a pure function: identical input always yields an identical breakdown.
//
// stages:
// 1. gate raw records (timestamps, actor validity, quality predicates)
// 2. merge each category's content sources into one chronological pool
// 3. apply each category's daily quota
// 4. fold rewarded events into per-day amounts
// 5. cap each day, sum the days
// 6. add one-time bonuses after capping
func ComputeBreakdown(activity *UserActivity, invalid ActorSet, rates RateTable) Computation {
	gated, dropped := GateActivity(activity, invalid)
	limited := LimitPools(BuildPools(gated), rates)

	var counts CategoryCounts
	raw := make(map[DayKey]Points)
	for _, c := range Categories() {
		events := limited[c]
		counts.set(c, len(events))
		raw = AccumulateDaily(raw, events, rates.ForCategory(c).Reward)
	}

	breakdown := RewardBreakdown{
		Counts:         counts,
		RawByDay:       raw,
		CappedByDay:    CapByDay(raw, rates.DailyCap),
		RecurringTotal: CapDaily(raw, rates.DailyCap),
		Dropped:        Summarize(dropped),
	}

	if activity != nil {
		profile := activity.Profile
		breakdown.UserID = profile.ID.String()
		if profile.WelcomeBonusClaimed {
			breakdown.WelcomeBonus = rates.WelcomeBonus
		}
		if profile.WalletBonusClaimed {
			breakdown.WalletBonus = rates.WalletBonus
		}
		if profile.LiveBalance != nil {
			live := *profile.LiveBalance
			breakdown.LiveBalance = &live
		}
	}

	breakdown.Total = breakdown.RecurringTotal + breakdown.WelcomeBonus + breakdown.WalletBonus

	if breakdown.LiveBalance != nil {
		diff := *breakdown.LiveBalance - breakdown.Total
		breakdown.Discrepancy = &diff
	}

	return Computation{Breakdown: breakdown, Dropped: dropped}
}
