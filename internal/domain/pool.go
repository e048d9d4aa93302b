package domain

import "slices"

// poolSourceOrder fixes the merge order of content sources so that
// events with identical timestamps always pool the same way.
var poolSourceOrder = []ContentSource{SourcePost, SourceProduct, SourceLivestream, ""}

// MergePool merges same-category events from several content sources
// into one pool sorted ascending by timestamp.
// the sort is stable: ties keep the order of sources, then input order.
func MergePool[T Timestamped](sources ...[]T) []T {
	size := 0
	for _, s := range sources {
		size += len(s)
	}

	pool := make([]T, 0, size)
	for _, s := range sources {
		pool = append(pool, s...)
	}

	slices.SortStableFunc(pool, func(a, b T) int {
		return a.OccurredAt().Compare(b.OccurredAt())
	})
	return pool
}

// Pools maps every category to its chronologically sorted pool.
type Pools map[Category][]ActivityEvent

// BuildPools merges each category's sources into one pool.
// likes, comments and shares each get their own pool; they are never combined.
func BuildPools(gated GatedActivity) Pools {
	pools := make(Pools, len(validCategories))
	for _, c := range Categories() {
		bySource := gated[c]
		sources := make([][]ActivityEvent, 0, len(poolSourceOrder))
		for _, src := range poolSourceOrder {
			sources = append(sources, bySource[src])
		}
		pools[c] = MergePool(sources...)
	}
	return pools
}

// LimitPools applies each category's daily quota to its pool.
func LimitPools(pools Pools, rates RateTable) Pools {
	limited := make(Pools, len(pools))
	for _, c := range Categories() {
		limited[c] = LimitPerDay(pools[c], rates.ForCategory(c).DailyQuota)
	}
	return limited
}
