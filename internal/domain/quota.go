package domain

import (
	"cmp"
	"slices"
)

// LimitPerDay keeps at most limit items per local calendar day.
//
// items must already be sorted ascending by timestamp; this function does not sort.
// within a day the kept items are therefore the chronologically earliest ones
// (first come, first served). dropped items never move to another day.
// the result is ordered by day, then by input order within a day.
func LimitPerDay[T Timestamped](items []T, limit int) []T {
	if limit <= 0 || len(items) == 0 {
		return []T{}
	}

	kept := make([]T, 0, len(items))
	for _, bucket := range GroupByDay(items) {
		kept = append(kept, bucket.Items[:min(limit, len(bucket.Items))]...)
	}

	return kept
}

// DailyBucket holds one category's events for a single local day,
// in the order they were given.
type DailyBucket[T Timestamped] struct {
	Day   DayKey
	Items []T
}

// GroupByDay splits items into day buckets ordered by day key.
// each bucket keeps the relative input order of its items.
func GroupByDay[T Timestamped](items []T) []DailyBucket[T] {
	index := make(map[DayKey]int)
	var buckets []DailyBucket[T]

	for _, item := range items {
		key := DayKeyOf(item.OccurredAt())
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, DailyBucket[T]{Day: key})
		}
		buckets[i].Items = append(buckets[i].Items, item)
	}

	slices.SortFunc(buckets, func(a, b DailyBucket[T]) int {
		return cmp.Compare(a.Day, b.Day)
	})
	return buckets
}
