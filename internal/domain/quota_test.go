package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitPerDay_KeepsEarliest(t *testing.T) {
	var items []stampedItem
	for i, at := range seconds(day(2024, time.April, 2, 0), 15) {
		items = append(items, stampedItem{n: i, at: at})
	}

	kept := LimitPerDay(items, 10)

	require.Len(t, kept, 10)
	for i, item := range kept {
		assert.Equal(t, i, item.n)
	}
}

func TestLimitPerDay_DaysAreIndependent(t *testing.T) {
	var items []stampedItem
	n := 0
	for _, d := range []int{1, 2, 3} {
		for _, at := range seconds(day(2024, time.April, d, 0), 7) {
			items = append(items, stampedItem{n: n, at: at})
			n++
		}
	}

	kept := LimitPerDay(items, 5)

	require.Len(t, kept, 15)
	perDay := map[DayKey]int{}
	for _, item := range kept {
		perDay[DayKeyOf(item.at)]++
	}
	assert.Equal(t, map[DayKey]int{"2024-04-01": 5, "2024-04-02": 5, "2024-04-03": 5}, perDay)
}

func TestLimitPerDay_BoundaryEventsBelongToNextDay(t *testing.T) {
	boundary := time.Date(2024, time.April, 1, 17, 0, 0, 0, time.UTC)
	items := []stampedItem{
		{n: 0, at: boundary.Add(-2 * time.Second)},
		{n: 1, at: boundary.Add(-1 * time.Second)},
		{n: 2, at: boundary},
		{n: 3, at: boundary.Add(time.Second)},
	}

	kept := LimitPerDay(items, 1)

	require.Len(t, kept, 2)
	assert.Equal(t, 0, kept[0].n)
	assert.Equal(t, 2, kept[1].n)
}

func TestLimitPerDay_NonPositiveLimit(t *testing.T) {
	items := []stampedItem{{n: 0, at: day(2024, time.April, 1, 0)}}

	assert.Empty(t, LimitPerDay(items, 0))
	assert.Empty(t, LimitPerDay(items, -3))
	assert.Empty(t, LimitPerDay([]stampedItem(nil), 5))
}

// every day keeps at most limit items, and they are the first ones of that day.
func TestLimitPerDay_PrefixProperty(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	for _, limit := range []int{1, 2, 3, 7, 50} {
		// irregular gaps across several days, ascending
		var items []stampedItem
		at := start
		for i := 0; i < 300; i++ {
			at = at.Add(time.Duration((i*37)%11+1) * 17 * time.Minute)
			items = append(items, stampedItem{n: i, at: at})
		}

		kept := LimitPerDay(items, limit)

		for _, bucket := range GroupByDay(items) {
			want := bucket.Items
			if len(want) > limit {
				want = want[:limit]
			}

			var got []stampedItem
			for _, k := range kept {
				if DayKeyOf(k.at) == bucket.Day {
					got = append(got, k)
				}
			}
			require.Equal(t, want, got, "limit %d day %s", limit, bucket.Day)
		}
	}
}

func TestGroupByDay_OrdersDaysAndKeepsItemOrder(t *testing.T) {
	items := []stampedItem{
		{n: 0, at: day(2024, time.April, 3, 0)},
		{n: 1, at: day(2024, time.April, 1, 0)},
		{n: 2, at: day(2024, time.April, 3, time.Hour)},
	}

	buckets := GroupByDay(items)

	require.Len(t, buckets, 2)
	assert.Equal(t, DayKey("2024-04-01"), buckets[0].Day)
	assert.Equal(t, DayKey("2024-04-03"), buckets[1].Day)
	assert.Equal(t, []stampedItem{items[0], items[2]}, buckets[1].Items)
}

func TestLimitPerDay_ResultIsOrderedByDay(t *testing.T) {
	items := []stampedItem{
		{n: 0, at: day(2024, time.April, 1, 0)},
		{n: 1, at: day(2024, time.April, 1, time.Minute)},
		{n: 2, at: day(2024, time.April, 1, 2*time.Minute)},
		{n: 3, at: day(2024, time.April, 2, 0)},
		{n: 4, at: day(2024, time.April, 2, time.Minute)},
	}

	kept := LimitPerDay(items, 2)

	assert.Equal(t, []stampedItem{items[0], items[1], items[3], items[4]}, kept)
}
