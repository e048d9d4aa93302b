package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCapDaily_ClipsEachDayIndependently(t *testing.T) {
	rewards := map[DayKey]Points{
		"2024-05-01": 700_000,
		"2024-05-02": 500_000,
		"2024-05-03": 200_000,
	}

	assert.Equal(t, Points(1_200_000), CapDaily(rewards, DailyCap))
	assert.Equal(t, map[DayKey]Points{
		"2024-05-01": 500_000,
		"2024-05-02": 500_000,
		"2024-05-03": 200_000,
	}, CapByDay(rewards, DailyCap))
}

func TestCapDaily_EmptyIsZero(t *testing.T) {
	assert.Equal(t, Points(0), CapDaily(nil, DailyCap))
	assert.Equal(t, Points(0), CapDaily(map[DayKey]Points{}, DailyCap))
	assert.Empty(t, CapByDay(nil, DailyCap))
}

func TestCapDaily_SumOfMins(t *testing.T) {
	rewards := map[DayKey]Points{}
	var want Points
	for i := 0; i < 40; i++ {
		amount := Points(i * 37_000)
		rewards[DayKeyOf(day(2024, time.January, 1, time.Duration(i)*24*time.Hour))] = amount
		want += min(amount, 300_000)
	}

	assert.Equal(t, want, CapDaily(rewards, 300_000))
}

func TestAccumulateDaily_DoesNotMutateInput(t *testing.T) {
	acc := map[DayKey]Points{"2024-05-01": 10}
	events := []stampedItem{
		{at: day(2024, time.May, 1, 0)},
		{at: day(2024, time.May, 2, 0)},
		{at: day(2024, time.May, 2, time.Minute)},
	}

	out := AccumulateDaily(acc, events, 1_000)

	assert.Equal(t, map[DayKey]Points{"2024-05-01": 10}, acc)
	assert.Equal(t, map[DayKey]Points{"2024-05-01": 1_010, "2024-05-02": 2_000}, out)
}

func TestAccumulateDaily_ZeroRateAddsNothing(t *testing.T) {
	out := AccumulateDaily(nil, []stampedItem{{at: day(2024, time.May, 1, 0)}}, 0)

	assert.Empty(t, out)
	assert.NotNil(t, out)
}
