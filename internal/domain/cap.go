package domain

import "maps"

// AccumulateDaily adds rate for every event to its local day.
// acc is left untouched; the result is a new map.
func AccumulateDaily[T Timestamped](acc map[DayKey]Points, events []T, rate Points) map[DayKey]Points {
	out := make(map[DayKey]Points, len(acc))
	maps.Copy(out, acc)

	if rate == 0 {
		return out
	}
	for _, e := range events {
		out[DayKeyOf(e.OccurredAt())] += rate
	}
	return out
}

// CapByDay clips every day's amount to ceiling. days are independent.
func CapByDay(rewardsByDay map[DayKey]Points, ceiling Points) map[DayKey]Points {
	capped := make(map[DayKey]Points, len(rewardsByDay))
	for day, amount := range rewardsByDay {
		capped[day] = amount.Min(ceiling)
	}
	return capped
}

// CapDaily returns the sum over all days of min(amount, ceiling).
// an empty map sums to zero.
func CapDaily(rewardsByDay map[DayKey]Points, ceiling Points) Points {
	var total Points
	for _, amount := range rewardsByDay {
		total += amount.Min(ceiling)
	}
	return total
}
