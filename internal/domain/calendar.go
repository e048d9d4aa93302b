package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// LocalDayOffset is the fixed offset of the reward calendar (UTC+7).
// there is no DST and no dependency on the host timezone.
const LocalDayOffset = 7 * time.Hour

const dayKeyLayout = "2006-01-02"

// DayKey is a YYYY-MM-DD local calendar day.
// lexical order of keys matches chronological order.
type DayKey string

// DayKeyOf returns the local calendar day of an instant.
// shifts the instant by LocalDayOffset and reads the date in UTC,
// so 17:00 UTC is already the next local day.
func DayKeyOf(t time.Time) DayKey {
	return DayKey(t.UTC().Add(LocalDayOffset).Format(dayKeyLayout))
}

// String returns the string representation of the DayKey.
func (k DayKey) String() string {
	return string(k)
}

var ErrMalformedTimestamp = errors.New("malformed timestamp")

// accepted upstream layouts, most common first.
// zone-less layouts are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02T15:04:05.999999999Z07",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp parses an upstream created_at value into a UTC instant.
func ParseTimestamp(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrMalformedTimestamp)
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, raw)
}
