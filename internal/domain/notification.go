package domain

import (
	"context"
	"time"
)

// DiscrepancyAlert reports a user whose live balance disagrees with the recomputation.
type DiscrepancyAlert struct {
	UserID          string
	LiveBalance     Points
	RecomputedTotal Points
	Discrepancy     Points
	DetectedAt      time.Time
}

// DiscrepancyThresholds defines when a discrepancy is worth an alert.
type DiscrepancyThresholds struct {
	// MinAbsolute is the smallest |live - recomputed| that alerts.
	MinAbsolute Points
}

// DefaultDiscrepancyThresholds alerts on any difference.
func DefaultDiscrepancyThresholds() DiscrepancyThresholds {
	return DiscrepancyThresholds{MinAbsolute: 1}
}

// IsSignificant returns true if the discrepancy reaches the threshold, in either direction.
func (t DiscrepancyThresholds) IsSignificant(discrepancy Points) bool {
	if discrepancy < 0 {
		discrepancy = -discrepancy
	}
	return discrepancy != 0 && discrepancy >= t.MinAbsolute
}

// AlertFor builds the alert of a breakdown.
// returns false when the live balance is unknown or below the threshold.
func (t DiscrepancyThresholds) AlertFor(b RewardBreakdown, now time.Time) (DiscrepancyAlert, bool) {
	if b.LiveBalance == nil || b.Discrepancy == nil || !t.IsSignificant(*b.Discrepancy) {
		return DiscrepancyAlert{}, false
	}
	return DiscrepancyAlert{
		UserID:          b.UserID,
		LiveBalance:     *b.LiveBalance,
		RecomputedTotal: b.Total,
		Discrepancy:     *b.Discrepancy,
		DetectedAt:      now.UTC(),
	}, true
}

// NotificationService defines the interface for sending discrepancy alerts.
// implementations handle the actual delivery mechanism (webhooks, etc).
type NotificationService interface {
	// NotifyDiscrepancy queues an alert. delivery is asynchronous.
	NotifyDiscrepancy(ctx context.Context, alert DiscrepancyAlert) error

	// Thresholds returns the configured alert thresholds.
	Thresholds() DiscrepancyThresholds
}
