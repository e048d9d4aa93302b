package domain

import (
	"errors"
	"time"
)

// Timestamped is anything that happened at a known instant.
// the limiter and the pool aggregator only need this capability.
type Timestamped interface {
	OccurredAt() time.Time
}

// ActivityEvent is a gated, timestamp-parsed activity fact.
// events are immutable once created and owned by the upstream activity log.
type ActivityEvent struct {
	id        EventID
	actorID   UserID
	targetID  *EventID // optional, only interactions point at content
	category  Category
	source    ContentSource
	createdAt time.Time
}

var (
	ErrEventIDEmpty       = errors.New("event must have an id")
	ErrEventCategoryEmpty = errors.New("event must have a valid category")
)

// NewActivityEvent creates an ActivityEvent, validating the required fields.
// createdAt is normalized to UTC.
func NewActivityEvent(
	id EventID,
	actorID UserID,
	targetID *EventID,
	category Category,
	source ContentSource,
	createdAt time.Time,
) (ActivityEvent, error) {
	if id.IsZero() {
		return ActivityEvent{}, ErrEventIDEmpty
	}
	if !category.IsValid() {
		return ActivityEvent{}, ErrEventCategoryEmpty
	}

	return ActivityEvent{
		id:        id,
		actorID:   actorID,
		targetID:  targetID,
		category:  category,
		source:    source,
		createdAt: createdAt.UTC(),
	}, nil
}

// ID returns the event's unique identifier.
func (e ActivityEvent) ID() EventID {
	return e.id
}

// ActorID returns the user who performed the activity.
func (e ActivityEvent) ActorID() UserID {
	return e.actorID
}

// TargetID returns the content this event was made against, if any.
func (e ActivityEvent) TargetID() *EventID {
	return e.targetID
}

// Category returns the reward category of this event.
func (e ActivityEvent) Category() Category {
	return e.category
}

// Source returns the content source of this event.
func (e ActivityEvent) Source() ContentSource {
	return e.source
}

// CreatedAt returns when this event happened, in UTC.
func (e ActivityEvent) CreatedAt() time.Time {
	return e.createdAt
}

// OccurredAt implements Timestamped.
func (e ActivityEvent) OccurredAt() time.Time {
	return e.createdAt
}

// DayKey returns the local calendar day this event falls on.
func (e ActivityEvent) DayKey() DayKey {
	return DayKeyOf(e.createdAt)
}
