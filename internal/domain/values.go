package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// UserID represents a unique identifier for a user.
// wrapping uuid to enforce type safety and prevent mixing with other ids.
type UserID struct {
	value uuid.UUID
}

// NewUserID creates a new random UserID.
func NewUserID() UserID {
	return UserID{value: uuid.New()}
}

// ParseUserID parses a string into a UserID.
func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, fmt.Errorf("invalid user id: %w", err)
	}
	return UserID{value: id}, nil
}

// UserIDFromUUID creates a UserID from an existing uuid.
func UserIDFromUUID(id uuid.UUID) UserID {
	return UserID{value: id}
}

// String returns the string representation of the UserID.
func (id UserID) String() string {
	return id.value.String()
}

// UUID returns the underlying uuid value.
func (id UserID) UUID() uuid.UUID {
	return id.value
}

// IsZero returns true if the UserID is not set.
func (id UserID) IsZero() bool {
	return id.value == uuid.Nil
}

// EventID identifies a single upstream activity row (post, like, session...).
type EventID struct {
	value uuid.UUID
}

// NewEventID creates a new random EventID.
func NewEventID() EventID {
	return EventID{value: uuid.New()}
}

// ParseEventID parses a string into an EventID.
func ParseEventID(s string) (EventID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return EventID{}, fmt.Errorf("invalid event id: %w", err)
	}
	return EventID{value: id}, nil
}

// EventIDFromUUID creates an EventID from an existing uuid.
func EventIDFromUUID(id uuid.UUID) EventID {
	return EventID{value: id}
}

// String returns the string representation of the EventID.
func (id EventID) String() string {
	return id.value.String()
}

// UUID returns the underlying uuid value.
func (id EventID) UUID() uuid.UUID {
	return id.value
}

// IsZero returns true if the EventID is not set.
func (id EventID) IsZero() bool {
	return id.value == uuid.Nil
}

// Points is an integral reward amount.
// the whole engine works in whole points, there is no fractional reward.
type Points int64

// Int64 returns the raw amount.
func (p Points) Int64() int64 {
	return int64(p)
}

// Min returns the smaller of p and other.
func (p Points) Min(other Points) Points {
	if other < p {
		return other
	}
	return p
}

// ActorSet is a lookup of user ids whose activity must not count,
// typically banned or deleted accounts.
type ActorSet map[UserID]struct{}

// NewActorSet builds an ActorSet from a list of ids.
func NewActorSet(ids ...UserID) ActorSet {
	set := make(ActorSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Contains reports whether id is in the set. safe on a nil set.
func (s ActorSet) Contains(id UserID) bool {
	_, ok := s[id]
	return ok
}
