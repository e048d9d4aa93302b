package domain

import "context"

// ActivitySource reads a user's historical activity from the upstream log.
// implementations must not modify anything.
type ActivitySource interface {
	// FetchUserActivity returns every record relevant to the user's rewards.
	// returns ErrNotFound if the user does not exist.
	FetchUserActivity(ctx context.Context, userID UserID) (*UserActivity, error)
}

// UserDirectory answers user-level questions the pipeline needs.
type UserDirectory interface {
	// InvalidActors returns banned or deleted users whose activity must not count.
	InvalidActors(ctx context.Context) (ActorSet, error)

	// ListUsersForRecompute returns the users a batch recomputation should cover.
	// limit <= 0 means no limit.
	ListUsersForRecompute(ctx context.Context, limit int) ([]UserID, error)
}
