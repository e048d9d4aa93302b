package domain

// the records below are what the activity log hands over for one user.
// timestamps are still the raw upstream text; parsing is part of gating
// so that a single bad row can be dropped without failing the user.

// ContentRecord is a post or a product listing authored by the user.
type ContentRecord struct {
	ID        EventID
	AuthorID  UserID
	Content   string
	Images    []string
	VideoURL  string
	PostType  string
	CreatedAt string
}

// Quality returns the fields the quality gate evaluates.
func (r ContentRecord) Quality() QualityPost {
	return QualityPost{
		Content:  r.Content,
		Images:   r.Images,
		VideoURL: r.VideoURL,
		PostType: r.PostType,
	}
}

// InteractionRecord is a like, comment or share received on the user's content.
// Content is only meaningful for comments.
type InteractionRecord struct {
	ID        EventID
	ActorID   UserID
	TargetID  EventID
	Source    ContentSource
	Content   string
	CreatedAt string
}

// FriendshipRecord is an accepted friendship between the user and FriendID.
type FriendshipRecord struct {
	ID        EventID
	FriendID  UserID
	CreatedAt string
}

// LivestreamRecord is a livestream session hosted by the user.
type LivestreamRecord struct {
	ID              EventID
	HostID          UserID
	DurationSeconds int
	CreatedAt       string
}

// Session returns the fields the livestream validity gate evaluates.
func (r LivestreamRecord) Session() LivestreamSession {
	return LivestreamSession{DurationSeconds: r.DurationSeconds}
}

// UserProfile carries the per-user flags the composer needs.
type UserProfile struct {
	ID                  UserID
	WelcomeBonusClaimed bool
	WalletBonusClaimed  bool

	// LiveBalance is the balance maintained by the live crediting triggers.
	// nil when the source does not expose it.
	LiveBalance *Points
}

// UserActivity is the full activity history of one user.
type UserActivity struct {
	Profile     UserProfile
	Posts       []ContentRecord
	Products    []ContentRecord
	Livestreams []LivestreamRecord
	Likes       []InteractionRecord
	Comments    []InteractionRecord
	Shares      []InteractionRecord
	Friendships []FriendshipRecord
}
