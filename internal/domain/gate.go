package domain

import "time"

// DropReason says why an upstream record did not become a rewardable event.
type DropReason string

const (
	DropMalformedTimestamp DropReason = "malformed_timestamp"
	DropInvalidActor       DropReason = "invalid_actor"
	DropBelowQuality       DropReason = "below_quality"
	DropInvalidLivestream  DropReason = "invalid_livestream"
	DropInvalidRecord      DropReason = "invalid_record"
)

// DroppedEvent records a filtered upstream record.
type DroppedEvent struct {
	EventID  EventID
	Category Category
	Reason   DropReason
	Detail   string
}

// DropSummary counts dropped records by reason.
type DropSummary struct {
	MalformedTimestamp int `json:"malformed_timestamp"`
	InvalidActor       int `json:"invalid_actor"`
	BelowQuality       int `json:"below_quality"`
	InvalidLivestream  int `json:"invalid_livestream"`
	InvalidRecord      int `json:"invalid_record"`
}

// Summarize counts drops by reason.
func Summarize(dropped []DroppedEvent) DropSummary {
	var s DropSummary
	for _, d := range dropped {
		switch d.Reason {
		case DropMalformedTimestamp:
			s.MalformedTimestamp++
		case DropInvalidActor:
			s.InvalidActor++
		case DropBelowQuality:
			s.BelowQuality++
		case DropInvalidLivestream:
			s.InvalidLivestream++
		case DropInvalidRecord:
			s.InvalidRecord++
		}
	}
	return s
}

// SourceEvents holds one category's gated events split by content source.
// friendships have no content source and live under the empty source.
type SourceEvents map[ContentSource][]ActivityEvent

// GatedActivity is a user's activity after parsing, validity and quality gates,
// not yet pooled or limited.
type GatedActivity map[Category]SourceEvents

func (g GatedActivity) add(e ActivityEvent) {
	bySource, ok := g[e.Category()]
	if !ok {
		bySource = make(SourceEvents)
		g[e.Category()] = bySource
	}
	bySource[e.Source()] = append(bySource[e.Source()], e)
}

type gate struct {
	invalid ActorSet
	gated   GatedActivity
	dropped []DroppedEvent
}

func (g *gate) drop(id EventID, c Category, reason DropReason, detail string) {
	g.dropped = append(g.dropped, DroppedEvent{EventID: id, Category: c, Reason: reason, Detail: detail})
}

// check parses the timestamp and validates the actor.
// returns false when the record was dropped.
func (g *gate) check(id EventID, actor UserID, c Category, rawTime string) (time.Time, bool) {
	createdAt, err := ParseTimestamp(rawTime)
	if err != nil {
		g.drop(id, c, DropMalformedTimestamp, err.Error())
		return time.Time{}, false
	}
	if g.invalid.Contains(actor) {
		g.drop(id, c, DropInvalidActor, actor.String())
		return time.Time{}, false
	}
	return createdAt, true
}

func (g *gate) admit(id EventID, actor UserID, target *EventID, c Category, src ContentSource, createdAt time.Time) {
	event, err := NewActivityEvent(id, actor, target, c, src, createdAt)
	if err != nil {
		g.drop(id, c, DropInvalidRecord, err.Error())
		return
	}
	g.gated.add(event)
}

// GateActivity turns raw records into reward-eligible events.
//
// per record, in order: the timestamp must parse, the actor must not be in
// invalid, and the record must pass its quality predicate. interactions on a
// livestream only count when the target session is itself valid.
// each dropped record is reported once, with the first failing reason.
func GateActivity(activity *UserActivity, invalid ActorSet) (GatedActivity, []DroppedEvent) {
	g := &gate{invalid: invalid, gated: make(GatedActivity)}
	if activity == nil {
		return g.gated, nil
	}

	g.gateContent(activity.Posts, SourcePost)
	g.gateContent(activity.Products, SourceProduct)

	validStreams := make(map[EventID]bool, len(activity.Livestreams))
	for _, r := range activity.Livestreams {
		validStreams[r.ID] = r.Session().IsValid()
	}
	for _, r := range activity.Livestreams {
		createdAt, ok := g.check(r.ID, r.HostID, CategoryLivestream, r.CreatedAt)
		if !ok {
			continue
		}
		if !validStreams[r.ID] {
			g.drop(r.ID, CategoryLivestream, DropInvalidLivestream, "session too short")
			continue
		}
		g.admit(r.ID, r.HostID, nil, CategoryLivestream, SourceLivestream, createdAt)
	}

	g.gateInteractions(activity.Likes, CategoryLike, validStreams)
	g.gateInteractions(activity.Comments, CategoryComment, validStreams)
	g.gateInteractions(activity.Shares, CategoryShare, validStreams)

	for _, r := range activity.Friendships {
		createdAt, ok := g.check(r.ID, r.FriendID, CategoryFriendship, r.CreatedAt)
		if !ok {
			continue
		}
		g.admit(r.ID, r.FriendID, nil, CategoryFriendship, "", createdAt)
	}

	return g.gated, g.dropped
}

func (g *gate) gateContent(records []ContentRecord, src ContentSource) {
	for _, r := range records {
		createdAt, ok := g.check(r.ID, r.AuthorID, CategoryPost, r.CreatedAt)
		if !ok {
			continue
		}
		if !r.Quality().IsQuality() {
			g.drop(r.ID, CategoryPost, DropBelowQuality, r.PostType)
			continue
		}
		g.admit(r.ID, r.AuthorID, nil, CategoryPost, src, createdAt)
	}
}

func (g *gate) gateInteractions(records []InteractionRecord, c Category, validStreams map[EventID]bool) {
	for _, r := range records {
		createdAt, ok := g.check(r.ID, r.ActorID, c, r.CreatedAt)
		if !ok {
			continue
		}
		if r.Source == SourceLivestream && !validStreams[r.TargetID] {
			g.drop(r.ID, c, DropInvalidLivestream, r.TargetID.String())
			continue
		}
		if c == CategoryComment && !(QualityComment{Content: r.Content}).IsQuality() {
			g.drop(r.ID, c, DropBelowQuality, "comment too short")
			continue
		}
		target := r.TargetID
		g.admit(r.ID, r.ActorID, &target, c, r.Source, createdAt)
	}
}
