package domain

import (
	"strings"
	"time"
)

var (
	testUser   = UserIDFromUUID([16]byte{1})
	otherUser  = UserIDFromUUID([16]byte{2})
	bannedUser = UserIDFromUUID([16]byte{3})
)

// day returns 10:00 local time (03:00 UTC) on the given local date plus offset.
func day(year int, month time.Month, d int, offset time.Duration) time.Time {
	return time.Date(year, month, d, 3, 0, 0, 0, time.UTC).Add(offset)
}

func stamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func qualityPost(at time.Time) ContentRecord {
	return ContentRecord{
		ID:        NewEventID(),
		AuthorID:  testUser,
		Content:   strings.Repeat("x", MinQualityPostLength+1),
		Images:    []string{"https://cdn.example.com/a.jpg"},
		PostType:  PostTypePost,
		CreatedAt: stamp(at),
	}
}

func qualityProduct(at time.Time) ContentRecord {
	r := qualityPost(at)
	r.PostType = PostTypeProduct
	return r
}

func interaction(actor UserID, target EventID, src ContentSource, at time.Time) InteractionRecord {
	return InteractionRecord{
		ID:        NewEventID(),
		ActorID:   actor,
		TargetID:  target,
		Source:    src,
		CreatedAt: stamp(at),
	}
}

func qualityComment(actor UserID, target EventID, src ContentSource, at time.Time) InteractionRecord {
	r := interaction(actor, target, src, at)
	r.Content = strings.Repeat("c", MinQualityCommentLength+1)
	return r
}

// seconds returns n instants one second apart starting at start.
func seconds(start time.Time, n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.Add(time.Duration(i) * time.Second)
	}
	return out
}

type stampedItem struct {
	n  int
	at time.Time
}

func (s stampedItem) OccurredAt() time.Time { return s.at }
