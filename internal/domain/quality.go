package domain

import (
	"strings"
	"unicode/utf8"
)

const (
	// MinQualityPostLength is the exclusive lower bound on post content length.
	MinQualityPostLength = 100

	// MinQualityCommentLength is the exclusive lower bound on comment content length.
	MinQualityCommentLength = 20

	// MinLivestreamSeconds is the shortest session that counts as a livestream.
	MinLivestreamSeconds = 300
)

// post types eligible for the quality post reward.
const (
	PostTypePost    = "post"
	PostTypeProduct = "product"
)

// QualityPost is the part of a post or product listing the quality gate looks at.
type QualityPost struct {
	Content  string
	Images   []string
	VideoURL string
	PostType string
}

// IsQuality reports whether the post earns the quality post reward:
// more than MinQualityPostLength runes of content once surrounding whitespace
// is trimmed, at least one real media item, and a rewardable type.
func (p QualityPost) IsQuality() bool {
	if contentLength(p.Content) <= MinQualityPostLength {
		return false
	}
	if !HasNonBlankEntries(p.Images) && strings.TrimSpace(p.VideoURL) == "" {
		return false
	}
	return p.PostType == PostTypePost || p.PostType == PostTypeProduct
}

// QualityComment is the part of a comment the quality gate looks at.
type QualityComment struct {
	Content string
}

// IsQuality reports whether the comment is long enough to be rewarded:
// more than MinQualityCommentLength runes once surrounding whitespace is trimmed.
func (c QualityComment) IsQuality() bool {
	return contentLength(c.Content) > MinQualityCommentLength
}

// LivestreamSession is the part of a livestream the validity gate looks at.
type LivestreamSession struct {
	DurationSeconds int
}

// IsValid reports whether the session lasted long enough.
func (s LivestreamSession) IsValid() bool {
	return s.DurationSeconds >= MinLivestreamSeconds
}

// IsQualityPost is the package-level form of QualityPost.IsQuality.
func IsQualityPost(p QualityPost) bool {
	return p.IsQuality()
}

// IsQualityComment is the package-level form of QualityComment.IsQuality.
func IsQualityComment(c QualityComment) bool {
	return c.IsQuality()
}

// IsValidLivestream is the package-level form of LivestreamSession.IsValid.
func IsValidLivestream(s LivestreamSession) bool {
	return s.IsValid()
}

// HasNonBlankEntries reports whether at least one entry is not empty or whitespace.
// guards against payloads like images: [""].
func HasNonBlankEntries(entries []string) bool {
	for _, e := range entries {
		if strings.TrimSpace(e) != "" {
			return true
		}
	}
	return false
}

// contentLength counts runes, not bytes, after trimming surrounding whitespace.
func contentLength(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}
