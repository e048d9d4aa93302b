package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQualityPost_IsQuality(t *testing.T) {
	long := strings.Repeat("a", MinQualityPostLength+1)
	exact := strings.Repeat("a", MinQualityPostLength)
	image := []string{"https://cdn.example.com/a.jpg"}

	tests := []struct {
		name string
		post QualityPost
		want bool
	}{
		{"long_with_image", QualityPost{Content: long, Images: image, PostType: PostTypePost}, true},
		{"long_with_video", QualityPost{Content: long, VideoURL: "https://cdn.example.com/a.mp4", PostType: PostTypePost}, true},
		{"product_listing", QualityPost{Content: long, Images: image, PostType: PostTypeProduct}, true},
		{"exactly_min_length", QualityPost{Content: exact, Images: image, PostType: PostTypePost}, false},
		{"padding_does_not_count", QualityPost{Content: "  " + exact + "  ", Images: image, PostType: PostTypePost}, false},
		{"no_media", QualityPost{Content: long, PostType: PostTypePost}, false},
		{"blank_image_entry", QualityPost{Content: long, Images: []string{""}, PostType: PostTypePost}, false},
		{"whitespace_entries", QualityPost{Content: long, Images: []string{" ", "\t"}, VideoURL: "  ", PostType: PostTypePost}, false},
		{"one_real_image_among_blanks", QualityPost{Content: long, Images: []string{"", "https://cdn.example.com/b.png"}, PostType: PostTypePost}, true},
		{"livestream_type", QualityPost{Content: long, Images: image, PostType: "livestream"}, false},
		{"empty_type", QualityPost{Content: long, Images: image}, false},
		{"multibyte_counts_characters", QualityPost{Content: strings.Repeat("é", MinQualityPostLength), Images: image, PostType: PostTypePost}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.post.IsQuality())
			assert.Equal(t, tt.want, IsQualityPost(tt.post))
		})
	}
}

func TestQualityComment_IsQuality(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"empty", "", false},
		{"exactly_min", strings.Repeat("a", MinQualityCommentLength), false},
		{"one_over_min", strings.Repeat("a", MinQualityCommentLength+1), true},
		{"padded_short", "   short comment       ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsQualityComment(QualityComment{Content: tt.content}))
		})
	}
}

func TestLivestreamSession_IsValid(t *testing.T) {
	assert.False(t, IsValidLivestream(LivestreamSession{DurationSeconds: 0}))
	assert.False(t, IsValidLivestream(LivestreamSession{DurationSeconds: MinLivestreamSeconds - 1}))
	assert.True(t, IsValidLivestream(LivestreamSession{DurationSeconds: MinLivestreamSeconds}))
	assert.True(t, IsValidLivestream(LivestreamSession{DurationSeconds: 3600}))
}

func TestHasNonBlankEntries(t *testing.T) {
	assert.False(t, HasNonBlankEntries(nil))
	assert.False(t, HasNonBlankEntries([]string{}))
	assert.False(t, HasNonBlankEntries([]string{""}))
	assert.False(t, HasNonBlankEntries([]string{" ", "\n"}))
	assert.True(t, HasNonBlankEntries([]string{"", "x"}))
}
