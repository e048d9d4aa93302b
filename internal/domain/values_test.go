package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserID(t *testing.T) {
	id := NewUserID()

	parsed, err := ParseUserID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseUserID("not-a-uuid")
	assert.Error(t, err)
	assert.True(t, UserID{}.IsZero())
}

func TestParseEventID(t *testing.T) {
	id := NewEventID()

	parsed, err := ParseEventID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseEventID("")
	assert.Error(t, err)
}

func TestCategory_Validation(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"post", true},
		{"like", true},
		{"comment", true},
		{"share", true},
		{"friendship", true},
		{"livestream", true},
		{"product", false},
		{"", false},
		{"POST", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, err := ParseCategory(tt.input)
			if tt.valid {
				require.NoError(t, err)
				assert.Equal(t, tt.input, c.String())
			} else {
				assert.ErrorIs(t, err, ErrInvalidCategory)
			}
		})
	}
}

func TestCategories_FixedOrder(t *testing.T) {
	assert.Equal(t, Categories(), Categories())
	assert.Len(t, Categories(), len(validCategories))
	assert.True(t, CategoryLike.IsInteraction())
	assert.False(t, CategoryFriendship.IsInteraction())
}

func TestParseContentSource(t *testing.T) {
	for _, s := range []string{"post", "product", "livestream"} {
		src, err := ParseContentSource(s)
		require.NoError(t, err)
		assert.Equal(t, s, src.String())
	}
	_, err := ParseContentSource("story")
	assert.ErrorIs(t, err, ErrInvalidContentSource)
}

func TestActorSet(t *testing.T) {
	set := NewActorSet(bannedUser)

	assert.True(t, set.Contains(bannedUser))
	assert.False(t, set.Contains(testUser))
	assert.False(t, ActorSet(nil).Contains(bannedUser))
}

func TestPoints_Min(t *testing.T) {
	assert.Equal(t, Points(5), Points(5).Min(7))
	assert.Equal(t, Points(7), Points(9).Min(7))
}
