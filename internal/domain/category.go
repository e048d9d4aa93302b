package domain

import "errors"

// Category is the reward category an activity event counts towards.
// every category has its own rate and its own daily quota.
type Category string

const (
	CategoryPost       Category = "post"
	CategoryLike       Category = "like"
	CategoryComment    Category = "comment"
	CategoryShare      Category = "share"
	CategoryFriendship Category = "friendship"
	CategoryLivestream Category = "livestream"
)

var ErrInvalidCategory = errors.New("invalid category")

// validCategories for quick lookup.
var validCategories = map[Category]bool{
	CategoryPost:       true,
	CategoryLike:       true,
	CategoryComment:    true,
	CategoryShare:      true,
	CategoryFriendship: true,
	CategoryLivestream: true,
}

// Categories returns every category in a fixed order.
// iterate this instead of a map when output order matters.
func Categories() []Category {
	return []Category{
		CategoryPost,
		CategoryLike,
		CategoryComment,
		CategoryShare,
		CategoryFriendship,
		CategoryLivestream,
	}
}

// ParseCategory validates and returns a Category from a string.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !validCategories[c] {
		return "", ErrInvalidCategory
	}
	return c, nil
}

// String returns the string representation of the Category.
func (c Category) String() string {
	return string(c)
}

// IsValid returns true if the category is valid.
func (c Category) IsValid() bool {
	return validCategories[c]
}

// IsInteraction returns true for categories received from other users on a piece of content.
func (c Category) IsInteraction() bool {
	return c == CategoryLike || c == CategoryComment || c == CategoryShare
}

// ContentSource is the kind of content an event was produced against.
// likes, comments and shares on all sources merge into one pool per category.
type ContentSource string

const (
	SourcePost       ContentSource = "post"
	SourceProduct    ContentSource = "product"
	SourceLivestream ContentSource = "livestream"
)

var ErrInvalidContentSource = errors.New("invalid content source")

// ParseContentSource validates and returns a ContentSource from a string.
func ParseContentSource(s string) (ContentSource, error) {
	switch ContentSource(s) {
	case SourcePost, SourceProduct, SourceLivestream:
		return ContentSource(s), nil
	}
	return "", ErrInvalidContentSource
}

// String returns the string representation of the ContentSource.
func (s ContentSource) String() string {
	return string(s)
}
