package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a note left on a campground. Author is the same
// creation-time snapshot as on Campground.
type Comment struct {
	Base
	CampgroundID uuid.UUID `json:"campground_id" db:"campground_id"`
	Body         string    `json:"body" db:"body"`
	Author       Author    `json:"author"`
}

// NewComment assembles a comment on campgroundID authored by author.
func NewComment(campgroundID uuid.UUID, body string, author Author) *Comment {
	return &Comment{
		Base: Base{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		CampgroundID: campgroundID,
		Body:         body,
		Author:       author,
	}
}

// EditableBy reports whether u may modify or delete this comment.
func (k *Comment) EditableBy(u *User) bool {
	if u == nil {
		return false
	}
	return k.Author.ID == u.ID || u.IsAdmin
}
