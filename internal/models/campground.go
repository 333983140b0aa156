package models

import (
	"time"

	"github.com/google/uuid"
)

// Campground is a listing. The author fields are a snapshot taken at
// creation; ownership checks compare the snapshot, not a live user lookup.
type Campground struct {
	Base
	Name        string      `json:"name" db:"name"`
	Description string      `json:"description" db:"description"`
	Location    string      `json:"location" db:"location"`
	Price       float64     `json:"price" db:"price"`
	ImageURL    string      `json:"image_url" db:"image_url"`
	ImageID     string      `json:"image_id" db:"image_id"`
	Author      Author      `json:"author"`
	CommentIDs  []uuid.UUID `json:"comment_ids" db:"comment_ids"`
	Comments    []*Comment  `json:"comments,omitempty"`
}

// NewCampground assembles a campground owned by author.
func NewCampground(name, description, location string, price float64, imageURL, imageID string, author Author) *Campground {
	return &Campground{
		Base: Base{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		Name:        name,
		Description: description,
		Location:    location,
		Price:       price,
		ImageURL:    imageURL,
		ImageID:     imageID,
		Author:      author,
	}
}

// EditableBy reports whether u may modify or delete this campground.
func (c *Campground) EditableBy(u *User) bool {
	if u == nil {
		return false
	}
	return c.Author.ID == u.ID || u.IsAdmin
}
