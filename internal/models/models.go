package models

import (
	"time"

	"github.com/google/uuid"
)

// Base holds the fields shared by every persisted entity.
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Author is the identity snapshot stamped onto owned records at creation
// time. It is copied, never joined, so a later username change does not
// propagate to existing campgrounds or comments.
type Author struct {
	ID       uuid.UUID `json:"id" db:"author_id"`
	Username string    `json:"username" db:"author_username"`
}
