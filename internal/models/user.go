package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account.
type User struct {
	Base
	Username             string     `json:"username" db:"username"`
	Email                string     `json:"email" db:"email"`
	PasswordHash         string     `json:"-" db:"password_hash"`
	FirstName            string     `json:"first_name" db:"first_name"`
	LastName             string     `json:"last_name" db:"last_name"`
	ImageURL             string     `json:"image_url" db:"image_url"`
	ImageID              string     `json:"image_id" db:"image_id"`
	Bio                  string     `json:"bio" db:"bio"`
	IsAdmin              bool       `json:"is_admin" db:"is_admin"`
	ResetPasswordToken   *string    `json:"-" db:"reset_password_token"`
	ResetPasswordExpires *time.Time `json:"-" db:"reset_password_expires"`
}

// NewUser creates a new user with default values.
func NewUser(username, email, passwordHash string) *User {
	return &User{
		Base: Base{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}
}

// Snapshot returns the denormalized author value stamped onto records this
// user creates.
func (u *User) Snapshot() Author {
	return Author{ID: u.ID, Username: u.Username}
}
