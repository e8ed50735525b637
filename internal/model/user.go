package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// User represents a persisted user
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	FullName     *string    `db:"full_name" json:"full_name"`
	ProfilePicID *uuid.UUID `db:"profile_pic_id" json:"profile_pic_id"`
	EmailID      uuid.UUID  `db:"email_id" json:"email_id"`
	PasswdHash   string     `db:"passwd_hash" json:"-"` // "-" hides from JSON output
	Active       bool       `db:"active" json:"active"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// InsertableUser is a validated user ready to be persisted. It can only be
// obtained from InsertableUserBuilder.Build.
type InsertableUser struct {
	username     string
	fullName     *string
	profilePicID *uuid.UUID
	emailID      uuid.UUID
	password     string
}

func (u InsertableUser) Username() string { return u.username }

// FullName returns nil when no full name was given.
func (u InsertableUser) FullName() *string {
	if u.fullName == nil {
		return nil
	}
	name := *u.fullName
	return &name
}

// ProfilePicID returns nil when no profile picture was uploaded.
func (u InsertableUser) ProfilePicID() *uuid.UUID {
	if u.profilePicID == nil {
		return nil
	}
	id := *u.profilePicID
	return &id
}

func (u InsertableUser) EmailID() uuid.UUID { return u.emailID }

// Password returns the plain password; it must be hashed before storage.
func (u InsertableUser) Password() string { return u.password }

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailNotFound is returned when an email cannot be found
	ErrEmailNotFound = errors.New("email not found")
)
