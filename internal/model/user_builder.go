package model

import (
	"github.com/google/uuid"

	"chocoapi/internal/apperror"
)

// MessageMissingField is reported for every absent required field.
const MessageMissingField = "Missing field"

// Registration form field names.
const (
	FieldUsername   = "username"
	FieldPassword   = "password"
	FieldFullName   = "full_name"
	FieldEmail      = "email"
	FieldProfilePic = "profile_pic"
)

// InsertableUserBuilder stages the fields of a user being registered. Each
// setter overwrites the previous value. Required fields are only checked by
// Build.
type InsertableUserBuilder struct {
	username     string
	fullName     *string
	profilePicID *uuid.UUID
	emailID      *uuid.UUID
	password     string
}

func NewInsertableUserBuilder() *InsertableUserBuilder {
	return &InsertableUserBuilder{}
}

func (b *InsertableUserBuilder) WithUsername(username string) *InsertableUserBuilder {
	b.username = username
	return b
}

// WithPassword stores the plain password. Hashing happens when the user is
// persisted.
func (b *InsertableUserBuilder) WithPassword(password string) *InsertableUserBuilder {
	b.password = password
	return b
}

// WithFullName sets the full name; an empty name clears it.
func (b *InsertableUserBuilder) WithFullName(fullName string) *InsertableUserBuilder {
	if fullName == "" {
		b.fullName = nil
		return b
	}
	b.fullName = &fullName
	return b
}

func (b *InsertableUserBuilder) WithEmailID(id uuid.UUID) *InsertableUserBuilder {
	b.emailID = &id
	return b
}

func (b *InsertableUserBuilder) WithProfilePicID(id uuid.UUID) *InsertableUserBuilder {
	b.profilePicID = &id
	return b
}

// Build validates the staged fields. Every violated constraint is reported,
// always in the order username, password, email. The returned errors are nil
// on success.
func (b *InsertableUserBuilder) Build() (InsertableUser, *apperror.FieldErrors) {
	errs := apperror.NewFieldErrors()

	if b.username == "" {
		errs.AddError(FieldUsername, MessageMissingField)
	}
	if b.password == "" {
		errs.AddError(FieldPassword, MessageMissingField)
	}
	if b.emailID == nil {
		errs.AddError(FieldEmail, MessageMissingField)
	}

	if !errs.IsEmpty() {
		return InsertableUser{}, errs
	}

	user := InsertableUser{
		username: b.username,
		emailID:  *b.emailID,
		password: b.password,
	}
	if b.fullName != nil {
		name := *b.fullName
		user.fullName = &name
	}
	if b.profilePicID != nil {
		id := *b.profilePicID
		user.profilePicID = &id
	}
	return user, nil
}
