package apperror

import (
	"errors"

	"github.com/lib/pq"
)

// Postgres error class for integrity constraint violations.
const pqClassIntegrityViolation = "23"

// OnConstraint turns a persistence failure caused by the named constraint
// into the error returned by fn. Any other error, nil included, is returned
// unchanged.
//
//	user, err := users.CreateUser(ctx, insertable)
//	err = apperror.OnConstraint(err, "users_username_key", func(*pq.Error) *apperror.Error {
//		return apperror.UnprocessableEntity(apperror.NewFieldErrors().AddError("username", "already taken"))
//	})
func OnConstraint(err error, name string, fn func(*pq.Error) *Error) error {
	if pqErr, ok := ConstraintViolation(err); ok && pqErr.Constraint == name {
		return fn(pqErr)
	}
	return err
}

// ConstraintViolation reports whether err is a persistence failure caused by
// an integrity constraint, returning the driver error.
func ConstraintViolation(err error) (*pq.Error, bool) {
	var appErr *Error
	if !errors.As(err, &appErr) || appErr.kind != KindPersistence {
		return nil, false
	}
	var pqErr *pq.Error
	if !errors.As(appErr.cause, &pqErr) {
		return nil, false
	}
	if pqErr.Code.Class() != pqClassIntegrityViolation || pqErr.Constraint == "" {
		return nil, false
	}
	return pqErr, true
}
