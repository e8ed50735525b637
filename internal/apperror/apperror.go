// Package apperror holds the request-level error taxonomy of the API and its
// mapping to problem-details responses.
//
// Handlers return (or build) an *Error and hand it to Write. Validation
// failures carry a FieldErrors map that is exposed to the client; persistence
// and internal failures carry a cause that is only ever logged.
package apperror

import (
	"errors"
	"net/http"

	"chocoapi/internal/httputil"
	"chocoapi/internal/logging"
)

// Kind discriminates the variants of Error.
type Kind int

const (
	KindUnauthorized Kind = iota + 1
	KindUnprocessableEntity
	KindPersistence
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindUnprocessableEntity:
		return "unprocessable_entity"
	case KindPersistence:
		return "persistence"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Client-facing detail messages.
const (
	MessageUnauthorized        = "Autenticación Requerida"
	MessageUnprocessableEntity = "error in the request body"
	MessagePersistence         = "Un error ocurrió con la base de datos."
	MessageInternal            = "Un error interno ocurrió en el servidor."
)

// AuthenticateChallenge is sent in the WWW-Authenticate header of 401 responses.
const AuthenticateChallenge = "Token"

// Error is a request-level failure. Only the payload matching its Kind is set.
type Error struct {
	kind   Kind
	fields *FieldErrors
	cause  error
}

func Unauthorized() *Error {
	return &Error{kind: KindUnauthorized}
}

// UnprocessableEntity reports one or more field-level validation failures.
func UnprocessableEntity(fields *FieldErrors) *Error {
	if fields == nil {
		fields = NewFieldErrors()
	}
	return &Error{kind: KindUnprocessableEntity, fields: fields}
}

// Persistence wraps a storage-layer failure.
func Persistence(cause error) *Error {
	return &Error{kind: KindPersistence, cause: cause}
}

// Internal wraps any other unexpected failure.
func Internal(cause error) *Error {
	return &Error{kind: KindInternal, cause: cause}
}

// From returns the *Error found in err's chain, or wraps err as Internal.
// A nil err yields nil.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

func (e *Error) Kind() Kind { return e.kind }

// Fields returns the validation failures of an UnprocessableEntity error.
func (e *Error) Fields() *FieldErrors { return e.fields }

// Detail is the message safe to show to clients.
func (e *Error) Detail() string {
	switch e.kind {
	case KindUnauthorized:
		return MessageUnauthorized
	case KindUnprocessableEntity:
		return MessageUnprocessableEntity
	case KindPersistence:
		return MessagePersistence
	default:
		return MessageInternal
	}
}

// Error includes the cause, so it must never be sent to a client.
func (e *Error) Error() string {
	if e.cause != nil {
		return e.Detail() + ": " + e.cause.Error()
	}
	return e.Detail()
}

func (e *Error) Unwrap() error { return e.cause }

// StatusCode returns the HTTP status for the error.
func (e *Error) StatusCode() int {
	switch e.kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindUnprocessableEntity:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Problem builds the problem document describing e.
func (e *Error) Problem() *httputil.Problem {
	problem := httputil.NewProblem(e.StatusCode()).WithDetail(e.Detail())
	for field, messages := range e.fields.All() {
		problem.WithExtension(field, messages)
	}
	return problem
}

// Write renders err as a problem response. Causes of persistence and internal
// failures are logged, never written.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	appErr := From(err)
	if appErr == nil {
		return
	}

	logger := logging.FromContext(r.Context())
	switch appErr.kind {
	case KindUnauthorized:
		w.Header().Add("WWW-Authenticate", AuthenticateChallenge)
	case KindPersistence:
		logger.Error("database error", "error", appErr.cause)
	case KindInternal:
		logger.Error("internal error", "error", appErr.cause)
	}

	httputil.WriteProblem(w, appErr.Problem())
}
