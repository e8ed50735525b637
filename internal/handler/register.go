package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"chocoapi/internal/apperror"
	"chocoapi/internal/httputil"
	"chocoapi/internal/logging"
	"chocoapi/internal/metrics"
	"chocoapi/internal/model"
)

// DefaultMaxBodyBytes caps a registration form: a full-size image plus
// room for the text fields.
const DefaultMaxBodyBytes = model.DefaultMaxImageBytes + 1024*1024

// Validation messages added by the handler on top of the builder's.
const (
	MessageInvalidField      = "Invalid field"
	MessageEmailRegistered   = "already registered"
	MessageUsernameTaken     = "already taken"
	constraintEmailAddress   = "emails_address_key"
	constraintUniqueUsername = "users_username_key"
	constraintUniqueEmailID  = "users_email_id_key"
)

type EmailCreator interface {
	CreateEmail(ctx context.Context, address string) (uuid.UUID, error)
}

type ImageCreator interface {
	CreateImage(ctx context.Context, mimeType string, data []byte) (uuid.UUID, error)
}

type UserCreator interface {
	CreateUser(ctx context.Context, user model.InsertableUser) (*model.User, error)
}

// RegisterHandler serves POST /register.
type RegisterHandler struct {
	emails       EmailCreator
	images       ImageCreator
	users        UserCreator
	maxBodyBytes int64
	metrics      *metrics.Metrics
}

// NewRegisterHandler wires the collaborators. maxBodyBytes <= 0 uses
// DefaultMaxBodyBytes; m may be nil.
func NewRegisterHandler(emails EmailCreator, images ImageCreator, users UserCreator, maxBodyBytes int64, m *metrics.Metrics) *RegisterHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &RegisterHandler{
		emails:       emails,
		images:       images,
		users:        users,
		maxBodyBytes: maxBodyBytes,
		metrics:      m,
	}
}

var errBodyTooLarge = errors.New("request body too large")

// Register streams the multipart form, creating the email and profile
// picture as their parts arrive, then creates the user.
func (h *RegisterHandler) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	reader, err := r.MultipartReader()
	if err != nil {
		h.metrics.ObserveRegistration(metrics.OutcomeRejected)
		httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
		return
	}

	user, err := h.register(r.Context(), reader)
	if err != nil {
		if errors.Is(err, errBodyTooLarge) {
			h.metrics.ObserveRegistration(metrics.OutcomeRejected)
			httputil.WriteTooLarge(w, fmt.Sprintf("Request body exceeds %d bytes", h.maxBodyBytes))
			return
		}
		if apperror.From(err).Kind() == apperror.KindUnprocessableEntity {
			h.metrics.ObserveRegistration(metrics.OutcomeRejected)
		} else {
			h.metrics.ObserveRegistration(metrics.OutcomeFailed)
		}
		apperror.Write(w, r, err)
		return
	}

	h.metrics.ObserveRegistration(metrics.OutcomeCreated)
	logging.FromContext(r.Context()).Info("user registered", "user_id", user.ID, "username", user.Username)
	httputil.WriteJSON(w, http.StatusCreated, user)
}

func (h *RegisterHandler) register(ctx context.Context, reader *multipart.Reader) (*model.User, error) {
	builder := model.NewInsertableUserBuilder()
	streamErrs := apperror.NewFieldErrors()
	picRejected := false

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, readError(err)
		}

		name := part.FormName()
		if name == "" {
			part.Close()
			continue
		}

		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return nil, readError(err)
		}

		switch name {
		case model.FieldUsername, model.FieldPassword, model.FieldFullName:
			text, err := textValue(name, data)
			if err != nil {
				return nil, err
			}
			switch name {
			case model.FieldUsername:
				builder.WithUsername(strings.TrimSpace(text))
			case model.FieldPassword:
				builder.WithPassword(text)
			default:
				builder.WithFullName(text)
			}

		case model.FieldEmail:
			text, err := textValue(name, data)
			if err != nil {
				return nil, err
			}
			address := strings.TrimSpace(text)
			if address == "" {
				continue
			}
			id, err := h.emails.CreateEmail(ctx, address)
			if err != nil {
				return nil, apperror.OnConstraint(err, constraintEmailAddress, func(*pq.Error) *apperror.Error {
					return apperror.UnprocessableEntity(
						apperror.NewFieldErrors().AddError(model.FieldEmail, MessageEmailRegistered))
				})
			}
			builder.WithEmailID(id)

		case model.FieldProfilePic:
			id, err := h.images.CreateImage(ctx, part.Header.Get("Content-Type"), data)
			switch {
			case errors.Is(err, model.ErrInvalidImageType):
				streamErrs.AddError(model.FieldProfilePic, model.MessageUnsupportedImageType)
				picRejected = true
			case errors.Is(err, model.ErrFileTooLarge):
				streamErrs.AddError(model.FieldProfilePic, model.MessageFileTooLarge)
				picRejected = true
			case err != nil:
				return nil, err
			default:
				builder.WithProfilePicID(id)
			}

		default:
			logging.FromContext(ctx).Warn("unknown field in registration form", "field", name)
			streamErrs.AddError(name, MessageInvalidField)
		}
	}

	insertable, buildErrs := builder.Build()
	if buildErrs != nil {
		return nil, apperror.UnprocessableEntity(streamErrs.Merge(buildErrs))
	}
	if picRejected {
		return nil, apperror.UnprocessableEntity(streamErrs)
	}

	user, err := h.users.CreateUser(ctx, insertable)
	if err != nil {
		err = apperror.OnConstraint(err, constraintUniqueUsername, func(*pq.Error) *apperror.Error {
			return apperror.UnprocessableEntity(
				apperror.NewFieldErrors().AddError(model.FieldUsername, MessageUsernameTaken))
		})
		// another registration claimed the same address row first
		return nil, apperror.OnConstraint(err, constraintUniqueEmailID, func(*pq.Error) *apperror.Error {
			return apperror.UnprocessableEntity(
				apperror.NewFieldErrors().AddError(model.FieldEmail, MessageEmailRegistered))
		})
	}
	return user, nil
}

func readError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errBodyTooLarge
	}
	return apperror.Internal(fmt.Errorf("failed to read multipart body: %w", err))
}

func textValue(name string, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", apperror.Internal(fmt.Errorf("field %s is not valid UTF-8", name))
	}
	return string(data), nil
}
