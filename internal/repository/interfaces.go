package repository

import (
	"context"

	"github.com/google/uuid"

	"chocoapi/internal/model"
)

// Every method reports storage failures as *apperror.Error of kind
// Persistence, so handlers can match constraint violations by name.

type EmailRepository interface {
	// Create inserts an unconfirmed address and returns its id
	Create(ctx context.Context, address string) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Email, error)
}

type ImageRepository interface {
	// Create inserts image metadata, filling ID and CreatedAt
	Create(ctx context.Context, image *model.Image) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Image, error)
}

type UserRepository interface {
	// Create inserts the user with an already hashed password
	Create(ctx context.Context, user model.InsertableUser, passwdHash string) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}
