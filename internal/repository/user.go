package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"chocoapi/internal/apperror"
	"chocoapi/internal/model"
)

const userColumns = `id, username, full_name, profile_pic_id, email_id, passwd_hash, active, created_at, updated_at`

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user and returns the stored row
func (r *userRepository) Create(ctx context.Context, u model.InsertableUser, passwdHash string) (*model.User, error) {
	query := `
		INSERT INTO users (username, full_name, profile_pic_id, email_id, passwd_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	var user model.User
	err := r.db.QueryRowxContext(ctx, query,
		u.Username(),
		u.FullName(),
		u.ProfilePicID(),
		u.EmailID(),
		passwdHash,
	).StructScan(&user)
	if err != nil {
		return nil, apperror.Persistence(fmt.Errorf("failed to insert user: %w", err))
	}

	return &user, nil
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByUsername retrieves a user by their username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*model.User, error) {
	var u model.User
	if err := r.db.GetContext(ctx, &u, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, apperror.Persistence(fmt.Errorf("failed to get user: %w", err))
	}
	return &u, nil
}
