package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"chocoapi/internal/apperror"
	"chocoapi/internal/model"
)

type emailRepository struct {
	db *sqlx.DB
}

func NewEmailRepository(db *sqlx.DB) EmailRepository {
	return &emailRepository{db: db}
}

// Create inserts address, or hands back the existing row for it when no
// user owns that row yet. An address already owned by a user fails with an
// emails_address_key violation.
func (r *emailRepository) Create(ctx context.Context, address string) (uuid.UUID, error) {
	query := `
		INSERT INTO emails (address) VALUES ($1)
		ON CONFLICT ON CONSTRAINT emails_address_key
		DO UPDATE SET address = EXCLUDED.address
		WHERE NOT EXISTS (SELECT 1 FROM users u WHERE u.email_id = emails.id)
		RETURNING id`

	var id uuid.UUID
	if err := r.db.QueryRowxContext(ctx, query, address).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = &pq.Error{
				Code:       "23505",
				Message:    "duplicate key value violates unique constraint \"emails_address_key\"",
				Table:      "emails",
				Constraint: "emails_address_key",
			}
		}
		return uuid.Nil, apperror.Persistence(fmt.Errorf("failed to insert email: %w", err))
	}
	return id, nil
}

func (r *emailRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Email, error) {
	query := `SELECT id, address, confirmed, created_at FROM emails WHERE id = $1`

	var e model.Email
	if err := r.db.GetContext(ctx, &e, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrEmailNotFound
		}
		return nil, apperror.Persistence(fmt.Errorf("failed to get email by id: %w", err))
	}
	return &e, nil
}
