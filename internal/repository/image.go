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

type imageRepository struct {
	db *sqlx.DB
}

func NewImageRepository(db *sqlx.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(ctx context.Context, img *model.Image) error {
	query := `
		INSERT INTO images (mime_type, object_key, size_bytes, width, height)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		img.MimeType,
		img.ObjectKey,
		img.SizeBytes,
		img.Width,
		img.Height,
	).Scan(&img.ID, &img.CreatedAt)
	if err != nil {
		return apperror.Persistence(fmt.Errorf("failed to insert image: %w", err))
	}
	return nil
}

func (r *imageRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Image, error) {
	query := `
		SELECT id, mime_type, object_key, size_bytes, width, height, created_at
		FROM images
		WHERE id = $1
	`

	var img model.Image
	if err := r.db.GetContext(ctx, &img, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrImageNotFound
		}
		return nil, apperror.Persistence(fmt.Errorf("failed to get image by id: %w", err))
	}
	return &img, nil
}
