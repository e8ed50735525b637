package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // registers the webp decoder used by imaging.Decode

	"chocoapi/internal/apperror"
	"chocoapi/internal/model"
	"chocoapi/internal/repository"
	"chocoapi/internal/storage"
)

// ImageService normalizes uploaded profile pictures, stores them in the
// object store and records their metadata.
type ImageService struct {
	repo     repository.ImageRepository
	store    storage.ObjectStore
	maxBytes int64
}

// NewImageService rejects uploads larger than maxBytes; zero means
// model.DefaultMaxImageBytes.
func NewImageService(repo repository.ImageRepository, store storage.ObjectStore, maxBytes int64) *ImageService {
	if maxBytes <= 0 {
		maxBytes = model.DefaultMaxImageBytes
	}
	return &ImageService{repo: repo, store: store, maxBytes: maxBytes}
}

// CreateImage validates the upload, normalizes it to a 200x200 JPEG and
// stores it. Oversized uploads fail with model.ErrFileTooLarge and
// unsupported ones with model.ErrInvalidImageType.
func (s *ImageService) CreateImage(ctx context.Context, mimeType string, data []byte) (uuid.UUID, error) {
	if int64(len(data)) > s.maxBytes {
		return uuid.Nil, model.ErrFileTooLarge
	}

	mimeType = normalizeContentType(mimeType, data)
	if !model.IsAllowedImageType(mimeType) {
		return uuid.Nil, model.ErrInvalidImageType
	}

	jpegBytes, err := resizeToJPEG(data, model.ProfilePicWidth, model.ProfilePicHeight, model.ProfilePicJPEGQuality)
	if err != nil {
		return uuid.Nil, apperror.Internal(err)
	}

	key := fmt.Sprintf("%s/%s%s", model.ProfilePicFolder, uuid.NewString(), model.ProfilePicExt)
	if err := s.store.Put(ctx, key, jpegBytes, model.ContentTypeJPEG, model.ProfilePicCacheControl); err != nil {
		return uuid.Nil, apperror.Internal(err)
	}

	img := &model.Image{
		MimeType:  model.ContentTypeJPEG,
		ObjectKey: key,
		SizeBytes: int64(len(jpegBytes)),
		Width:     model.ProfilePicWidth,
		Height:    model.ProfilePicHeight,
	}
	if err := s.repo.Create(ctx, img); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			slog.WarnContext(ctx, "failed to delete orphaned object", "key", key, "error", delErr)
		}
		return uuid.Nil, err
	}

	slog.DebugContext(ctx, "profile picture stored", "image_id", img.ID, "key", key, "size", img.SizeBytes)
	return img.ID, nil
}

// normalizeContentType strips parameters and sniffs the type when the client
// sent none.
func normalizeContentType(contentType string, data []byte) string {
	contentType = strings.TrimSpace(contentType)
	if (contentType == "" || contentType == "application/octet-stream") && len(data) > 0 {
		contentType = http.DetectContentType(data[:min(len(data), 512)])
	}
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// resizeToJPEG centers/crops to target size and encodes as JPEG.
func resizeToJPEG(data []byte, width, height, quality int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	resized := imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}

	return buf.Bytes(), nil
}
