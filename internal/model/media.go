package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultMaxImageBytes   = 5 * 1024 * 1024 // 5MB
	ProfilePicWidth        = 200
	ProfilePicHeight       = 200
	ProfilePicFolder       = "profile_pics"
	ProfilePicExt          = ".jpg"
	ProfilePicCacheControl = "public, max-age=31536000" // 1 year
	ProfilePicJPEGQuality  = 85
)

// Supported image content types for upload validation
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeGIF  = "image/gif"
	ContentTypeWebP = "image/webp"
)

var allowedImageTypes = map[string]struct{}{
	ContentTypeJPEG: {},
	ContentTypePNG:  {},
	ContentTypeGIF:  {},
	ContentTypeWebP: {},
}

// Validation messages for rejected profile pictures.
const (
	MessageUnsupportedImageType = "Unsupported image type"
	MessageFileTooLarge         = "File too large"
)

// Domain errors for media operations
var (
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidImageType = errors.New("invalid image type")
	ErrImageNotFound    = errors.New("image not found")
)

// Image is the metadata row of a stored image. The bytes live in the object
// store under ObjectKey.
type Image struct {
	ID        uuid.UUID `db:"id" json:"id"`
	MimeType  string    `db:"mime_type" json:"mime_type"`
	ObjectKey string    `db:"object_key" json:"object_key"`
	SizeBytes int64     `db:"size_bytes" json:"size_bytes"`
	Width     int       `db:"width" json:"width"`
	Height    int       `db:"height" json:"height"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// IsAllowedImageType reports if the provided content type is supported
func IsAllowedImageType(contentType string) bool {
	_, ok := allowedImageTypes[contentType]
	return ok
}
