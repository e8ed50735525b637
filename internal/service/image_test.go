package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"chocoapi/internal/apperror"
	"chocoapi/internal/model"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func TestImageService_CreateImage_Success(t *testing.T) {
	// ARRANGE
	repo := &mockImageRepository{}
	store := newMemoryStore()
	svc := NewImageService(repo, store, 0)

	// ACT
	id, err := svc.CreateImage(context.Background(), "image/png", pngBytes(t, 640, 480))

	// ASSERT
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 image row, got %d", len(repo.created))
	}
	row := repo.created[0]
	if row.ID != id {
		t.Errorf("id = %v, want %v", id, row.ID)
	}
	if row.MimeType != model.ContentTypeJPEG {
		t.Errorf("mime type = %q, want %q", row.MimeType, model.ContentTypeJPEG)
	}
	if !strings.HasPrefix(row.ObjectKey, model.ProfilePicFolder+"/") || !strings.HasSuffix(row.ObjectKey, ".jpg") {
		t.Errorf("unexpected object key %q", row.ObjectKey)
	}

	stored, err := store.Get(context.Background(), row.ObjectKey)
	if err != nil {
		t.Fatalf("object not stored: %v", err)
	}
	if int64(len(stored)) != row.SizeBytes {
		t.Errorf("size = %d, want %d", row.SizeBytes, len(stored))
	}

	decoded, err := jpeg.Decode(bytes.NewReader(stored))
	if err != nil {
		t.Fatalf("stored object is not a jpeg: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 200 || b.Dy() != 200 {
		t.Errorf("stored image is %dx%d, want 200x200", b.Dx(), b.Dy())
	}
}

func TestImageService_CreateImage_SniffsMissingContentType(t *testing.T) {
	svc := NewImageService(&mockImageRepository{}, newMemoryStore(), 0)

	_, err := svc.CreateImage(context.Background(), "", pngBytes(t, 10, 10))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestImageService_CreateImage_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		data     []byte
		maxBytes int64
		wantErr  error
	}{
		{"unsupported type", "application/pdf", []byte("%PDF-1.4"), 0, model.ErrInvalidImageType},
		{"sniffed text", "", []byte("hello world"), 0, model.ErrInvalidImageType},
		{"too large", "image/png", make([]byte, 11), 10, model.ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockImageRepository{}
			store := newMemoryStore()
			svc := NewImageService(repo, store, tt.maxBytes)

			_, err := svc.CreateImage(context.Background(), tt.mimeType, tt.data)

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if len(repo.created) != 0 || len(store.objects) != 0 {
				t.Error("rejected uploads must not be stored")
			}
		})
	}
}

func TestImageService_CreateImage_CorruptImageIsInternal(t *testing.T) {
	svc := NewImageService(&mockImageRepository{}, newMemoryStore(), 0)

	_, err := svc.CreateImage(context.Background(), "image/png", []byte("\x89PNG\r\n\x1a\nnot really"))

	if apperror.From(err).Kind() != apperror.KindInternal {
		t.Errorf("kind = %v, want internal", apperror.From(err).Kind())
	}
}

func TestImageService_CreateImage_StoreFailureIsInternal(t *testing.T) {
	store := newMemoryStore()
	store.putErr = errors.New("bucket unavailable")
	repo := &mockImageRepository{}
	svc := NewImageService(repo, store, 0)

	_, err := svc.CreateImage(context.Background(), "image/png", pngBytes(t, 10, 10))

	if apperror.From(err).Kind() != apperror.KindInternal {
		t.Errorf("kind = %v, want internal", apperror.From(err).Kind())
	}
	if len(repo.created) != 0 {
		t.Error("no row should be written when the upload fails")
	}
}

func TestImageService_CreateImage_RowFailureRemovesObject(t *testing.T) {
	store := newMemoryStore()
	repo := &mockImageRepository{
		createFn: func(ctx context.Context, image *model.Image) error {
			return apperror.Persistence(errors.New("insert failed"))
		},
	}
	svc := NewImageService(repo, store, 0)

	_, err := svc.CreateImage(context.Background(), "image/png", pngBytes(t, 10, 10))

	if apperror.From(err).Kind() != apperror.KindPersistence {
		t.Errorf("kind = %v, want persistence", apperror.From(err).Kind())
	}
	if len(store.objects) != 0 {
		t.Errorf("expected orphaned object to be deleted, %d left", len(store.objects))
	}
}
