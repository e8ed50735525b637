package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrInvalidKey is returned for keys that would escape the base directory
var ErrInvalidKey = errors.New("invalid object key")

// FilesystemStore keeps objects as plain files below a base directory. It is
// meant for local development; content type and cache control are dropped.
type FilesystemStore struct {
	baseDir string
	log     *slog.Logger
}

func NewFilesystemStore(ctx context.Context, baseDir string) (*FilesystemStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("filesystem storage requires a base directory")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir all: %w", err)
	}

	log := slog.Default().With("component", "storage.filesystem", "basedir", baseDir)
	log.DebugContext(ctx, "init storage")

	return &FilesystemStore{baseDir: baseDir, log: log}, nil
}

func (s *FilesystemStore) filename(key string) (string, error) {
	cleaned := path.Clean("/" + key)
	if key == "" || cleaned == "/" || strings.Contains(key, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(cleaned)), nil
}

func (s *FilesystemStore) Put(ctx context.Context, key string, body []byte, _, _ string) (err error) {
	filename, err := s.filename(key)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			s.log.ErrorContext(ctx, "object store failed", "key", key, "error", err)
		} else {
			s.log.DebugContext(ctx, "object stored", "key", key, "size", len(body))
		}
	}()

	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("mkdir all: %w", err)
	}

	// write to a sibling and rename so readers never see a partial file
	tmp, err := os.CreateTemp(filepath.Dir(filename), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func (s *FilesystemStore) Get(_ context.Context, key string) ([]byte, error) {
	filename, err := s.filename(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("read: %w", err)
	}
	return data, nil
}

func (s *FilesystemStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	filename, err := s.filename(key)
	if err != nil {
		return err
	}

	if err := os.Remove(filename); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.ErrorContext(ctx, "object delete failed", "key", key, "error", err)
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

// URL returns a file:// URL of the stored object.
func (s *FilesystemStore) URL(key string) string {
	filename, err := s.filename(key)
	if err != nil {
		return ""
	}
	abs, err := filepath.Abs(filename)
	if err != nil {
		abs = filename
	}
	return "file://" + filepath.ToSlash(abs)
}
