package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"chocoapi/internal/model"
	"chocoapi/internal/storage"
)

// =============================================================================
// MOCKS
// =============================================================================
//
// Each mock implements a repository or store interface with optional fn
// fields. A nil fn falls back to a successful default.

type mockEmailRepository struct {
	createFn func(ctx context.Context, address string) (uuid.UUID, error)

	createCalls []string
}

func (m *mockEmailRepository) Create(ctx context.Context, address string) (uuid.UUID, error) {
	m.createCalls = append(m.createCalls, address)
	if m.createFn != nil {
		return m.createFn(ctx, address)
	}
	return uuid.New(), nil
}

func (m *mockEmailRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Email, error) {
	return nil, model.ErrEmailNotFound
}

type mockImageRepository struct {
	createFn func(ctx context.Context, image *model.Image) error

	created []*model.Image
}

func (m *mockImageRepository) Create(ctx context.Context, image *model.Image) error {
	m.created = append(m.created, image)
	if m.createFn != nil {
		return m.createFn(ctx, image)
	}
	image.ID = uuid.New()
	return nil
}

func (m *mockImageRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Image, error) {
	return nil, model.ErrImageNotFound
}

type mockUserRepository struct {
	createFn func(ctx context.Context, user model.InsertableUser, passwdHash string) (*model.User, error)

	createCalls []createCall
}

type createCall struct {
	User       model.InsertableUser
	PasswdHash string
}

func (m *mockUserRepository) Create(ctx context.Context, user model.InsertableUser, passwdHash string) (*model.User, error) {
	m.createCalls = append(m.createCalls, createCall{User: user, PasswdHash: passwdHash})
	if m.createFn != nil {
		return m.createFn(ctx, user, passwdHash)
	}
	return &model.User{
		ID:         uuid.New(),
		Username:   user.Username(),
		FullName:   user.FullName(),
		EmailID:    user.EmailID(),
		PasswdHash: passwdHash,
		Active:     true,
	}, nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return nil, model.ErrUserNotFound
}

type mockPublisher struct {
	err   error
	calls []string
}

func (m *mockPublisher) PublishUserRegistered(ctx context.Context, userID uuid.UUID, username string, emailID uuid.UUID) (string, error) {
	m.calls = append(m.calls, username)
	return "1-0", m.err
}

// memoryStore is an in-memory storage.ObjectStore.
type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}}
}

func (s *memoryStore) Put(ctx context.Context, key string, body []byte, contentType, cacheControl string) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = body
	return nil
}

func (s *memoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	body, ok := s.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return body, nil
}

func (s *memoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memoryStore) URL(key string) string { return "mem://" + key }
