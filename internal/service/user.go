package service

import (
	"context"

	"chocoapi/internal/apperror"
	"chocoapi/internal/logging"
	"chocoapi/internal/model"
	"chocoapi/internal/password"
	"chocoapi/internal/queue"
	"chocoapi/internal/repository"
)

// UserService handles business logic for user operations
type UserService struct {
	repo      repository.UserRepository
	publisher queue.Publisher
	hash      func(string) (string, error)
}

// NewUserService wires the repository and event publisher. A nil publisher
// disables events.
func NewUserService(repo repository.UserRepository, publisher queue.Publisher) *UserService {
	if publisher == nil {
		publisher = queue.NopPublisher{}
	}
	return &UserService{
		repo:      repo,
		publisher: publisher,
		hash:      password.Hash,
	}
}

// CreateUser hashes the password and stores the user. Publishing the
// user_registered event is best effort.
func (s *UserService) CreateUser(ctx context.Context, u model.InsertableUser) (*model.User, error) {
	hashed, err := s.hash(u.Password())
	if err != nil {
		return nil, apperror.Internal(err)
	}

	user, err := s.repo.Create(ctx, u, hashed)
	if err != nil {
		return nil, err
	}

	if _, err := s.publisher.PublishUserRegistered(ctx, user.ID, user.Username, user.EmailID); err != nil {
		logging.FromContext(ctx).Warn("failed to publish user_registered event", "user_id", user.ID, "error", err)
	}

	return user, nil
}
