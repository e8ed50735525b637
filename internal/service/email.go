package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"chocoapi/internal/repository"
)

// EmailService registers email addresses.
type EmailService struct {
	repo repository.EmailRepository
}

func NewEmailService(repo repository.EmailRepository) *EmailService {
	return &EmailService{repo: repo}
}

// CreateEmail stores address as a new unconfirmed email. Duplicate addresses
// fail with the emails_address_key constraint.
func (s *EmailService) CreateEmail(ctx context.Context, address string) (uuid.UUID, error) {
	return s.repo.Create(ctx, strings.TrimSpace(address))
}
