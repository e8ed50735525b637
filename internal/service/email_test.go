package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"chocoapi/internal/apperror"
)

func TestEmailService_CreateEmail_TrimsAddress(t *testing.T) {
	// ARRANGE
	want := uuid.New()
	repo := &mockEmailRepository{
		createFn: func(ctx context.Context, address string) (uuid.UUID, error) {
			return want, nil
		},
	}
	svc := NewEmailService(repo)

	// ACT
	got, err := svc.CreateEmail(context.Background(), "  john@example.com\n")

	// ASSERT
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if got != want {
		t.Errorf("id = %v, want %v", got, want)
	}
	if len(repo.createCalls) != 1 || repo.createCalls[0] != "john@example.com" {
		t.Errorf("create calls = %q, want [john@example.com]", repo.createCalls)
	}
}

func TestEmailService_CreateEmail_PropagatesPersistenceError(t *testing.T) {
	repo := &mockEmailRepository{
		createFn: func(ctx context.Context, address string) (uuid.UUID, error) {
			return uuid.Nil, apperror.Persistence(errors.New("connection reset"))
		},
	}
	svc := NewEmailService(repo)

	_, err := svc.CreateEmail(context.Background(), "john@example.com")

	if apperror.From(err).Kind() != apperror.KindPersistence {
		t.Errorf("kind = %v, want persistence", apperror.From(err).Kind())
	}
}
