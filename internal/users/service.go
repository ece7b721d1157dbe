package users

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Mailer enqueues transactional mail; nil disables it.
type Mailer interface {
	EnqueueWelcomeEmail(ctx context.Context, email, name string) error
}

// Service wraps account administration rules.
type Service struct {
	repo   *Repository
	mailer Mailer
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(repo *Repository, mailer Mailer, logger *slog.Logger) *Service {
	return &Service{repo: repo, mailer: mailer, logger: logger}
}

// List returns a page of users.
func (s *Service) List(ctx context.Context, limit, offset int) ([]User, error) {
	return s.repo.List(ctx, limit, offset)
}

// Count returns the number of users.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Get fetches a user by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (User, error) {
	return s.repo.Get(ctx, id)
}

// Create hashes the password and inserts the account. A welcome email is
// queued best-effort; a mail failure never fails the creation.
func (s *Service) Create(ctx context.Context, name, email, password string, roleID *uuid.UUID) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	user, err := s.repo.Create(ctx, strings.TrimSpace(name), strings.ToLower(strings.TrimSpace(email)), string(hash), roleID)
	if err != nil {
		return User{}, err
	}
	if s.mailer != nil {
		if err := s.mailer.EnqueueWelcomeEmail(ctx, user.Email, user.Name); err != nil && s.logger != nil {
			s.logger.Warn("enqueue welcome email", slog.Any("error", err))
		}
	}
	return user, nil
}

// Delete removes a user.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
