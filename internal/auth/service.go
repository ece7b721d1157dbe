package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/atlasdash/atlasdash/internal/shared"
)

// dummyHash is a valid bcrypt hash that is compared against when the email
// is unknown, so the not-found path costs the same as a real comparison and
// response timing does not reveal whether the account exists.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// Service wraps authentication business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates email/password credentials. Unknown email, wrong
// password and a role-less account all collapse to ErrInvalidCredentials so
// the caller cannot enumerate identities through the error channel. A
// backing-store failure is not an auth failure: it surfaces as
// ErrStoreUnavailable so the caller reports an outage, not a rejection.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, shared.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: authenticate: %v", shared.ErrStoreUnavailable, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if user.RoleID == nil || user.RoleName == "" {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}
