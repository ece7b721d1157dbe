package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/atlasdash/atlasdash/internal/shared"
)

// ErrBadToken covers every verification failure: bad signature, malformed
// payload, expiry. Callers treat all of them as "unauthenticated".
var ErrBadToken = errors.New("auth: invalid token")

type tokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer produces and verifies signed, time-bounded credentials. The token
// embeds the role label only — never the permission set — so that permission
// edits take effect on the next decision rather than at the next login.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer constructs an Issuer with the given HMAC secret and lifetime.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL exposes the configured credential lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a credential for an authenticated user.
func (i *Issuer) Issue(user *User) (string, error) {
	if user.RoleName == "" {
		return "", shared.ErrInvalidCredentials
	}
	issuedAt := i.now().UTC()
	claims := tokenClaims{
		Email: user.Email,
		Role:  user.RoleName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(i.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Verify checks signature and expiry and returns the decoded credential.
func (i *Issuer) Verify(raw string) (*shared.Credential, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, ErrBadToken
	}
	// exp is guaranteed by WithExpirationRequired; iat is not, and a signed
	// token without it must not pass as valid.
	if claims.Subject == "" || claims.Role == "" || claims.Email == "" || claims.IssuedAt == nil {
		return nil, ErrBadToken
	}
	return &shared.Credential{
		UserID:    claims.Subject,
		Email:     claims.Email,
		Role:      claims.Role,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
