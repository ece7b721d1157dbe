package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasdash/atlasdash/internal/auth"
	_ "github.com/atlasdash/atlasdash/testing"
)

func testUser() *auth.User {
	roleID := uuid.New()
	return &auth.User{
		ID:       uuid.New(),
		Name:     "Edith Editor",
		Email:    "editor@atlasdash.local",
		RoleID:   &roleID,
		RoleName: "editor",
	}
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)
	user := testUser()

	raw, err := issuer.Issue(user)
	require.NoError(t, err)

	cred, err := issuer.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), cred.UserID)
	assert.Equal(t, user.Email, cred.Email)
	assert.Equal(t, "editor", cred.Role)
	assert.False(t, cred.Expired(time.Now().UTC()))
	assert.WithinDuration(t, cred.IssuedAt.Add(time.Hour), cred.ExpiresAt, time.Second)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)
	raw, err := issuer.Issue(testUser())
	require.NoError(t, err)

	other := auth.NewIssuer("different", time.Hour)
	_, err = other.Verify(raw)
	assert.ErrorIs(t, err, auth.ErrBadToken)
}

func TestTokenRejectsTampering(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)
	raw, err := issuer.Issue(testUser())
	require.NoError(t, err)

	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + ".eyJyb2xlIjoiYWRtaW4ifQ." + parts[2]

	_, err = issuer.Verify(tampered)
	assert.ErrorIs(t, err, auth.ErrBadToken)
}

func TestTokenRejectsExpired(t *testing.T) {
	issuer := auth.NewIssuer("secret", -time.Minute)
	raw, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, err = issuer.Verify(raw)
	assert.ErrorIs(t, err, auth.ErrBadToken)
}

func TestTokenRejectsMissingIssuedAt(t *testing.T) {
	// Correctly signed but without an iat claim; verification must reject it
	// rather than trust a token with no issuance time.
	claims := jwt.MapClaims{
		"sub":   uuid.NewString(),
		"email": "editor@atlasdash.local",
		"role":  "editor",
		"exp":   time.Now().UTC().Add(time.Hour).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	issuer := auth.NewIssuer("secret", time.Hour)
	_, err = issuer.Verify(raw)
	assert.ErrorIs(t, err, auth.ErrBadToken)
}

func TestTokenRejectsGarbage(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)
	_, err := issuer.Verify("not-a-token")
	assert.ErrorIs(t, err, auth.ErrBadToken)
}

func TestIssueRequiresRole(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)
	user := testUser()
	user.RoleName = ""

	_, err := issuer.Issue(user)
	require.Error(t, err)
}
