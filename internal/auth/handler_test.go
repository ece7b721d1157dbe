package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasdash/atlasdash/internal/auth"
	"github.com/atlasdash/atlasdash/internal/authz"
	"github.com/atlasdash/atlasdash/internal/shared"
)

type stubPermissions struct {
	sets map[string]authz.PermissionSet
	err  error
}

func (s *stubPermissions) ResolvePermissions(ctx context.Context, identity string) (authz.PermissionSet, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.sets[identity], nil
}

func newAuthRouter(t *testing.T, repo auth.Repository, issuer *auth.Issuer, permissions authz.PermissionSource) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := auth.NewHandler(logger, auth.NewService(repo), issuer, permissions, false)

	r := chi.NewRouter()
	r.Use(auth.Authenticator{Issuer: issuer}.Middleware)
	r.Route("/auth", handler.MountRoutes)
	return r
}

func TestLoginSuccess(t *testing.T) {
	user := userWithPassword(t, "hunter22")
	issuer := auth.NewIssuer("secret", time.Hour)
	router := newAuthRouter(t, &stubRepo{user: user}, issuer, &stubPermissions{})

	body := `{"email":"editor@atlasdash.local","password":"hunter22"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		Token  string `json:"token"`
		UserID string `json:"user_id"`
		Role   string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	assert.Equal(t, user.ID.String(), payload.UserID)
	assert.Equal(t, "editor", payload.Role)

	cred, err := issuer.Verify(payload.Token)
	require.NoError(t, err)
	assert.Equal(t, "editor", cred.Role)

	cookies := res.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.Equal(t, payload.Token, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestLoginInvalidCredentials(t *testing.T) {
	user := userWithPassword(t, "hunter22")
	issuer := auth.NewIssuer("secret", time.Hour)
	router := newAuthRouter(t, &stubRepo{user: user}, issuer, &stubPermissions{})

	body := `{"email":"editor@atlasdash.local","password":"wrongpass"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLoginStoreUnavailableIs503(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)
	router := newAuthRouter(t, &stubRepo{err: errors.New("connection refused")}, issuer, &stubPermissions{})

	body := `{"email":"editor@atlasdash.local","password":"hunter22"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	// A store outage must not read as a credential rejection.
	assert.Equal(t, http.StatusServiceUnavailable, res.Code)
	assert.NotEqual(t, http.StatusUnauthorized, res.Code)
}

func TestLoginValidationFailure(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)
	router := newAuthRouter(t, &stubRepo{}, issuer, &stubPermissions{})

	body := `{"email":"not-an-email","password":""}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestMeWithBearerToken(t *testing.T) {
	user := userWithPassword(t, "hunter22")
	issuer := auth.NewIssuer("secret", time.Hour)
	permissions := &stubPermissions{sets: map[string]authz.PermissionSet{
		user.Email: authz.NewPermissionSet("posts.read", "posts.update"),
	}}
	router := newAuthRouter(t, &stubRepo{user: user}, issuer, permissions)

	token, err := issuer.Issue(user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		Email       string   `json:"email"`
		Role        string   `json:"role"`
		Permissions []string `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	assert.Equal(t, user.Email, payload.Email)
	assert.Equal(t, "editor", payload.Role)
	assert.ElementsMatch(t, []string{"posts.read", "posts.update"}, payload.Permissions)
}

func TestMeWithoutCredential(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)
	router := newAuthRouter(t, &stubRepo{}, issuer, &stubPermissions{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestMeStoreUnavailableIs503(t *testing.T) {
	user := userWithPassword(t, "hunter22")
	issuer := auth.NewIssuer("secret", time.Hour)
	router := newAuthRouter(t, &stubRepo{user: user}, issuer, &stubPermissions{err: shared.ErrStoreUnavailable})

	token, err := issuer.Issue(user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusServiceUnavailable, res.Code)
}

func TestAuthenticatorIgnoresBadToken(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)
	var sawCredential bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawCredential = shared.CredentialFromContext(r.Context()) != nil
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	res := httptest.NewRecorder()
	auth.Authenticator{Issuer: issuer}.Middleware(next).ServeHTTP(res, req)

	assert.Equal(t, http.StatusOK, res.Code)
	assert.False(t, sawCredential)
}

func TestAuthenticatorReadsCookie(t *testing.T) {
	user := userWithPassword(t, "hunter22")
	issuer := auth.NewIssuer("secret", time.Hour)
	token, err := issuer.Issue(user)
	require.NoError(t, err)

	var got *shared.Credential
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = shared.CredentialFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	res := httptest.NewRecorder()
	auth.Authenticator{Issuer: issuer}.Middleware(next).ServeHTTP(res, req)

	require.NotNil(t, got)
	assert.Equal(t, user.Email, got.Email)
}

func TestLogoutClearsCookie(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)
	router := newAuthRouter(t, &stubRepo{}, issuer, &stubPermissions{})

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusNoContent, res.Code)
	cookies := res.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}
