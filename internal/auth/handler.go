package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/atlasdash/atlasdash/internal/authz"
	"github.com/atlasdash/atlasdash/internal/platform/httpx"
	"github.com/atlasdash/atlasdash/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	issuer      *Issuer
	permissions authz.PermissionSource
	validator   *validator.Validate
	secure      bool
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, issuer *Issuer, permissions authz.PermissionSource, secure bool) *Handler {
	return &Handler{
		logger:      logger,
		service:     service,
		issuer:      issuer,
		permissions: permissions,
		validator:   validator.New(),
		secure:      secure,
	}
}

// MountRoutes registers auth routes on the provided router. Login gets its
// own, much tighter rate bucket than the global limiter.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP))).
		Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/me", h.handleMe)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed json body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		// Validation detail stays generic: the login surface never explains
		// which part of a credential pair was wrong.
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "email and password are required")
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	token, err := h.issuer.Issue(user)
	if err != nil {
		h.logger.Error("issue credential", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	expiresAt := time.Now().UTC().Add(h.issuer.TTL())
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	})

	httpx.JSON(w, http.StatusOK, loginResponse{
		Token:     token,
		UserID:    user.ID.String(),
		Role:      user.RoleName,
		ExpiresAt: expiresAt,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	// Credentials are not revocable server-side; logout just clears the
	// browser cookie and the client discards its token.
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

type meResponse struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// handleMe reports the caller's identity plus its live effective permission
// set. The permissions come from the resolver, not from the credential: the
// token only ever carries the role label.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	cred := shared.CredentialFromContext(r.Context())
	if cred == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "credential required")
		return
	}
	set, err := h.permissions.ResolvePermissions(r.Context(), cred.Email)
	if err != nil {
		h.logger.Error("resolve permissions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	names := set.Names()
	if names == nil {
		names = []string{}
	}
	httpx.JSON(w, http.StatusOK, meResponse{
		UserID:      cred.UserID,
		Email:       cred.Email,
		Role:        cred.Role,
		Permissions: names,
		ExpiresAt:   cred.ExpiresAt,
	})
}
