package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/atlasdash/atlasdash/internal/auth"
	"github.com/atlasdash/atlasdash/internal/authz"
	"github.com/atlasdash/atlasdash/internal/customers"
	"github.com/atlasdash/atlasdash/internal/dashboard"
	"github.com/atlasdash/atlasdash/internal/invoices"
	"github.com/atlasdash/atlasdash/internal/observability"
	"github.com/atlasdash/atlasdash/internal/posts"
	"github.com/atlasdash/atlasdash/internal/users"
	"github.com/atlasdash/atlasdash/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Authenticator    auth.Authenticator
	AuthHandler      *auth.Handler
	AuthzHandler     *authz.Handler
	UsersHandler     *users.Handler
	CustomersHandler *customers.Handler
	InvoicesHandler  *invoices.Handler
	PostsHandler     *posts.Handler
	DashboardHandler *dashboard.Handler
	JobsHandler      *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with Atlasdash defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:        params.Logger,
		Config:        params.Config,
		Authenticator: params.Authenticator,
		Metrics:       params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	if params.AuthzHandler != nil {
		r.Route("/roles", params.AuthzHandler.MountRoutes)
		r.Route("/permissions", params.AuthzHandler.MountPermissionRoutes)
	}
	if params.UsersHandler != nil {
		r.Route("/users", params.UsersHandler.MountRoutes)
	}
	r.Route("/customers", params.CustomersHandler.MountRoutes)
	r.Route("/invoices", params.InvoicesHandler.MountRoutes)
	r.Route("/posts", params.PostsHandler.MountRoutes)
	// Published posts are readable without a credential.
	r.Route("/blog", params.PostsHandler.MountPublicRoutes)
	if params.DashboardHandler != nil {
		r.Route("/dashboard", params.DashboardHandler.MountRoutes)
	}
	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
