package authz

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/atlasdash/atlasdash/internal/platform/httpx"
	"github.com/atlasdash/atlasdash/internal/shared"
)

// AccessDecider is the decision surface consumed by enforcement points.
type AccessDecider interface {
	CanAccess(ctx context.Context, identity, resource string, action Action) (bool, error)
}

// DecisionObserver counts decision outcomes for observability.
type DecisionObserver interface {
	ObserveDecision(outcome string)
}

// Middleware wires access-control enforcement for HTTP handlers. The decoded
// credential is taken from request context; nothing here reaches into
// ambient session state.
type Middleware struct {
	Checker  AccessDecider
	Logger   *slog.Logger
	Observer DecisionObserver
}

func (m Middleware) observe(outcome string) {
	if m.Observer != nil {
		m.Observer.ObserveDecision(outcome)
	}
}

// Require gates the wrapped handler on the canonical permission for the
// resource/action pair. The three outcomes stay distinct: no credential is
// 401, a resolved deny is 403, and a store failure is 503 so clients can
// retry instead of treating an outage as a revoked permission.
func (m Middleware) Require(resource string, action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cred := shared.CredentialFromContext(r.Context())
			if cred == nil {
				m.observe("unauthenticated")
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "credential required")
				return
			}
			allowed, err := m.Checker.CanAccess(r.Context(), cred.Email, resource, action)
			if err != nil {
				m.observe("error")
				if m.Logger != nil {
					m.Logger.Error("access check failed",
						slog.String("resource", resource),
						slog.String("action", string(action)),
						slog.Any("error", err))
				}
				if errors.Is(err, shared.ErrStoreUnavailable) {
					httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "authorization store unavailable")
					return
				}
				httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
				return
			}
			if !allowed {
				m.observe("deny")
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "insufficient permissions")
				return
			}
			m.observe("allow")
			next.ServeHTTP(w, r)
		})
	}
}
