package auth

import (
	"net/http"
	"strings"

	"github.com/atlasdash/atlasdash/internal/shared"
)

// CookieName is the cookie the login handler sets alongside the JSON token
// response, for browser clients.
const CookieName = "atlas_token"

// Authenticator decodes the request credential, if any, into context.
// Requests with a missing, malformed or expired token proceed without a
// credential; each enforcement point decides whether that is acceptable.
type Authenticator struct {
	Issuer *Issuer
}

// Middleware extracts the credential from the Authorization header or the
// auth cookie.
func (a Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			if cookie, err := r.Cookie(CookieName); err == nil {
				raw = cookie.Value
			}
		}
		if raw != "" {
			if cred, err := a.Issuer.Verify(raw); err == nil {
				r = r.WithContext(shared.ContextWithCredential(r.Context(), cred))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}
