package shared

import (
	"context"
	"time"
)

// Credential is the decoded, signature-verified claim set issued at login.
// It carries the role label only; permission lookups always go back to the
// live role/permission graph.
type Credential struct {
	UserID    string
	Email     string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the credential lifetime has elapsed.
func (c Credential) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

type credentialContextKey struct{}

// ContextWithCredential stores the decoded credential in context.
func ContextWithCredential(ctx context.Context, cred *Credential) context.Context {
	return context.WithValue(ctx, credentialContextKey{}, cred)
}

// CredentialFromContext extracts the credential from context. A nil result
// means the request is unauthenticated.
func CredentialFromContext(ctx context.Context) *Credential {
	cred, _ := ctx.Value(credentialContextKey{}).(*Credential)
	return cred
}
