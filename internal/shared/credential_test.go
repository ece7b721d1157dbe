package shared

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCredentialExpired(t *testing.T) {
	now := time.Now().UTC()
	cred := Credential{IssuedAt: now, ExpiresAt: now.Add(time.Hour)}

	assert.False(t, cred.Expired(now))
	assert.False(t, cred.Expired(now.Add(59*time.Minute)))
	assert.True(t, cred.Expired(now.Add(time.Hour)))
	assert.True(t, cred.Expired(now.Add(2*time.Hour)))
}

func TestCredentialContextRoundTrip(t *testing.T) {
	cred := &Credential{UserID: "u1", Email: "a@b.c", Role: "viewer"}
	ctx := ContextWithCredential(context.Background(), cred)
	assert.Equal(t, cred, CredentialFromContext(ctx))

	assert.Nil(t, CredentialFromContext(context.Background()))
}
