package authz_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasdash/atlasdash/internal/authz"
	"github.com/atlasdash/atlasdash/internal/shared"
)

type stubDecider struct {
	allow bool
	err   error
}

func (s stubDecider) CanAccess(ctx context.Context, identity, resource string, action authz.Action) (bool, error) {
	return s.allow, s.err
}

type countingObserver struct {
	outcomes map[string]int
}

func (o *countingObserver) ObserveDecision(outcome string) {
	if o.outcomes == nil {
		o.outcomes = make(map[string]int)
	}
	o.outcomes[outcome]++
}

func guardRequest(t *testing.T, decider authz.AccessDecider, observer authz.DecisionObserver, cred *shared.Credential) *httptest.ResponseRecorder {
	t.Helper()
	mw := authz.Middleware{Checker: decider, Observer: observer}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/customers", nil)
	if cred != nil {
		req = req.WithContext(shared.ContextWithCredential(req.Context(), cred))
	}
	res := httptest.NewRecorder()
	mw.Require("customers", authz.ActionRead)(next).ServeHTTP(res, req)
	return res
}

func testCredential() *shared.Credential {
	return &shared.Credential{
		UserID:    "u1",
		Email:     "a@b.c",
		Role:      "viewer",
		IssuedAt:  time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
}

func TestRequireWithoutCredentialIs401(t *testing.T) {
	obs := &countingObserver{}
	res := guardRequest(t, stubDecider{allow: true}, obs, nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Equal(t, 1, obs.outcomes["unauthenticated"])
}

func TestRequireDenyIs403(t *testing.T) {
	obs := &countingObserver{}
	res := guardRequest(t, stubDecider{allow: false}, obs, testCredential())
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Equal(t, 1, obs.outcomes["deny"])
}

func TestRequireStoreFailureIs503(t *testing.T) {
	obs := &countingObserver{}
	res := guardRequest(t, stubDecider{err: shared.ErrStoreUnavailable}, obs, testCredential())

	// An outage must never read as a revoked permission.
	require.Equal(t, http.StatusServiceUnavailable, res.Code)
	assert.NotEqual(t, http.StatusForbidden, res.Code)
	assert.Equal(t, 1, obs.outcomes["error"])
}

func TestRequireAllowPassesThrough(t *testing.T) {
	obs := &countingObserver{}
	res := guardRequest(t, stubDecider{allow: true}, obs, testCredential())
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, 1, obs.outcomes["allow"])
}
