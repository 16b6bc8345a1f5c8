package tracker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	tracker "github.com/goliatone/go-tracker"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	tokens        *tracker.TokenServiceImpl
	identities    *stubIdentities
	metrics       *tracker.Metrics
	authenticator *tracker.Authenticator
	manager       *tracker.User
}

func newAuthFixture(t *testing.T, extraPublic ...string) *authFixture {
	t.Helper()

	manager := &tracker.User{ID: uuid.New(), Email: "manager@example.com", Role: tracker.RoleManager}
	identities := newStubIdentities(manager)
	tokens := tracker.NewTokenService([]byte(testSigningKey), 1, "go-tracker", nil, nil)
	metrics := tracker.NewMetrics(prometheus.NewRegistry())

	return &authFixture{
		tokens:     tokens,
		identities: identities,
		metrics:    metrics,
		manager:    manager,
		authenticator: tracker.NewAuthenticator(tokens, identities, extraPublic...).
			WithLogger(&recordingLogger{}).
			WithMetrics(metrics),
	}
}

func (f *authFixture) issue(t *testing.T, user *tracker.User) string {
	t.Helper()
	token, err := f.tokens.Issue(tracker.NewIdentityFromUser(user))
	require.NoError(t, err)
	return token
}

func (f *authFixture) outcomes(outcome tracker.AuthOutcome) float64 {
	return testutil.ToFloat64(f.metrics.AuthOutcomeCounter().WithLabelValues(string(outcome)))
}

func TestAuthenticator_BindsCaller(t *testing.T) {
	f := newAuthFixture(t)
	token := f.issue(t, f.manager)

	ctx, outcome := f.authenticator.Authenticate(context.Background(), "/api/projects", token)
	assert.Equal(t, tracker.OutcomeBound, outcome)

	caller, ok := tracker.CallerFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, f.manager.ID, caller.UserID)
	assert.Equal(t, "manager@example.com", caller.Email)
	assert.Equal(t, tracker.RoleManager, caller.Role)
	assert.Equal(t, "MANAGER", caller.Authority)

	assert.Equal(t, float64(1), f.outcomes(tracker.OutcomeBound))
}

func TestAuthenticator_NeverBindsOnFailure(t *testing.T) {
	f := newAuthFixture(t)

	ghost := &tracker.User{ID: uuid.New(), Email: "ghost@example.com", Role: tracker.RoleUser}
	ghostToken := f.issue(t, ghost)

	expiredTokens := tracker.NewTokenService([]byte(testSigningKey), 1, "go-tracker", nil, nil,
		tracker.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }))
	expired, err := expiredTokens.Issue(tracker.NewIdentityFromUser(f.manager))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		outcome tracker.AuthOutcome
	}{
		{"no token", "", tracker.OutcomeAnonymous},
		{"garbage token", "garbage", tracker.OutcomeInvalidToken},
		{"expired token", expired, tracker.OutcomeInvalidToken},
		{"unknown identity", ghostToken, tracker.OutcomeUnknownIdentity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, outcome := f.authenticator.Authenticate(context.Background(), "/api/tasks", tt.token)
			assert.Equal(t, tt.outcome, outcome)

			_, ok := tracker.CallerFromContext(ctx)
			assert.False(t, ok)
		})
	}

	assert.Equal(t, float64(1), f.outcomes(tracker.OutcomeAnonymous))
	assert.Equal(t, float64(2), f.outcomes(tracker.OutcomeInvalidToken))
	assert.Equal(t, float64(1), f.outcomes(tracker.OutcomeUnknownIdentity))
}

func TestAuthenticator_RefusesUnknownRole(t *testing.T) {
	f := newAuthFixture(t)

	odd := &tracker.User{ID: uuid.New(), Email: "odd@example.com", Role: tracker.Role("SUPERUSER")}
	f.identities.byEmail[odd.Email] = odd

	ctx, outcome := f.authenticator.Authenticate(context.Background(), "/api/projects", f.issue(t, odd))
	assert.Equal(t, tracker.OutcomeInvalidRole, outcome)

	_, ok := tracker.CallerFromContext(ctx)
	assert.False(t, ok)
}

func TestAuthenticator_StoreErrorIsUnknownIdentity(t *testing.T) {
	f := newAuthFixture(t)
	token := f.issue(t, f.manager)
	f.identities.err = errors.New("connection refused")

	ctx, outcome := f.authenticator.Authenticate(context.Background(), "/api/projects", token)
	assert.Equal(t, tracker.OutcomeUnknownIdentity, outcome)

	_, ok := tracker.CallerFromContext(ctx)
	assert.False(t, ok)
}

func TestAuthenticator_KeepsExistingCaller(t *testing.T) {
	f := newAuthFixture(t)

	existing := tracker.Caller{UserID: uuid.New(), Email: "first@example.com", Role: tracker.RoleAdmin}
	base := tracker.WithCaller(context.Background(), existing)

	ctx, outcome := f.authenticator.Authenticate(base, "/api/projects", f.issue(t, f.manager))
	assert.Equal(t, tracker.OutcomeAlreadyBound, outcome)

	caller, ok := tracker.CallerFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, existing, caller)
}

func TestAuthenticator_PublicPaths(t *testing.T) {
	f := newAuthFixture(t, "/api/auth")
	token := f.issue(t, f.manager)

	public := []string{
		"/api/test/health",
		"/metrics",
		"/swagger-ui/index.html",
		"/v3/api-docs",
		"/api/auth/login",
		"/api/auth/register",
	}
	for _, path := range public {
		t.Run(path, func(t *testing.T) {
			assert.True(t, f.authenticator.IsPublic(path))

			ctx, outcome := f.authenticator.Authenticate(context.Background(), path, token)
			assert.Equal(t, tracker.OutcomePublic, outcome)
			_, ok := tracker.CallerFromContext(ctx)
			assert.False(t, ok)
		})
	}

	for _, path := range []string{"/api/projects", "/healthz", "/metricsx", "/api/authx"} {
		assert.False(t, f.authenticator.IsPublic(path), path)
	}
}
