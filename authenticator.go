package tracker

import (
	"context"
	"strings"
)

// AuthOutcome labels the result of one pipeline run
type AuthOutcome string

const (
	OutcomeBound           AuthOutcome = "bound"
	OutcomeAnonymous       AuthOutcome = "anonymous"
	OutcomePublic          AuthOutcome = "public"
	OutcomeInvalidToken    AuthOutcome = "invalid_token"
	OutcomeUnknownIdentity AuthOutcome = "unknown_identity"
	OutcomeInvalidRole     AuthOutcome = "invalid_role"
	OutcomeAlreadyBound    AuthOutcome = "already_bound"
)

// DefaultPublicPaths are path prefixes that never go through authentication
var DefaultPublicPaths = []string{
	"/swagger-ui",
	"/v3/api-docs",
	"/docs",
	"/h2-console",
	"/db-console",
	"/api/test/health",
	"/health",
	"/metrics",
}

// Authenticator resolves the caller of a request from its bearer token.
// It never rejects a request, protected operations check for a bound
// caller themselves.
type Authenticator struct {
	tokens      TokenService
	identities  IdentityStore
	publicPaths []string
	logger      Logger
	metrics     *Metrics
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(tokens TokenService, identities IdentityStore, publicPaths ...string) *Authenticator {
	paths := make([]string, 0, len(DefaultPublicPaths)+len(publicPaths))
	paths = append(paths, DefaultPublicPaths...)
	for _, p := range publicPaths {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}

	return &Authenticator{
		tokens:      tokens,
		identities:  identities,
		publicPaths: paths,
		logger:      defLogger{},
	}
}

// WithLogger sets the logger
func (a *Authenticator) WithLogger(logger Logger) *Authenticator {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// WithMetrics records pipeline outcomes in m
func (a *Authenticator) WithMetrics(m *Metrics) *Authenticator {
	a.metrics = m
	return a
}

// IsPublic reports whether path falls under the public allowlist
func (a *Authenticator) IsPublic(path string) bool {
	for _, prefix := range a.publicPaths {
		if path == prefix || strings.HasPrefix(path, strings.TrimSuffix(prefix, "/")+"/") {
			return true
		}
	}
	return false
}

// Authenticate runs the pipeline for one request. rawToken is the bearer
// credential with the scheme already removed, empty when the request had
// none. The returned context carries the caller when one was bound.
func (a *Authenticator) Authenticate(ctx context.Context, path, rawToken string) (context.Context, AuthOutcome) {
	outcome := a.authenticate(&ctx, path, rawToken)
	a.metrics.RecordAuthOutcome(outcome)
	return ctx, outcome
}

func (a *Authenticator) authenticate(ctx *context.Context, path, rawToken string) AuthOutcome {
	if a.IsPublic(path) {
		return OutcomePublic
	}

	if rawToken == "" {
		return OutcomeAnonymous
	}

	subject, ok := a.tokens.ExtractSubject(rawToken)
	if !ok {
		a.logger.Debug("Authenticate could not extract token subject", "path", path)
		return OutcomeInvalidToken
	}

	if _, bound := CallerFromContext(*ctx); bound {
		return OutcomeAlreadyBound
	}

	user, err := a.identities.FindByEmail(*ctx, subject)
	if err != nil || user == nil {
		a.logger.Warn("Authenticate identity lookup failed", "subject", subject, "error", err)
		return OutcomeUnknownIdentity
	}

	role, err := ParseRole(string(user.Role))
	if err != nil {
		a.logger.Error("Authenticate refused identity with unknown role", "subject", subject, "role", user.Role)
		return OutcomeInvalidRole
	}

	if !a.tokens.Validate(rawToken, user.Email) {
		return OutcomeInvalidToken
	}

	caller := NewCaller(user)
	caller.Role = role
	caller.Authority = role.String()

	*ctx = WithCaller(*ctx, caller)
	return OutcomeBound
}
