package tracker

import (
	"context"

	"github.com/google/uuid"
)

var callerCtxKey = &contextKey{"caller"}

type contextKey struct {
	name string
}

// Caller is the authenticated identity bound to a request
type Caller struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Authority string    `json:"authority"`
}

// NewCaller builds a Caller from a stored user
func NewCaller(user *User) Caller {
	return Caller{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		Authority: user.Role.String(),
	}
}

// IsZero reports whether no identity is set
func (c Caller) IsZero() bool {
	return c.UserID == uuid.Nil
}

// WithCaller sets the Caller in the given context
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerCtxKey, caller)
}

// CallerFromContext finds the caller from the context.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	if ctx == nil {
		return Caller{}, false
	}
	caller, ok := ctx.Value(callerCtxKey).(Caller)
	if !ok || caller.IsZero() {
		return Caller{}, false
	}
	return caller, true
}

// RequireCallerFromContext returns ErrUnauthenticated when no caller is bound
func RequireCallerFromContext(ctx context.Context) (Caller, error) {
	caller, ok := CallerFromContext(ctx)
	if !ok {
		return Caller{}, ErrUnauthenticated
	}
	return caller, nil
}
