package tracker_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	tracker "github.com/goliatone/go-tracker"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewErrorResponse(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		err      error
		status   int
		textCode string
		message  string
	}{
		{
			name:     "not found",
			err:      tracker.NotFoundError("project", "p-1"),
			status:   http.StatusNotFound,
			textCode: "PROJECT_NOT_FOUND",
			message:  "project not found with id: p-1",
		},
		{
			name:     "access denied",
			err:      tracker.AccessDeniedError("Access denied to project"),
			status:   http.StatusForbidden,
			textCode: "ACCESS_DENIED",
			message:  "Access denied to project",
		},
		{
			name:     "conflict",
			err:      tracker.ConflictError("project", "Project with name 'A' already exists for this user"),
			status:   http.StatusConflict,
			textCode: "PROJECT_CONFLICT",
			message:  "Project with name 'A' already exists for this user",
		},
		{
			name:     "bad credentials",
			err:      tracker.ErrInvalidCredentials,
			status:   http.StatusUnauthorized,
			textCode: "INVALID_CREDENTIALS",
		},
		{
			name:     "unauthenticated",
			err:      tracker.ErrUnauthenticated,
			status:   http.StatusUnauthorized,
			textCode: "UNAUTHENTICATED",
		},
		{
			name:     "validation without text code",
			err:      goerrors.New("bad", goerrors.CategoryValidation),
			status:   http.StatusBadRequest,
			textCode: "VALIDATION_FAILED",
			message:  "bad",
		},
		{
			name:     "invalid role",
			err:      func() error { _, err := tracker.ParseRole("ROOT"); return err }(),
			status:   http.StatusBadRequest,
			textCode: "INVALID_ROLE",
		},
		{
			name:     "plain error",
			err:      fmt.Errorf("query failed: %w", errors.New("disk full")),
			status:   http.StatusInternalServerError,
			textCode: "INTERNAL",
			message:  "An unexpected error occurred: *errors.errorString: disk full",
		},
		{
			name:     "internal category",
			err:      goerrors.Wrap(errors.New("boom"), goerrors.CategoryInternal, "failed"),
			status:   http.StatusInternalServerError,
			textCode: "INTERNAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, res := tracker.NewErrorResponse(tt.err, now)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.textCode, res.TextCode)
			assert.True(t, now.Equal(res.Timestamp))
			if tt.message != "" {
				assert.Equal(t, tt.message, res.Message)
			}
		})
	}

	t.Run("sentinels are not mutated", func(t *testing.T) {
		tracker.NewErrorResponse(tracker.ErrInvalidCredentials, now)
		assert.Equal(t, "INVALID_CREDENTIALS", tracker.ErrInvalidCredentials.TextCode)
	})

	t.Run("validation fields", func(t *testing.T) {
		verr := tracker.RegisterRequest{Email: "x"}.Validate()
		require.NotNil(t, verr)

		status, res := tracker.NewErrorResponse(verr, now)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, res.Errors, "email")
		assert.Contains(t, res.Errors, "password")
	})
}

func TestController_Health(t *testing.T) {
	app := newTestApp(t)
	controller := tracker.NewController(app.auth, app.projects, app.tasks, app.users)

	var body any
	ctx := router.NewMockContext()
	ctx.On("Locals", mock.Anything, mock.Anything).Return(nil)
	ctx.On("JSON", http.StatusOK, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		body = args.Get(1)
	})

	require.NoError(t, controller.Health(ctx))
	assert.Equal(t, map[string]string{
		"status":  "UP",
		"message": "Task Tracker API is running!",
	}, body)
}

func TestRequireCaller(t *testing.T) {
	t.Run("rejects anonymous requests", func(t *testing.T) {
		var body any
		ctx := router.NewMockContext()
		ctx.On("Context").Return(context.Background())
		ctx.On("Path").Return("/api/projects")
		ctx.On("Locals", mock.Anything, mock.Anything).Return(nil)
		ctx.On("JSON", http.StatusUnauthorized, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			body = args.Get(1)
		})

		called := false
		handler := tracker.RequireCaller(&recordingLogger{})(func(router.Context) error {
			called = true
			return nil
		})

		require.NoError(t, handler(ctx))
		assert.False(t, called)

		res, ok := body.(tracker.ErrorResponse)
		require.True(t, ok)
		assert.Equal(t, "UNAUTHENTICATED", res.TextCode)
	})

	t.Run("passes bound callers", func(t *testing.T) {
		caller := tracker.Caller{UserID: uuid.New(), Role: tracker.RoleUser}
		ctx := router.NewMockContext()
		ctx.On("Context").Return(tracker.WithCaller(context.Background(), caller))

		called := false
		handler := tracker.RequireCaller(nil)(func(router.Context) error {
			called = true
			return nil
		})

		require.NoError(t, handler(ctx))
		assert.True(t, called)
	})
}

func TestRouteAuthenticator_Middleware(t *testing.T) {
	manager := &tracker.User{ID: uuid.New(), Email: "manager@example.com", Role: tracker.RoleManager}
	tokens := tracker.NewTokenService([]byte(testSigningKey), 1, "go-tracker", nil, nil)
	auther := tracker.NewAuthenticator(tokens, newStubIdentities(manager)).
		WithMetrics(tracker.NewMetrics(prometheus.NewRegistry()))

	opts := tracker.DefaultOptions()
	opts.Auth.SigningKey = testSigningKey
	mw := tracker.NewHTTPAuthenticator(auther, opts).WithLogger(&recordingLogger{}).Middleware()

	token, err := tokens.Issue(tracker.NewIdentityFromUser(manager))
	require.NoError(t, err)

	t.Run("binds the caller", func(t *testing.T) {
		var bound context.Context
		ctx := router.NewMockContext()
		ctx.HeadersM["Authorization"] = "Bearer " + token
		ctx.On("GetString", "Authorization", "").Return("Bearer " + token)
		ctx.On("Context").Return(context.Background())
		ctx.On("Path").Return("/api/projects")
		ctx.On("SetContext", mock.Anything).Return().Run(func(args mock.Arguments) {
			bound = args.Get(0).(context.Context)
		})

		called := false
		require.NoError(t, mw(func(router.Context) error {
			called = true
			return nil
		})(ctx))

		assert.True(t, called)
		require.NotNil(t, bound)
		caller, ok := tracker.CallerFromContext(bound)
		require.True(t, ok)
		assert.Equal(t, manager.ID, caller.UserID)
	})

	t.Run("continues without a caller", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.On("GetString", "Authorization", "").Return("Bearer not.a.token")
		ctx.On("Context").Return(context.Background())
		ctx.On("Path").Return("/api/projects")

		called := false
		require.NoError(t, mw(func(router.Context) error {
			called = true
			return nil
		})(ctx))

		assert.True(t, called)
		ctx.AssertNotCalled(t, "SetContext", mock.Anything)
	})
}
