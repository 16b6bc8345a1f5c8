package tracker_test

import (
	"context"
	"testing"

	tracker "github.com/goliatone/go-tracker"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_AdminOnlyListings(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	admin := app.register(t, "admin@example.com", tracker.RoleAdmin)
	manager := app.register(t, "m@example.com", tracker.RoleManager)
	app.register(t, "u1@example.com", tracker.RoleUser)
	app.register(t, "u2@example.com", tracker.RoleUser)

	all, err := app.users.GetAllUsers(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	users, err := app.users.GetUsersByRole(ctx, admin, tracker.RoleUser)
	require.NoError(t, err)
	assert.Len(t, users, 2)
	for _, u := range users {
		assert.Equal(t, tracker.RoleUser, u.Role)
	}

	_, err = app.users.GetAllUsers(ctx, manager)
	assert.True(t, tracker.IsAccessDenied(err))

	_, err = app.users.GetUsersByRole(ctx, manager, tracker.RoleManager)
	assert.True(t, tracker.IsAccessDenied(err))

	assert.Contains(t, app.events.types(), tracker.ActivityEventAccessDenied)
}

func TestUserService_GetUserByID(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	admin := app.register(t, "admin@example.com", tracker.RoleAdmin)
	worker := app.register(t, "u@example.com", tracker.RoleUser)
	other := app.register(t, "o@example.com", tracker.RoleUser)

	self, err := app.users.GetUserByID(ctx, worker, worker.UserID)
	require.NoError(t, err)
	assert.Equal(t, "u@example.com", self.Email)
	assert.Equal(t, "u@example.com", tracker.NewUserView(self).Email)

	_, err = app.users.GetUserByID(ctx, worker, other.UserID)
	assert.True(t, tracker.IsAccessDenied(err))

	found, err := app.users.GetUserByID(ctx, admin, other.UserID)
	require.NoError(t, err)
	assert.Equal(t, other.UserID, found.ID)

	_, err = app.users.GetUserByID(ctx, admin, uuid.New())
	assert.True(t, tracker.IsNotFound(err))

	_, err = app.users.GetUserByID(ctx, tracker.Caller{}, worker.UserID)
	assert.ErrorIs(t, err, tracker.ErrUnauthenticated)
}

func TestUserService_DeleteUser(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	admin := app.register(t, "admin@example.com", tracker.RoleAdmin)
	manager := app.register(t, "m@example.com", tracker.RoleManager)
	other := app.register(t, "o@example.com", tracker.RoleManager)
	worker := app.register(t, "u@example.com", tracker.RoleUser)

	owned := app.createProject(t, manager, "Owned")
	ownedTask := app.createTask(t, manager, owned.ID, "goes away", nil)

	kept := app.createProject(t, other, "Kept")
	assigned := app.createTask(t, other, kept.ID, "loses assignee", &manager.UserID)

	err := app.users.DeleteUser(ctx, manager, worker.UserID)
	assert.True(t, tracker.IsAccessDenied(err))

	require.NoError(t, app.users.DeleteUser(ctx, admin, manager.UserID))

	_, err = app.repo.Users().FindByID(ctx, manager.UserID)
	assert.True(t, tracker.IsNotFound(err))

	_, err = app.repo.Projects().FindByID(ctx, owned.ID)
	assert.True(t, tracker.IsNotFound(err))

	_, err = app.repo.Tasks().FindByID(ctx, ownedTask.ID)
	assert.True(t, tracker.IsNotFound(err))

	survivor, err := app.repo.Tasks().FindByID(ctx, assigned.ID)
	require.NoError(t, err)
	assert.Nil(t, survivor.AssignedUserID)

	err = app.users.DeleteUser(ctx, admin, manager.UserID)
	assert.True(t, tracker.IsNotFound(err))

	assert.Contains(t, app.events.types(), tracker.ActivityEventUserDeleted)
}
