package tracker_test

import (
	"testing"
	"time"

	tracker "github.com/goliatone/go-tracker"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := map[string]tracker.Role{
		"ADMIN":   tracker.RoleAdmin,
		"manager": tracker.RoleManager,
		" User ":  tracker.RoleUser,
	}
	for raw, want := range tests {
		role, err := tracker.ParseRole(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, role)
	}

	for _, raw := range []string{"", "ROOT", "ROLE_ADMIN"} {
		_, err := tracker.ParseRole(raw)
		require.Error(t, err, raw)
		assert.True(t, tracker.IsValidationError(err))
	}

	assert.ElementsMatch(t, []tracker.Role{tracker.RoleAdmin, tracker.RoleManager, tracker.RoleUser}, tracker.GetAllRoles())
}

func TestParseTaskStatusAndPriority(t *testing.T) {
	status, err := tracker.ParseTaskStatus("in_progress")
	require.NoError(t, err)
	assert.Equal(t, tracker.StatusInProgress, status)

	_, err = tracker.ParseTaskStatus("BLOCKED")
	assert.True(t, tracker.IsValidationError(err))

	priority, err := tracker.ParseTaskPriority(" high ")
	require.NoError(t, err)
	assert.Equal(t, tracker.PriorityHigh, priority)

	_, err = tracker.ParseTaskPriority("URGENT")
	assert.True(t, tracker.IsValidationError(err))
}

func TestTask_Helpers(t *testing.T) {
	owner := uuid.New()
	assignee := uuid.New()

	task := &tracker.Task{
		Project:        &tracker.Project{OwnerID: owner},
		AssignedUserID: &assignee,
	}
	assert.True(t, task.IsAssignedTo(assignee))
	assert.False(t, task.IsAssignedTo(owner))
	assert.Equal(t, owner, task.OwnerID())

	var missing *tracker.Task
	assert.False(t, missing.IsAssignedTo(assignee))
	assert.Equal(t, uuid.Nil, missing.OwnerID())
	assert.Equal(t, uuid.Nil, (&tracker.Task{}).OwnerID())
}

func TestTaskView(t *testing.T) {
	due := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	assignee := uuid.New()

	view := tracker.NewTaskView(&tracker.Task{
		ID:             uuid.New(),
		Title:          "t",
		DueDate:        &due,
		Project:        &tracker.Project{Name: "Alpha"},
		AssignedUserID: &assignee,
		AssignedUser:   &tracker.User{ID: assignee, Email: "u@example.com", PasswordHash: "secret"},
	})
	assert.Equal(t, "2024-07-01", view.DueDate)
	assert.Equal(t, "Alpha", view.ProjectName)
	assert.Equal(t, "u@example.com", view.AssignedUserEmail)

	assert.Equal(t, tracker.TaskView{}, tracker.NewTaskView(nil))
	assert.Equal(t, tracker.UserView{}, tracker.NewUserView(nil))
	assert.Equal(t, "", tracker.NewProjectView(&tracker.Project{Name: "x"}).OwnerEmail)
}
