package tracker

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format of task due dates
const DateLayout = "2006-01-02"

// UserView is the public representation of a user
type UserView struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserView drops credentials from a user
func NewUserView(user *User) UserView {
	if user == nil {
		return UserView{}
	}
	return UserView{
		ID:        user.ID,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// ProjectView is the public representation of a project
type ProjectView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     uuid.UUID `json:"owner_id"`
	OwnerEmail  string    `json:"owner_email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewProjectView maps a project, the owner relation is optional
func NewProjectView(project *Project) ProjectView {
	if project == nil {
		return ProjectView{}
	}
	view := ProjectView{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		OwnerID:     project.OwnerID,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
	if project.Owner != nil {
		view.OwnerEmail = project.Owner.Email
	}
	return view
}

// TaskView is the public representation of a task
type TaskView struct {
	ID                uuid.UUID    `json:"id"`
	Title             string       `json:"title"`
	Description       string       `json:"description"`
	Status            TaskStatus   `json:"status"`
	Priority          TaskPriority `json:"priority"`
	DueDate           string       `json:"due_date,omitempty"`
	ProjectID         uuid.UUID    `json:"project_id"`
	ProjectName       string       `json:"project_name,omitempty"`
	AssignedUserID    *uuid.UUID   `json:"assigned_user_id,omitempty"`
	AssignedUserEmail string       `json:"assigned_user_email,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// NewTaskView maps a task with whatever relations were loaded
func NewTaskView(task *Task) TaskView {
	if task == nil {
		return TaskView{}
	}
	view := TaskView{
		ID:             task.ID,
		Title:          task.Title,
		Description:    task.Description,
		Status:         task.Status,
		Priority:       task.Priority,
		ProjectID:      task.ProjectID,
		AssignedUserID: task.AssignedUserID,
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
	}
	if task.DueDate != nil {
		view.DueDate = task.DueDate.UTC().Format(DateLayout)
	}
	if task.Project != nil {
		view.ProjectName = task.Project.Name
	}
	if task.AssignedUser != nil {
		view.AssignedUserEmail = task.AssignedUser.Email
	}
	return view
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token   string   `json:"token"`
	Message string   `json:"message"`
	User    UserView `json:"user"`
}
