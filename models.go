package tracker

import (
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TaskStatus is the workflow state of a task
type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"
)

// IsValid reports whether the status is known
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}

// ParseTaskStatus parses a status path or query value
func ParseTaskStatus(raw string) (TaskStatus, error) {
	status := TaskStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !status.IsValid() {
		return "", goerrors.New("unknown task status: "+raw, goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest).
			WithTextCode("INVALID_STATUS").
			WithMetadata(map[string]any{"status": raw})
	}
	return status, nil
}

// TaskPriority ranks tasks
type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
)

// IsValid reports whether the priority is known
func (p TaskPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// ParseTaskPriority parses a priority path or query value
func ParseTaskPriority(raw string) (TaskPriority, error) {
	priority := TaskPriority(strings.ToUpper(strings.TrimSpace(raw)))
	if !priority.IsValid() {
		return "", goerrors.New("unknown task priority: "+raw, goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest).
			WithTextCode("INVALID_PRIORITY").
			WithMetadata(map[string]any{"priority": raw})
	}
	return priority, nil
}

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string    `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string    `bun:"password_hash,notnull" json:"-"`
	Role          Role      `bun:"user_role,notnull" json:"role,omitempty"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Project is owned by exactly one user and holds tasks
type Project struct {
	bun.BaseModel `bun:"table:projects,alias:prj"`
	ID            uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string    `bun:"name,notnull" json:"name"`
	Description   string    `bun:"description" json:"description,omitempty"`
	OwnerID       uuid.UUID `bun:"owner_id,notnull,type:uuid" json:"owner_id"`
	Owner         *User     `bun:"rel:belongs-to,join:owner_id=id" json:"owner,omitempty"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Task belongs to one project and may be assigned to one user
type Task struct {
	bun.BaseModel  `bun:"table:tasks,alias:tsk"`
	ID             uuid.UUID    `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Title          string       `bun:"title,notnull" json:"title"`
	Description    string       `bun:"description" json:"description,omitempty"`
	Status         TaskStatus   `bun:"status,notnull" json:"status"`
	Priority       TaskPriority `bun:"priority,notnull" json:"priority"`
	DueDate        *time.Time   `bun:"due_date,nullzero" json:"due_date,omitempty"`
	ProjectID      uuid.UUID    `bun:"project_id,notnull,type:uuid" json:"project_id"`
	Project        *Project     `bun:"rel:belongs-to,join:project_id=id" json:"project,omitempty"`
	AssignedUserID *uuid.UUID   `bun:"assigned_user_id,nullzero,type:uuid" json:"assigned_user_id,omitempty"`
	AssignedUser   *User        `bun:"rel:belongs-to,join:assigned_user_id=id" json:"assigned_user,omitempty"`
	CreatedAt      time.Time    `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time    `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// IsAssignedTo reports whether the task is assigned to the given user
func (t *Task) IsAssignedTo(userID uuid.UUID) bool {
	if t == nil || t.AssignedUserID == nil {
		return false
	}
	return *t.AssignedUserID == userID
}

// OwnerID returns the owner of the task's project, uuid.Nil when the
// project relation was not loaded.
func (t *Task) OwnerID() uuid.UUID {
	if t == nil || t.Project == nil {
		return uuid.Nil
	}
	return t.Project.OwnerID
}

func prepareTaskDefaults(task *Task) {
	if task == nil {
		return
	}

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}

	if task.Status == "" {
		task.Status = StatusTodo
	}

	if task.Priority == "" {
		task.Priority = PriorityMedium
	}

	if task.DueDate != nil {
		d := truncateDate(*task.DueDate)
		task.DueDate = &d
	}

	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now
}

func prepareProjectDefaults(project *Project) {
	if project == nil {
		return
	}

	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}

	project.Name = strings.TrimSpace(project.Name)

	now := time.Now().UTC()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now
}

// truncateDate drops the clock part so due dates compare as calendar days
func truncateDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
