package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an identity
type Identity interface {
	ID() string
	Email() string
	Role() string
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetAudience() []string
	GetTokenLookup() string
	GetAuthScheme() string
	GetPublicPaths() []string
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// IdentityStore is the lookup surface the pipeline and services need for users
type IdentityStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// UserStore persists users
type UserStore interface {
	IdentityStore
	Create(ctx context.Context, user *User) (*User, error)
	FindAll(ctx context.Context) ([]*User, error)
	FindByRole(ctx context.Context, role Role) ([]*User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProjectStore persists projects
type ProjectStore interface {
	Create(ctx context.Context, project *Project) (*Project, error)
	Update(ctx context.Context, project *Project) (*Project, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindAll(ctx context.Context) ([]*Project, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*Project, error)
	FindPageByOwnerID(ctx context.Context, ownerID uuid.UUID, page PageRequest) (Page[*Project], error)
	ExistsByNameAndOwner(ctx context.Context, name string, ownerID uuid.UUID) (bool, error)
}

// TaskFilter narrows task listings. Nil fields are ignored.
type TaskFilter struct {
	ProjectID      *uuid.UUID
	AssignedUserID *uuid.UUID
	Status         *TaskStatus
	Priority       *TaskPriority
	DueBefore      *time.Time
}

// TaskStore persists tasks
type TaskStore interface {
	Create(ctx context.Context, task *Task) (*Task, error)
	Update(ctx context.Context, task *Task) (*Task, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Find(ctx context.Context, filter TaskFilter, page PageRequest) (Page[*Task], error)
	FindByProject(ctx context.Context, projectID uuid.UUID, page PageRequest) (Page[*Task], error)
	FindByAssignedUser(ctx context.Context, userID uuid.UUID, page PageRequest) (Page[*Task], error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] TRACKER "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] TRACKER "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] TRACKER "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] TRACKER "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
