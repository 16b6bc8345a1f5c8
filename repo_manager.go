package tracker

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// Validator checks that a component is fully wired
type Validator interface {
	Validate() error
	MustValidate()
}

// TransactionManager runs work inside a database transaction
type TransactionManager interface {
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
}

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	Validator
	TransactionManager
	Users() Users
	Projects() Projects
	Tasks() Tasks
}

type mngr struct {
	db       *bun.DB
	users    Users
	projects Projects
	tasks    Tasks
}

// NewRepositoryManager wires the bun backed repositories
func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:       db,
		users:    NewUsersRepository(db),
		projects: NewProjectsRepository(db),
		tasks:    NewTasksRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.projects == nil {
		return errors.New("repository projects should be initialized")
	}

	if m.tasks == nil {
		return errors.New("repository tasks should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Projects() Projects {
	return m.projects
}

func (m mngr) Tasks() Tasks {
	return m.tasks
}
