package tracker

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the user repository
type Users interface {
	UserStore
	CreateTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	DeleteTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
}

type users struct {
	repo repository.Repository[*User]
	db   *bun.DB
}

var _ Users = (*users)(nil)

// NewUsersRepository returns a bun backed Users repository
func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		repo: repo,
		db:   db,
	}
}

func (a *users) Create(ctx context.Context, user *User) (*User, error) {
	return a.CreateTx(ctx, a.db, user)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user)

	record, err := a.repo.CreateTx(ctx, tx, user)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ConflictError("user", "Email already exists: "+user.Email)
		}
		return nil, err
	}
	return record, nil
}

func (a *users) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := a.repo.GetByID(ctx, id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, NotFoundError("user", id)
		}
		return nil, err
	}
	return user, nil
}

func (a *users) FindByEmail(ctx context.Context, email string) (*User, error) {
	user, err := a.repo.GetByIdentifier(ctx, normalizeEmail(email))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, NotFoundError("user", email)
		}
		return nil, err
	}
	return user, nil
}

func (a *users) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return a.db.NewSelect().
		Model((*User)(nil)).
		Where("?TableAlias.email = ?", normalizeEmail(email)).
		Exists(ctx)
}

func (a *users) FindAll(ctx context.Context) ([]*User, error) {
	records := []*User{}
	err := a.db.NewSelect().
		Model(&records).
		Order("created_at ASC", "email ASC").
		Scan(ctx)
	return records, err
}

func (a *users) FindByRole(ctx context.Context, role Role) ([]*User, error) {
	records := []*User{}
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_role = ?", role).
		Order("created_at ASC", "email ASC").
		Scan(ctx)
	return records, err
}

// Delete removes a user, the projects they own with their tasks, and
// unassigns every task assigned to them.
func (a *users) Delete(ctx context.Context, id uuid.UUID) error {
	return a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return a.DeleteTx(ctx, tx, id)
	})
}

func (a *users) DeleteTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	owned := tx.NewSelect().
		Model((*Project)(nil)).
		Column("id").
		Where("owner_id = ?", id)

	if _, err := tx.NewDelete().
		Model((*Task)(nil)).
		Where("project_id IN (?)", owned).
		Exec(ctx); err != nil {
		return err
	}

	if _, err := tx.NewDelete().
		Model((*Project)(nil)).
		Where("owner_id = ?", id).
		Exec(ctx); err != nil {
		return err
	}

	if _, err := tx.NewUpdate().
		Model((*Task)(nil)).
		Set("assigned_user_id = NULL").
		Set("updated_at = ?", time.Now().UTC()).
		Where("assigned_user_id = ?", id).
		Exec(ctx); err != nil {
		return err
	}

	res, err := tx.NewDelete().
		Model((*User)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return NotFoundError("user", id)
	}

	return nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleUser
	}

	record.Email = normalizeEmail(record.Email)

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "constraint failed: unique")
}
