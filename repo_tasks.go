package tracker

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Tasks is the task repository
type Tasks interface {
	TaskStore
	FindByProject(ctx context.Context, projectID uuid.UUID, page PageRequest) (Page[*Task], error)
	FindByAssignedUser(ctx context.Context, userID uuid.UUID, page PageRequest) (Page[*Task], error)
}

type tasks struct {
	db *bun.DB
}

var _ Tasks = (*tasks)(nil)

// NewTasksRepository returns a bun backed Tasks repository
func NewTasksRepository(db *bun.DB) Tasks {
	return &tasks{db: db}
}

func (r *tasks) Create(ctx context.Context, task *Task) (*Task, error) {
	prepareTaskDefaults(task)

	if _, err := r.db.NewInsert().Model(task).Exec(ctx); err != nil {
		return nil, err
	}

	return r.FindByID(ctx, task.ID)
}

func (r *tasks) Update(ctx context.Context, task *Task) (*Task, error) {
	task.UpdatedAt = time.Now().UTC()
	if task.DueDate != nil {
		d := truncateDate(*task.DueDate)
		task.DueDate = &d
	}

	res, err := r.db.NewUpdate().
		Model(task).
		Column("title", "description", "status", "priority", "due_date", "assigned_user_id", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, NotFoundError("task", task.ID)
	}

	return r.FindByID(ctx, task.ID)
}

// FindByID loads the task with its project and assignee
func (r *tasks) FindByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	record := &Task{}
	err := r.db.NewSelect().
		Model(record).
		Relation("Project").
		Relation("AssignedUser").
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || repository.IsRecordNotFound(err) {
			return nil, NotFoundError("task", id)
		}
		return nil, err
	}
	return record, nil
}

func (r *tasks) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*Task)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return NotFoundError("task", id)
	}

	return nil
}

// Find lists tasks matching every set field of filter, ordered by creation
func (r *tasks) Find(ctx context.Context, filter TaskFilter, page PageRequest) (Page[*Task], error) {
	page = page.Normalize()

	records := []*Task{}
	q := r.db.NewSelect().
		Model(&records).
		Relation("Project").
		Relation("AssignedUser")

	if filter.ProjectID != nil {
		q = q.Where("?TableAlias.project_id = ?", *filter.ProjectID)
	}
	if filter.AssignedUserID != nil {
		q = q.Where("?TableAlias.assigned_user_id = ?", *filter.AssignedUserID)
	}
	if filter.Status != nil {
		q = q.Where("?TableAlias.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		q = q.Where("?TableAlias.priority = ?", *filter.Priority)
	}
	if filter.DueBefore != nil {
		q = q.Where("?TableAlias.due_date IS NOT NULL").
			Where("?TableAlias.due_date < ?", truncateDate(*filter.DueBefore))
	}

	total, err := q.
		OrderExpr("?TableAlias.created_at ASC, ?TableAlias.title ASC").
		Limit(page.Size).
		Offset(page.Offset()).
		ScanAndCount(ctx)
	if err != nil {
		return Page[*Task]{}, err
	}

	return NewPage(records, page, total), nil
}

func (r *tasks) FindByProject(ctx context.Context, projectID uuid.UUID, page PageRequest) (Page[*Task], error) {
	return r.Find(ctx, TaskFilter{ProjectID: &projectID}, page)
}

func (r *tasks) FindByAssignedUser(ctx context.Context, userID uuid.UUID, page PageRequest) (Page[*Task], error) {
	return r.Find(ctx, TaskFilter{AssignedUserID: &userID}, page)
}
