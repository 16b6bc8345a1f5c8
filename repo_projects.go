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

// Projects is the project repository
type Projects interface {
	ProjectStore
	DeleteTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
}

type projects struct {
	db *bun.DB
}

var _ Projects = (*projects)(nil)

// NewProjectsRepository returns a bun backed Projects repository
func NewProjectsRepository(db *bun.DB) Projects {
	return &projects{db: db}
}

func (p *projects) Create(ctx context.Context, project *Project) (*Project, error) {
	prepareProjectDefaults(project)

	if _, err := p.db.NewInsert().Model(project).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, projectNameConflict(project.Name)
		}
		return nil, err
	}

	return p.FindByID(ctx, project.ID)
}

func (p *projects) Update(ctx context.Context, project *Project) (*Project, error) {
	project.UpdatedAt = time.Now().UTC()

	res, err := p.db.NewUpdate().
		Model(project).
		Column("name", "description", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, projectNameConflict(project.Name)
		}
		return nil, err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, NotFoundError("project", project.ID)
	}

	return p.FindByID(ctx, project.ID)
}

func (p *projects) FindByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	record := &Project{}
	err := p.db.NewSelect().
		Model(record).
		Relation("Owner").
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || repository.IsRecordNotFound(err) {
			return nil, NotFoundError("project", id)
		}
		return nil, err
	}
	return record, nil
}

// Delete removes the project and its tasks
func (p *projects) Delete(ctx context.Context, id uuid.UUID) error {
	return p.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return p.DeleteTx(ctx, tx, id)
	})
}

func (p *projects) DeleteTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	if _, err := tx.NewDelete().
		Model((*Task)(nil)).
		Where("project_id = ?", id).
		Exec(ctx); err != nil {
		return err
	}

	res, err := tx.NewDelete().
		Model((*Project)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return NotFoundError("project", id)
	}

	return nil
}

func (p *projects) FindAll(ctx context.Context) ([]*Project, error) {
	records := []*Project{}
	err := p.db.NewSelect().
		Model(&records).
		Relation("Owner").
		OrderExpr("?TableAlias.created_at ASC, ?TableAlias.name ASC").
		Scan(ctx)
	return records, err
}

func (p *projects) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*Project, error) {
	records := []*Project{}
	err := p.db.NewSelect().
		Model(&records).
		Relation("Owner").
		Where("?TableAlias.owner_id = ?", ownerID).
		OrderExpr("?TableAlias.created_at ASC, ?TableAlias.name ASC").
		Scan(ctx)
	return records, err
}

func (p *projects) FindPageByOwnerID(ctx context.Context, ownerID uuid.UUID, page PageRequest) (Page[*Project], error) {
	page = page.Normalize()

	records := []*Project{}
	total, err := p.db.NewSelect().
		Model(&records).
		Relation("Owner").
		Where("?TableAlias.owner_id = ?", ownerID).
		OrderExpr("?TableAlias.created_at ASC, ?TableAlias.name ASC").
		Limit(page.Size).
		Offset(page.Offset()).
		ScanAndCount(ctx)
	if err != nil {
		return Page[*Project]{}, err
	}

	return NewPage(records, page, total), nil
}

func (p *projects) ExistsByNameAndOwner(ctx context.Context, name string, ownerID uuid.UUID) (bool, error) {
	return p.db.NewSelect().
		Model((*Project)(nil)).
		Where("?TableAlias.owner_id = ?", ownerID).
		Where("?TableAlias.name = ?", name).
		Exists(ctx)
}

func projectNameConflict(name string) error {
	return ConflictError("project", "Project with name '"+name+"' already exists for this user")
}
