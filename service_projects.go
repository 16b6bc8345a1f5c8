package tracker

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// ProjectService applies the access policy around project storage
type ProjectService struct {
	serviceBase
	projects ProjectStore
}

// NewProjectService returns a new ProjectService
func NewProjectService(projects ProjectStore, opts ...ServiceOption) *ProjectService {
	return &ProjectService{
		serviceBase: newServiceBase(opts...),
		projects:    projects,
	}
}

// CreateProject creates a project owned by the caller
func (s *ProjectService) CreateProject(ctx context.Context, caller Caller, in ProjectInput) (*Project, error) {
	if err := s.guard(ctx, caller, "project creation"); err != nil {
		return nil, err
	}

	if !CanCreateOrDeleteProject(caller.Role) {
		return nil, s.deny(ctx, caller, "project", "create", "Only MANAGER/ADMIN can create projects", "")
	}

	exists, err := s.projects.ExistsByNameAndOwner(ctx, in.Name, caller.UserID)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check project name")
	}
	if exists {
		return nil, projectNameConflict(in.Name)
	}

	project, err := s.projects.Create(ctx, &Project{
		Name:        in.Name,
		Description: in.Description,
		OwnerID:     caller.UserID,
	})
	if err != nil {
		return nil, err
	}

	s.activity.emit(ctx, ActivityEventProjectCreated, actorFromCaller(caller), "project", project.ID.String(), map[string]any{
		"name": project.Name,
	})

	return project, nil
}

// GetProjectByID returns a project the caller may access
func (s *ProjectService) GetProjectByID(ctx context.Context, caller Caller, id uuid.UUID) (*Project, error) {
	if err := s.guard(ctx, caller, "project lookup"); err != nil {
		return nil, err
	}

	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanAccessProject(project, caller.UserID, caller.Role) {
		return nil, s.deny(ctx, caller, "project", "read", "Access denied to project", id.String())
	}

	return project, nil
}

// GetAllProjects returns every project for ADMIN and the caller's own otherwise
func (s *ProjectService) GetAllProjects(ctx context.Context, caller Caller) ([]*Project, error) {
	if err := s.guard(ctx, caller, "project listing"); err != nil {
		return nil, err
	}

	if CanListAllProjects(caller.Role) {
		return s.projects.FindAll(ctx)
	}

	return s.projects.FindByOwnerID(ctx, caller.UserID)
}

// GetMyProjects pages through the projects the caller owns
func (s *ProjectService) GetMyProjects(ctx context.Context, caller Caller, page PageRequest) (Page[*Project], error) {
	if err := s.guard(ctx, caller, "project listing"); err != nil {
		return Page[*Project]{}, err
	}

	return s.projects.FindPageByOwnerID(ctx, caller.UserID, page)
}

// UpdateProject renames or redescribes a project
func (s *ProjectService) UpdateProject(ctx context.Context, caller Caller, id uuid.UUID, in ProjectInput) (*Project, error) {
	if err := s.guard(ctx, caller, "project update"); err != nil {
		return nil, err
	}

	if !CanUpdateProject(caller.Role) {
		return nil, s.deny(ctx, caller, "project", "update", "Only MANAGER/ADMIN can update projects", id.String())
	}

	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanAccessProject(project, caller.UserID, caller.Role) {
		return nil, s.deny(ctx, caller, "project", "update", "Access denied to project", id.String())
	}

	if in.Name != project.Name {
		exists, err := s.projects.ExistsByNameAndOwner(ctx, in.Name, project.OwnerID)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check project name")
		}
		if exists {
			return nil, projectNameConflict(in.Name)
		}
	}

	project.Name = in.Name
	project.Description = in.Description

	updated, err := s.projects.Update(ctx, project)
	if err != nil {
		return nil, err
	}

	s.activity.emit(ctx, ActivityEventProjectUpdated, actorFromCaller(caller), "project", id.String(), nil)

	return updated, nil
}

// DeleteProject removes a project and its tasks
func (s *ProjectService) DeleteProject(ctx context.Context, caller Caller, id uuid.UUID) error {
	if err := s.guard(ctx, caller, "project deletion"); err != nil {
		return err
	}

	if !CanCreateOrDeleteProject(caller.Role) {
		return s.deny(ctx, caller, "project", "delete", "Only MANAGER/ADMIN can delete projects", id.String())
	}

	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !CanAccessProject(project, caller.UserID, caller.Role) {
		return s.deny(ctx, caller, "project", "delete", "Access denied to project", id.String())
	}

	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}

	s.activity.emit(ctx, ActivityEventProjectDeleted, actorFromCaller(caller), "project", id.String(), map[string]any{
		"name": project.Name,
	})

	return nil
}
