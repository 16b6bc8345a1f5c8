package tracker

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TaskService applies the access policy around task storage
type TaskService struct {
	serviceBase
	tasks    TaskStore
	projects ProjectStore
	users    IdentityStore
}

// NewTaskService returns a new TaskService
func NewTaskService(tasks TaskStore, projects ProjectStore, users IdentityStore, opts ...ServiceOption) *TaskService {
	return &TaskService{
		serviceBase: newServiceBase(opts...),
		tasks:       tasks,
		projects:    projects,
		users:       users,
	}
}

// CreateTask adds a task to a project the caller may access
func (s *TaskService) CreateTask(ctx context.Context, caller Caller, in TaskCreateInput) (*Task, error) {
	if err := s.guard(ctx, caller, "task creation"); err != nil {
		return nil, err
	}

	if !CanCreateOrDeleteTask(caller.Role) {
		return nil, s.deny(ctx, caller, "task", "create", "Only MANAGER/ADMIN can create tasks", "")
	}

	project, err := s.projects.FindByID(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}

	if !CanAccessProject(project, caller.UserID, caller.Role) {
		return nil, s.deny(ctx, caller, "project", "create_task", "Access denied to project", project.ID.String())
	}

	task := &Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      StatusTodo,
		Priority:    PriorityMedium,
		DueDate:     in.DueDate,
		ProjectID:   project.ID,
	}

	if in.Priority != nil {
		task.Priority = *in.Priority
	}

	if in.AssignedUserID != nil {
		if !CanAssignUsers(caller.Role) {
			return nil, s.deny(ctx, caller, "task", "assign", "Only MANAGER/ADMIN can assign users to tasks", "")
		}
		assignee, err := s.users.FindByID(ctx, *in.AssignedUserID)
		if err != nil {
			return nil, err
		}
		task.AssignedUserID = &assignee.ID
	}

	created, err := s.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	s.activity.emit(ctx, ActivityEventTaskCreated, actorFromCaller(caller), "task", created.ID.String(), map[string]any{
		"project_id": project.ID.String(),
	})

	return created, nil
}

// GetTaskByID returns a task the caller may access
func (s *TaskService) GetTaskByID(ctx context.Context, caller Caller, id uuid.UUID) (*Task, error) {
	if err := s.guard(ctx, caller, "task lookup"); err != nil {
		return nil, err
	}

	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanAccessTask(task, caller.UserID, caller.Role) {
		return nil, s.deny(ctx, caller, "task", "read", "Access denied to task", id.String())
	}

	return task, nil
}

// GetTasksByProject pages through the tasks of a project the caller may access
func (s *TaskService) GetTasksByProject(ctx context.Context, caller Caller, projectID uuid.UUID, page PageRequest) (Page[*Task], error) {
	if err := s.guard(ctx, caller, "task listing"); err != nil {
		return Page[*Task]{}, err
	}

	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return Page[*Task]{}, err
	}

	if !CanAccessProject(project, caller.UserID, caller.Role) {
		return Page[*Task]{}, s.deny(ctx, caller, "project", "list_tasks", "Access denied to project", projectID.String())
	}

	return s.tasks.FindByProject(ctx, project.ID, page)
}

// GetTasksByAssignedUser pages through the tasks assigned to userID. Only
// ADMIN may look at another user's tasks.
func (s *TaskService) GetTasksByAssignedUser(ctx context.Context, caller Caller, userID uuid.UUID, page PageRequest) (Page[*Task], error) {
	if err := s.guard(ctx, caller, "task listing"); err != nil {
		return Page[*Task]{}, err
	}

	if !CanViewAssignedTasks(userID, caller.UserID, caller.Role) {
		return Page[*Task]{}, s.deny(ctx, caller, "task", "list_assigned", "Access denied to view other user's tasks", userID.String())
	}

	assignee, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return Page[*Task]{}, err
	}

	return s.tasks.FindByAssignedUser(ctx, assignee.ID, page)
}

// GetTasksByStatus lists tasks in a status
func (s *TaskService) GetTasksByStatus(ctx context.Context, caller Caller, status TaskStatus, page PageRequest) (Page[*Task], error) {
	return s.listScoped(ctx, caller, TaskFilter{Status: &status}, page)
}

// GetTasksByPriority lists tasks with a priority
func (s *TaskService) GetTasksByPriority(ctx context.Context, caller Caller, priority TaskPriority, page PageRequest) (Page[*Task], error) {
	return s.listScoped(ctx, caller, TaskFilter{Priority: &priority}, page)
}

// GetTasksDueBefore lists tasks whose due date is strictly before date
func (s *TaskService) GetTasksDueBefore(ctx context.Context, caller Caller, date time.Time, page PageRequest) (Page[*Task], error) {
	return s.listScoped(ctx, caller, TaskFilter{DueBefore: &date}, page)
}

// listScoped restricts non ADMIN callers to their assigned tasks
func (s *TaskService) listScoped(ctx context.Context, caller Caller, filter TaskFilter, page PageRequest) (Page[*Task], error) {
	if err := s.guard(ctx, caller, "task listing"); err != nil {
		return Page[*Task]{}, err
	}

	if !CanListAllTasks(caller.Role) {
		self := caller.UserID
		filter.AssignedUserID = &self
	}

	return s.tasks.Find(ctx, filter, page)
}

// UpdateTask applies a partial update. Checks run in order: task access,
// status changes by the assignee only, assignee changes by MANAGER/ADMIN
// only, and the new assignee must exist. An empty update returns the task
// without writing.
func (s *TaskService) UpdateTask(ctx context.Context, caller Caller, id uuid.UUID, in TaskUpdateInput) (*Task, error) {
	if err := s.guard(ctx, caller, "task update"); err != nil {
		return nil, err
	}

	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanAccessTask(task, caller.UserID, caller.Role) {
		return nil, s.deny(ctx, caller, "task", "update", "Access denied to task", id.String())
	}

	if in.IsEmpty() {
		return task, nil
	}

	if in.Status != nil && !CanUpdateStatus(task, caller.UserID) {
		return nil, s.deny(ctx, caller, "task", "update_status", "Only assigned user can update task status", id.String())
	}

	if in.AssignedUserID != nil && !CanAssignUsers(caller.Role) {
		return nil, s.deny(ctx, caller, "task", "assign", "Only MANAGER/ADMIN can assign users to tasks", id.String())
	}

	if in.AssignedUserID != nil {
		assignee, err := s.users.FindByID(ctx, *in.AssignedUserID)
		if err != nil {
			return nil, err
		}
		task.AssignedUserID = &assignee.ID
		task.AssignedUser = assignee
	}

	if in.Title != nil {
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Status != nil {
		task.Status = *in.Status
	}
	if in.DueDate != nil {
		due := *in.DueDate
		task.DueDate = &due
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
	}

	updated, err := s.tasks.Update(ctx, task)
	if err != nil {
		return nil, err
	}

	meta := map[string]any{}
	if in.Status != nil {
		meta["status"] = *in.Status
	}
	if in.AssignedUserID != nil {
		meta["assigned_user_id"] = in.AssignedUserID.String()
	}
	s.activity.emit(ctx, ActivityEventTaskUpdated, actorFromCaller(caller), "task", id.String(), meta)

	return updated, nil
}

// UpdateTaskStatus changes only the status of a task
func (s *TaskService) UpdateTaskStatus(ctx context.Context, caller Caller, id uuid.UUID, status TaskStatus) (*Task, error) {
	return s.UpdateTask(ctx, caller, id, TaskUpdateInput{Status: &status})
}

// DeleteTask removes a task
func (s *TaskService) DeleteTask(ctx context.Context, caller Caller, id uuid.UUID) error {
	if err := s.guard(ctx, caller, "task deletion"); err != nil {
		return err
	}

	if !CanCreateOrDeleteTask(caller.Role) {
		return s.deny(ctx, caller, "task", "delete", "Only MANAGER/ADMIN can delete tasks", id.String())
	}

	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !CanAccessTask(task, caller.UserID, caller.Role) {
		return s.deny(ctx, caller, "task", "delete", "Access denied to task", id.String())
	}

	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}

	s.activity.emit(ctx, ActivityEventTaskDeleted, actorFromCaller(caller), "task", id.String(), map[string]any{
		"project_id": task.ProjectID.String(),
	})

	return nil
}
