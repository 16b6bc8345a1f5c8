package tracker

import (
	"context"

	"github.com/google/uuid"
)

// UserService exposes user administration
type UserService struct {
	serviceBase
	users UserStore
}

// NewUserService returns a new UserService
func NewUserService(users UserStore, opts ...ServiceOption) *UserService {
	return &UserService{
		serviceBase: newServiceBase(opts...),
		users:       users,
	}
}

// GetAllUsers lists every user, ADMIN only
func (s *UserService) GetAllUsers(ctx context.Context, caller Caller) ([]*User, error) {
	if err := s.guard(ctx, caller, "user listing"); err != nil {
		return nil, err
	}

	if !CanManageUsers(caller.Role) {
		return nil, s.deny(ctx, caller, "user", "list", "Only ADMIN can list users", "")
	}

	return s.users.FindAll(ctx)
}

// GetUserByID returns a user to ADMIN or to the user themself
func (s *UserService) GetUserByID(ctx context.Context, caller Caller, id uuid.UUID) (*User, error) {
	if err := s.guard(ctx, caller, "user lookup"); err != nil {
		return nil, err
	}

	if !CanViewUser(id, caller.UserID, caller.Role) {
		return nil, s.deny(ctx, caller, "user", "read", "Access denied to user", id.String())
	}

	return s.users.FindByID(ctx, id)
}

// GetUsersByRole lists users holding role, ADMIN only
func (s *UserService) GetUsersByRole(ctx context.Context, caller Caller, role Role) ([]*User, error) {
	if err := s.guard(ctx, caller, "user listing"); err != nil {
		return nil, err
	}

	if !CanManageUsers(caller.Role) {
		return nil, s.deny(ctx, caller, "user", "list", "Only ADMIN can list users", "")
	}

	return s.users.FindByRole(ctx, role)
}

// DeleteUser removes a user with the projects they own, ADMIN only
func (s *UserService) DeleteUser(ctx context.Context, caller Caller, id uuid.UUID) error {
	if err := s.guard(ctx, caller, "user deletion"); err != nil {
		return err
	}

	if !CanManageUsers(caller.Role) {
		return s.deny(ctx, caller, "user", "delete", "Only ADMIN can delete users", id.String())
	}

	if _, err := s.users.FindByID(ctx, id); err != nil {
		return err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.activity.emit(ctx, ActivityEventUserDeleted, actorFromCaller(caller), "user", id.String(), nil)

	return nil
}
