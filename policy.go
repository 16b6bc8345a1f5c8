package tracker

import "github.com/google/uuid"

// Access policy. Every role and ownership decision in the tracker is made
// here, the functions are pure and take the caller explicitly.

// CanAccessProject allows ADMIN and the project owner
func CanAccessProject(project *Project, callerID uuid.UUID, role Role) bool {
	if project == nil {
		return false
	}
	if role == RoleAdmin {
		return true
	}
	return callerID != uuid.Nil && project.OwnerID == callerID
}

// CanAccessTask allows ADMIN, the owner of the task's project and the assignee.
// The task must be loaded with its project.
func CanAccessTask(task *Task, callerID uuid.UUID, role Role) bool {
	if task == nil {
		return false
	}
	if role == RoleAdmin {
		return true
	}
	if callerID == uuid.Nil {
		return false
	}
	return task.OwnerID() == callerID || task.IsAssignedTo(callerID)
}

// CanAssignUsers allows MANAGER and ADMIN to set or change a task's assignee
func CanAssignUsers(role Role) bool {
	return role == RoleManager || role == RoleAdmin
}

// CanUpdateStatus allows only the assignee. ADMIN gets no override here.
func CanUpdateStatus(task *Task, callerID uuid.UUID) bool {
	if callerID == uuid.Nil {
		return false
	}
	return task.IsAssignedTo(callerID)
}

// CanCreateOrDeleteProject allows MANAGER and ADMIN
func CanCreateOrDeleteProject(role Role) bool {
	return role == RoleManager || role == RoleAdmin
}

// CanCreateOrDeleteTask allows MANAGER and ADMIN
func CanCreateOrDeleteTask(role Role) bool {
	return role == RoleManager || role == RoleAdmin
}

// CanUpdateProject allows MANAGER and ADMIN, ownership is checked separately
func CanUpdateProject(role Role) bool {
	return role == RoleManager || role == RoleAdmin
}

// CanListAllProjects allows ADMIN to see every project
func CanListAllProjects(role Role) bool {
	return role == RoleAdmin
}

// CanListAllTasks allows ADMIN to list tasks regardless of assignment
func CanListAllTasks(role Role) bool {
	return role == RoleAdmin
}

// CanViewAssignedTasks allows ADMIN and the target user
func CanViewAssignedTasks(targetUserID, callerID uuid.UUID, role Role) bool {
	if role == RoleAdmin {
		return true
	}
	return callerID != uuid.Nil && targetUserID == callerID
}

// CanManageUsers allows ADMIN to list and delete users
func CanManageUsers(role Role) bool {
	return role == RoleAdmin
}

// CanViewUser allows ADMIN and the user themself
func CanViewUser(targetID, callerID uuid.UUID, role Role) bool {
	if role == RoleAdmin {
		return true
	}
	return callerID != uuid.Nil && targetID == callerID
}
