package access

import "taskboard/internal/models"

// Every policy switches over the closed set of roles. A role outside the set
// falls to the default branch, which always denies.

// projectScope returns the listing filter for u. ok is false when u may see nothing.
func projectScope(u models.User) (filter models.ProjectFilter, ok bool) {
	switch u.Role {
	case models.RoleAdmin:
		return models.ProjectFilter{}, true
	case models.RoleManager:
		return models.ProjectFilter{CreatorOrMemberID: u.ID}, true
	case models.RoleMember:
		return models.ProjectFilter{MemberID: u.ID}, true
	default:
		return models.ProjectFilter{}, false
	}
}

func canViewProject(u models.User, p models.Project) bool {
	switch u.Role {
	case models.RoleAdmin, models.RoleManager:
		return true
	case models.RoleMember:
		return p.HasMember(u.ID)
	default:
		return false
	}
}

func canCreateProject(u models.User) bool {
	switch u.Role {
	case models.RoleAdmin, models.RoleManager:
		return true
	case models.RoleMember:
		return false
	default:
		return false
	}
}

// canManageProject covers project update, project delete and task creation:
// admins, or whoever created the project.
func canManageProject(u models.User, p models.Project) bool {
	switch u.Role {
	case models.RoleAdmin:
		return true
	case models.RoleManager, models.RoleMember:
		return p.CreatedBy == u.ID
	default:
		return false
	}
}

func taskScope(u models.User) (filter models.TaskFilter, ok bool) {
	switch u.Role {
	case models.RoleAdmin, models.RoleManager:
		return models.TaskFilter{}, true
	case models.RoleMember:
		return models.TaskFilter{AssignedTo: u.ID}, true
	default:
		return models.TaskFilter{}, false
	}
}

func canViewTask(u models.User, t models.Task) bool {
	switch u.Role {
	case models.RoleAdmin, models.RoleManager:
		return true
	case models.RoleMember:
		return t.AssignedTo == u.ID
	default:
		return false
	}
}

// editScope is the set of task fields a user may change.
type editScope int

const (
	editNone editScope = iota
	// editWorkflow allows status and description only.
	editWorkflow
	editAll
)

// taskEditScope grants full edits to any admin or manager, including managers
// of unrelated projects.
func taskEditScope(u models.User, t models.Task) editScope {
	switch u.Role {
	case models.RoleAdmin, models.RoleManager:
		return editAll
	case models.RoleMember:
		if t.AssignedTo == u.ID {
			return editWorkflow
		}
		return editNone
	default:
		return editNone
	}
}

func canDeleteTask(u models.User) bool {
	switch u.Role {
	case models.RoleAdmin, models.RoleManager:
		return true
	case models.RoleMember:
		return false
	default:
		return false
	}
}

func canManageUsers(u models.User) bool {
	switch u.Role {
	case models.RoleAdmin:
		return true
	case models.RoleManager, models.RoleMember:
		return false
	default:
		return false
	}
}
