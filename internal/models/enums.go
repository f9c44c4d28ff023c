package models

// Role determines the default visibility and permission scope of a user.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
)

// Roles lists every known role.
var Roles = []Role{RoleAdmin, RoleManager, RoleMember}

// TaskStatus is a kanban column. Any status may move to any other.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in-progress"
	StatusDone       TaskStatus = "done"
)

// TaskStatuses enumerates the statuses supported by the board columns, in display order.
var TaskStatuses = []TaskStatus{StatusTodo, StatusInProgress, StatusDone}

// Priority ranks tasks inside a column.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}
