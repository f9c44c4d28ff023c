package models

import "time"

// Field limits shared by validation and storage.
const (
	MaxProjectNameLength        = 100
	MaxProjectDescriptionLength = 500
	MaxTaskTitleLength          = 200
	MaxTaskDescriptionLength    = 1000
)

// User is an account known to the tracker. Only the role and id take part in authorization.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Ref returns the public identity fields of the user.
func (u User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// UserRef is the identity snippet embedded in project and task payloads.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role,omitempty"`
}

// Project groups tasks and the team working on them.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"created_by"`
	TeamMembers []string  `json:"team_members"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Creator *UserRef  `json:"creator,omitempty"`
	Members []UserRef `json:"members,omitempty"`
}

// HasMember reports whether userID is part of the project team.
func (p Project) HasMember(userID string) bool {
	for _, id := range p.TeamMembers {
		if id == userID {
			return true
		}
	}
	return false
}

// Task represents a single card on the kanban board.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	ProjectID   string     `json:"project_id"`
	AssignedTo  string     `json:"assigned_to"`
	CreatedBy   string     `json:"created_by"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Assignee *UserRef `json:"assignee,omitempty"`
	Creator  *UserRef `json:"creator,omitempty"`
}

// ProjectDetails is a project together with all of its tasks.
type ProjectDetails struct {
	Project Project `json:"project"`
	Tasks   []Task  `json:"tasks"`
}

// Board groups the tasks of a project into kanban columns.
type Board struct {
	Project Project               `json:"project"`
	Columns map[TaskStatus][]Task `json:"columns"`
}

// NewBoard distributes tasks into one column per status, keeping their order.
func NewBoard(project Project, tasks []Task) Board {
	columns := make(map[TaskStatus][]Task, len(TaskStatuses))
	for _, status := range TaskStatuses {
		columns[status] = []Task{}
	}
	for _, t := range tasks {
		columns[t.Status] = append(columns[t.Status], t)
	}
	return Board{Project: project, Columns: columns}
}

// ProjectFilter narrows a project listing. The zero value matches every project.
type ProjectFilter struct {
	// MemberID keeps projects whose team includes the user.
	MemberID string
	// CreatorOrMemberID keeps projects the user created or is a team member of.
	CreatorOrMemberID string
}

// TaskFilter narrows a task listing. Empty fields are ignored.
type TaskFilter struct {
	ProjectID  string
	AssignedTo string
}
