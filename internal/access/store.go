package access

import (
	"context"

	"taskboard/internal/models"
)

// UserStore resolves user references.
type UserStore interface {
	GetUser(ctx context.Context, id string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UsersByID(ctx context.Context, ids []string) (map[string]models.User, error)
	UpdateUser(ctx context.Context, u models.User) error
	DeleteUser(ctx context.Context, id string) error
}

// ProjectStore persists projects and their teams.
type ProjectStore interface {
	ListProjects(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error)
	GetProject(ctx context.Context, id string) (models.Project, error)
	CreateProject(ctx context.Context, p *models.Project) error
	UpdateProject(ctx context.Context, p *models.Project) error
	DeleteProject(ctx context.Context, id string) error
}

// TaskStore persists tasks.
type TaskStore interface {
	ListTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	GetTask(ctx context.Context, id string) (models.Task, error)
	CreateTask(ctx context.Context, t *models.Task) error
	UpdateTask(ctx context.Context, t *models.Task) error
	DeleteTask(ctx context.Context, id string) error
	DeleteProjectTasks(ctx context.Context, projectID string) (int64, error)
}

// Transactor runs fn as one unit of work. Store calls made with the
// context handed to fn belong to that unit.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store is everything the access layer needs from persistence.
type Store interface {
	UserStore
	ProjectStore
	TaskStore
	Transactor
}
