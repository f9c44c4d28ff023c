package access

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"taskboard/internal/domain"
	"taskboard/internal/models"
)

// Projects applies the project visibility and ownership rules on top of the store.
type Projects struct {
	store  Store
	logger *slog.Logger
}

// NewProjects constructs the project access service.
func NewProjects(store Store, logger *slog.Logger) *Projects {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Projects{store: store, logger: logger}
}

// ProjectInput carries the fields of a new project.
type ProjectInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	TeamMembers []string `json:"team_members"`
}

// ProjectPatch carries the fields to overwrite on an existing project. Nil
// fields are kept; a non-nil empty TeamMembers clears the team.
type ProjectPatch struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	TeamMembers []string `json:"team_members"`
}

// List returns the projects visible to u, newest first.
func (a *Projects) List(ctx context.Context, u models.User) ([]models.Project, error) {
	filter, ok := projectScope(u)
	if !ok {
		return []models.Project{}, nil
	}
	projects, err := a.store.ListProjects(ctx, filter)
	if err != nil {
		return nil, err
	}

	var ids [][]string
	for _, p := range projects {
		ids = append(ids, []string{p.CreatedBy}, p.TeamMembers)
	}
	m, err := refs(ctx, a.store, ids...)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		enrichProject(&projects[i], m)
	}
	return projects, nil
}

// Get returns a project with its tasks. Admins and managers may view any
// project; members only those whose team they are in.
func (a *Projects) Get(ctx context.Context, u models.User, id string) (models.ProjectDetails, error) {
	project, err := a.view(ctx, u, id)
	if err != nil {
		return models.ProjectDetails{}, err
	}

	tasks, err := a.store.ListTasks(ctx, models.TaskFilter{ProjectID: project.ID})
	if err != nil {
		return models.ProjectDetails{}, err
	}

	m, err := refs(ctx, a.store, []string{project.CreatedBy}, project.TeamMembers, taskUserIDs(tasks))
	if err != nil {
		return models.ProjectDetails{}, err
	}
	enrichProject(&project, m)
	enrichTasks(tasks, m)

	return models.ProjectDetails{Project: project, Tasks: tasks}, nil
}

// view loads a project and checks that u may see it.
func (a *Projects) view(ctx context.Context, u models.User, id string) (models.Project, error) {
	project, err := a.store.GetProject(ctx, id)
	if err != nil {
		return models.Project{}, err
	}
	if !canViewProject(u, project) {
		return models.Project{}, domain.Forbidden("project", "view")
	}
	return project, nil
}

// manageable loads a project and checks that u is an admin or its creator.
func (a *Projects) manageable(ctx context.Context, u models.User, id, action string) (models.Project, error) {
	project, err := a.store.GetProject(ctx, id)
	if err != nil {
		return models.Project{}, err
	}
	if !canManageProject(u, project) {
		return models.Project{}, domain.Forbidden("project", action)
	}
	return project, nil
}

// Create stores a new project owned by u. Only admins and managers may create projects.
func (a *Projects) Create(ctx context.Context, u models.User, in ProjectInput) (models.Project, error) {
	if !canCreateProject(u) {
		return models.Project{}, domain.Forbidden("project", "create")
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.RuneLength(1, models.MaxProjectNameLength)),
		validation.Field(&in.Description, validation.RuneLength(0, models.MaxProjectDescriptionLength)),
		validation.Field(&in.TeamMembers, validation.Each(validation.Required, idRule)),
	)
	if err != nil {
		return models.Project{}, domain.FromValidation("project", err)
	}

	members := uniqueIDs(in.TeamMembers)
	if err := a.checkUsersExist(ctx, members); err != nil {
		return models.Project{}, err
	}

	project := models.Project{
		Name:        in.Name,
		Description: in.Description,
		CreatedBy:   u.ID,
		TeamMembers: members,
	}
	if err := a.store.CreateProject(ctx, &project); err != nil {
		return models.Project{}, err
	}

	a.logger.Info("project created",
		slog.String("project_id", project.ID),
		slog.String("user_id", u.ID),
	)
	return a.enriched(ctx, project)
}

// Update overwrites the supplied fields. Only admins and the project creator may update.
func (a *Projects) Update(ctx context.Context, u models.User, id string, patch ProjectPatch) (models.Project, error) {
	patch.Name = trimPtr(patch.Name)
	patch.Description = trimPtr(patch.Description)
	err := validation.ValidateStruct(&patch,
		validation.Field(&patch.Name, validation.NilOrNotEmpty, validation.RuneLength(1, models.MaxProjectNameLength)),
		validation.Field(&patch.Description, validation.RuneLength(0, models.MaxProjectDescriptionLength)),
		validation.Field(&patch.TeamMembers, validation.Each(validation.Required, idRule)),
	)
	if err != nil {
		return models.Project{}, domain.FromValidation("project", err)
	}

	project, err := a.manageable(ctx, u, id, "update")
	if err != nil {
		return models.Project{}, err
	}

	if patch.Name != nil {
		project.Name = *patch.Name
	}
	if patch.Description != nil {
		project.Description = *patch.Description
	}
	if patch.TeamMembers != nil {
		members := uniqueIDs(patch.TeamMembers)
		if err := a.checkUsersExist(ctx, members); err != nil {
			return models.Project{}, err
		}
		project.TeamMembers = members
	}

	if err := a.store.UpdateProject(ctx, &project); err != nil {
		return models.Project{}, err
	}

	a.logger.Info("project updated",
		slog.String("project_id", project.ID),
		slog.String("user_id", u.ID),
	)
	return a.enriched(ctx, project)
}

// Delete removes a project and every task in it as one unit of work. Tasks go
// first so that a failure can never leave tasks pointing at a missing project.
func (a *Projects) Delete(ctx context.Context, u models.User, id string) error {
	project, err := a.manageable(ctx, u, id, "delete")
	if err != nil {
		return err
	}

	var removed int64
	err = a.store.WithinTx(ctx, func(ctx context.Context) error {
		n, err := a.store.DeleteProjectTasks(ctx, project.ID)
		if err != nil {
			return fmt.Errorf("delete tasks of project %s: %w", project.ID, err)
		}
		removed = n
		return a.store.DeleteProject(ctx, project.ID)
	})
	if err != nil {
		return err
	}

	a.logger.Info("project deleted",
		slog.String("project_id", project.ID),
		slog.Int64("tasks_deleted", removed),
		slog.String("user_id", u.ID),
	)
	return nil
}

func (a *Projects) checkUsersExist(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := a.store.UsersByID(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return domain.Invalid("project", "team_members", "unknown user "+id)
		}
	}
	return nil
}

func (a *Projects) enriched(ctx context.Context, p models.Project) (models.Project, error) {
	m, err := refs(ctx, a.store, []string{p.CreatedBy}, p.TeamMembers)
	if err != nil {
		return models.Project{}, err
	}
	enrichProject(&p, m)
	return p, nil
}
