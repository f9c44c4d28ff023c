package access

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"taskboard/internal/domain"
	"taskboard/internal/models"
)

// Tasks applies task visibility and edit rules. Parent project checks are
// delegated to Projects so both services share one notion of ownership.
type Tasks struct {
	store    Store
	projects *Projects
	logger   *slog.Logger
}

// NewTasks constructs the task access service.
func NewTasks(store Store, projects *Projects, logger *slog.Logger) *Tasks {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Tasks{store: store, projects: projects, logger: logger}
}

// TaskFilters narrows List.
type TaskFilters struct {
	ProjectID string
}

// TaskInput carries the fields of a new task.
type TaskInput struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
	ProjectID   string            `json:"project_id"`
	AssignedTo  string            `json:"assigned_to"`
	Priority    models.Priority   `json:"priority"`
	DueDate     *time.Time        `json:"due_date"`
}

// TaskPatch carries the fields to overwrite on an existing task. Nil fields
// are kept. ClearDueDate removes the due date and wins over DueDate.
type TaskPatch struct {
	Title        *string            `json:"title"`
	Description  *string            `json:"description"`
	Status       *models.TaskStatus `json:"status"`
	AssignedTo   *string            `json:"assigned_to"`
	Priority     *models.Priority   `json:"priority"`
	DueDate      *time.Time         `json:"due_date"`
	ClearDueDate bool               `json:"-"`
}

// List returns the tasks visible to u, newest first. Members only ever see
// tasks assigned to them.
func (a *Tasks) List(ctx context.Context, u models.User, filters TaskFilters) ([]models.Task, error) {
	filter, ok := taskScope(u)
	if !ok {
		return []models.Task{}, nil
	}
	filter.ProjectID = strings.TrimSpace(filters.ProjectID)
	return a.list(ctx, filter)
}

// MyTasks returns the tasks assigned to u regardless of role.
func (a *Tasks) MyTasks(ctx context.Context, u models.User) ([]models.Task, error) {
	return a.list(ctx, models.TaskFilter{AssignedTo: u.ID})
}

func (a *Tasks) list(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	tasks, err := a.store.ListTasks(ctx, filter)
	if err != nil {
		return nil, err
	}
	m, err := refs(ctx, a.store, taskUserIDs(tasks))
	if err != nil {
		return nil, err
	}
	enrichTasks(tasks, m)
	return tasks, nil
}

// Get returns a single task. Members may only read tasks assigned to them.
func (a *Tasks) Get(ctx context.Context, u models.User, id string) (models.Task, error) {
	task, err := a.store.GetTask(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	if !canViewTask(u, task) {
		return models.Task{}, domain.Forbidden("task", "view")
	}
	return a.enriched(ctx, task)
}

// Board groups the tasks of a project into kanban columns. Visibility follows Projects.Get.
func (a *Tasks) Board(ctx context.Context, u models.User, projectID string) (models.Board, error) {
	details, err := a.projects.Get(ctx, u, projectID)
	if err != nil {
		return models.Board{}, err
	}
	return models.NewBoard(details.Project, details.Tasks), nil
}

// Create adds a task to a project. Only admins and the project's creator may
// add tasks; other managers are rejected.
func (a *Tasks) Create(ctx context.Context, u models.User, in TaskInput) (models.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	in.AssignedTo = strings.TrimSpace(in.AssignedTo)
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.RuneLength(1, models.MaxTaskTitleLength)),
		validation.Field(&in.Description, validation.RuneLength(0, models.MaxTaskDescriptionLength)),
		validation.Field(&in.Status, statusRule),
		validation.Field(&in.ProjectID, validation.Required),
		validation.Field(&in.AssignedTo, validation.Required, idRule),
		validation.Field(&in.Priority, priorityRule),
	)
	if err != nil {
		return models.Task{}, domain.FromValidation("task", err)
	}

	project, err := a.projects.manageable(ctx, u, in.ProjectID, "create tasks in")
	if err != nil {
		return models.Task{}, err
	}
	if err := a.checkAssignee(ctx, in.AssignedTo); err != nil {
		return models.Task{}, err
	}

	task := models.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		ProjectID:   project.ID,
		AssignedTo:  in.AssignedTo,
		CreatedBy:   u.ID,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
	}
	if task.Status == "" {
		task.Status = models.StatusTodo
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}

	if err := a.store.CreateTask(ctx, &task); err != nil {
		return models.Task{}, err
	}

	a.logger.Info("task created",
		slog.String("task_id", task.ID),
		slog.String("project_id", task.ProjectID),
		slog.String("user_id", u.ID),
	)
	return a.enriched(ctx, task)
}

// Update overwrites the supplied fields. An assigned member may change status
// and description only; anything else they send is ignored. Admins and
// managers may change every mutable field.
func (a *Tasks) Update(ctx context.Context, u models.User, id string, patch TaskPatch) (models.Task, error) {
	patch.Title = trimPtr(patch.Title)
	patch.Description = trimPtr(patch.Description)
	patch.AssignedTo = trimPtr(patch.AssignedTo)
	err := validation.ValidateStruct(&patch,
		validation.Field(&patch.Title, validation.NilOrNotEmpty, validation.RuneLength(1, models.MaxTaskTitleLength)),
		validation.Field(&patch.Description, validation.RuneLength(0, models.MaxTaskDescriptionLength)),
		validation.Field(&patch.Status, statusRule),
		validation.Field(&patch.AssignedTo, idRule),
		validation.Field(&patch.Priority, priorityRule),
	)
	if err != nil {
		return models.Task{}, domain.FromValidation("task", err)
	}

	task, err := a.store.GetTask(ctx, id)
	if err != nil {
		return models.Task{}, err
	}

	switch taskEditScope(u, task) {
	case editWorkflow:
		applyWorkflow(&task, patch.Status, patch.Description)
	case editAll:
		applyWorkflow(&task, patch.Status, patch.Description)
		if patch.Title != nil {
			task.Title = *patch.Title
		}
		if patch.AssignedTo != nil && *patch.AssignedTo != "" {
			if err := a.checkAssignee(ctx, *patch.AssignedTo); err != nil {
				return models.Task{}, err
			}
			task.AssignedTo = *patch.AssignedTo
		}
		if patch.Priority != nil && *patch.Priority != "" {
			task.Priority = *patch.Priority
		}
		switch {
		case patch.ClearDueDate:
			task.DueDate = nil
		case patch.DueDate != nil:
			task.DueDate = patch.DueDate
		}
	default:
		return models.Task{}, domain.Forbidden("task", "update")
	}

	return a.save(ctx, u, task)
}

// UpdateStatus moves a task to another kanban column. Any status may follow any other.
func (a *Tasks) UpdateStatus(ctx context.Context, u models.User, id string, status models.TaskStatus) (models.Task, error) {
	if err := validation.Validate(status, validation.Required, statusRule); err != nil {
		return models.Task{}, domain.Invalid("task", "status", err.Error())
	}

	task, err := a.store.GetTask(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	if taskEditScope(u, task) == editNone {
		return models.Task{}, domain.Forbidden("task", "update")
	}

	task.Status = status
	return a.save(ctx, u, task)
}

// Delete removes a task. Only the role matters here, not assignment or project ownership.
func (a *Tasks) Delete(ctx context.Context, u models.User, id string) error {
	if !canDeleteTask(u) {
		return domain.Forbidden("task", "delete")
	}
	if err := a.store.DeleteTask(ctx, id); err != nil {
		return err
	}

	a.logger.Info("task deleted",
		slog.String("task_id", id),
		slog.String("user_id", u.ID),
	)
	return nil
}

// applyWorkflow sets the fields an assignee may touch. An empty description is
// a valid overwrite; an empty status is not.
func applyWorkflow(t *models.Task, status *models.TaskStatus, description *string) {
	if status != nil && *status != "" {
		t.Status = *status
	}
	if description != nil {
		t.Description = *description
	}
}

func (a *Tasks) save(ctx context.Context, u models.User, task models.Task) (models.Task, error) {
	if err := a.store.UpdateTask(ctx, &task); err != nil {
		return models.Task{}, err
	}

	a.logger.Info("task updated",
		slog.String("task_id", task.ID),
		slog.String("status", string(task.Status)),
		slog.String("user_id", u.ID),
	)
	return a.enriched(ctx, task)
}

func (a *Tasks) checkAssignee(ctx context.Context, userID string) error {
	found, err := a.store.UsersByID(ctx, []string{userID})
	if err != nil {
		return err
	}
	if _, ok := found[userID]; !ok {
		return domain.Invalid("task", "assigned_to", "unknown user "+userID)
	}
	return nil
}

func (a *Tasks) enriched(ctx context.Context, t models.Task) (models.Task, error) {
	tasks := []models.Task{t}
	m, err := refs(ctx, a.store, taskUserIDs(tasks))
	if err != nil {
		return models.Task{}, err
	}
	enrichTasks(tasks, m)
	return tasks[0], nil
}
