package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"taskboard/internal/domain"
	"taskboard/internal/models"
)

const taskColumns = `id, title, description, status, project_id, assigned_to, created_by, priority, due_date, created_at, updated_at`

func scanTask(row rowScanner) (models.Task, error) {
	var t models.Task
	var due sql.NullTime
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.ProjectID, &t.AssignedTo, &t.CreatedBy,
		&t.Priority, &due, &t.CreatedAt, &t.UpdatedAt)
	t.DueDate = timePtr(due)
	return t, err
}

// ListTasks returns tasks matching filter ordered by creation time, newest first.
func (s *Store) ListTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	var (
		where []string
		args  []any
	)
	if filter.ProjectID != "" {
		where = append(where, "project_id = ?")
		args = append(args, filter.ProjectID)
	}
	if filter.AssignedTo != "" {
		where = append(where, "assigned_to = ?")
		args = append(args, filter.AssignedTo)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.Store("list tasks", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, domain.Store("scan task", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Store("list tasks", err)
	}
	return tasks, nil
}

// GetTask retrieves a task by id.
func (s *Store) GetTask(ctx context.Context, id string) (models.Task, error) {
	t, err := scanTask(s.conn(ctx).QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, domain.NotFound("task", id)
	}
	if err != nil {
		return models.Task{}, domain.Store("get task", err)
	}
	return t, nil
}

// CreateTask inserts a new task for a project.
func (s *Store) CreateTask(ctx context.Context, t *models.Task) error {
	if t.ID == "" {
		t.ID = models.NewID()
	}
	t.CreatedAt = s.now()
	t.UpdatedAt = t.CreatedAt

	_, err := s.conn(ctx).ExecContext(ctx, `INSERT INTO tasks(`+taskColumns+`) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Description, t.Status, t.ProjectID, t.AssignedTo, t.CreatedBy, t.Priority,
		nullTime(t.DueDate), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return domain.Store("insert task", err)
	}
	return nil
}

// UpdateTask overwrites the mutable fields of a task. project_id and created_by are fixed.
func (s *Store) UpdateTask(ctx context.Context, t *models.Task) error {
	t.UpdatedAt = s.now()
	res, err := s.conn(ctx).ExecContext(ctx, `UPDATE tasks SET title = ?, description = ?, status = ?, assigned_to = ?,
        priority = ?, due_date = ?, updated_at = ? WHERE id = ?`,
		t.Title, t.Description, t.Status, t.AssignedTo, t.Priority, nullTime(t.DueDate), t.UpdatedAt, t.ID)
	if err != nil {
		return domain.Store("update task", err)
	}
	return expectAffected(res, "task", t.ID)
}

// DeleteTask removes a task by id.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return domain.Store("delete task", err)
	}
	return expectAffected(res, "task", id)
}

// DeleteProjectTasks removes every task of a project and reports how many were deleted.
func (s *Store) DeleteProjectTasks(ctx context.Context, projectID string) (int64, error) {
	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM tasks WHERE project_id = ?`, projectID)
	if err != nil {
		return 0, domain.Store("delete project tasks", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, domain.Store("rows affected", err)
	}
	return n, nil
}
