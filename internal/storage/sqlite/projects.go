package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"taskboard/internal/domain"
	"taskboard/internal/models"
)

const projectColumns = `p.id, p.name, p.description, p.created_by, p.created_at, p.updated_at`

// ListProjects retrieves projects matching filter, newest first.
func (s *Store) ListProjects(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects p`
	var args []any

	const isMember = `EXISTS (SELECT 1 FROM project_members m WHERE m.project_id = p.id AND m.user_id = ?)`
	switch {
	case filter.CreatorOrMemberID != "":
		query += ` WHERE p.created_by = ? OR ` + isMember
		args = append(args, filter.CreatorOrMemberID, filter.CreatorOrMemberID)
	case filter.MemberID != "":
		query += ` WHERE ` + isMember
		args = append(args, filter.MemberID)
	}
	query += ` ORDER BY p.created_at DESC, p.rowid DESC`

	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.Store("list projects", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, domain.Store("scan project", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Store("list projects", err)
	}

	if err := s.attachMembers(ctx, projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject fetches a single project by id.
func (s *Store) GetProject(ctx context.Context, id string) (models.Project, error) {
	var p models.Project
	err := s.conn(ctx).QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects p WHERE p.id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Project{}, domain.NotFound("project", id)
	}
	if err != nil {
		return models.Project{}, domain.Store("get project", err)
	}

	projects := []models.Project{p}
	if err := s.attachMembers(ctx, projects); err != nil {
		return models.Project{}, err
	}
	return projects[0], nil
}

// CreateProject persists a new project together with its team.
func (s *Store) CreateProject(ctx context.Context, p *models.Project) error {
	if p.ID == "" {
		p.ID = models.NewID()
	}
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	if p.TeamMembers == nil {
		p.TeamMembers = []string{}
	}

	return s.WithinTx(ctx, func(ctx context.Context) error {
		_, err := s.conn(ctx).ExecContext(ctx, `INSERT INTO projects(id, name, description, created_by, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Description, p.CreatedBy, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return domain.Store("insert project", err)
		}
		return s.replaceMembers(ctx, p.ID, p.TeamMembers)
	})
}

// UpdateProject overwrites name, description and team. created_by never changes.
func (s *Store) UpdateProject(ctx context.Context, p *models.Project) error {
	p.UpdatedAt = s.now()
	return s.WithinTx(ctx, func(ctx context.Context) error {
		res, err := s.conn(ctx).ExecContext(ctx, `UPDATE projects SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
			p.Name, p.Description, p.UpdatedAt, p.ID)
		if err != nil {
			return domain.Store("update project", err)
		}
		if err := expectAffected(res, "project", p.ID); err != nil {
			return err
		}
		return s.replaceMembers(ctx, p.ID, p.TeamMembers)
	})
}

// DeleteProject removes a project. The tasks table references projects
// without cascading, so deleting a project that still has tasks fails.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return domain.Store("delete project", err)
	}
	return expectAffected(res, "project", id)
}

func (s *Store) replaceMembers(ctx context.Context, projectID string, members []string) error {
	if _, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM project_members WHERE project_id = ?`, projectID); err != nil {
		return domain.Store("clear project members", err)
	}
	for i, userID := range members {
		_, err := s.conn(ctx).ExecContext(ctx, `INSERT OR IGNORE INTO project_members(project_id, user_id, position) VALUES(?, ?, ?)`,
			projectID, userID, i)
		if err != nil {
			return domain.Store("insert project member", err)
		}
	}
	return nil
}

// attachMembers fills TeamMembers of every project in place, keeping insertion order.
func (s *Store) attachMembers(ctx context.Context, projects []models.Project) error {
	if len(projects) == 0 {
		return nil
	}

	index := make(map[string]int, len(projects))
	ids := make([]string, len(projects))
	for i := range projects {
		projects[i].TeamMembers = []string{}
		index[projects[i].ID] = i
		ids[i] = projects[i].ID
	}

	marks, args := placeholders(ids)
	rows, err := s.conn(ctx).QueryContext(ctx, `SELECT project_id, user_id FROM project_members
        WHERE project_id IN (`+marks+`) ORDER BY project_id, position`, args...)
	if err != nil {
		return domain.Store("list project members", err)
	}
	defer rows.Close()

	for rows.Next() {
		var projectID, userID string
		if err := rows.Scan(&projectID, &userID); err != nil {
			return domain.Store("scan project member", err)
		}
		i := index[projectID]
		projects[i].TeamMembers = append(projects[i].TeamMembers, userID)
	}
	if err := rows.Err(); err != nil {
		return domain.Store("list project members", err)
	}
	return nil
}
