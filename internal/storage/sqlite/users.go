package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"taskboard/internal/domain"
	"taskboard/internal/models"
)

const userColumns = `id, name, email, role, password_hash, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

// CreateUser inserts a user. Emails are unique regardless of case.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = models.NewID()
	}
	u.Email = strings.TrimSpace(u.Email)
	u.CreatedAt = s.now()

	_, err := s.conn(ctx).ExecContext(ctx, `INSERT INTO users(`+userColumns+`) VALUES(?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.Role, u.PasswordHash, u.CreatedAt)
	if isUniqueViolation(err) {
		return domain.Conflict("user", "email")
	}
	if err != nil {
		return domain.Store("insert user", err)
	}
	return nil
}

// GetUser fetches a single user by id.
func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	u, err := scanUser(s.conn(ctx).QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, domain.NotFound("user", id)
	}
	if err != nil {
		return models.User{}, domain.Store("get user", err)
	}
	return u, nil
}

// GetUserByEmail fetches a user by email, ignoring case.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	email = strings.TrimSpace(email)
	u, err := scanUser(s.conn(ctx).QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ? COLLATE NOCASE`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, domain.NotFound("user", email)
	}
	if err != nil {
		return models.User{}, domain.Store("get user by email", err)
	}
	return u, nil
}

// ListUsers returns every user, newest first.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, domain.Store("list users", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, domain.Store("scan user", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Store("list users", err)
	}
	return users, nil
}

// UsersByID loads the users with the given ids. Unknown ids are absent from the result.
func (s *Store) UsersByID(ctx context.Context, ids []string) (map[string]models.User, error) {
	result := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	marks, args := placeholders(ids)
	rows, err := s.conn(ctx).QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE id IN (`+marks+`)`, args...)
	if err != nil {
		return nil, domain.Store("load users", err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, domain.Store("scan user", err)
		}
		result[u.ID] = u
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Store("load users", err)
	}
	return result, nil
}

// UpdateUser overwrites the profile fields and role of an existing user.
func (s *Store) UpdateUser(ctx context.Context, u models.User) error {
	res, err := s.conn(ctx).ExecContext(ctx, `UPDATE users SET name = ?, email = ?, role = ? WHERE id = ?`,
		u.Name, strings.TrimSpace(u.Email), u.Role, u.ID)
	if isUniqueViolation(err) {
		return domain.Conflict("user", "email")
	}
	if err != nil {
		return domain.Store("update user", err)
	}
	return expectAffected(res, "user", u.ID)
}

// DeleteUser removes a user by id.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return domain.Store("delete user", err)
	}
	return expectAffected(res, "user", id)
}

func expectAffected(res sql.Result, entity, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Store("rows affected", err)
	}
	if affected == 0 {
		return domain.NotFound(entity, id)
	}
	return nil
}
