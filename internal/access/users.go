package access

import (
	"context"
	"io"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"taskboard/internal/domain"
	"taskboard/internal/models"
)

// Users is the admin-only user management surface.
type Users struct {
	store  UserStore
	logger *slog.Logger
}

// NewUsers builds the user service; a nil logger discards output.
func NewUsers(store UserStore, logger *slog.Logger) *Users {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Users{store: store, logger: logger}
}

// UserPatch carries the profile fields to overwrite. Nil fields are kept.
type UserPatch struct {
	Name  *string      `json:"name"`
	Email *string      `json:"email"`
	Role  *models.Role `json:"role"`
}

// List returns every user. Admin only.
func (a *Users) List(ctx context.Context, u models.User) ([]models.User, error) {
	if !canManageUsers(u) {
		return nil, domain.Forbidden("user", "list")
	}
	return a.store.ListUsers(ctx)
}

// Get returns one user by id. Admin only.
func (a *Users) Get(ctx context.Context, u models.User, id string) (models.User, error) {
	if !canManageUsers(u) {
		return models.User{}, domain.Forbidden("user", "view")
	}
	return a.store.GetUser(ctx, id)
}

// Update changes a user's profile or role. Admins cannot take away their own admin role.
func (a *Users) Update(ctx context.Context, u models.User, id string, patch UserPatch) (models.User, error) {
	if !canManageUsers(u) {
		return models.User{}, domain.Forbidden("user", "update")
	}

	patch.Name = trimPtr(patch.Name)
	patch.Email = trimPtr(patch.Email)
	err := validation.ValidateStruct(&patch,
		validation.Field(&patch.Name, validation.NilOrNotEmpty, validation.RuneLength(1, 100)),
		validation.Field(&patch.Email, validation.NilOrNotEmpty, is.EmailFormat),
		validation.Field(&patch.Role, roleRule),
	)
	if err != nil {
		return models.User{}, domain.FromValidation("user", err)
	}

	target, err := a.store.GetUser(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	if patch.Name != nil {
		target.Name = *patch.Name
	}
	if patch.Email != nil {
		target.Email = *patch.Email
	}
	if patch.Role != nil && *patch.Role != "" {
		if target.ID == u.ID && *patch.Role != models.RoleAdmin {
			return models.User{}, domain.Invalid("user", "role", "cannot remove your own admin role")
		}
		target.Role = *patch.Role
	}

	if err := a.store.UpdateUser(ctx, target); err != nil {
		return models.User{}, err
	}

	a.logger.Info("user updated",
		slog.String("target_id", target.ID),
		slog.String("role", string(target.Role)),
		slog.String("user_id", u.ID),
	)
	return target, nil
}

// Delete removes a user account. Admins cannot delete themselves.
func (a *Users) Delete(ctx context.Context, u models.User, id string) error {
	if !canManageUsers(u) {
		return domain.Forbidden("user", "delete")
	}
	if id == u.ID {
		return domain.Forbidden("user", "delete own account")
	}
	if err := a.store.DeleteUser(ctx, id); err != nil {
		return err
	}

	a.logger.Info("user deleted",
		slog.String("target_id", id),
		slog.String("user_id", u.ID),
	)
	return nil
}
