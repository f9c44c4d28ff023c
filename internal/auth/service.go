package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"taskboard/internal/domain"
	"taskboard/internal/models"
)

// bcrypt only reads the first 72 bytes.
const (
	minPasswordLength = 6
	maxPasswordLength = 72
)

// Store is the user persistence needed for sign-up, sign-in and token resolution.
type Store interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	UpdateUser(ctx context.Context, u models.User) error
}

// Service resolves the acting user for every request and manages credentials.
type Service struct {
	store  Store
	tokens *Tokens
	logger *slog.Logger
}

func NewService(store Store, tokens *Tokens, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{store: store, tokens: tokens, logger: logger}
}

// Credentials is a sign-up or sign-in request.
type Credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is returned after a successful sign-up or sign-in.
type Session struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// Register creates a member account and signs it in. Roles are raised by an admin later.
func (s *Service) Register(ctx context.Context, c Credentials) (Session, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.RuneLength(1, 100)),
		validation.Field(&c.Email, validation.Required, is.EmailFormat),
		validation.Field(&c.Password, validation.Required, validation.Length(minPasswordLength, maxPasswordLength)),
	)
	if err != nil {
		return Session{}, domain.FromValidation("user", err)
	}

	u, err := s.createUser(ctx, c, models.RoleMember)
	if err != nil {
		return Session{}, err
	}
	s.logger.Info("user registered", slog.String("user_id", u.ID))
	return s.session(u)
}

// Login checks the credentials and issues a new token.
func (s *Service) Login(ctx context.Context, c Credentials) (Session, error) {
	u, err := s.store.GetUserByEmail(ctx, c.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return Session{}, domain.Unauthorized("invalid credentials")
	}
	if err != nil {
		return Session{}, err
	}
	if err := ComparePassword(u.PasswordHash, c.Password); err != nil {
		return Session{}, domain.Unauthorized("invalid credentials")
	}
	return s.session(u)
}

// ResolveUser verifies token and returns the current state of its user, so a
// role change applies to tokens issued before it.
func (s *Service) ResolveUser(ctx context.Context, token string) (models.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		s.logger.Debug("token rejected", slog.String("error", err.Error()))
		return models.User{}, domain.Unauthorized("invalid token")
	}
	u, err := s.store.GetUser(ctx, claims.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return models.User{}, domain.Unauthorized("unknown user")
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// EnsureAdmin makes sure an admin account exists for email, creating it or
// promoting the existing account. Used to bootstrap a fresh database.
func (s *Service) EnsureAdmin(ctx context.Context, c Credentials) (models.User, error) {
	existing, err := s.store.GetUserByEmail(ctx, c.Email)
	switch {
	case err == nil:
		if existing.Role == models.RoleAdmin {
			return existing, nil
		}
		existing.Role = models.RoleAdmin
		if err := s.store.UpdateUser(ctx, existing); err != nil {
			return models.User{}, err
		}
		s.logger.Info("user promoted to admin", slog.String("user_id", existing.ID))
		return existing, nil
	case !errors.Is(err, domain.ErrNotFound):
		return models.User{}, err
	}

	if c.Name == "" {
		c.Name = "Administrator"
	}
	err = validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.EmailFormat),
		validation.Field(&c.Password, validation.Required, validation.Length(minPasswordLength, maxPasswordLength)),
	)
	if err != nil {
		return models.User{}, domain.FromValidation("user", err)
	}

	u, err := s.createUser(ctx, c, models.RoleAdmin)
	if err != nil {
		return models.User{}, err
	}
	s.logger.Info("admin account created", slog.String("user_id", u.ID))
	return u, nil
}

func (s *Service) createUser(ctx context.Context, c Credentials, role models.Role) (models.User, error) {
	hash, err := HashPassword(c.Password)
	if err != nil {
		return models.User{}, err
	}
	u := models.User{
		Name:         strings.TrimSpace(c.Name),
		Email:        strings.TrimSpace(c.Email),
		Role:         role,
		PasswordHash: hash,
	}
	if err := s.store.CreateUser(ctx, &u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (s *Service) session(u models.User) (Session, error) {
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{User: u, Token: token}, nil
}
