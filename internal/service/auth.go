package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/SENODROOM/PublicBoard-Backend/internal/apperror"
	"github.com/SENODROOM/PublicBoard-Backend/internal/auth"
	"github.com/SENODROOM/PublicBoard-Backend/internal/model"
	"github.com/SENODROOM/PublicBoard-Backend/internal/repository"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// AuthService handles registration, login, and admin seeding.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenService
	passwords  *auth.PasswordService
	adminEmail string
	logger     *slog.Logger
}

// NewAuthService creates an AuthService. adminEmail is the env-configured
// admin address; registration with it is refused.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenService, passwords *auth.PasswordService, adminEmail string, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		passwords:  passwords,
		adminEmail: strings.ToLower(adminEmail),
		logger:     logger,
	}
}

// RegisterInput carries the fields for a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthResult is a signed token plus the account it identifies.
type AuthResult struct {
	Token string
	User  *model.User
}

// Register creates a regular user account and signs them in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "a valid email is required")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password", "password must be at least 6 characters")
	}
	if s.adminEmail != "" && email == s.adminEmail {
		return nil, apperror.ValidationFailed("email", "this email is reserved for the system admin")
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", "password must be 72 bytes or fewer")
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "email", user.Email)
	return &AuthResult{Token: token, User: user}, nil
}

// Login verifies credentials and issues a token. Wrong email and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("email", "email and password are required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthenticated("invalid email or password")
		}
		return nil, err
	}
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthenticated("invalid email or password")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return &AuthResult{Token: token, User: user}, nil
}

// SeedAdmin ensures the env-configured admin account exists and is current.
// Missing env config logs a warning and skips. An existing non-admin account
// with the admin email is promoted; a stale password is re-synced.
func (s *AuthService) SeedAdmin(ctx context.Context, name, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		s.logger.Warn("admin email or password not configured, skipping admin seed")
		return nil
	}
	if name == "" {
		name = "Admin"
	}

	admin, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			return err
		}

		hash, err := s.passwords.Hash(password)
		if err != nil {
			return err
		}
		admin = &model.User{
			Name:         name,
			Email:        email,
			PasswordHash: hash,
			Role:         model.RoleAdmin,
		}
		if err := s.users.CreateUser(ctx, admin); err != nil {
			return err
		}
		s.logger.Info("admin user created", "email", email)
		return nil
	}

	if !admin.IsAdmin() {
		if _, err := s.users.UpdateRole(ctx, admin.ID, model.RoleAdmin); err != nil {
			return err
		}
		s.logger.Info("existing user promoted to admin", "email", email)
	}

	if err := s.passwords.Verify(admin.PasswordHash, password); err != nil {
		hash, err := s.passwords.Hash(password)
		if err != nil {
			return err
		}
		if err := s.users.UpdatePassword(ctx, admin.ID, hash); err != nil {
			return err
		}
		s.logger.Info("admin password synced from configuration")
	}

	return nil
}
