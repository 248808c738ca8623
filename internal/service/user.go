package service

import (
	"context"
	"log/slog"

	"github.com/SENODROOM/PublicBoard-Backend/internal/apperror"
	"github.com/SENODROOM/PublicBoard-Backend/internal/model"
	"github.com/SENODROOM/PublicBoard-Backend/internal/repository"
)

// UserService handles admin-side account management.
type UserService struct {
	users  repository.UserRepository
	issues repository.IssueRepository
	logger *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(users repository.UserRepository, issues repository.IssueRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, issues: issues, logger: logger}
}

// List returns one page of accounts. Admin only.
func (s *UserService) List(ctx context.Context, principal *model.User, filter repository.UserFilter, sort repository.Sort, page repository.Page) (*repository.PagedUsers, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	return s.users.FindUserPage(ctx, filter, sort, page)
}

// UserDetail is an account plus the issues it reported.
type UserDetail struct {
	User           *model.User   `json:"user"`
	ReportedIssues []model.Issue `json:"reportedIssues"`
}

// Get returns one account and its reported issues. Admin only.
func (s *UserService) Get(ctx context.Context, principal *model.User, id string) (*UserDetail, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reported, err := s.issues.Find(ctx, repository.Filter{ReporterUserID: id}, repository.DefaultSort)
	if err != nil {
		return nil, err
	}

	return &UserDetail{User: user, ReportedIssues: reported}, nil
}

// ChangeRole sets an account's role. Admins cannot change their own role.
func (s *UserService) ChangeRole(ctx context.Context, principal *model.User, id, role string) (*model.User, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	if principal.ID == id {
		return nil, apperror.InvalidOperation("you cannot change your own role")
	}

	user, err := s.users.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user role changed", "user_id", id, "role", role, "by", principal.ID)
	return user, nil
}

// Delete removes an account. Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, principal *model.User, id string) error {
	if err := requireAdmin(principal); err != nil {
		return err
	}
	if principal.ID == id {
		return apperror.InvalidOperation("you cannot delete your own account")
	}

	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}

	s.logger.Info("user deleted", "user_id", id, "by", principal.ID)
	return nil
}
