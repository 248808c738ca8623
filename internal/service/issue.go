// Package service contains the business logic layer: validation, the status
// state machine, authorization rules, and orchestration over the repository
// interfaces. Services never know which store backs them.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/SENODROOM/PublicBoard-Backend/internal/apperror"
	"github.com/SENODROOM/PublicBoard-Backend/internal/model"
	"github.com/SENODROOM/PublicBoard-Backend/internal/repository"
)

// IssueService handles issue lifecycle operations.
type IssueService struct {
	repo   repository.IssueRepository
	logger *slog.Logger
}

// NewIssueService creates an IssueService.
func NewIssueService(repo repository.IssueRepository, logger *slog.Logger) *IssueService {
	return &IssueService{repo: repo, logger: logger}
}

// CreateIssueInput carries the reporter-supplied fields for a new issue.
// Status is not accepted from callers; new issues always start Open.
type CreateIssueInput struct {
	Title         string
	Description   string
	Category      string
	Location      string
	ReporterName  string
	ReporterEmail string
}

// Create files a new issue. When an authenticated principal creates it, the
// reporter record is linked to their account.
func (s *IssueService) Create(ctx context.Context, principal *model.User, in CreateIssueInput) (*model.Issue, error) {
	issue := &model.Issue{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    in.Category,
		Location:    strings.TrimSpace(in.Location),
		Status:      model.StatusOpen,
		Reporter: model.Reporter{
			Name:  strings.TrimSpace(in.ReporterName),
			Email: strings.TrimSpace(in.ReporterEmail),
		},
	}
	if principal != nil {
		issue.Reporter.UserID = principal.ID
		if issue.Reporter.Name == "" {
			issue.Reporter.Name = principal.Name
		}
		if issue.Reporter.Email == "" {
			issue.Reporter.Email = principal.Email
		}
	}

	if err := s.repo.Create(ctx, issue); err != nil {
		return nil, err
	}

	s.logger.Info("issue created",
		"issue_id", issue.ID,
		"category", issue.Category,
		"reporter", issue.Reporter.Name,
	)
	return issue, nil
}

// List returns all issues matching the filter.
func (s *IssueService) List(ctx context.Context, filter repository.Filter, sort repository.Sort) ([]model.Issue, error) {
	return s.repo.Find(ctx, filter, sort)
}

// ListPaged returns one page of issues matching the filter.
func (s *IssueService) ListPaged(ctx context.Context, filter repository.Filter, sort repository.Sort, page repository.Page) (*repository.PagedIssues, error) {
	return s.repo.FindPage(ctx, filter, sort, page)
}

// Get returns one issue by ID.
func (s *IssueService) Get(ctx context.Context, id string) (*model.Issue, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateStatus moves an issue to any status. Only an admin or the issue's
// own reporter may change status. A non-empty message appends an entry to
// the update log; admin authors are recorded with an "(Admin)" suffix.
func (s *IssueService) UpdateStatus(ctx context.Context, principal *model.User, id, status, message string) (*model.Issue, error) {
	if principal == nil {
		return nil, apperror.Unauthenticated("authentication required")
	}
	if !model.ValidStatus(status) {
		return nil, apperror.ValidationFailed("status", "invalid status value")
	}

	issue, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() && issue.Reporter.UserID != principal.ID {
		return nil, apperror.Forbidden("only the reporter or an admin can update this issue")
	}

	var entry *model.UpdateEntry
	if message = strings.TrimSpace(message); message != "" {
		author := principal.Name
		if principal.IsAdmin() {
			author += " (Admin)"
		}
		entry = &model.UpdateEntry{
			Message:   message,
			Status:    status,
			UpdatedBy: author,
			CreatedAt: time.Now(),
		}
	}

	updated, err := s.repo.ApplyStatus(ctx, id, status, entry)
	if err != nil {
		return nil, err
	}

	s.logger.Info("issue status updated",
		"issue_id", id,
		"status", status,
		"by", principal.ID,
	)
	return updated, nil
}

// ToggleSupport flips the principal's support for an issue and reports
// whether they support it after the call.
func (s *IssueService) ToggleSupport(ctx context.Context, principal *model.User, id string) (*model.Issue, bool, error) {
	if principal == nil {
		return nil, false, apperror.Unauthenticated("authentication required")
	}
	return s.repo.ToggleSupport(ctx, id, principal.ID)
}

// Delete removes an issue. Admin only.
func (s *IssueService) Delete(ctx context.Context, principal *model.User, id string) error {
	if err := requireAdmin(principal); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("issue deleted", "issue_id", id, "by", principal.ID)
	return nil
}

// BulkStatus applies a status to many issues and returns how many matched.
// Admin only.
func (s *IssueService) BulkStatus(ctx context.Context, principal *model.User, ids []string, status string) (int, error) {
	if err := requireAdmin(principal); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, apperror.ValidationFailed("ids", "at least one issue id is required")
	}
	matched, err := s.repo.BulkStatus(ctx, ids, status)
	if err != nil {
		return 0, err
	}
	s.logger.Info("bulk status applied", "status", status, "requested", len(ids), "matched", matched, "by", principal.ID)
	return matched, nil
}

// BulkDelete removes many issues and returns how many matched. Admin only.
func (s *IssueService) BulkDelete(ctx context.Context, principal *model.User, ids []string) (int, error) {
	if err := requireAdmin(principal); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, apperror.ValidationFailed("ids", "at least one issue id is required")
	}
	matched, err := s.repo.BulkDelete(ctx, ids)
	if err != nil {
		return 0, err
	}
	s.logger.Info("bulk delete applied", "requested", len(ids), "matched", matched, "by", principal.ID)
	return matched, nil
}

func requireAdmin(principal *model.User) error {
	if principal == nil {
		return apperror.Unauthenticated("authentication required")
	}
	if !principal.IsAdmin() {
		return apperror.Forbidden("admin access required")
	}
	return nil
}
