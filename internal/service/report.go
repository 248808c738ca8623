package service

import (
	"context"
	"log/slog"

	"github.com/SENODROOM/PublicBoard-Backend/internal/apperror"
	"github.com/SENODROOM/PublicBoard-Backend/internal/model"
	"github.com/SENODROOM/PublicBoard-Backend/internal/repository"
)

// ReportService serves read-only aggregations. Reports need the durable
// store's query engine; when the process runs on the fallback store, every
// method answers Unavailable.
type ReportService struct {
	reports repository.ReportRepository // nil in fallback mode
	logger  *slog.Logger
}

// NewReportService creates a ReportService. Pass a nil repository when the
// durable store is not available.
func NewReportService(reports repository.ReportRepository, logger *slog.Logger) *ReportService {
	return &ReportService{reports: reports, logger: logger}
}

func (s *ReportService) available() error {
	if s.reports == nil {
		return apperror.Unavailable("reporting requires the durable store")
	}
	return nil
}

// IssueStats returns the public per-status issue counts.
func (s *ReportService) IssueStats(ctx context.Context) (*repository.IssueStats, error) {
	if err := s.available(); err != nil {
		return nil, err
	}
	return s.reports.IssueStats(ctx)
}

// Overview returns the admin dashboard rollup. Admin only.
func (s *ReportService) Overview(ctx context.Context, principal *model.User) (*repository.Overview, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	if err := s.available(); err != nil {
		return nil, err
	}
	return s.reports.Overview(ctx)
}
