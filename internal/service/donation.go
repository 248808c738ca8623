package service

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/SENODROOM/PublicBoard-Backend/internal/model"
	"github.com/SENODROOM/PublicBoard-Backend/internal/repository"
)

// DonationService handles donation intake and public aggregates. Payment
// processing is simulated: every valid donation completes immediately with a
// synthetic payment reference.
type DonationService struct {
	repo   repository.DonationRepository
	logger *slog.Logger
}

// NewDonationService creates a DonationService.
func NewDonationService(repo repository.DonationRepository, logger *slog.Logger) *DonationService {
	return &DonationService{repo: repo, logger: logger}
}

// CreateDonationInput carries the donor-supplied fields.
type CreateDonationInput struct {
	DonorName    string
	DonorEmail   string
	Amount       float64
	Currency     string
	Message      string
	IsAnonymous  bool
	RelatedIssue string
}

// Create records a donation. The simulated processor always succeeds, so
// the stored record is already completed.
func (s *DonationService) Create(ctx context.Context, principal *model.User, in CreateDonationInput) (*model.Donation, error) {
	donation := &model.Donation{
		Donor: model.Donor{
			Name:  strings.TrimSpace(in.DonorName),
			Email: strings.TrimSpace(in.DonorEmail),
		},
		Amount:       in.Amount,
		Currency:     in.Currency,
		Message:      strings.TrimSpace(in.Message),
		IsAnonymous:  in.IsAnonymous,
		Status:       model.DonationCompleted,
		RelatedIssue: in.RelatedIssue,
		PaymentRef:   "sim_" + uuid.NewString(),
	}
	if principal != nil {
		donation.Donor.UserID = principal.ID
		if donation.Donor.Name == "" {
			donation.Donor.Name = principal.Name
		}
		if donation.Donor.Email == "" {
			donation.Donor.Email = principal.Email
		}
	}

	if err := s.repo.CreateDonation(ctx, donation); err != nil {
		return nil, err
	}

	s.logger.Info("donation recorded",
		"donation_id", donation.ID,
		"amount", donation.Amount,
		"anonymous", donation.IsAnonymous,
	)
	return donation, nil
}

// ListCompleted returns completed donations newest first, with anonymous
// donors sanitized.
func (s *DonationService) ListCompleted(ctx context.Context) ([]model.Donation, error) {
	donations, err := s.repo.ListCompleted(ctx)
	if err != nil {
		return nil, err
	}
	for i := range donations {
		donations[i] = donations[i].Sanitized()
	}
	return donations, nil
}

// ListPaged returns one page of donations for the admin surface.
func (s *DonationService) ListPaged(ctx context.Context, principal *model.User, filter repository.DonationFilter, sort repository.Sort, page repository.Page) (*repository.PagedDonations, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	return s.repo.FindDonationPage(ctx, filter, sort, page)
}

// Stats sums completed donations for the public counter.
func (s *DonationService) Stats(ctx context.Context) (*repository.DonationStats, error) {
	donations, err := s.repo.ListCompleted(ctx)
	if err != nil {
		return nil, err
	}

	stats := &repository.DonationStats{DonationCount: len(donations)}
	for _, d := range donations {
		stats.TotalRaised += d.Amount
	}
	if stats.DonationCount > 0 {
		stats.AvgDonation = math.Round(stats.TotalRaised/float64(stats.DonationCount)*100) / 100
	}
	return stats, nil
}
